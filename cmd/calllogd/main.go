// Command calllogd запускает HTTP- и gRPC-серверы калькулятора, все вызовы
// которых записываются в журнал вызовов.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aseptimu/call-logger/internal/app/config"
	handlers "github.com/aseptimu/call-logger/internal/app/handlers/http"
	"github.com/aseptimu/call-logger/internal/app/interceptor"
	"github.com/aseptimu/call-logger/internal/app/logger"
	"github.com/aseptimu/call-logger/internal/app/metrics"
	grpcserver "github.com/aseptimu/call-logger/internal/app/server/grpc"
	httpserver "github.com/aseptimu/call-logger/internal/app/server/http"
	"github.com/aseptimu/call-logger/internal/app/service"
	"github.com/aseptimu/call-logger/internal/app/sink"
	"github.com/aseptimu/call-logger/internal/app/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("calllogd: %v", err)
	}
}

func run(args []string) error {
	appConf, err := config.NewConfig(args)
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}

	appLogger, err := logger.New(appConf.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = appLogger.Sync() }()

	secretKey, err := utils.SecretKeyOrRandom(appConf.SecretKey)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	callSink, closeSink, err := sink.New(appConf.SinkConfig(), sink.WithMetrics(m), sink.WithErrorLogger(appLogger))
	if err != nil {
		return fmt.Errorf("cannot open call log: %w", err)
	}
	defer func() {
		if err := closeSink(); err != nil {
			appLogger.Warnw("Failed to close call log", "error", err)
		}
	}()

	vis, err := appConf.Visibilities()
	if err != nil {
		return err
	}
	selector, err := interceptor.NewSelector(appConf.CallLogInclude, vis)
	if err != nil {
		return fmt.Errorf("bad include pattern: %w", err)
	}

	ic := interceptor.New(callSink,
		interceptor.WithSelector(selector),
		interceptor.WithMetrics(m),
		interceptor.WithLogger(appLogger),
	)

	calc := service.NewLoggedCalculator(service.NewCalcService(), ic)
	h := handlers.New(calc, reg, appLogger)

	httpSrv := httpserver.NewServer(appConf.ServerAddress, secretKey, ic, appLogger, h)
	grpcSrv := grpcserver.NewServer(appConf.GRPCServerAddress, ic, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpSrv.Run(gctx) })
	g.Go(func() error { return grpcSrv.Run(gctx) })

	appLogger.Infow("Call logger started",
		"http", appConf.ServerAddress,
		"grpc", appConf.GRPCServerAddress,
		"format", appConf.CallLogFormat,
		"output", appConf.CallLogOutput,
	)
	return g.Wait()
}
