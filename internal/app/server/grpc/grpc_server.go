// Package grpc запускает gRPC-сервер, все unary-вызовы которого проходят через журнал вызовов.
package grpc

import (
	"context"
	"errors"
	"net"

	"github.com/aseptimu/call-logger/internal/app/interceptor"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type Server struct {
	srv    *grpc.Server
	health *health.Server
	addr   string
	logger *zap.SugaredLogger
}

// NewServer создаёт gRPC-сервер со стандартным health-сервисом.
func NewServer(addr string, ic *interceptor.Interceptor, logger *zap.SugaredLogger) *Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(UnaryCallLogger(ic)))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	return &Server{srv: srv, health: hs, addr: addr, logger: logger}
}

// Serve обслуживает соединения lis до вызова Stop.
func (s *Server) Serve(lis net.Listener) error {
	err := s.srv.Serve(lis)
	if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Run слушает addr и корректно останавливает сервер после отмены ctx.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		s.logger.Infow("Shutting down gRPC server", "address", s.addr)
		s.health.Shutdown()
		s.srv.GracefulStop()
	}()

	s.logger.Infow("Starting gRPC server", "addr", s.addr)
	return s.Serve(lis)
}

// Stop немедленно останавливает сервер.
func (s *Server) Stop() {
	s.srv.Stop()
}
