package grpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/aseptimu/call-logger/internal/app/callrecord"
	"github.com/aseptimu/call-logger/internal/app/interceptor"
	"github.com/aseptimu/call-logger/internal/app/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func newObservedInterceptor() (*interceptor.Interceptor, *observer.ObservedLogs) {
	core, obs := observer.New(zap.InfoLevel)
	return interceptor.New(sink.NewZapSink(core)), obs
}

func TestOperationFromMethod(t *testing.T) {
	op := operationFromMethod("/grpc.health.v1.Health/Check")
	assert.Equal(t, callrecord.Operation{Scope: "grpc.health.v1.Health", Name: "Check", Visibility: callrecord.Public}, op)
	assert.Equal(t, "grpc.health.v1.Health.Check", op.Qualified())
}

func TestUnaryCallLogger_Metadata(t *testing.T) {
	ic, obs := newObservedInterceptor()
	unary := UnaryCallLogger(ic)

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
		"userID", "12345",
		"tenant", "acme",
		":authority", "localhost",
	))
	info := &grpc.UnaryServerInfo{FullMethod: "/calc.Calculator/Add"}

	res, err := unary(ctx, "req", info, func(ctx context.Context, req any) (any, error) {
		return 5, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, res)

	entries := obs.All()
	require.Len(t, entries, 2)
	before := entries[0].ContextMap()
	assert.Equal(t, "calc.Calculator.Add", before["operation"])
	assert.Equal(t, "12345", before["caller"])
	assert.Equal(t, map[string]string{"tenant": "acme"}, before["parameters"])
	assert.Equal(t, []any{"req"}, before["arguments"])
	assert.Equal(t, "returned(5)", entries[1].ContextMap()["outcome"])
}

func TestUnaryCallLogger_ErrorUnchanged(t *testing.T) {
	ic, obs := newObservedInterceptor()
	unary := UnaryCallLogger(ic)
	wantErr := status.Error(codes.InvalidArgument, "bad divisor")

	_, err := unary(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/calc.Calculator/Divide"},
		func(context.Context, any) (any, error) { return nil, wantErr })

	assert.Same(t, wantErr, err)
	after := obs.FilterMessage("call failed").All()
	require.Len(t, after, 1)
	assert.Equal(t, map[string]string{}, after[0].ContextMap()["parameters"])
}

func TestServer_HealthThroughInterceptor(t *testing.T) {
	ic, obs := newObservedInterceptor()
	srv := NewServer("bufnet", ic, zap.NewNop().Sugar())

	lis := bufconn.Listen(1 << 20)
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			t.Errorf("serve: %v", err)
		}
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	ctx := metadata.AppendToOutgoingContext(context.Background(), "userID", "12345")
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	entries := obs.FilterField(zap.String("operation", "grpc.health.v1.Health.Check")).All()
	require.Len(t, entries, 2)
	assert.Equal(t, "12345", entries[0].ContextMap()["caller"])
	assert.Equal(t, "bufconn", entries[0].ContextMap()["target"])
}
