package grpc

import (
	"context"
	"strings"

	"github.com/aseptimu/call-logger/internal/app/callrecord"
	"github.com/aseptimu/call-logger/internal/app/interceptor"
	"github.com/aseptimu/call-logger/internal/app/reqctx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
)

// callerMetadataKey - ключ metadata с идентификатором вызывающего.
const callerMetadataKey = "userid"

// UnaryCallLogger возвращает серверный unary-перехватчик, который логирует
// каждый вызов через ic. Параметрами вызова считаются значения metadata.
func UnaryCallLogger(ic *interceptor.Interceptor) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		rc := requestFromContext(ctx)
		rc.Operation = operationFromMethod(info.FullMethod)
		ctx = reqctx.NewContext(ctx, rc)

		return ic.Call(ctx, rc.Operation, []any{req}, func(ctx context.Context) (any, error) {
			return handler(ctx, req)
		})
	}
}

func requestFromContext(ctx context.Context) *reqctx.Request {
	rc := &reqctx.Request{Params: make(map[string]string)}

	if md, ok := metadata.FromIncomingContext(ctx); ok {
		for key, values := range md {
			if len(values) == 0 || strings.HasPrefix(key, ":") || strings.HasPrefix(key, "grpc-") {
				continue
			}
			if key == callerMetadataKey {
				rc.Caller = values[0]
				continue
			}
			rc.Params[key] = values[0]
		}
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		rc.Target = p.Addr.String()
	}
	return rc
}

// operationFromMethod разбирает "/grpc.health.v1.Health/Check".
func operationFromMethod(fullMethod string) callrecord.Operation {
	method := strings.TrimPrefix(fullMethod, "/")
	op := callrecord.Operation{Name: method}
	if i := strings.LastIndex(method, "/"); i >= 0 {
		op.Scope, op.Name = method[:i], method[i+1:]
	}
	op.Visibility = callrecord.VisibilityOf(op.Name)
	return op
}
