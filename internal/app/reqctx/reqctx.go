// Package reqctx переносит данные запроса через context.Context и
// извлекает их для записей вызовов.
package reqctx

import (
	"context"
	"maps"
	"mime"
	"net/http"

	"github.com/aseptimu/call-logger/internal/app/callrecord"
	"go.opentelemetry.io/otel/trace"
)

type ctxKey struct{}

// Request - данные запроса, видимые перехваченным вызовам.
type Request struct {
	Params    map[string]string
	Caller    string
	Target    string
	Operation callrecord.Operation
}

// NewContext возвращает копию ctx, содержащую req.
func NewContext(ctx context.Context, req *Request) context.Context {
	return context.WithValue(ctx, ctxKey{}, req)
}

// FromContext возвращает запрос из ctx, если он там есть.
func FromContext(ctx context.Context) (*Request, bool) {
	if ctx == nil {
		return nil, false
	}
	req, ok := ctx.Value(ctxKey{}).(*Request)
	return req, ok && req != nil
}

// FromHTTP собирает параметры строки запроса и urlencoded-формы r.
// Для каждого параметра сохраняется только первое значение.
func FromHTTP(r *http.Request) *Request {
	params := make(map[string]string)
	for name, values := range r.URL.Query() {
		if len(values) > 0 {
			params[name] = values[0]
		}
	}

	if isForm(r) && r.ParseForm() == nil {
		for name, values := range r.PostForm {
			if _, seen := params[name]; !seen && len(values) > 0 {
				params[name] = values[0]
			}
		}
	}

	return &Request{Params: params, Target: r.RemoteAddr}
}

func isForm(r *http.Request) bool {
	if r.Body == nil || r.Method == http.MethodGet {
		return false
	}
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/x-www-form-urlencoded"
}

// Extraction - то, что Extractor нашёл в контексте.
type Extraction struct {
	Params    map[string]string
	Caller    string
	Target    string
	Operation callrecord.Operation
	TraceID   string
	SpanID    string
}

// Extractor читает данные текущего запроса. Нулевое значение готово к работе.
type Extractor struct{}

// Extract возвращает данные запроса из ctx. Если запроса нет, ok равен false,
// а Params - пустая карта, но не nil.
func (Extractor) Extract(ctx context.Context) (ex Extraction, ok bool) {
	ex.Params = map[string]string{}
	if ctx == nil {
		return ex, false
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		ex.TraceID = sc.TraceID().String()
		ex.SpanID = sc.SpanID().String()
	}

	req, ok := FromContext(ctx)
	if !ok {
		return ex, false
	}

	maps.Copy(ex.Params, req.Params)
	ex.Caller = req.Caller
	ex.Target = req.Target
	ex.Operation = req.Operation
	return ex, true
}
