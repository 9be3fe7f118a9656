// Package interceptor оборачивает вызовы операций и передаёт журналу запись
// до и после каждого отобранного вызова.
//
// Перехватчик прозрачен: результат, ошибка и паника обёрнутой операции
// доходят до вызывающего без изменений. Сбой журнала их не подменяет.
package interceptor

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/aseptimu/call-logger/internal/app/callrecord"
	"github.com/aseptimu/call-logger/internal/app/metrics"
	"github.com/aseptimu/call-logger/internal/app/reqctx"
	"github.com/aseptimu/call-logger/internal/app/sink"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Func - операция, выполняемая под перехватчиком.
type Func func(ctx context.Context) (any, error)

// ContextExtractor читает данные текущего запроса из контекста.
type ContextExtractor interface {
	Extract(ctx context.Context) (reqctx.Extraction, bool)
}

// PanicError - ошибка исхода операции, завершившейся паникой.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrGoexit - ошибка исхода операции, вызвавшей runtime.Goexit.
var ErrGoexit = errors.New("goroutine exited")

// Interceptor записывает отобранные вызовы в журнал.
type Interceptor struct {
	sink      sink.Sink
	extractor ContextExtractor
	selector  *Selector
	metrics   *metrics.Metrics
	logger    *zap.SugaredLogger
	now       func() time.Time
	newID     func() string
}

// Option настраивает Interceptor.
type Option func(*Interceptor)

// WithSelector ограничивает журнал операциями, подходящими под s.
func WithSelector(s *Selector) Option {
	return func(ic *Interceptor) { ic.selector = s }
}

// WithExtractor заменяет извлекатель данных запроса.
func WithExtractor(e ContextExtractor) Option {
	return func(ic *Interceptor) { ic.extractor = e }
}

// WithMetrics считает вызовы и их длительность в m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(ic *Interceptor) { ic.metrics = m }
}

// WithLogger задаёт логгер для собственных сбоев перехватчика.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(ic *Interceptor) { ic.logger = l }
}

// WithClock подменяет time.Now.
func WithClock(now func() time.Time) Option {
	return func(ic *Interceptor) { ic.now = now }
}

type nopSink struct{}

func (nopSink) Emit(*callrecord.CallRecord) {}

// New создаёт Interceptor, пишущий в s. По умолчанию отбираются все
// публичные операции.
func New(s sink.Sink, opts ...Option) *Interceptor {
	if s == nil {
		s = nopSink{}
	}
	ic := &Interceptor{
		sink:      s,
		extractor: reqctx.Extractor{},
		selector:  DefaultSelector(),
		logger:    zap.NewNop().Sugar(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(ic)
	}
	return ic
}

// Call вызывает fn и возвращает ровно то, что вернула fn. Для отобранной
// операции в журнал уходят одна запись до вызова и одна после. Пустая op
// берётся из текущего запроса, если он есть.
func (ic *Interceptor) Call(ctx context.Context, op callrecord.Operation, args []any, fn Func) (result any, err error) {
	ex := ic.extract(ctx)
	if op.IsZero() {
		op = ex.Operation
	}
	if !ic.selector.Match(op) {
		return fn(ctx)
	}

	rec := callrecord.New(ic.newID(), op, args, ic.now())
	fill(rec, ex)
	before := *rec
	ic.emit(&before)

	completed := false
	defer func() {
		if completed {
			return
		}
		r := recover()
		var cause error = ErrGoexit
		if r != nil {
			cause = &PanicError{Value: r}
		}
		ic.finish(ctx, rec, callrecord.Threw(cause))
		if r != nil {
			panic(r)
		}
	}()

	result, err = fn(ctx)
	completed = true

	if err != nil {
		ic.finish(ctx, rec, callrecord.Threw(err))
	} else {
		ic.finish(ctx, rec, callrecord.Returned(result))
	}
	return result, err
}

// Invoke - типизированная форма Call.
func Invoke[R any](ctx context.Context, ic *Interceptor, op callrecord.Operation, fn func(context.Context) (R, error), args ...any) (R, error) {
	if ic == nil {
		return fn(ctx)
	}
	res, err := ic.Call(ctx, op, args, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	r, _ := res.(R)
	return r, err
}

func (ic *Interceptor) finish(ctx context.Context, rec *callrecord.CallRecord, outcome callrecord.Outcome) {
	// Запись до вызова делит карту параметров с rec.
	params := make(map[string]string, len(rec.Parameters))
	maps.Copy(params, rec.Parameters)
	maps.Copy(params, ic.extract(ctx).Params)
	rec.Parameters = params

	rec.Finish(outcome, ic.now())
	ic.metrics.RecordCall(outcome.Label(), rec.Duration)
	ic.emit(rec)
}

func (ic *Interceptor) extract(ctx context.Context) (ex reqctx.Extraction) {
	defer func() {
		if r := recover(); r != nil {
			ic.logger.Warnw("Failed to extract request context", "panic", r)
			ex = reqctx.Extraction{Params: map[string]string{}}
		}
	}()

	ex, _ = ic.extractor.Extract(ctx)
	if ex.Params == nil {
		ex.Params = map[string]string{}
	}
	return ex
}

func (ic *Interceptor) emit(rec *callrecord.CallRecord) {
	defer func() {
		if r := recover(); r != nil {
			ic.metrics.RecordSinkFailure()
			ic.logger.Warnw("Call record sink panicked",
				"operation", rec.Operation.Qualified(),
				"phase", rec.Phase,
				"panic", r,
			)
		}
	}()

	ic.sink.Emit(rec)
}

func fill(rec *callrecord.CallRecord, ex reqctx.Extraction) {
	rec.Parameters = ex.Params
	rec.Caller = ex.Caller
	rec.Target = ex.Target
	rec.TraceID = ex.TraceID
	rec.SpanID = ex.SpanID
}
