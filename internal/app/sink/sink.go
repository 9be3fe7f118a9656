// Package sink сериализует записи вызовов и пишет их в настроенный вывод.
// Журнал не роняет вызывающего: ошибки записи и паники поглощаются и
// учитываются.
package sink

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/aseptimu/call-logger/internal/app/callrecord"
	"github.com/aseptimu/call-logger/internal/app/metrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Sink принимает записи вызовов. Каждый вызов Emit получает отдельную
// запись, которую перехватчик больше не изменяет, так что её можно хранить.
type Sink interface {
	Emit(rec *callrecord.CallRecord)
}

const loggerName = "calllog"

// ZapSink пишет записи через zapcore.Core.
type ZapSink struct {
	core     zapcore.Core
	metrics  *metrics.Metrics
	logger   *zap.SugaredLogger
	failures atomic.Uint64
}

// Option настраивает ZapSink.
type Option func(*ZapSink)

// WithMetrics учитывает неудачные записи в m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ZapSink) { s.metrics = m }
}

// WithErrorLogger сообщает о неудачных записях в logger.
func WithErrorLogger(logger *zap.SugaredLogger) Option {
	return func(s *ZapSink) { s.logger = logger }
}

// NewZapSink создаёт журнал поверх core.
func NewZapSink(core zapcore.Core, opts ...Option) *ZapSink {
	s := &ZapSink{core: core}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Emit пишет rec. Не паникует и не возвращает ошибок.
func (s *ZapSink) Emit(rec *callrecord.CallRecord) {
	defer func() {
		if r := recover(); r != nil {
			s.fail(fmt.Errorf("sink panic: %v", r))
		}
	}()

	if rec == nil {
		return
	}

	ent := zapcore.Entry{
		LoggerName: loggerName,
		Time:       time.Now(),
		Level:      levelOf(rec),
		Message:    messageOf(rec),
	}
	if !s.core.Enabled(ent.Level) {
		return
	}
	if err := s.core.Write(ent, Fields(rec)); err != nil {
		s.fail(err)
	}
}

// Failures возвращает число записей, которые не удалось записать.
func (s *ZapSink) Failures() uint64 {
	return s.failures.Load()
}

// Sync сбрасывает буферы вывода.
func (s *ZapSink) Sync() error {
	return s.core.Sync()
}

func (s *ZapSink) fail(err error) {
	s.failures.Add(1)
	s.metrics.RecordSinkFailure()
	if s.logger != nil {
		s.logger.Warnw("Failed to write call record", "error", err)
	}
}

func levelOf(rec *callrecord.CallRecord) zapcore.Level {
	if rec.Phase == callrecord.After && rec.Outcome.Kind == callrecord.ThrewKind {
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

func messageOf(rec *callrecord.CallRecord) string {
	if rec.Phase == callrecord.Before {
		return "call started"
	}
	if rec.Outcome.Kind == callrecord.ThrewKind {
		return "call failed"
	}
	return "call returned"
}

// Fields превращает rec в поля структурного лога.
func Fields(rec *callrecord.CallRecord) []zapcore.Field {
	fields := []zapcore.Field{
		zap.String("call_id", rec.ID),
		zap.String("phase", string(rec.Phase)),
		zap.String("operation", rec.Operation.Qualified()),
		zap.String("visibility", string(rec.Operation.Visibility)),
		zap.Any("arguments", rec.Arguments),
		zap.Any("parameters", rec.Parameters),
	}

	optional := []struct{ key, val string }{
		{"caller", rec.Caller},
		{"target", rec.Target},
		{"trace_id", rec.TraceID},
		{"span_id", rec.SpanID},
	}
	for _, o := range optional {
		if o.val != "" {
			fields = append(fields, zap.String(o.key, o.val))
		}
	}

	if rec.Phase == callrecord.After {
		fields = append(fields,
			zap.String("outcome", rec.Outcome.String()),
			zap.Duration("duration", rec.Duration),
		)
		if rec.Outcome.Err != nil {
			fields = append(fields, zap.NamedError("error", rec.Outcome.Err))
		}
	}
	return fields
}
