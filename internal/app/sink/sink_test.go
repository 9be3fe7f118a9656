package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aseptimu/call-logger/internal/app/callrecord"
	"github.com/aseptimu/call-logger/internal/app/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func addRecord() *callrecord.CallRecord {
	start := time.Now()
	rec := callrecord.New("call-1",
		callrecord.Operation{Scope: "service.Calculator", Name: "Add", Visibility: callrecord.Public},
		[]any{2, 3}, start)
	rec.Parameters["a"] = "2"
	rec.Caller = "user-1"
	return rec
}

func TestZapSink_EmitBeforeAndAfter(t *testing.T) {
	core, obs := observer.New(zap.InfoLevel)
	s := NewZapSink(core)

	rec := addRecord()
	s.Emit(rec)
	rec.Finish(callrecord.Returned(5), time.Now())
	s.Emit(rec)

	entries := obs.All()
	require.Len(t, entries, 2)

	before := entries[0].ContextMap()
	assert.Equal(t, "call started", entries[0].Message)
	assert.Equal(t, "before", before["phase"])
	assert.Equal(t, "service.Calculator.Add", before["operation"])
	assert.Equal(t, "public", before["visibility"])
	assert.Equal(t, []any{2, 3}, before["arguments"])
	assert.Equal(t, map[string]string{"a": "2"}, before["parameters"])
	assert.Equal(t, "user-1", before["caller"])
	assert.NotContains(t, before, "outcome")

	after := entries[1].ContextMap()
	assert.Equal(t, "call returned", entries[1].Message)
	assert.Equal(t, "returned(5)", after["outcome"])
	assert.Equal(t, "call-1", after["call_id"])
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
}

func TestZapSink_EmitThrew(t *testing.T) {
	core, obs := observer.New(zap.InfoLevel)
	s := NewZapSink(core)

	rec := addRecord()
	rec.Finish(callrecord.Threw(errors.New("division by zero")), time.Now())
	s.Emit(rec)

	entries := obs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "call failed", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "threw(division by zero)", entries[0].ContextMap()["outcome"])
	assert.Equal(t, "division by zero", entries[0].ContextMap()["error"])
}

func TestZapSink_LevelFiltered(t *testing.T) {
	core, obs := observer.New(zap.ErrorLevel)
	s := NewZapSink(core)

	s.Emit(addRecord())
	assert.Zero(t, obs.Len())
	assert.Zero(t, s.Failures())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestZapSink_WriteFailureCounted(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	errCore, errLogs := observer.New(zap.WarnLevel)
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(failingWriter{}), zap.InfoLevel)

	s := NewZapSink(core, WithMetrics(m), WithErrorLogger(zap.New(errCore).Sugar()))

	assert.NotPanics(t, func() { s.Emit(addRecord()) })
	assert.Equal(t, uint64(1), s.Failures())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SinkFailures))
	assert.Equal(t, 1, errLogs.FilterMessage("Failed to write call record").Len())
}

type explosive struct{}

func (explosive) MarshalJSON() ([]byte, error) {
	panic("boom")
}

func TestZapSink_PanicSwallowed(t *testing.T) {
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(&bufioDiscard{}), zap.InfoLevel)
	s := NewZapSink(core)

	rec := addRecord()
	rec.Arguments = []any{explosive{}}

	assert.NotPanics(t, func() { s.Emit(rec) })
	assert.Equal(t, uint64(1), s.Failures())
}

type bufioDiscard struct{}

func (*bufioDiscard) Write(p []byte) (int, error) { return len(p), nil }

func TestNew_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.log")

	s, closeFn, err := New(Config{Format: FormatJSON, Output: path})
	require.NoError(t, err)

	rec := addRecord()
	rec.Finish(callrecord.Returned(5), time.Now())
	s.Emit(rec)
	require.NoError(t, closeFn())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())

	var line map[string]any
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
	assert.Equal(t, "call returned", line["msg"])
	assert.Equal(t, "calllog", line["logger"])
	assert.Equal(t, "returned(5)", line["outcome"])
	assert.Equal(t, []any{2.0, 3.0}, line["arguments"])
}

func TestNew_PlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.log")

	s, closeFn, err := New(Config{Format: FormatPlain, Output: path, Level: "info"})
	require.NoError(t, err)
	s.Emit(addRecord())
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "call started")
	assert.Contains(t, string(data), `"operation": "service.Calculator.Add"`)
}

func TestNew_Errors(t *testing.T) {
	_, _, err := New(Config{Format: "xml", Output: OutputStdout})
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, _, err = New(Config{Format: FormatJSON})
	assert.ErrorIs(t, err, ErrEmptyOutput)

	_, _, err = New(Config{Format: FormatJSON, Output: OutputStdout, Level: "loud"})
	assert.Error(t, err)
}

type fakeStream struct {
	args *redis.XAddArgs
	err  error
}

func (f *fakeStream) XAdd(_ context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.args = a
	return redis.NewStringResult("1-0", f.err)
}

func TestRedisWriter(t *testing.T) {
	fs := &fakeStream{}
	w := NewRedisWriter(fs, "")

	n, err := w.Write([]byte(`{"msg":"call started"}` + "\n"))
	require.NoError(t, err)
	assert.Equal(t, 23, n)
	assert.Equal(t, "calllog", fs.args.Stream)
	assert.Equal(t, `{"msg":"call started"}`, fs.args.Values.(map[string]any)["entry"])
}

func TestRedisWriter_FailureCountedBySink(t *testing.T) {
	fs := &fakeStream{err: errors.New("connection refused")}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(NewRedisWriter(fs, "calls")), zap.InfoLevel)
	s := NewZapSink(core)

	s.Emit(addRecord())
	assert.Equal(t, uint64(1), s.Failures())
	assert.Equal(t, "calls", fs.args.Stream)
}
