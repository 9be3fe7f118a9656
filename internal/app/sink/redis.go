package sink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// StreamAdder - часть клиента redis, нужная RedisWriter.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

const (
	DefaultRedisStream = "calllog"
	defaultMaxLen      = 100000
	defaultRedisWrites = 500 * time.Millisecond
)

// RedisWriter добавляет каждую закодированную запись в поток Redis.
type RedisWriter struct {
	client  StreamAdder
	stream  string
	maxLen  int64
	timeout time.Duration
}

// NewRedisWriter создаёт писателя в поток stream. Пустое имя заменяется
// на "calllog".
func NewRedisWriter(client StreamAdder, stream string) *RedisWriter {
	if stream == "" {
		stream = DefaultRedisStream
	}
	return &RedisWriter{
		client:  client,
		stream:  stream,
		maxLen:  defaultMaxLen,
		timeout: defaultRedisWrites,
	}
}

func (w *RedisWriter) Write(p []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	err := w.client.XAdd(ctx, &redis.XAddArgs{
		Stream: w.stream,
		MaxLen: w.maxLen,
		Approx: true,
		Values: map[string]any{"entry": strings.TrimRight(string(p), "\n")},
	}).Err()
	if err != nil {
		return 0, fmt.Errorf("xadd %s: %w", w.stream, err)
	}
	return len(p), nil
}
