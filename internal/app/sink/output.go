package sink

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatPlain = "plain"
	FormatJSON  = "json"

	OutputStdout = "stdout"
	OutputStderr = "stderr"
	OutputRedis  = "redis"
)

var (
	ErrUnknownFormat = errors.New("unknown call log format")
	ErrEmptyOutput   = errors.New("call log output is empty")
)

// Config задаёт формат и место назначения записей вызовов.
type Config struct {
	Format       string
	Output       string
	Level        string
	RedisAddress string
	RedisStream  string
}

// New строит ZapSink по cfg. Возвращаемая функция освобождает вывод.
func New(cfg Config, opts ...Option) (*ZapSink, func() error, error) {
	enc, err := newEncoder(cfg.Format)
	if err != nil {
		return nil, nil, err
	}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if level, err = zapcore.ParseLevel(cfg.Level); err != nil {
			return nil, nil, fmt.Errorf("parse call log level: %w", err)
		}
	}

	ws, closeFn, err := openOutput(cfg)
	if err != nil {
		return nil, nil, err
	}

	s := NewZapSink(zapcore.NewCore(enc, ws, level), opts...)
	return s, func() error {
		_ = s.Sync()
		return closeFn()
	}, nil
}

func newEncoder(format string) (zapcore.Encoder, error) {
	switch strings.ToLower(format) {
	case FormatPlain, "":
		return zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), nil
	case FormatJSON:
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func openOutput(cfg Config) (zapcore.WriteSyncer, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Output {
	case "":
		return nil, nil, ErrEmptyOutput
	case OutputStdout:
		return zapcore.Lock(os.Stdout), noop, nil
	case OutputStderr:
		return zapcore.Lock(os.Stderr), noop, nil
	case OutputRedis:
		client := redis.NewClient(&redis.Options{
			Addr:        cfg.RedisAddress,
			DialTimeout: time.Second,
		})
		return zapcore.AddSync(NewRedisWriter(client, cfg.RedisStream)), client.Close, nil
	default:
		ws, closeFile, err := zap.Open(cfg.Output)
		if err != nil {
			return nil, nil, fmt.Errorf("open call log output %q: %w", cfg.Output, err)
		}
		return ws, func() error {
			closeFile()
			return nil
		}, nil
	}
}
