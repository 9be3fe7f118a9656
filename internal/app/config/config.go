// Package config собирает настройки сервиса из флагов командной строки и
// переменных окружения. Переменные окружения имеют приоритет над флагами.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/aseptimu/call-logger/internal/app/callrecord"
	"github.com/aseptimu/call-logger/internal/app/sink"
	"github.com/caarlos0/env/v11"
)

var (
	ErrEmptyInclude   = errors.New("at least one include pattern is required")
	ErrEmptyAddress   = errors.New("server address is empty")
	ErrEmptyRedisAddr = errors.New("redis address is required for redis output")
)

type ConfigType struct {
	ServerAddress     string   `env:"SERVER_ADDRESS"`
	GRPCServerAddress string   `env:"GRPC_SERVER_ADDRESS"`
	LogLevel          string   `env:"LOG_LEVEL"`
	CallLogFormat     string   `env:"CALL_LOG_FORMAT"`
	CallLogOutput     string   `env:"CALL_LOG_OUTPUT"`
	CallLogInclude    []string `env:"CALL_LOG_INCLUDE" envSeparator:","`
	CallLogVisibility []string `env:"CALL_LOG_VISIBILITY" envSeparator:","`
	RedisAddress      string   `env:"REDIS_ADDRESS"`
	RedisStream       string   `env:"REDIS_STREAM"`
	SecretKey         string   `env:"SECRET_KEY"`
}

// NewConfig разбирает args (обычно os.Args[1:]) и накладывает поверх
// переменные окружения.
func NewConfig(args []string) (*ConfigType, error) {
	config := ConfigType{}

	fs := flag.NewFlagSet("calllogd", flag.ContinueOnError)
	fs.StringVar(&config.ServerAddress, "a", "localhost:8080", "HTTP server address")
	fs.StringVar(&config.GRPCServerAddress, "g", "localhost:3200", "gRPC server address")
	fs.StringVar(&config.LogLevel, "l", "info", "application log level")
	fs.StringVar(&config.CallLogFormat, "format", sink.FormatPlain, "call log format: plain or json")
	fs.StringVar(&config.CallLogOutput, "output", sink.OutputStdout, "call log output: stdout, stderr, redis or file path")
	include := fs.String("include", "**", "comma separated operation patterns to log")
	visibility := fs.String("visibility", string(callrecord.Public), "comma separated visibilities to log")
	fs.StringVar(&config.RedisAddress, "redis", "localhost:6379", "redis address for redis output")
	fs.StringVar(&config.RedisStream, "stream", sink.DefaultRedisStream, "redis stream for redis output")
	fs.StringVar(&config.SecretKey, "k", "", "JWT secret key")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	config.CallLogInclude = splitList(*include)
	config.CallLogVisibility = splitList(*visibility)

	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации из env: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate проверяет согласованность настроек.
func (c *ConfigType) Validate() error {
	if c.ServerAddress == "" || c.GRPCServerAddress == "" {
		return ErrEmptyAddress
	}
	switch c.CallLogFormat {
	case sink.FormatPlain, sink.FormatJSON:
	default:
		return fmt.Errorf("%w: %q", sink.ErrUnknownFormat, c.CallLogFormat)
	}
	if c.CallLogOutput == "" {
		return sink.ErrEmptyOutput
	}
	if c.CallLogOutput == sink.OutputRedis && c.RedisAddress == "" {
		return ErrEmptyRedisAddr
	}
	if len(c.CallLogInclude) == 0 {
		return ErrEmptyInclude
	}
	if _, err := c.Visibilities(); err != nil {
		return err
	}
	return nil
}

// Visibilities возвращает разобранный список видимостей.
func (c *ConfigType) Visibilities() ([]callrecord.Visibility, error) {
	vis := make([]callrecord.Visibility, 0, len(c.CallLogVisibility))
	for _, s := range c.CallLogVisibility {
		v, err := callrecord.ParseVisibility(s)
		if err != nil {
			return nil, err
		}
		vis = append(vis, v)
	}
	return vis, nil
}

// SinkConfig возвращает настройки журнала вызовов.
func (c *ConfigType) SinkConfig() sink.Config {
	return sink.Config{
		Format:       c.CallLogFormat,
		Output:       c.CallLogOutput,
		RedisAddress: c.RedisAddress,
		RedisStream:  c.RedisStream,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
