package config

import (
	"testing"

	"github.com/aseptimu/call-logger/internal/app/callrecord"
	"github.com/aseptimu/call-logger/internal/app/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.ServerAddress)
	assert.Equal(t, "localhost:3200", cfg.GRPCServerAddress)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, sink.FormatPlain, cfg.CallLogFormat)
	assert.Equal(t, sink.OutputStdout, cfg.CallLogOutput)
	assert.Equal(t, []string{"**"}, cfg.CallLogInclude)
	assert.Equal(t, []string{"public"}, cfg.CallLogVisibility)
	assert.Equal(t, "calllog", cfg.RedisStream)
	assert.Empty(t, cfg.SecretKey)
}

func TestNewConfig_Flags(t *testing.T) {
	cfg, err := NewConfig([]string{
		"-a", ":9090",
		"-format", "json",
		"-include", "service.**, handlers.*.*",
		"-visibility", "public,private",
	})
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ServerAddress)
	assert.Equal(t, sink.FormatJSON, cfg.CallLogFormat)
	assert.Equal(t, []string{"service.**", "handlers.*.*"}, cfg.CallLogInclude)

	vis, err := cfg.Visibilities()
	require.NoError(t, err)
	assert.Equal(t, []callrecord.Visibility{callrecord.Public, callrecord.Private}, vis)
}

func TestNewConfig_EnvOverridesFlags(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":7070")
	t.Setenv("CALL_LOG_OUTPUT", "stderr")
	t.Setenv("CALL_LOG_INCLUDE", "grpc.**,service.**")

	cfg, err := NewConfig([]string{"-a", ":9090", "-output", "stdout"})
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.ServerAddress)
	assert.Equal(t, sink.OutputStderr, cfg.CallLogOutput)
	assert.Equal(t, []string{"grpc.**", "service.**"}, cfg.CallLogInclude)

	sc := cfg.SinkConfig()
	assert.Equal(t, sink.OutputStderr, sc.Output)
	assert.Equal(t, "localhost:6379", sc.RedisAddress)
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown format", args: []string{"-format", "xml"}},
		{name: "empty output", args: []string{"-output", ""}},
		{name: "empty include", args: []string{"-include", " , "}},
		{name: "bad visibility", args: []string{"-visibility", "protected"}},
		{name: "redis without address", args: []string{"-output", "redis", "-redis", ""}},
		{name: "unknown flag", args: []string{"-z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestValidate_Errors(t *testing.T) {
	cfg := ConfigType{
		ServerAddress:     ":8080",
		GRPCServerAddress: ":3200",
		CallLogFormat:     sink.FormatJSON,
		CallLogOutput:     sink.OutputRedis,
		CallLogInclude:    []string{"**"},
	}
	assert.ErrorIs(t, cfg.Validate(), ErrEmptyRedisAddr)

	cfg.CallLogOutput = sink.OutputStdout
	cfg.CallLogFormat = "yaml"
	assert.ErrorIs(t, cfg.Validate(), sink.ErrUnknownFormat)

	cfg.CallLogFormat = sink.FormatPlain
	cfg.ServerAddress = ""
	assert.ErrorIs(t, cfg.Validate(), ErrEmptyAddress)
}
