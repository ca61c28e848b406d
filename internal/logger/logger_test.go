package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"Warn":    slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestDefaultConfig_Env(t *testing.T) {
	t.Setenv("SINGULARITY_LOG_LEVEL", "debug")
	assert.Equal(t, slog.LevelDebug, DefaultConfig().Level)

	t.Setenv("SINGULARITY_LOG_LEVEL", "nonsense")
	assert.Equal(t, slog.LevelInfo, DefaultConfig().Level)
}

func TestNewLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: slog.LevelInfo, Format: "json", Output: &buf})

	log.Info("engine started", slog.Int("particles", 350))
	log.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, `"msg":"engine started"`)
	assert.Contains(t, out, `"particles":350`)
	assert.NotContains(t, out, "hidden")
}

func TestNop(t *testing.T) {
	// Must not panic and must not be enabled at any level
	log := Nop()
	log.Error("dropped")
	assert.False(t, log.Enabled(nil, slog.LevelError))
}
