package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/singularity/internal/domain"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	config := DefaultConfig()
	config.TestFyneApp = test.NewTempApp(t)
	config.Seed = 7
	return config
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "singularity.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "com.singularity.app", config.AppID)
	assert.Equal(t, "Singularity", config.AppName)
	assert.Equal(t, VoiceMock, config.Voice)
	assert.Equal(t, 120, config.TickRate)
	assert.Equal(t, 3, config.UpdateInterval)
	assert.Equal(t, 50, config.BatchSize)
	assert.True(t, config.AdaptiveQuality)
	assert.Zero(t, config.FrameRate)
	assert.NoError(t, config.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"empty app id", func(c *Config) { c.AppID = "" }, "app_id"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log.format"},
		{"tiny window", func(c *Config) { c.WindowWidth = 100 }, "window"},
		{"negative fps", func(c *Config) { c.FrameRate = -1 }, "engine.fps"},
		{"fps too high", func(c *Config) { c.FrameRate = 500 }, "engine.fps"},
		{"zero tick rate", func(c *Config) { c.TickRate = 0 }, "engine.tick_rate"},
		{"negative stride", func(c *Config) { c.UpdateInterval = -3 }, "engine.update_interval"},
		{"negative batch", func(c *Config) { c.BatchSize = -1 }, "engine.batch_size"},
		{"zero level interval", func(c *Config) { c.LevelInterval = 0 }, "voice.level_interval"},
		{"unknown voice", func(c *Config) { c.Voice = "sip" }, "voice.source"},
		{"file voice without file", func(c *Config) { c.Voice = VoiceFile }, "voice.file"},
		{"zero pixel scale", func(c *Config) { c.PixelScale = 0 }, "terminal.pixel_scale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(&config)

			err := config.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
app_name: Event Horizon
log:
  level: debug
  format: json
window:
  width: 800
  height: 600
engine:
  seed: 42
  fps: 30
  update_interval: 5
  adaptive_quality: false
voice:
  level_interval: 100ms
terminal:
  pixel_scale: 1
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Event Horizon", config.AppName)
	assert.Equal(t, "com.singularity.app", config.AppID, "absent keys keep defaults")
	assert.Equal(t, slog.LevelDebug, config.LogLevel)
	assert.Equal(t, "json", config.LogFormat)
	assert.Equal(t, float32(800), config.WindowWidth)
	assert.Equal(t, float32(600), config.WindowHeight)
	assert.Equal(t, int64(42), config.Seed)
	assert.Equal(t, 30, config.FrameRate)
	assert.Equal(t, 5, config.UpdateInterval)
	assert.Equal(t, 50, config.BatchSize)
	assert.False(t, config.AdaptiveQuality)
	assert.Equal(t, 100*time.Millisecond, config.LevelInterval)
	assert.Equal(t, 1.0, config.PixelScale)
}

func TestLoadConfig_Empty(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().AppID, config.AppID)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "engine:\n  warp: 9\n"))
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})

	t.Run("bad level", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "log:\n  level: loud\n"))
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "log.level", verr.Field)
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "voice:\n  source: file\n"))
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})
}

func TestNewApplication(t *testing.T) {
	app, err := NewApplication(testConfig(t))
	require.NoError(t, err)
	require.NotNil(t, app)

	// Verify all services were created
	session, preference := app.GetServices()
	assert.NotNil(t, session)
	assert.NotNil(t, preference)
	assert.Equal(t, domain.VoiceIdle, session.State().Status)

	assert.NotNil(t, app.GetEventBus())
	assert.NotNil(t, app.GetFyneApp())
	assert.NotNil(t, app.GetPresenter())
	assert.NotNil(t, app.GetMainWindow())

	require.NotNil(t, app.GetEngine())
	assert.Zero(t, app.GetEngine().Frames(), "the engine starts with Run")

	assert.NoError(t, app.Shutdown())
}

func TestNewApplication_InvalidConfig(t *testing.T) {
	config := testConfig(t)
	config.TickRate = 0

	_, err := NewApplication(config)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestNewApplication_MissingVoiceFile(t *testing.T) {
	config := testConfig(t)
	config.Voice = VoiceFile
	config.VoiceFile = filepath.Join(t.TempDir(), "absent.wav")

	_, err := NewApplication(config)
	require.Error(t, err)
	var serr *domain.SourceError
	assert.True(t, errors.As(err, &serr))
}

func TestNewApplication_AppliesSavedQuality(t *testing.T) {
	config := testConfig(t)

	first, err := NewApplication(config)
	require.NoError(t, err)
	low := domain.TierLow
	require.NoError(t, first.GetPresenter().OnQualitySelected(&low))
	require.NoError(t, first.Shutdown())

	second, err := NewApplication(config)
	require.NoError(t, err)
	defer second.Shutdown()

	assert.Equal(t, domain.TierLow, second.GetEngine().Profile().Tier)
}

func TestApplicationLifecycle(t *testing.T) {
	config := testConfig(t)
	config.LogFile = filepath.Join(t.TempDir(), "singularity.log")

	// Create
	app, err := NewApplication(config)
	require.NoError(t, err)

	// Run would normally block, but we're not calling it in test

	// Shutdown
	assert.NoError(t, app.Shutdown())

	// Shutdown again should not panic
	assert.NoError(t, app.Shutdown())

	logs, err := os.ReadFile(config.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(logs), "application shutdown complete")
}

func TestRunTerminal(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(24, 8)
	defer screen.Fini()

	config := DefaultConfig()
	config.Seed = 3

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.NoError(t, RunTerminal(ctx, config, screen))

	r, _, _, _ := screen.GetContent(12, 4)
	assert.Equal(t, '▀', r, "frames reached the screen")
}

func TestRunTerminal_InvalidConfig(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()

	config := DefaultConfig()
	config.PixelScale = -1
	assert.ErrorIs(t, RunTerminal(context.Background(), config, screen), domain.ErrInvalidConfig)
}

func TestVersionInfo(t *testing.T) {
	info := VersionInfo{Version: "1.0.0", GitCommit: "abc", BuildTime: "now"}
	assert.Equal(t, "Singularity 1.0.0 (commit: abc, built: now)", info.FullString())

	info.GitTag = "v1.0.1"
	assert.Contains(t, info.FullString(), "v1.0.1")

	assert.Equal(t, "Singularity dev (commit: unknown, built: unknown)", VersionInfo{Version: "dev"}.FullString())
}

func TestVersionInfo_WithBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		GoVersion: "go1.25.0",
		Main:      debug.Module{Version: "v0.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	info := VersionInfo{Version: "dev"}.withBuildInfo(bi)
	assert.Equal(t, "v0.3.0", info.Version)
	assert.Equal(t, "Singularity v0.3.0 (commit: 0123456-dirty, built: 2026-10-01T12:00:00Z, go1.25.0)", info.FullString())

	// ldflags values win over the embedded stamp
	info = VersionInfo{Version: "1.2.0", GitCommit: "feedbee"}.withBuildInfo(bi)
	assert.Equal(t, "1.2.0", info.Version)
	assert.Equal(t, "feedbee", info.GitCommit)

	bi.Main.Version = "(devel)"
	assert.Equal(t, "dev", VersionInfo{Version: "dev"}.withBuildInfo(bi).Version)
}
