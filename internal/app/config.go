package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"gopkg.in/yaml.v3"

	"github.com/tejashwikalptaru/singularity/internal/adapter/ui/term"
	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/logger"
)

// Voice sources.
const (
	VoiceMock = "mock"
	VoiceFile = "file"
)

const (
	minWindowWidth  = 200
	minWindowHeight = 150
	maxFrameRate    = 240
)

// Config holds application configuration.
type Config struct {
	// AppID is the unique application identifier
	AppID string

	// AppName is the display name
	AppName string

	// LogLevel controls logging verbosity
	LogLevel slog.Level

	// LogFormat is "text" or "json"
	LogFormat string

	// LogFile receives the logs instead of stderr when set.
	// The terminal viewer discards logs without one.
	LogFile string

	// WindowWidth and WindowHeight are the initial window size.
	// A saved size takes precedence.
	WindowWidth  float32
	WindowHeight float32

	// Seed drives every random number; 0 seeds from the clock
	Seed int64

	// FrameRate overrides the quality profile's frame-rate cap when positive
	FrameRate int

	// TickRate is the frame scheduler frequency in Hz
	TickRate int

	// UpdateInterval is the distortion grid column stride
	UpdateInterval int

	// BatchSize is the star and particle iteration window
	BatchSize int

	// AdaptiveQuality lowers the quality tier when frames run late
	AdaptiveQuality bool

	// LevelInterval is the period of the visualizer level updates during a call
	LevelInterval time.Duration

	// Voice selects the session: VoiceMock or VoiceFile
	Voice string

	// VoiceFile is the WAV file streamed when Voice is VoiceFile
	VoiceFile string

	// PixelScale is the terminal viewer's device pixel ratio
	PixelScale float64

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	loggerCfg := logger.DefaultConfig()
	return Config{
		AppID:           "com.singularity.app",
		AppName:         "Singularity",
		LogLevel:        loggerCfg.Level,
		LogFormat:       loggerCfg.Format,
		WindowWidth:     1024,
		WindowHeight:    768,
		TickRate:        120,
		UpdateInterval:  3,
		BatchSize:       50,
		AdaptiveQuality: true,
		LevelInterval:   50 * time.Millisecond,
		Voice:           VoiceMock,
		PixelScale:      term.DefaultPixelScale,
	}
}

// fileConfig mirrors the YAML layout. Absent keys keep the current value.
type fileConfig struct {
	AppID   *string `yaml:"app_id"`
	AppName *string `yaml:"app_name"`
	Log     struct {
		Level  *string `yaml:"level"`
		Format *string `yaml:"format"`
		File   *string `yaml:"file"`
	} `yaml:"log"`
	Window struct {
		Width  *float32 `yaml:"width"`
		Height *float32 `yaml:"height"`
	} `yaml:"window"`
	Engine struct {
		Seed            *int64 `yaml:"seed"`
		FPS             *int   `yaml:"fps"`
		TickRate        *int   `yaml:"tick_rate"`
		UpdateInterval  *int   `yaml:"update_interval"`
		BatchSize       *int   `yaml:"batch_size"`
		AdaptiveQuality *bool  `yaml:"adaptive_quality"`
	} `yaml:"engine"`
	Voice struct {
		Source        *string        `yaml:"source"`
		File          *string        `yaml:"file"`
		LevelInterval *time.Duration `yaml:"level_interval"`
	} `yaml:"voice"`
	Terminal struct {
		PixelScale *float64 `yaml:"pixel_scale"`
	} `yaml:"terminal"`
}

// LoadConfig reads a YAML file over DefaultConfig. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return config, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	var fc fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("failed to parse config %s: %w", path, errors.Join(domain.ErrInvalidConfig, err))
	}
	if err := fc.apply(&config); err != nil {
		return config, err
	}
	return config, config.Validate()
}

func (fc *fileConfig) apply(c *Config) error {
	set(&c.AppID, fc.AppID)
	set(&c.AppName, fc.AppName)
	if fc.Log.Level != nil {
		level, err := logger.ParseLevel(*fc.Log.Level)
		if err != nil {
			return domain.NewValidationError("log.level", *fc.Log.Level, "unknown log level")
		}
		c.LogLevel = level
	}
	set(&c.LogFormat, fc.Log.Format)
	set(&c.LogFile, fc.Log.File)
	set(&c.WindowWidth, fc.Window.Width)
	set(&c.WindowHeight, fc.Window.Height)
	set(&c.Seed, fc.Engine.Seed)
	set(&c.FrameRate, fc.Engine.FPS)
	set(&c.TickRate, fc.Engine.TickRate)
	set(&c.UpdateInterval, fc.Engine.UpdateInterval)
	set(&c.BatchSize, fc.Engine.BatchSize)
	set(&c.AdaptiveQuality, fc.Engine.AdaptiveQuality)
	set(&c.Voice, fc.Voice.Source)
	set(&c.VoiceFile, fc.Voice.File)
	set(&c.LevelInterval, fc.Voice.LevelInterval)
	set(&c.PixelScale, fc.Terminal.PixelScale)
	return nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Validate checks every field and returns the first *domain.ValidationError.
func (c Config) Validate() error {
	switch {
	case c.AppID == "":
		return domain.NewValidationError("app_id", c.AppID, "must not be empty")
	case c.LogFormat != "text" && c.LogFormat != "json":
		return domain.NewValidationError("log.format", c.LogFormat, "must be text or json")
	case c.WindowWidth < minWindowWidth || c.WindowHeight < minWindowHeight:
		return domain.NewValidationError("window", fmt.Sprintf("%gx%g", c.WindowWidth, c.WindowHeight),
			fmt.Sprintf("must be at least %dx%d", minWindowWidth, minWindowHeight))
	case c.FrameRate < 0 || c.FrameRate > maxFrameRate:
		return domain.NewValidationError("engine.fps", c.FrameRate, fmt.Sprintf("must be between 0 and %d", maxFrameRate))
	case c.TickRate <= 0:
		return domain.NewValidationError("engine.tick_rate", c.TickRate, "must be positive")
	case c.UpdateInterval < 0:
		return domain.NewValidationError("engine.update_interval", c.UpdateInterval, "must not be negative")
	case c.BatchSize < 0:
		return domain.NewValidationError("engine.batch_size", c.BatchSize, "must not be negative")
	case c.LevelInterval <= 0:
		return domain.NewValidationError("voice.level_interval", c.LevelInterval, "must be positive")
	case c.Voice != VoiceMock && c.Voice != VoiceFile:
		return domain.NewValidationError("voice.source", c.Voice, "must be mock or file")
	case c.Voice == VoiceFile && c.VoiceFile == "":
		return domain.NewValidationError("voice.file", c.VoiceFile, "required for the file voice source")
	case !(c.PixelScale > 0):
		return domain.NewValidationError("terminal.pixel_scale", c.PixelScale, "must be positive")
	}
	return nil
}
