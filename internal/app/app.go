// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"runtime"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/tejashwikalptaru/singularity/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/singularity/internal/adapter/frame"
	"github.com/tejashwikalptaru/singularity/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/singularity/internal/adapter/surface/raster"
	fyneui "github.com/tejashwikalptaru/singularity/internal/adapter/ui/fyne"
	"github.com/tejashwikalptaru/singularity/internal/adapter/voice/beep"
	"github.com/tejashwikalptaru/singularity/internal/adapter/voice/mock"
	"github.com/tejashwikalptaru/singularity/internal/blackhole"
	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/logger"
	"github.com/tejashwikalptaru/singularity/internal/ports"
	"github.com/tejashwikalptaru/singularity/internal/service"
	"github.com/tejashwikalptaru/singularity/internal/voiceviz"
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for main.go
type Application struct {
	// Core dependencies
	logger  *slog.Logger
	fyneApp fyne.App
	logFile io.Closer

	// Infrastructure
	eventBus  *eventbus.SyncEventBus
	scheduler *frame.Ticker
	surface   *raster.Surface
	engine    *blackhole.Engine

	// Repositories
	preferencesRepo ports.PreferencesRepository

	// Services
	sessionService    *service.SessionService
	preferenceService *service.PreferenceService

	// UI
	assistantOrb *fyneui.Orb
	userOrb      *fyneui.Orb
	presenter    *fyneui.Presenter
	mainWindow   *fyneui.MainWindow

	shutdownOnce sync.Once
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(config Config) (*Application, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	app := &Application{}

	// Step 1: Create Fyne application
	if config.TestFyneApp != nil {
		app.fyneApp = config.TestFyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(config.AppID)
	}

	// Step 1.5: Create logger
	out, closer, err := openLogOutput(config.LogFile, os.Stderr)
	if err != nil {
		return nil, err
	}
	app.logFile = closer
	app.logger = logger.NewLogger(logger.Config{
		Level:  config.LogLevel,
		Format: config.LogFormat,
		Output: out,
	})
	app.logger.Info("initializing application",
		slog.String("app_id", config.AppID),
		slog.String("app_name", config.AppName),
		slog.String("version", GetVersionInfo().FullString()))

	// Step 2: Create an event bus
	app.eventBus = eventbus.NewSyncEventBus()
	app.eventBus.SetLogger(app.logger.With(slog.String("component", "eventbus")))

	// Step 3: Create repositories and preferences
	app.preferencesRepo = memory.NewPreferencesRepository(app.fyneApp.Preferences())
	app.preferenceService = service.NewPreferenceService(
		app.logger.With(slog.String("service", "preference")),
		app.preferencesRepo,
	)

	width, height := config.WindowWidth, config.WindowHeight
	if saved, ok := app.preferenceService.WindowSize(); ok {
		width, height = saved.Width, saved.Height
	}

	// Step 4: Create the voice orbs and the window
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	scale := float64(app.fyneApp.Settings().Scale())
	orbSize := voiceviz.ResponsiveSize(float64(width))
	app.assistantOrb = fyneui.NewOrb(app.logger.With(slog.String("orb", "assistant")),
		voiceviz.AI, rand.New(rand.NewSource(seed+1)), orbSize, scale)
	app.userOrb = fyneui.NewOrb(app.logger.With(slog.String("orb", "user")),
		voiceviz.User, rand.New(rand.NewSource(seed+2)), orbSize, scale)

	app.mainWindow = fyneui.NewMainWindow(app.fyneApp, fyneui.WindowConfig{
		Title:  config.AppName,
		Width:  width,
		Height: height,
	}, app.logger.With(slog.String("component", "window")), app.eventBus, app.assistantOrb, app.userOrb)

	// Step 5: Create the black-hole engine drawing behind the orbs
	viewport := domain.Viewport{Width: int(width), Height: int(height), DevicePixelRatio: 1}
	app.surface = raster.NewSurface(viewport.Width, viewport.Height, viewport.DevicePixelRatio)
	background := app.mainWindow.Background()
	app.engine, err = blackhole.NewEngine(
		app.logger.With(slog.String("component", "engine")),
		app.eventBus,
		rand.New(rand.NewSource(seed)),
		app.surface,
		blackhole.Options{
			Viewport:        viewport,
			Signals:         hostSignals(),
			FrameRateCap:    config.FrameRate,
			UpdateInterval:  config.UpdateInterval,
			BatchSize:       config.BatchSize,
			AdaptiveQuality: config.AdaptiveQuality,
			AfterFrame: func() {
				background.Present(app.surface.Snapshot())
			},
		},
	)
	if err != nil {
		app.closeLog()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	app.scheduler = frame.NewTicker(config.TickRate)
	app.scheduler.SetLogger(app.logger.With(slog.String("component", "ticker")))

	// Step 6: Create the voice session and services
	session, err := newVoiceSession(config, app.eventBus, app.logger)
	if err != nil {
		app.engine.Dispose()
		app.closeLog()
		return nil, err
	}
	app.sessionService = service.NewSessionService(
		app.logger.With(slog.String("service", "session")),
		app.eventBus,
		session,
		app.assistantOrb,
		app.userOrb,
	)
	app.sessionService.SetUpdateInterval(config.LevelInterval)

	// Step 7: Create Presenter and wire with UI
	app.presenter = fyneui.NewPresenter(
		app.logger.With(slog.String("component", "presenter")),
		app.sessionService,
		app.preferenceService,
		app.engine,
		app.eventBus,
		app.mainWindow,
	)
	app.presenter.SetFileSessionFactory(func(path string) ports.VoiceSession {
		return newFileSession(path, app.eventBus, app.logger)
	})

	// Connect presenter to the main window
	app.mainWindow.SetPresenter(app.presenter)

	// Set callback to save state before window closes
	// This ensures state is persisted even when quitting via Cmd+Q or window close button
	app.mainWindow.SetOnBeforeClose(app.saveState)

	return app, nil
}

// newVoiceSession builds the session selected by config.
func newVoiceSession(config Config, bus ports.EventBus, log *slog.Logger) (ports.VoiceSession, error) {
	switch config.Voice {
	case VoiceMock:
		session := mock.NewSession(bus, mock.DefaultScript(), true)
		session.SetLogger(log.With(slog.String("voice", "mock")))
		return session, nil
	case VoiceFile:
		if _, err := os.Stat(config.VoiceFile); err != nil {
			return nil, domain.NewSourceError("open", config.VoiceFile, "voice file not readable", err)
		}
		return newFileSession(config.VoiceFile, bus, log), nil
	default:
		return nil, domain.NewValidationError("voice.source", config.Voice, "must be mock or file")
	}
}

func newFileSession(path string, bus ports.EventBus, log *slog.Logger) ports.VoiceSession {
	session := beep.NewSession(bus, beep.Config{Path: path, Realtime: true})
	session.SetLogger(log.With(slog.String("voice", "file")))
	return session
}

// hostSignals describes the machine to the quality profile.
// Memory is not reported by the runtime and stays unknown.
func hostSignals() domain.DeviceSignals {
	agent := runtime.GOOS + "/" + runtime.GOARCH
	switch runtime.GOOS {
	case "android":
		agent = "Android " + runtime.GOARCH
	case "ios":
		agent = "iPhone " + runtime.GOARCH
	}
	return domain.DeviceSignals{
		UserAgent:           agent,
		HardwareConcurrency: runtime.NumCPU(),
	}
}

// openLogOutput opens path for appending, or returns fallback when path is empty.
func openLogOutput(path string, fallback io.Writer) (io.Writer, io.Closer, error) {
	if path == "" {
		return fallback, nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, f, nil
}

// Run starts the application.
// It blocks until the window is closed.
func (a *Application) Run() error {
	a.logger.Info("Singularity started")

	a.scheduler.Start()
	if err := a.engine.Start(a.scheduler); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	a.mainWindow.StartRendering(a.scheduler)

	// Show and run UI (blocks until the window is closed)
	a.mainWindow.ShowAndRun()
	return nil
}

// Shutdown gracefully shuts down the application.
// Safe to call multiple times.
func (a *Application) Shutdown() error {
	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down application")

		// Shutdown UI and presenter
		if a.presenter != nil {
			a.presenter.Shutdown()
		}

		// Shutdown services (in reverse order of creation)
		if a.sessionService != nil {
			if err := a.sessionService.Shutdown(); err != nil {
				a.logger.Warn("failed to shutdown session service", slog.Any("error", err))
			}
		}

		if a.engine != nil {
			a.engine.Dispose()
		}
		if a.scheduler != nil {
			a.scheduler.Stop()
		}
		if a.assistantOrb != nil {
			a.assistantOrb.Dispose()
		}
		if a.userOrb != nil {
			a.userOrb.Dispose()
		}

		if a.preferenceService != nil {
			if err := a.preferenceService.Shutdown(); err != nil {
				a.logger.Warn("failed to shutdown preference service", slog.Any("error", err))
			}
		}

		if a.eventBus != nil {
			if err := a.eventBus.Close(); err != nil {
				a.logger.Warn("failed to close event bus", slog.Any("error", err))
			}
		}

		a.logger.Info("application shutdown complete")
		a.closeLog()
	})
	return nil
}

// saveState persists the window size.
func (a *Application) saveState() {
	size := a.mainWindow.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	err := a.preferenceService.SetWindowSize(ports.WindowSize{Width: size.Width, Height: size.Height})
	if err != nil {
		a.logger.Warn("failed to save window size", slog.Any("error", err))
	}
}

func (a *Application) closeLog() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}

// GetEventBus returns the event bus.
func (a *Application) GetEventBus() ports.EventBus {
	return a.eventBus
}

// GetFyneApp returns the Fyne application.
func (a *Application) GetFyneApp() fyne.App {
	return a.fyneApp
}

// GetServices returns the application services.
func (a *Application) GetServices() (*service.SessionService, *service.PreferenceService) {
	return a.sessionService, a.preferenceService
}

// GetEngine returns the black-hole engine.
func (a *Application) GetEngine() *blackhole.Engine {
	return a.engine
}

// GetPresenter returns the presenter.
func (a *Application) GetPresenter() *fyneui.Presenter {
	return a.presenter
}

// GetMainWindow returns the main window.
func (a *Application) GetMainWindow() *fyneui.MainWindow {
	return a.mainWindow
}
