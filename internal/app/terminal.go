package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/tejashwikalptaru/singularity/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/singularity/internal/adapter/frame"
	"github.com/tejashwikalptaru/singularity/internal/adapter/ui/term"
	"github.com/tejashwikalptaru/singularity/internal/blackhole"
	"github.com/tejashwikalptaru/singularity/internal/logger"
)

// RunTerminal renders the black hole on an initialised screen until ctx ends
// or the user quits. The caller owns screen's Init and Fini.
// Logs are written to config.LogFile and discarded without one.
func RunTerminal(ctx context.Context, config Config, screen tcell.Screen) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	out, closer, err := openLogOutput(config.LogFile, io.Discard)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	log := logger.NewLogger(logger.Config{Level: config.LogLevel, Format: config.LogFormat, Output: out})

	bus := eventbus.NewSyncEventBus()
	bus.SetLogger(log.With(slog.String("component", "eventbus")))
	defer bus.Close()

	viewer := term.NewViewer(log.With(slog.String("component", "terminal")), screen, bus, config.PixelScale)

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	engine, err := blackhole.NewEngine(
		log.With(slog.String("component", "engine")),
		bus,
		rand.New(rand.NewSource(seed)),
		viewer.Surface(),
		blackhole.Options{
			Viewport:        viewer.Viewport(),
			Signals:         hostSignals(),
			FrameRateCap:    config.FrameRate,
			UpdateInterval:  config.UpdateInterval,
			BatchSize:       config.BatchSize,
			AdaptiveQuality: config.AdaptiveQuality,
			AfterFrame:      viewer.Present,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer engine.Dispose()

	ticker := frame.NewTicker(config.TickRate)
	ticker.SetLogger(log.With(slog.String("component", "ticker")))
	ticker.Start()
	defer ticker.Stop()

	if err := engine.Start(ticker); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	return viewer.Run(ctx)
}
