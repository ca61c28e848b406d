// Package main is the production entry point for Singularity.
//
// Singularity renders an animated black hole behind two voice orbs that react
// to a call between the user and an assistant:
// - Event-driven communication between the voice session and the views
// - Dependency injection for testability
// - MVP pattern for UI decoupling
// - A terminal preview of the black hole
//
// Build:
//
//	go build -o build/singularity ./cmd
//
// Run:
//
//	./build/singularity
//	./build/singularity --voice file --voice-file call.wav
//	./build/singularity term
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/singularity/internal/app"
	"github.com/tejashwikalptaru/singularity/internal/logger"
)

// options are the command-line overrides. Flags only apply when set.
type options struct {
	configPath string
	logLevel   string
	seed       int64
	fps        int
	voice      string
	voiceFile  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&options{})
}

func newRootCmdWith(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "singularity",
		Short:         "Black hole and voice visualizer",
		Long:          "Singularity opens a window with an animated black hole behind the assistant and user voice orbs.",
		Version:       app.GetVersionInfo().FullString(),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			return runWindow(config)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.Int64Var(&opts.seed, "seed", 0, "Random seed (0 seeds from the clock)")
	flags.IntVar(&opts.fps, "fps", 0, "Frame-rate cap override (0 uses the quality profile)")
	flags.StringVar(&opts.voice, "voice", app.VoiceMock, "Voice session: mock or file")
	flags.StringVar(&opts.voiceFile, "voice-file", "", "WAV file for the file voice session")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "term",
		Short: "Render the black hole in the terminal",
		Long:  "Render the black hole in the terminal with half-block characters. Press q or Esc to quit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			return runTerminal(cmd.Context(), config)
		},
	})

	return rootCmd
}

// resolveConfig layers the config file and the changed flags over the defaults.
func resolveConfig(cmd *cobra.Command, opts *options) (app.Config, error) {
	config := app.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := app.LoadConfig(opts.configPath)
		if err != nil {
			return config, err
		}
		config = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		level, err := logger.ParseLevel(opts.logLevel)
		if err != nil {
			return config, err
		}
		config.LogLevel = level
	}
	if flags.Changed("seed") {
		config.Seed = opts.seed
	}
	if flags.Changed("fps") {
		config.FrameRate = opts.fps
	}
	if flags.Changed("voice") {
		config.Voice = opts.voice
	}
	if flags.Changed("voice-file") {
		config.VoiceFile = opts.voiceFile
		if !flags.Changed("voice") {
			config.Voice = app.VoiceFile
		}
	}

	return config, config.Validate()
}

func runWindow(config app.Config) error {
	// Create the application with dependency injection
	application, err := app.NewApplication(config)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	// Ensure a graceful shutdown
	defer func() {
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	// Run application (blocks until the window closed)
	return application.Run()
}

func runTerminal(ctx context.Context, config app.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialise terminal: %w", err)
	}
	defer screen.Fini()
	screen.HideCursor()

	return app.RunTerminal(ctx, config, screen)
}
