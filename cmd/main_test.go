package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/singularity/internal/app"
	"github.com/tejashwikalptaru/singularity/internal/domain"
)

// parse runs flag parsing on the root command without executing it.
func parse(t *testing.T, args ...string) (*cobra.Command, *options) {
	t.Helper()
	opts := &options{}
	root := newRootCmdWith(opts)
	require.NoError(t, root.ParseFlags(args))
	return root, opts
}

func TestResolveConfig_Defaults(t *testing.T) {
	cmd, opts := parse(t)

	config, err := resolveConfig(cmd, opts)
	require.NoError(t, err)
	assert.Equal(t, app.DefaultConfig().AppID, config.AppID)
	assert.Equal(t, app.VoiceMock, config.Voice)
	assert.Zero(t, config.FrameRate)
}

func TestResolveConfig_Flags(t *testing.T) {
	cmd, opts := parse(t, "--log-level", "debug", "--seed", "9", "--fps", "24")

	config, err := resolveConfig(cmd, opts)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, config.LogLevel)
	assert.Equal(t, int64(9), config.Seed)
	assert.Equal(t, 24, config.FrameRate)
}

func TestResolveConfig_VoiceFileImpliesFileSource(t *testing.T) {
	cmd, opts := parse(t, "--voice-file", "call.wav")

	config, err := resolveConfig(cmd, opts)
	require.NoError(t, err)
	assert.Equal(t, app.VoiceFile, config.Voice)
	assert.Equal(t, "call.wav", config.VoiceFile)
}

func TestResolveConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "singularity.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  fps: 30\n  seed: 1\n"), 0o600))

	cmd, opts := parse(t, "--config", path, "--fps", "45")

	config, err := resolveConfig(cmd, opts)
	require.NoError(t, err)
	assert.Equal(t, 45, config.FrameRate)
	assert.Equal(t, int64(1), config.Seed)
}

func TestResolveConfig_Invalid(t *testing.T) {
	cmd, opts := parse(t, "--voice", "file")
	_, err := resolveConfig(cmd, opts)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	cmd, opts = parse(t, "--log-level", "loud")
	_, err = resolveConfig(cmd, opts)
	assert.Error(t, err)
}

func TestRootCmd_HasTerminalCommand(t *testing.T) {
	root := newRootCmd()
	term, _, err := root.Find([]string{"term"})
	require.NoError(t, err)
	assert.Equal(t, "term", term.Name())
	assert.Contains(t, root.Version, "Singularity")
}
