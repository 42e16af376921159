package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/curriculum-coverage/internal/config"
)

// newFlagCommand binds the shared flag variables to a fresh command so
// Changed reflects only what the test sets.
func newFlagCommand(t *testing.T) *cobra.Command {
	t.Helper()
	savedLevel, savedFormat, savedBrowser := logLevel, logFormat, importUseBrowser
	t.Cleanup(func() {
		logLevel, logFormat, importUseBrowser = savedLevel, savedFormat, savedBrowser
	})

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "")
	cmd.Flags().StringVar(&logFormat, "log-format", "json", "")
	cmd.Flags().BoolVar(&importUseBrowser, "use-browser", false, "")
	return cmd
}

func TestLoggingConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "")

	cmd := newFlagCommand(t)
	got := loggingConfig(cmd, config.Config{})
	assert.Equal(t, "error", got.Level)
	assert.Equal(t, "json", got.Format)

	got = loggingConfig(cmd, config.Config{LogLevel: "debug", LogFormat: "console"})
	assert.Equal(t, "debug", got.Level)
	assert.Equal(t, "console", got.Format)

	require.NoError(t, cmd.Flags().Set("log-level", "warn"))
	got = loggingConfig(cmd, config.Config{LogLevel: "debug", LogFormat: "console"})
	assert.Equal(t, "warn", got.Level)
	assert.Equal(t, "console", got.Format)
}

func TestUseBrowser(t *testing.T) {
	cmd := newFlagCommand(t)
	assert.False(t, useBrowser(cmd, config.Config{}))
	assert.True(t, useBrowser(cmd, config.Config{UseBrowser: true}))

	require.NoError(t, cmd.Flags().Set("use-browser", "false"))
	assert.False(t, useBrowser(cmd, config.Config{UseBrowser: true}))
}
