package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uivox/pkg/config"
)

func TestInit_WritesToFileAndCapture(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "server.log")

	cleanup, err := Init(&config.LogConfig{
		Server: config.LogSettings{Path: logPath, Level: "INFO"},
	})
	require.NoError(t, err)
	defer cleanup()

	slog.Info("hello from test", "key", "value")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")

	last := GlobalLogCapture.GetLastLine()
	assert.Contains(t, last, "hello from test")
	assert.Contains(t, last, "key=value")
}

func TestInit_RotatesPreviousLog(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "server.log")
	require.NoError(t, os.WriteFile(logPath, []byte("previous run\n"), 0o644))

	cleanup, err := Init(&config.LogConfig{
		Server: config.LogSettings{Path: logPath, Level: "WARN"},
	})
	require.NoError(t, err)
	defer cleanup()

	old, err := os.ReadFile(logPath + ".old")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(old), "previous run"))
}

func TestLogCaptureWriter(t *testing.T) {
	w := &LogCaptureWriter{}
	_, err := w.Write([]byte("line one"))
	require.NoError(t, err)
	_, err = w.Write([]byte("line two"))
	require.NoError(t, err)
	assert.Equal(t, "line two", w.GetLastLine())
}
