package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"uivox/pkg/config"
)

// Init initializes the logging system based on configuration.
// It returns a cleanup function to close log files.
func Init(cfg *config.LogConfig) (func(), error) {
	// Rotate log files at startup
	rotatePaths(cfg.Server.Path)

	handler, file, err := setupHandler(cfg.Server.Path, cfg.Server.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to setup server logger: %w", err)
	}
	slog.SetDefault(slog.New(handler))

	return func() {
		if file != nil {
			file.Close()
		}
	}, nil
}

func setupHandler(path, levelStr string) (slog.Handler, *os.File, error) {
	var level slog.Level
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}
	fileHandler := slog.NewTextHandler(file, opts)

	// Console handler - INFO and up unless the file level is even higher
	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: maxLevel(level, slog.LevelInfo),
	})

	// Capture handler - feeds the /api/log/latest endpoint
	captureHandler := slog.NewTextHandler(GlobalLogCapture, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	return &multiHandler{handlers: []slog.Handler{fileHandler, consoleHandler, captureHandler}}, file, nil
}

func maxLevel(a, b slog.Level) slog.Level {
	if a > b {
		return a
	}
	return b
}

type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle implements slog.Handler
// nolint:gocritic // r must be passed by value to implement slog.Handler
func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}

// rotatePaths rotates the given log files if they exist by renaming them to
// .old, so each run starts fresh but the previous run's log is kept.
func rotatePaths(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		dir := filepath.Dir(p)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			continue
		}

		if _, err := os.Stat(p); err == nil {
			oldPath := p + ".old"
			_ = os.Remove(oldPath)
			_ = os.Rename(p, oldPath)
		}
	}
}
