// Package logging configures the process-wide structured logger.
//
// The terminal UI owns stdout and stderr while it runs, so log records go
// to a file as JSON lines. Packages log through charmbracelet/log's default
// logger, which Init replaces.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
)

// Config describes where and how verbosely to log.
type Config struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string

	// Path is the log file. Empty means discard all output.
	Path string

	// Command is attached to every record to tell CLI runs apart.
	Command string
}

// Init builds a file logger from cfg, installs it as the default
// charmbracelet logger and returns a function that closes the file.
func Init(cfg Config) (func() error, error) {
	if cfg.Path == "" {
		clog.SetDefault(clog.New(io.Discard))
		return func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", cfg.Path, err)
	}

	logger := New(f, cfg.Level)
	if cfg.Command != "" {
		logger = logger.With("command", cfg.Command, "pid", os.Getpid())
	}
	clog.SetDefault(logger)

	return f.Close, nil
}

// New returns a JSON logger writing to w at the given level.
func New(w io.Writer, level string) *clog.Logger {
	logger := clog.NewWithOptions(w, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Level:           ParseLevel(level),
	})
	logger.SetFormatter(clog.JSONFormatter)
	return logger
}

// ParseLevel converts a level name to a clog.Level.
func ParseLevel(level string) clog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return clog.DebugLevel
	case "warn", "warning":
		return clog.WarnLevel
	case "error":
		return clog.ErrorLevel
	default:
		return clog.InfoLevel
	}
}
