// Package logging configures the rotating log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects log destination and verbosity.
type Options struct {
	Level  string
	Format string
	Path   string
}

// Configure sets up logrus writing to a rotated file. The terminal belongs
// to the TUI, so nothing is written to stdout or stderr.
func Configure(opts Options) (*logrus.Logger, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	logger := logrus.New()
	switch strings.ToLower(opts.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", opts.Format)
	}
	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		level = parsed
	}
	logger.SetLevel(level)
	logger.SetOutput(&lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    20, // megabytes
		MaxBackups: 3,
		MaxAge:     30,
	})
	return logger, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
