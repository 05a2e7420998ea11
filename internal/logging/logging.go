// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

type Options struct {
	Level  string
	Format string
	// File receives log output when set; otherwise Output (or stderr) does.
	File   string
	Output io.Writer
}

// New returns a configured logger and a close func for the file it may have opened.
func New(opts Options) (*logrus.Logger, func() error, error) {
	logger := logrus.New()
	closer := func() error { return nil }

	level := logrus.InfoLevel
	if strings.TrimSpace(opts.Level) != "" {
		parsed, err := logrus.ParseLevel(strings.TrimSpace(opts.Level))
		if err != nil {
			return nil, closer, fmt.Errorf("logging: %w", err)
		}
		level = parsed
	}
	logger.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: opts.File != ""})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, closer, fmt.Errorf("logging: unknown format %q", opts.Format)
	}

	switch {
	case opts.File != "":
		if dir := filepath.Dir(opts.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, closer, fmt.Errorf("logging: create log dir: %w", err)
			}
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, closer, fmt.Errorf("logging: open %s: %w", opts.File, err)
		}
		logger.SetOutput(f)
		closer = f.Close
	case opts.Output != nil:
		logger.SetOutput(opts.Output)
	default:
		logger.SetOutput(os.Stderr)
	}
	return logger, closer, nil
}

// Discard is a logger for tests and library callers that want silence.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
