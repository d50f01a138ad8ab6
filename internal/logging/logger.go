// Package logging constructs the process-wide zerolog logger: a console
// writer on stdout with the configured color mode, plus an optional plain
// append sink when LOG_FILE is set.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/backmassage/lensbatch/internal/config"
)

const timeFormat = "2006-01-02 15:04:05"

// New builds the logger from cfg. The returned close function releases the
// file sink (a no-op when LOG_FILE is unset) and must be called on shutdown.
func New(cfg *config.Config) (zerolog.Logger, func() error, error) {
	console := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: timeFormat,
		NoColor:    !ColorEnabled(cfg.ColorMode),
	}

	var out io.Writer = console
	closeFn := func() error { return nil }

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return zerolog.Logger{}, nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Logger{}, nil, err
		}
		fileSink := zerolog.ConsoleWriter{Out: f, TimeFormat: timeFormat, NoColor: true}
		out = zerolog.MultiLevelWriter(console, fileSink)
		closeFn = f.Close
	}

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}

	log := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return log, closeFn, nil
}

// ColorEnabled resolves the color mode against TTY detection and the
// NO_COLOR env var (https://no-color.org).
func ColorEnabled(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(os.Stdout) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY (character device).
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
