// SPDX-License-Identifier: MPL-2.0

// Package logging configures the process-wide logger. A charmbracelet/log
// root logger is installed both as the charm default and as the log/slog
// default handler, so packages may log through either API and share one sink.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Output formats accepted by Setup.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatLogfmt = "logfmt"
)

// Options controls the root logger.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Format is text, json or logfmt. Empty means text.
	Format string
	// Writer defaults to os.Stderr.
	Writer io.Writer
	// ReportTimestamp adds a time field to every line.
	ReportTimestamp bool
}

// Setup builds the root logger from opts and installs it as the default.
func Setup(opts Options) (*log.Logger, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	formatter, err := parseFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: opts.ReportTimestamp,
	})

	log.SetDefault(logger)
	slog.SetDefault(slog.New(logger))

	return logger, nil
}

// For returns a component logger derived from the default logger.
func For(component string) *log.Logger {
	return log.Default().WithPrefix(component)
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

func parseFormat(s string) (log.Formatter, error) {
	switch strings.ToLower(s) {
	case "", FormatText:
		return log.TextFormatter, nil
	case FormatJSON:
		return log.JSONFormatter, nil
	case FormatLogfmt:
		return log.LogfmtFormatter, nil
	default:
		return 0, fmt.Errorf("invalid log format %q (expected %s, %s or %s)", s, FormatText, FormatJSON, FormatLogfmt)
	}
}
