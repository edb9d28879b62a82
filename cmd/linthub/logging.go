// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"

	"github.com/linthub/linthub/internal/config"
)

// newLogger returns a slog logger backed by a charmbracelet/log handler.
// verbose forces the debug level.
func newLogger(w io.Writer, cfg config.LogConfig, verbose bool) *slog.Logger {
	level, err := log.ParseLevel(cfg.Level.String())
	if err != nil {
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}

	opts := log.Options{
		Level:           level,
		Prefix:          "linthub",
		ReportTimestamp: verbose,
	}
	if cfg.Format == config.LogFormatJSON {
		opts.Formatter = log.JSONFormatter
		opts.ReportTimestamp = true
	}
	return slog.New(log.NewWithOptions(w, opts))
}
