package config

import (
	"io"
	"log/slog"

	"github.com/go-logr/logr"
)

// NewLogger returns a logr.Logger writing logfmt lines to w.
// Milestones (V(0)) are shown by default; verbose adds V(1) detail.
func NewLogger(w io.Writer, verbose bool) logr.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return logr.FromSlogHandler(handler)
}
