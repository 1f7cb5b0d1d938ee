package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// runLogTimeFormat names run log files so they sort chronologically.
const runLogTimeFormat = "2006-01-02_15-04-05"

// OpenRunLog creates <dir>/<timestamp>_output.txt for a copy of the run's
// log output. The caller closes the returned file.
func OpenRunLog(dir string, now time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	path := filepath.Join(dir, now.Format(runLogTimeFormat)+"_output.txt")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // path is built from the configured log dir
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}
	return f, nil
}

// NewRunLogger returns the logger for a crawl or report run. Records go to
// console at the verbosity chosen by the user. When file is non-nil every
// record down to Debug is also written there, so a run log keeps the full
// story even when the console is quiet.
func NewRunLogger(console io.Writer, verbose bool, file io.Writer) *slog.Logger {
	consoleHandler := slog.NewTextHandler(console, &slog.HandlerOptions{Level: levelFor(verbose)})
	if file == nil {
		return slog.New(NewRedactHandler(consoleHandler))
	}
	fileHandler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewRedactHandler(NewFanoutHandler(consoleHandler, fileHandler)))
}

// levelFor maps the verbose flag onto the console level. Crawls are long,
// so progress lines (Info) show by default.
func levelFor(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// FanoutHandler sends every record to each of its handlers that is enabled
// for the record's level.
type FanoutHandler struct {
	handlers []slog.Handler
}

// NewFanoutHandler returns a handler that writes to all of handlers.
func NewFanoutHandler(handlers ...slog.Handler) *FanoutHandler {
	return &FanoutHandler{handlers: handlers}
}

// Enabled reports whether any handler accepts the level.
func (h *FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, hh := range h.handlers {
		if hh.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle passes a copy of the record to every enabled handler and joins
// their errors.
func (h *FanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, hh := range h.handlers {
		if !hh.Enabled(ctx, r.Level) {
			continue
		}
		if err := hh.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WithAttrs returns a FanoutHandler whose handlers all carry attrs.
func (h *FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(h.handlers))
	for i, hh := range h.handlers {
		out[i] = hh.WithAttrs(attrs)
	}
	return &FanoutHandler{handlers: out}
}

// WithGroup returns a FanoutHandler whose handlers all open group name.
func (h *FanoutHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(h.handlers))
	for i, hh := range h.handlers {
		out[i] = hh.WithGroup(name)
	}
	return &FanoutHandler{handlers: out}
}
