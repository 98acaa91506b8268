package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
)

// NewLogger builds the server-wide slog logger. Records always go to a text
// handler on w; when the provider is enabled they are additionally bridged
// to OTLP via otelslog.
func NewLogger(w io.Writer, level slog.Level, provider *Provider, name string) *slog.Logger {
	text := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	if provider == nil || !provider.Enabled() {
		return slog.New(text)
	}
	bridge := otelslog.NewHandler(name, otelslog.WithLoggerProvider(provider.LoggerProvider()))
	return slog.New(NewFanoutHandler(text, bridge))
}

// FanoutHandler duplicates log records to multiple slog handlers.
type FanoutHandler struct {
	handlers []slog.Handler
}

// NewFanoutHandler creates a handler that writes to all given handlers.
// Nil handlers are skipped.
func NewFanoutHandler(handlers ...slog.Handler) *FanoutHandler {
	valid := make([]slog.Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			valid = append(valid, h)
		}
	}
	return &FanoutHandler{handlers: valid}
}

// Enabled reports whether any underlying handler wants the level.
func (f *FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle sends the record to every enabled handler. A failing handler does
// not stop the others; all failures are reported together.
func (f *FanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &FanoutHandler{handlers: handlers}
}

func (f *FanoutHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	handlers := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &FanoutHandler{handlers: handlers}
}
