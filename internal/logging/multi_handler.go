package logging

import (
	"context"
	"log/slog"

	"github.com/mishamyrt/commitfmt-release/internal/errors"
)

// MultiHandler sends each record to several handlers, e.g. the terminal
// and the --log-file JSON log.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler fans records out to handlers. Nil handlers are dropped.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	kept := make([]slog.Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			kept = append(kept, h)
		}
	}
	return &MultiHandler{handlers: kept}
}

func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle passes a clone of r to every handler enabled for its level. A
// failing handler does not stop the others; all failures are returned.
func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := handler.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(func(handler slog.Handler) slog.Handler { return handler.WithAttrs(attrs) })
}

func (h *MultiHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.derive(func(handler slog.Handler) slog.Handler { return handler.WithGroup(name) })
}

func (h *MultiHandler) derive(fn func(slog.Handler) slog.Handler) *MultiHandler {
	out := &MultiHandler{handlers: make([]slog.Handler, len(h.handlers))}
	for i, handler := range h.handlers {
		out.handlers[i] = fn(handler)
	}
	return out
}
