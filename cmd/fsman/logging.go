package main

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// LogRouter is a [slog.Handler] that forwards every record to a set of
// named sinks. Sinks can be attached and detached while the program runs;
// the interactive shell uses this to trade the terminal sink for its
// viewport and back.
type LogRouter struct {
	mu       sync.RWMutex
	sinks    map[string]slog.Handler
	wrappers []func(slog.Handler) slog.Handler
}

// NewLogRouter returns a pointer to a new [LogRouter] without sinks.
func NewLogRouter() *LogRouter {
	return &LogRouter{
		sinks: make(map[string]slog.Handler),
	}
}

// Attach adds a sink under the given name, replacing any previous sink of
// that name. Attribute and group context accumulated on the router so far
// is applied to the sink before it receives records.
func (r *LogRouter) Attach(name string, sink slog.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, wrap := range r.wrappers {
		sink = wrap(sink)
	}

	r.sinks[name] = sink
}

// Detach removes the named sink, when attached.
func (r *LogRouter) Detach(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sinks, name)
}

func (r *LogRouter) Enabled(ctx context.Context, level slog.Level) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sink := range r.sinks {
		if sink.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (r *LogRouter) Handle(ctx context.Context, record slog.Record) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sink := range r.sinks {
		_ = sink.Handle(ctx, record)
	}

	return nil
}

func (r *LogRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return r
	}

	return r.derive(func(sink slog.Handler) slog.Handler {
		return sink.WithAttrs(attrs)
	})
}

func (r *LogRouter) WithGroup(name string) slog.Handler {
	if name == "" {
		return r
	}

	return r.derive(func(sink slog.Handler) slog.Handler {
		return sink.WithGroup(name)
	})
}

// derive produces a child router whose present and future sinks carry the
// given wrapper on top of the context accumulated so far.
func (r *LogRouter) derive(wrap func(slog.Handler) slog.Handler) *LogRouter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	child := &LogRouter{
		sinks:    make(map[string]slog.Handler, len(r.sinks)),
		wrappers: append(slices.Clone(r.wrappers), wrap),
	}

	for name, sink := range r.sinks {
		child.sinks[name] = wrap(sink)
	}

	return child
}
