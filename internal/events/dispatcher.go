package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
)

// Hook receives events from a Dispatcher.
type Hook interface {
	// OnEvent is called for each matching event, in publication order.
	OnEvent(ctx context.Context, event Event) error

	// EventTypes returns the event types this hook handles.
	// Return nil or an empty slice to receive all events.
	EventTypes() []EventType
}

// HookFunc adapts a function to a Hook that receives every event.
type HookFunc func(ctx context.Context, event Event) error

func (f HookFunc) OnEvent(ctx context.Context, event Event) error { return f(ctx, event) }
func (f HookFunc) EventTypes() []EventType                        { return nil }

type subscription struct {
	id   uint64
	hook Hook
}

// Dispatcher fans events out to subscribed hooks. Delivery is synchronous,
// so each hook sees events in the order they were published. A failing
// hook never stops delivery to the others. It is safe for concurrent use.
type Dispatcher struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher. A nil logger uses slog.Default().
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger}
}

// Subscribe adds h and returns a function that removes it again.
// Calling the returned function more than once is harmless.
func (d *Dispatcher) Subscribe(h Hook) (unsubscribe func()) {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.subs = append(d.subs, subscription{id: id, hook: h})
	d.mu.Unlock()

	return func() { d.unsubscribe(id) }
}

func (d *Dispatcher) unsubscribe(id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = slices.DeleteFunc(d.subs, func(s subscription) bool { return s.id == id })
}

// Len returns the number of subscribed hooks.
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs)
}

// Dispatch delivers event to every hook that handles its type. Hook errors
// are logged and otherwise ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) {
	d.mu.RLock()
	subs := slices.Clone(d.subs)
	d.mu.RUnlock()

	for _, s := range subs {
		if !handles(s.hook, event.EventType()) {
			continue
		}
		if err := s.hook.OnEvent(ctx, event); err != nil {
			d.logger.Debug("hook failed", "event", event.EventType(), "error", err)
		}
	}
}

func handles(h Hook, t EventType) bool {
	types := h.EventTypes()
	return len(types) == 0 || slices.Contains(types, t)
}

// Close closes every subscribed hook that implements io.Closer and drops
// all subscriptions.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	subs := d.subs
	d.subs = nil
	d.mu.Unlock()

	var errs []error
	for _, s := range subs {
		if c, ok := s.hook.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
