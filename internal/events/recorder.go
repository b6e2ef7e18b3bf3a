package events

import (
	"context"
	"sync"
)

// Recorder is a Hook that keeps every event it receives. It is meant for
// tests and for embedding webrecon as a library.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// OnEvent stores event.
func (r *Recorder) OnEvent(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// EventTypes subscribes to everything.
func (r *Recorder) EventTypes() []EventType { return nil }

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Logs returns the recorded log events.
func (r *Recorder) Logs() []*LogEvent { return ofType[*LogEvent](r) }

// Progress returns the recorded percentages in order.
func (r *Recorder) Progress() []int {
	var out []int
	for _, e := range ofType[*ProgressEvent](r) {
		out = append(out, e.Percent)
	}
	return out
}

// Results returns the recorded result events.
func (r *Recorder) Results() []*ResultEvent { return ofType[*ResultEvent](r) }

// Findings returns the recorded finding events.
func (r *Recorder) Findings() []*FindingEvent { return ofType[*FindingEvent](r) }

func ofType[T Event](r *Recorder) []T {
	var out []T
	for _, e := range r.Events() {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
