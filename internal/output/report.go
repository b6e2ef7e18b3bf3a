package output

import (
	"context"
	"errors"
	"sync"

	"github.com/maxvaer/webrecon/internal/events"
)

// ReportHook writes the final report once the terminal result arrives.
type ReportHook struct {
	w    Writer
	once sync.Once
	err  error
}

// NewReportHook wraps w. The writer is closed after the report is written.
func NewReportHook(w Writer) *ReportHook {
	return &ReportHook{w: w}
}

// EventTypes implements events.Hook.
func (h *ReportHook) EventTypes() []events.EventType {
	return []events.EventType{events.EventTypeResult}
}

// OnEvent implements events.Hook.
func (h *ReportHook) OnEvent(_ context.Context, event events.Event) error {
	e, ok := event.(*events.ResultEvent)
	if !ok || !e.Terminal() {
		return nil
	}
	h.once.Do(func() {
		result := e.Result
		h.err = errors.Join(h.w.Write(&result), h.w.Close())
	})
	return h.err
}

// Err returns the error from writing the report, if any.
func (h *ReportHook) Err() error {
	return h.err
}
