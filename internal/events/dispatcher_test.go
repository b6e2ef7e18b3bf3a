package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxvaer/webrecon/internal/scanner"
)

type typedHook struct {
	Recorder
	types []EventType
}

func (h *typedHook) EventTypes() []EventType { return h.types }

type failingHook struct{ calls int }

func (h *failingHook) OnEvent(context.Context, Event) error {
	h.calls++
	return errors.New("boom")
}
func (h *failingHook) EventTypes() []EventType { return nil }

type closingHook struct {
	Recorder
	closed bool
}

func (h *closingHook) Close() error {
	h.closed = true
	return nil
}

func TestDispatchInOrder(t *testing.T) {
	d := NewDispatcher(nil)
	rec := &Recorder{}
	d.Subscribe(rec)

	ctx := context.Background()
	d.Dispatch(ctx, NewLog("s1", SeverityInfo, "Starting scan"))
	d.Dispatch(ctx, NewProgress("s1", 0))
	d.Dispatch(ctx, NewProgress("s1", 50))
	d.Dispatch(ctx, NewResult(scanner.ScanResult{ID: "s1", Complete: true}))

	evs := rec.Events()
	require.Len(t, evs, 4)
	assert.Equal(t, EventTypeLog, evs[0].EventType())
	assert.Equal(t, []int{0, 50}, rec.Progress())
	require.Len(t, rec.Results(), 1)
	assert.True(t, rec.Results()[0].Terminal())
	for _, e := range evs {
		assert.Equal(t, "s1", e.ScanID())
		assert.False(t, e.Timestamp().IsZero())
	}
}

func TestDispatchFiltersByType(t *testing.T) {
	d := NewDispatcher(nil)
	h := &typedHook{types: []EventType{EventTypeFinding}}
	d.Subscribe(h)

	d.Dispatch(context.Background(), NewLog("s", SeverityInfo, "x"))
	d.Dispatch(context.Background(), NewFinding("s", "http://t", CategoryAdmin, scanner.PathFinding{Path: "/admin"}))

	require.Len(t, h.Events(), 1)
	assert.Equal(t, "/admin", h.Findings()[0].Finding.Path)
}

func TestFailingHookDoesNotBlockOthers(t *testing.T) {
	d := NewDispatcher(nil)
	bad := &failingHook{}
	rec := &Recorder{}
	d.Subscribe(bad)
	d.Subscribe(rec)

	d.Dispatch(context.Background(), NewProgress("s", 10))
	assert.Equal(t, 1, bad.calls)
	assert.Len(t, rec.Events(), 1)
}

func TestUnsubscribe(t *testing.T) {
	d := NewDispatcher(nil)
	rec := &Recorder{}
	unsubscribe := d.Subscribe(rec)
	other := &Recorder{}
	d.Subscribe(other)
	assert.Equal(t, 2, d.Len())

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 1, d.Len())

	d.Dispatch(context.Background(), NewProgress("s", 1))
	assert.Empty(t, rec.Events())
	assert.Len(t, other.Events(), 1)
}

func TestHookFunc(t *testing.T) {
	d := NewDispatcher(nil)
	var got []EventType
	d.Subscribe(HookFunc(func(_ context.Context, e Event) error {
		got = append(got, e.EventType())
		return nil
	}))
	d.Dispatch(context.Background(), NewLog("s", SeverityWarning, "w"))
	assert.Equal(t, []EventType{EventTypeLog}, got)
}

func TestCloseClosesHooks(t *testing.T) {
	d := NewDispatcher(nil)
	h := &closingHook{}
	d.Subscribe(h)
	d.Subscribe(&Recorder{})

	require.NoError(t, d.Close())
	assert.True(t, h.closed)
	assert.Zero(t, d.Len())
}

func TestConcurrentDispatch(t *testing.T) {
	d := NewDispatcher(nil)
	rec := &Recorder{}
	d.Subscribe(rec)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Dispatch(context.Background(), NewProgress("s", i))
			unsub := d.Subscribe(&Recorder{})
			unsub()
		}()
	}
	wg.Wait()
	assert.Len(t, rec.Events(), 20)
}
