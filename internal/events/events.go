// Package events defines what a running scan tells its observers and the
// dispatcher that delivers it. Delivery is one-way: observers never reply
// to the scan.
package events

import (
	"time"

	"github.com/maxvaer/webrecon/internal/scanner"
)

// EventType identifies the kind of an event.
type EventType string

const (
	// EventTypeLog is a human-readable log line.
	EventTypeLog EventType = "log"
	// EventTypeProgress is a completion percentage.
	EventTypeProgress EventType = "progress"
	// EventTypeResult is a snapshot of the aggregate result.
	EventTypeResult EventType = "result"
	// EventTypeFinding is a single path finding as it is discovered.
	EventTypeFinding EventType = "finding"
)

// Severity classifies log events.
type Severity = scanner.Severity

const (
	SeverityInfo    = scanner.SeverityInfo
	SeveritySuccess = scanner.SeveritySuccess
	SeverityWarning = scanner.SeverityWarning
	SeverityError   = scanner.SeverityError
)

// Event is implemented by every event.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
	ScanID() string
}

// BaseEvent carries the fields shared by all events.
type BaseEvent struct {
	Type EventType `json:"type"`
	Time time.Time `json:"timestamp"`
	Scan string    `json:"scan_id"`
}

func (e BaseEvent) EventType() EventType { return e.Type }
func (e BaseEvent) Timestamp() time.Time { return e.Time }
func (e BaseEvent) ScanID() string       { return e.Scan }

func newBase(t EventType, scanID string) BaseEvent {
	return BaseEvent{Type: t, Time: time.Now(), Scan: scanID}
}

// LogEvent is a log line meant for display.
type LogEvent struct {
	BaseEvent
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// NewLog creates a LogEvent.
func NewLog(scanID string, sev Severity, msg string) *LogEvent {
	return &LogEvent{BaseEvent: newBase(EventTypeLog, scanID), Message: msg, Severity: sev}
}

// ProgressEvent reports overall completion as an integer in [0, 100].
type ProgressEvent struct {
	BaseEvent
	Percent int `json:"percent"`
}

// NewProgress creates a ProgressEvent.
func NewProgress(scanID string, percent int) *ProgressEvent {
	return &ProgressEvent{BaseEvent: newBase(EventTypeProgress, scanID), Percent: percent}
}

// ResultEvent carries a private copy of the aggregate result. The event
// with Result.Complete set is the last one of its scan.
type ResultEvent struct {
	BaseEvent
	Result scanner.ScanResult `json:"result"`
}

// NewResult creates a ResultEvent from a snapshot.
func NewResult(snapshot scanner.ScanResult) *ResultEvent {
	return &ResultEvent{BaseEvent: newBase(EventTypeResult, snapshot.ID), Result: snapshot}
}

// Terminal reports whether this is the final event of the scan.
func (e *ResultEvent) Terminal() bool { return e.Result.Complete }

// Category names the candidate list a finding came from.
type Category string

const (
	CategoryAdmin      Category = "admin"
	CategoryVulnerable Category = "vulnerable"
	CategoryCustom     Category = "custom"
)

// FindingEvent announces one path finding.
type FindingEvent struct {
	BaseEvent
	Target   string              `json:"target"`
	Category Category            `json:"category"`
	Finding  scanner.PathFinding `json:"finding"`
}

// NewFinding creates a FindingEvent.
func NewFinding(scanID, target string, cat Category, f scanner.PathFinding) *FindingEvent {
	return &FindingEvent{BaseEvent: newBase(EventTypeFinding, scanID), Target: target, Category: cat, Finding: f}
}
