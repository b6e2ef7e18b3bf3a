package scanner

import "fmt"

// Severity classifies a human-readable log line.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Reporter receives the log lines produced while probing.
type Reporter interface {
	Report(sev Severity, msg string)
}

// ReporterFunc adapts a plain function to Reporter.
type ReporterFunc func(sev Severity, msg string)

// Report calls f(sev, msg).
func (f ReporterFunc) Report(sev Severity, msg string) { f(sev, msg) }

type discard struct{}

func (discard) Report(Severity, string) {}

func orDiscard(r Reporter) Reporter {
	if r == nil {
		return discard{}
	}
	return r
}

func reportf(r Reporter, sev Severity, format string, args ...any) {
	r.Report(sev, fmt.Sprintf(format, args...))
}
