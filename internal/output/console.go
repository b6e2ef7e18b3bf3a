package output

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/maxvaer/webrecon/internal/events"
	"github.com/maxvaer/webrecon/internal/scanner"
)

// ConsoleOptions configures the live console observer.
type ConsoleOptions struct {
	Quiet   bool // only warnings and errors, no progress line
	NoColor bool
}

// Console prints log events as they arrive and keeps a progress line at the
// bottom of the stream. It is safe for concurrent use.
type Console struct {
	mu       sync.Mutex
	w        io.Writer
	st       styles
	quiet    bool
	percent  int
	drawn    bool
	start    time.Time
	findings int
}

// NewConsole creates a console observer writing to w, usually stderr.
func NewConsole(w io.Writer, opts ConsoleOptions) *Console {
	return &Console{w: w, st: newStyles(w, opts.NoColor), quiet: opts.Quiet, start: time.Now()}
}

// EventTypes implements events.Hook.
func (c *Console) EventTypes() []events.EventType {
	return []events.EventType{events.EventTypeLog, events.EventTypeProgress, events.EventTypeFinding, events.EventTypeResult}
}

// OnEvent implements events.Hook.
func (c *Console) OnEvent(_ context.Context, event events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e := event.(type) {
	case *events.LogEvent:
		if c.quiet && e.Severity != scanner.SeverityWarning && e.Severity != scanner.SeverityError {
			return nil
		}
		c.clearLine()
		fmt.Fprintf(c.w, "%s %s %s\n",
			c.st.muted.Render(e.Time.Format("15:04:05")),
			c.st.severity(e.Severity).Render(fmt.Sprintf("[%-7s]", e.Severity)),
			e.Message)
		c.redraw()
	case *events.FindingEvent:
		c.findings++
	case *events.ProgressEvent:
		if c.quiet {
			return nil
		}
		c.percent = e.Percent
		c.clearLine()
		c.redraw()
	case *events.ResultEvent:
		if e.Terminal() {
			c.clearLine()
		}
	}
	return nil
}

func (c *Console) clearLine() {
	if c.drawn {
		fmt.Fprint(c.w, "\r\033[K")
		c.drawn = false
	}
}

func (c *Console) redraw() {
	if c.quiet || c.percent >= 100 {
		return
	}
	elapsed := time.Since(c.start).Round(time.Second)
	fmt.Fprintf(c.w, "%s %d found | %s",
		c.st.title.Render(fmt.Sprintf("[%3d%%]", c.percent)), c.findings, elapsed)
	c.drawn = true
}
