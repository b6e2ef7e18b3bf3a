package output

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/maxvaer/webrecon/internal/scanner"
)

// TextWriter renders a sectioned, human-readable report.
type TextWriter struct {
	w      io.Writer
	closer io.Closer
	st     styles
	tree   bool
}

// NewTextWriter creates a text writer on w. closer may be nil.
func NewTextWriter(w io.Writer, closer io.Closer, noColor, tree bool) *TextWriter {
	return &TextWriter{w: w, closer: closer, st: newStyles(w, noColor), tree: tree}
}

func (t *TextWriter) Write(result *scanner.ScanResult) error {
	var b strings.Builder
	st := t.st

	fmt.Fprintf(&b, "\n%s %s\n", st.title.Render("Scan report"), result.Target)
	if result.Error != "" {
		fmt.Fprintf(&b, "%s %s\n", st.error.Render("Scan failed:"), result.Error)
	}

	if len(result.Technology) > 0 {
		fmt.Fprintf(&b, "\n%s\n  %s\n", st.section.Render("Technologies"), strings.Join(result.Technology, ", "))
	}

	t.writeFindings(&b, "Admin paths", result.AdminPaths)
	t.writeFindings(&b, "Sensitive paths", result.VulnerablePaths)
	t.writeFindings(&b, "Custom paths", result.CustomPaths)

	if n := result.Network; n != nil {
		if n.Security != nil {
			fmt.Fprintf(&b, "\n%s\n", st.section.Render("Security headers"))
			for _, name := range sortedKeys(n.Security) {
				fmt.Fprintf(&b, "  %-28s %s\n", name, st.flag(n.Security[name]))
			}
		}
		if len(n.Cookies) > 0 {
			fmt.Fprintf(&b, "\n%s\n", st.section.Render("Cookies"))
			for _, c := range n.Cookies {
				fmt.Fprintf(&b, "  %-28s secure=%s httponly=%s\n", c.Name, st.flag(c.Secure), st.flag(c.HTTPOnly))
			}
		}
		if n.Headers != nil {
			fmt.Fprintf(&b, "\n%s\n", st.section.Render("Response headers"))
			for _, name := range sortedKeys(n.Headers) {
				fmt.Fprintf(&b, "  %s: %s\n", st.muted.Render(name), n.Headers[name])
			}
		}
	}

	if p := result.Performance; p != nil {
		fmt.Fprintf(&b, "\n%s\n", st.section.Render("Performance"))
		if p.LoadTimeMs != nil {
			fmt.Fprintf(&b, "  Load time:      %d ms\n", *p.LoadTimeMs)
		}
		if p.ResponseSize != nil {
			fmt.Fprintf(&b, "  Response size:  %s\n", *p.ResponseSize)
		}
		if r := p.Resources; r != nil {
			fmt.Fprintf(&b, "  Resources:      %d total (%d JS, %d CSS, %d images)\n", r.Total, r.JS, r.CSS, r.Img)
		}
	}

	if s := result.Stress; s != nil {
		fmt.Fprintf(&b, "\n%s\n", st.section.Render("Stress test"))
		fmt.Fprintf(&b, "  Requests sent:  %d\n", s.RequestsSent)
		fmt.Fprintf(&b, "  Successful:     %s\n", st.success.Render(fmt.Sprint(s.Successful)))
		fmt.Fprintf(&b, "  Failed:         %s\n", st.error.Render(fmt.Sprint(s.Failed)))
		fmt.Fprintf(&b, "  Average time:   %d ms\n", s.AverageTimeMs)
	}

	if t.tree {
		var all []scanner.PathFinding
		all = append(all, result.AdminPaths...)
		all = append(all, result.VulnerablePaths...)
		all = append(all, result.CustomPaths...)
		writeTree(&b, all)
	}

	stats := StatsOf(result)
	state := "completed"
	switch {
	case stats.Failed:
		state = "failed"
	case stats.Stopped:
		state = "stopped"
	}
	fmt.Fprintf(&b, "\n%s\n", st.muted.Render(fmt.Sprintf("Scan %s: %d paths found | %d technologies | Duration: %s",
		state, stats.Findings, stats.Technologies, stats.Duration.Round(time.Millisecond))))

	_, err := io.WriteString(t.w, b.String())
	return err
}

func (t *TextWriter) writeFindings(b *strings.Builder, title string, findings []scanner.PathFinding) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", t.st.section.Render(title))
	for _, f := range findings {
		fmt.Fprintf(b, "  %s  %s\n", t.st.status(f.StatusCode).Render(fmt.Sprintf("%3d", f.StatusCode)), f.URL)
	}
}

func (t *TextWriter) Close() error { return closeOutput(t.closer) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
