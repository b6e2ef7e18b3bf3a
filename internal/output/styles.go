package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/maxvaer/webrecon/internal/scanner"
)

var (
	colorPrimary = lipgloss.Color("#7D56F4")
	colorSuccess = lipgloss.Color("#00D26A")
	colorWarning = lipgloss.Color("#FFB800")
	colorError   = lipgloss.Color("#FF3838")
	colorInfo    = lipgloss.Color("#4D96FF")
	colorMuted   = lipgloss.Color("#6B7280")
	colorYellow  = lipgloss.Color("#FFD93D")
)

// styles holds the lipgloss styles bound to one output stream.
type styles struct {
	title   lipgloss.Style
	section lipgloss.Style
	muted   lipgloss.Style
	info    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	error   lipgloss.Style
	status  func(code int) lipgloss.Style
}

// newStyles binds styles to w. The renderer drops colors when w is not a
// terminal; noColor forces that.
func newStyles(w io.Writer, noColor bool) styles {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}

	s := styles{
		title:   r.NewStyle().Bold(true).Foreground(colorPrimary),
		section: r.NewStyle().Bold(true).Underline(true),
		muted:   r.NewStyle().Foreground(colorMuted),
		info:    r.NewStyle().Foreground(colorInfo),
		success: r.NewStyle().Foreground(colorSuccess),
		warning: r.NewStyle().Foreground(colorWarning),
		error:   r.NewStyle().Foreground(colorError).Bold(true),
	}
	s.status = func(code int) lipgloss.Style {
		switch {
		case code >= 200 && code < 300:
			return s.success
		case code >= 300 && code < 400:
			return s.info
		case code >= 400 && code < 500:
			return r.NewStyle().Foreground(colorYellow)
		default:
			return s.error
		}
	}
	return s
}

func (s styles) severity(sev scanner.Severity) lipgloss.Style {
	switch sev {
	case scanner.SeveritySuccess:
		return s.success
	case scanner.SeverityWarning:
		return s.warning
	case scanner.SeverityError:
		return s.error
	default:
		return s.info
	}
}

func (s styles) flag(ok bool) string {
	if ok {
		return s.success.Render("yes")
	}
	return s.warning.Render("no")
}
