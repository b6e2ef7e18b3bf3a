package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/maxvaer/webrecon/internal/scanner"
)

// TemplateData is the value a report template is executed with.
type TemplateData struct {
	Result *scanner.ScanResult
	Stats  Stats
}

// TemplateWriter renders the report through a user-supplied text/template.
// Sprig functions are available, plus json and formatBytes.
type TemplateWriter struct {
	w      io.Writer
	closer io.Closer
	tmpl   *template.Template
}

// NewTemplateWriter parses the template at path. closer may be nil.
func NewTemplateWriter(w io.Writer, closer io.Closer, path string) (*TemplateWriter, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template file: %w", err)
	}
	tmpl, err := ParseTemplate(string(content))
	if err != nil {
		return nil, err
	}
	return &TemplateWriter{w: w, closer: closer, tmpl: tmpl}, nil
}

// ParseTemplate parses a report template with the report function map.
func ParseTemplate(text string) (*template.Template, error) {
	funcMap := sprig.TxtFuncMap()
	funcMap["json"] = func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	}
	funcMap["formatBytes"] = scanner.FormatBytes

	tmpl, err := template.New("report").Funcs(funcMap).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return tmpl, nil
}

func (t *TemplateWriter) Write(result *scanner.ScanResult) error {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, TemplateData{Result: result, Stats: StatsOf(result)}); err != nil {
		return fmt.Errorf("executing report template: %w", err)
	}
	_, err := t.w.Write(buf.Bytes())
	return err
}

func (t *TemplateWriter) Close() error { return closeOutput(t.closer) }
