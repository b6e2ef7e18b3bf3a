package output

import (
	"encoding/json"
	"io"

	"github.com/maxvaer/webrecon/internal/scanner"
)

// JSONWriter writes the result as one indented JSON document.
type JSONWriter struct {
	w      io.Writer
	closer io.Closer
}

// NewJSONWriter creates a JSON writer on w. closer may be nil.
func NewJSONWriter(w io.Writer, closer io.Closer) *JSONWriter {
	return &JSONWriter{w: w, closer: closer}
}

func (j *JSONWriter) Write(result *scanner.ScanResult) error {
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func (j *JSONWriter) Close() error { return closeOutput(j.closer) }
