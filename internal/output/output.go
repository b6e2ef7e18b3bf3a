// Package output renders a scan for humans and machines: the live console
// observer and the final report writers.
package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/maxvaer/webrecon/internal/scanner"
)

// Stats summarizes a finished scan.
type Stats struct {
	Findings     int
	Technologies int
	Duration     time.Duration
	Stopped      bool
	Failed       bool
}

// StatsOf derives the summary of result.
func StatsOf(result *scanner.ScanResult) Stats {
	return Stats{
		Findings:     result.Findings(),
		Technologies: len(result.Technology),
		Duration:     result.Elapsed(),
		Stopped:      result.Stopped,
		Failed:       result.Error != "",
	}
}

// Writer renders the final report of a scan.
type Writer interface {
	Write(result *scanner.ScanResult) error
	Close() error
}

// Format names a report format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatTemplate Format = "template"
)

// WriterOptions selects and configures a report writer.
type WriterOptions struct {
	Format       Format
	OutputFile   string // "" writes to stdout
	TemplateFile string // required for FormatTemplate
	NoColor      bool
	Tree         bool // text only: append a tree of the found paths
}

// NewWriter creates the writer for opts.Format.
func NewWriter(opts WriterOptions) (Writer, error) {
	switch opts.Format {
	case FormatText, FormatJSON, FormatCSV, "":
	case FormatTemplate:
		if opts.TemplateFile == "" {
			return nil, fmt.Errorf("--format template requires --template")
		}
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, json, csv or template)", opts.Format)
	}

	w, closer, err := openOutput(opts.OutputFile)
	if err != nil {
		return nil, err
	}

	switch opts.Format {
	case FormatJSON:
		return NewJSONWriter(w, closer), nil
	case FormatCSV:
		return NewCSVWriter(w, closer), nil
	case FormatTemplate:
		tw, err := NewTemplateWriter(w, closer, opts.TemplateFile)
		if err != nil {
			_ = closeOutput(closer)
			return nil, err
		}
		return tw, nil
	default:
		return NewTextWriter(w, closer, opts.NoColor, opts.Tree), nil
	}
}

func openOutput(path string) (io.Writer, io.Closer, error) {
	if path == "" {
		return os.Stdout, nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f, nil
}

func closeOutput(c io.Closer) error {
	if c != nil {
		return c.Close()
	}
	return nil
}
