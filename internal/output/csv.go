package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/maxvaer/webrecon/internal/events"
	"github.com/maxvaer/webrecon/internal/scanner"
)

// CSVWriter writes one row per path finding and per detected technology.
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
}

// NewCSVWriter creates a CSV writer on w. closer may be nil.
func NewCSVWriter(w io.Writer, closer io.Closer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w), closer: closer}
}

func (c *CSVWriter) Write(result *scanner.ScanResult) error {
	if err := c.w.Write([]string{"target", "category", "path", "url", "status"}); err != nil {
		return err
	}

	for _, tech := range result.Technology {
		if err := c.w.Write([]string{result.Target, "technology", tech, "", ""}); err != nil {
			return err
		}
	}

	lists := []struct {
		cat      events.Category
		findings []scanner.PathFinding
	}{
		{events.CategoryAdmin, result.AdminPaths},
		{events.CategoryVulnerable, result.VulnerablePaths},
		{events.CategoryCustom, result.CustomPaths},
	}
	for _, l := range lists {
		for _, f := range l.findings {
			row := []string{result.Target, string(l.cat), f.Path, f.URL, strconv.Itoa(f.StatusCode)}
			if err := c.w.Write(row); err != nil {
				return err
			}
		}
	}

	c.w.Flush()
	return c.w.Error()
}

func (c *CSVWriter) Close() error { return closeOutput(c.closer) }
