package scanner

import (
	"context"
	"fmt"
	"strings"

	"github.com/maxvaer/webrecon/internal/signatures"
)

// MatchTechnologies returns the names of every signature with at least one
// pattern occurring in body, compared case-insensitively, in table order.
func MatchTechnologies(body string, sigs []signatures.Signature) []string {
	lower := strings.ToLower(body)
	var found []string
	for _, sig := range sigs {
		for _, pattern := range sig.Patterns {
			if strings.Contains(lower, strings.ToLower(pattern)) {
				found = append(found, sig.Name)
				break
			}
		}
	}
	return found
}

// TechDetector fingerprints the origin's landing page.
type TechDetector struct {
	req        *Requester
	signatures []signatures.Signature
	reporter   Reporter
}

// NewTechDetector creates a detector using the built-in signature table.
func NewTechDetector(req *Requester, reporter Reporter) *TechDetector {
	return &TechDetector{req: req, signatures: signatures.Technologies, reporter: orDiscard(reporter)}
}

// Detect fetches the origin once and matches the body against the
// signature table. A non-2xx answer yields no technologies.
func (d *TechDetector) Detect(ctx context.Context) ([]string, error) {
	resp, err := d.req.Get(ctx, "/")
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", d.req.Origin(), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reportf(d.reporter, SeverityWarning, "Technology detection skipped: %s answered %d", d.req.Origin(), resp.StatusCode)
		return nil, nil
	}

	found := MatchTechnologies(string(resp.Body), d.signatures)
	for _, name := range found {
		reportf(d.reporter, SeveritySuccess, "Detected technology: %s", name)
	}
	return found, nil
}
