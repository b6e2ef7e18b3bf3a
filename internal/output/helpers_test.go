package output

import (
	"time"

	"github.com/maxvaer/webrecon/internal/scanner"
)

func ptr[T any](v T) *T { return &v }

func sampleResult() *scanner.ScanResult {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &scanner.ScanResult{
		ID:     "scan-1",
		Target: "http://example.test",
		AdminPaths: []scanner.PathFinding{
			{Path: "/admin", URL: "http://example.test/admin", StatusCode: 200},
			{Path: "/admin/login", URL: "http://example.test/admin/login", StatusCode: 302},
		},
		VulnerablePaths: []scanner.PathFinding{
			{Path: "/.git/HEAD", URL: "http://example.test/.git/HEAD", StatusCode: 200},
		},
		Technology: []string{"WordPress", "jQuery"},
		Network: &scanner.NetworkSnapshot{
			Headers:  map[string]string{"Server": "nginx"},
			Security: map[string]bool{"X-Frame-Options": true, "Content-Security-Policy": false},
			Cookies:  []scanner.Cookie{{Name: "sid", Value: "abc", Secure: true, HTTPOnly: true}},
		},
		Performance: &scanner.PerformanceSnapshot{
			LoadTimeMs:   ptr(int64(120)),
			ResponseSize: ptr("1.5 KB"),
			Resources:    &scanner.ResourceCounts{JS: 2, CSS: 1, Img: 3, Total: 6},
		},
		Stress:     &scanner.StressSnapshot{RequestsSent: 10, Successful: 9, Failed: 1, AverageTimeMs: 42},
		Complete:   true,
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
	}
}

// memWriter records what it was asked to write.
type memWriter struct {
	written []*scanner.ScanResult
	closed  int
	err     error
}

func (m *memWriter) Write(r *scanner.ScanResult) error {
	m.written = append(m.written, r)
	return m.err
}

func (m *memWriter) Close() error {
	m.closed++
	return nil
}
