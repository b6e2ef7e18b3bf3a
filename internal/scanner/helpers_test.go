package scanner

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// logRecorder collects reported lines for assertions.
type logRecorder struct {
	mu    sync.Mutex
	lines []logLine
}

type logLine struct {
	sev Severity
	msg string
}

func (r *logRecorder) Report(sev Severity, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, logLine{sev, msg})
}

func (r *logRecorder) messages(sev Severity) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, l := range r.lines {
		if l.sev == sev {
			out = append(out, l.msg)
		}
	}
	return out
}

func newTestRequester(t *testing.T, target string) *Requester {
	t.Helper()
	req, err := NewRequester(target, RequesterOptions{Timeout: 2 * time.Second})
	require.NoError(t, err)
	return req
}

// deadOrigin returns the URL of a server that has already been closed, so
// every request to it fails at the transport level.
func deadOrigin(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

// fastThrottle keeps path-probe tests quick.
func fastThrottle() *Throttler {
	return NewThrottler(time.Millisecond, false, nil)
}
