package metrics

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxvaer/webrecon/internal/events"
	"github.com/maxvaer/webrecon/internal/scanner"
)

func newHook(t *testing.T, addr string) *Hook {
	t.Helper()
	h, err := New(Options{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestHook_Findings(t *testing.T) {
	h := newHook(t, "")
	ctx := context.Background()

	f := scanner.PathFinding{Path: "/admin", URL: "http://example.test/admin", StatusCode: 200}
	require.NoError(t, h.OnEvent(ctx, events.NewFinding("s", "http://example.test", events.CategoryAdmin, f)))
	require.NoError(t, h.OnEvent(ctx, events.NewFinding("s", "http://example.test", events.CategoryAdmin, f)))
	require.NoError(t, h.OnEvent(ctx, events.NewFinding("s", "http://example.test", events.CategoryCustom, f)))

	assert.Equal(t, 2.0, testutil.ToFloat64(h.findings.WithLabelValues("example.test", "admin")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.findings.WithLabelValues("example.test", "custom")))
}

func TestHook_LogsAndProgress(t *testing.T) {
	h := newHook(t, "")
	ctx := context.Background()

	require.NoError(t, h.OnEvent(ctx, events.NewLog("s", events.SeverityWarning, "Missing security header: X-Frame-Options")))
	require.NoError(t, h.OnEvent(ctx, events.NewLog("s", events.SeverityWarning, "Missing security header: Referrer-Policy")))
	require.NoError(t, h.OnEvent(ctx, events.NewProgress("s", 40)))

	assert.Equal(t, 2.0, testutil.ToFloat64(h.logs.WithLabelValues("warning")))
	assert.Equal(t, 40.0, testutil.ToFloat64(h.progress.WithLabelValues("s")))
}

func TestHook_Result(t *testing.T) {
	h := newHook(t, "")
	ctx := context.Background()

	start := time.Now()
	r := scanner.ScanResult{
		ID:         "s",
		Target:     "https://example.test",
		Technology: []string{"React", "Nginx"},
		Stress:     &scanner.StressSnapshot{RequestsSent: 10, Successful: 8, Failed: 2},
		StartedAt:  start,
	}
	require.NoError(t, h.OnEvent(ctx, events.NewProgress("s", 90)))
	require.NoError(t, h.OnEvent(ctx, events.NewResult(r)))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.technologies.WithLabelValues("example.test")))
	assert.Equal(t, 8.0, testutil.ToFloat64(h.stress.WithLabelValues("example.test", "successful")))
	assert.Equal(t, 0, testutil.CollectAndCount(h.scans))

	r.Complete = true
	r.Stopped = true
	r.FinishedAt = start.Add(2 * time.Second)
	require.NoError(t, h.OnEvent(ctx, events.NewResult(r)))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.scans.WithLabelValues("stopped")))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.duration.WithLabelValues("example.test")))
	assert.Equal(t, 0, testutil.CollectAndCount(h.progress), "progress gauge dropped after the scan")
}

func TestHook_Server(t *testing.T) {
	h := newHook(t, "127.0.0.1:0")
	require.NotEmpty(t, h.Addr())

	f := scanner.PathFinding{Path: "/.env", StatusCode: 200}
	require.NoError(t, h.OnEvent(context.Background(), events.NewFinding("s", "http://example.test", events.CategoryVulnerable, f)))

	resp, err := http.Get("http://" + h.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `webrecon_findings_total{category="vulnerable",target="example.test"} 1`)
}

func TestHook_Close(t *testing.T) {
	h, err := New(Options{Addr: "127.0.0.1:0"})
	require.NoError(t, err)
	addr := h.Addr()

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	// Events after Close are ignored.
	require.NoError(t, h.OnEvent(context.Background(), events.NewLog("s", events.SeverityInfo, "late")))
	assert.Equal(t, 0, testutil.CollectAndCount(h.logs))

	_, err = http.Get("http://" + addr + "/metrics")
	assert.Error(t, err)
}

func TestHostLabel(t *testing.T) {
	assert.Equal(t, "example.test:8080", hostLabel("http://example.test:8080/x"))
	assert.Equal(t, "unknown", hostLabel(""))
	assert.Equal(t, "unknown", hostLabel("not a url"))
}
