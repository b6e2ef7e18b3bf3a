package runner

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxvaer/webrecon/internal/config"
	"github.com/maxvaer/webrecon/internal/events"
	"github.com/maxvaer/webrecon/internal/scanner"
	"github.com/maxvaer/webrecon/internal/signatures"
)

func newTarget(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	if handler == nil {
		handler = func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/":
				w.Header().Set("X-Frame-Options", "DENY")
				http.SetCookie(w, &http.Cookie{Name: "sid", Value: "1", Secure: true})
				_, _ = w.Write([]byte(`<link href="/wp-content/x.css"><script src="jquery.min.js"></script>`))
			case "/admin", "/robots.txt":
				w.WriteHeader(http.StatusOK)
			case "/wp-admin":
				http.Redirect(w, r, "/wp-login.php", http.StatusFound)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newTestSession(opts SessionOptions) (*Session, *events.Recorder) {
	d := events.NewDispatcher(nil)
	rec := &events.Recorder{}
	d.Subscribe(rec)
	if opts.PathDelay == 0 {
		opts.PathDelay = time.Millisecond
	}
	return NewSession(d, opts), rec
}

func disabled(url string) config.ScanConfig {
	return config.ScanConfig{URL: url}
}

func terminal(t *testing.T, rec *events.Recorder) scanner.ScanResult {
	t.Helper()
	var terms []scanner.ScanResult
	for _, r := range rec.Results() {
		if r.Terminal() {
			terms = append(terms, r.Result)
		}
	}
	require.Len(t, terms, 1, "exactly one terminal snapshot")
	last := rec.Results()[len(rec.Results())-1]
	require.True(t, last.Terminal(), "terminal snapshot must be the last result")
	return terms[0]
}

func logMessages(rec *events.Recorder) []string {
	var out []string
	for _, l := range rec.Logs() {
		out = append(out, l.Message)
	}
	return out
}

func indexOfPrefix(msgs []string, prefix string) int {
	return slices.IndexFunc(msgs, func(m string) bool { return strings.HasPrefix(m, prefix) })
}

type fakeCounter struct {
	counts scanner.ResourceCounts
	panic  bool
}

func (c fakeCounter) Count(context.Context, string) (scanner.ResourceCounts, error) {
	if c.panic {
		panic("counter exploded")
	}
	return c.counts, nil
}

func TestZeroUnitsStillTerminates(t *testing.T) {
	srv := newTarget(t, nil)
	sess, rec := newTestSession(SessionOptions{})

	require.Equal(t, StatusStarted, sess.Start(context.Background(), disabled(srv.URL), ""))
	sess.Wait()

	res := terminal(t, rec)
	assert.True(t, res.Complete)
	assert.Empty(t, res.Error)
	assert.Equal(t, []int{0, 100}, rec.Progress())
	assert.False(t, sess.Running())
}

func TestFullRunOrderAndResults(t *testing.T) {
	srv := newTarget(t, nil)
	sess, rec := newTestSession(SessionOptions{Counter: fakeCounter{counts: scanner.ResourceCounts{JS: 1, Total: 1}}})

	cfg := config.Default()
	cfg.URL = srv.URL + "/some/page?x=1"
	cfg.Scan.VulnerablePaths = false
	cfg.CustomPaths = []string{"robots.txt", "/robots.txt", "nothing-here"}

	require.Equal(t, StatusStarted, sess.Start(context.Background(), cfg, ""))
	sess.Wait()

	res := terminal(t, rec)
	assert.True(t, res.Complete)
	assert.Empty(t, res.Error)
	assert.Equal(t, srv.URL, res.Target)
	assert.NotEmpty(t, res.ID)
	assert.False(t, res.FinishedAt.IsZero())

	assert.Equal(t, []string{"WordPress", "jQuery"}, res.Technology)

	require.NotNil(t, res.Network)
	assert.True(t, res.Network.Security["X-Frame-Options"])
	require.Len(t, res.Network.Cookies, 1)
	assert.True(t, res.Network.Cookies[0].Secure)

	require.NotNil(t, res.Performance)
	require.NotNil(t, res.Performance.Resources)
	assert.Equal(t, 1, res.Performance.Resources.Total)

	require.Len(t, res.AdminPaths, 2)
	assert.Equal(t, "/admin", res.AdminPaths[0].Path)
	assert.Equal(t, "/wp-admin", res.AdminPaths[1].Path)
	assert.Equal(t, http.StatusFound, res.AdminPaths[1].StatusCode)
	assert.Empty(t, res.VulnerablePaths)
	require.Len(t, res.CustomPaths, 1)
	assert.Equal(t, "/robots.txt", res.CustomPaths[0].Path)

	msgs := logMessages(rec)
	order := []int{
		indexOfPrefix(msgs, "Detecting website technologies"),
		indexOfPrefix(msgs, "Analyzing network information"),
		indexOfPrefix(msgs, "Running performance tests"),
		indexOfPrefix(msgs, "Scanning for admin paths"),
		indexOfPrefix(msgs, "Scanning for custom paths"),
		indexOfPrefix(msgs, "Scan completed successfully"),
	}
	for _, i := range order {
		require.GreaterOrEqual(t, i, 0, msgs)
	}
	assert.True(t, slices.IsSorted(order), "sub-scans out of order: %v", order)
	assert.Equal(t, -1, indexOfPrefix(msgs, "Scanning for vulnerable paths"))

	// tech + network + perf + admin list + two custom paths
	total := 3 + len(signatures.AdminPaths) + 2
	progress := rec.Progress()
	assert.Equal(t, 0, progress[0])
	assert.Equal(t, 100, progress[len(progress)-1])
	assert.True(t, slices.IsSorted(progress))
	assert.Len(t, progress, 1+total+1)

	assert.Len(t, rec.Findings(), 3)
}

func TestBusyRejection(t *testing.T) {
	release := make(chan struct{})
	srv := newTarget(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	sess, rec := newTestSession(SessionOptions{})

	cfg := disabled(srv.URL)
	cfg.Scan.Technologies = true

	require.Equal(t, StatusStarted, sess.Start(context.Background(), cfg, ""))
	for i := 0; i < 3; i++ {
		assert.Equal(t, StatusBusy, sess.Start(context.Background(), cfg, ""))
	}
	assert.True(t, sess.Running())

	close(release)
	sess.Wait()
	res := terminal(t, rec)
	assert.Equal(t, srv.URL, res.Target)

	ids := map[string]struct{}{}
	for _, r := range rec.Results() {
		ids[r.Result.ID] = struct{}{}
	}
	assert.Len(t, ids, 1, "rejected starts must not begin a second scan")

	require.Equal(t, StatusStarted, sess.Start(context.Background(), disabled(srv.URL), ""))
	sess.Wait()
}

func TestStopEndsScanAtCheckpoint(t *testing.T) {
	var sess *Session
	srv := newTarget(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/admin" {
			assert.Equal(t, StatusStopping, sess.Stop())
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	sess, rec := newTestSession(SessionOptions{})

	cfg := disabled(srv.URL)
	cfg.Scan.AdminPaths = true
	cfg.Scan.VulnerablePaths = true
	cfg.Stress = config.StressOptions{Enabled: true, RequestsPerSecond: 1, Duration: 1}

	require.Equal(t, StatusStarted, sess.Start(context.Background(), cfg, ""))
	sess.Wait()

	res := terminal(t, rec)
	assert.True(t, res.Complete)
	assert.True(t, res.Stopped)
	assert.Empty(t, res.Error)
	require.Len(t, res.AdminPaths, 1)
	assert.Empty(t, res.VulnerablePaths)
	assert.Nil(t, res.Stress)

	msgs := logMessages(rec)
	assert.GreaterOrEqual(t, indexOfPrefix(msgs, "Scan stopped by user"), 0)
	assert.Equal(t, -1, indexOfPrefix(msgs, "Scanning for vulnerable paths"))
	assert.Equal(t, -1, indexOfPrefix(msgs, "Scan completed successfully"))
	assert.NotContains(t, rec.Progress(), 100)
}

func TestStopWhileIdle(t *testing.T) {
	sess, _ := newTestSession(SessionOptions{})
	assert.Equal(t, StatusStopping, sess.Stop())
	sess.Wait()
	assert.False(t, sess.Running())
}

func TestStopDoesNotLeakIntoNextRun(t *testing.T) {
	srv := newTarget(t, nil)
	sess, rec := newTestSession(SessionOptions{})
	sess.Stop()

	cfg := disabled(srv.URL)
	cfg.Scan.Technologies = true
	require.Equal(t, StatusStarted, sess.Start(context.Background(), cfg, ""))
	sess.Wait()

	res := terminal(t, rec)
	assert.Equal(t, []string{"WordPress", "jQuery"}, res.Technology)
}

func TestInvalidTarget(t *testing.T) {
	for _, target := range []string{"", "example.com", "ftp://example.com/x"} {
		sess, rec := newTestSession(SessionOptions{})
		cfg := config.Default()
		cfg.URL = target

		require.Equal(t, StatusStarted, sess.Start(context.Background(), cfg, ""))
		sess.Wait()

		res := terminal(t, rec)
		assert.True(t, res.Complete, target)
		assert.Contains(t, res.Error, ErrInvalidTarget.Error(), target)
		assert.False(t, sess.Running())
	}
}

func TestPanicIsOrchestrationFailure(t *testing.T) {
	srv := newTarget(t, nil)
	sess, rec := newTestSession(SessionOptions{Counter: fakeCounter{panic: true}})

	cfg := disabled(srv.URL)
	cfg.Performance.ResourceCount = true

	require.Equal(t, StatusStarted, sess.Start(context.Background(), cfg, ""))
	sess.Wait()

	res := terminal(t, rec)
	assert.Contains(t, res.Error, "counter exploded")
	assert.False(t, sess.Running())

	require.Equal(t, StatusStarted, sess.Start(context.Background(), disabled(srv.URL), ""))
	sess.Wait()
}

func TestSubScanFailureIsNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	sess, rec := newTestSession(SessionOptions{Timeout: time.Second})
	cfg := disabled(url)
	cfg.Scan.Technologies = true
	cfg.Network.Headers = true

	require.Equal(t, StatusStarted, sess.Start(context.Background(), cfg, ""))
	sess.Wait()

	res := terminal(t, rec)
	assert.Empty(t, res.Error)
	assert.Nil(t, res.Network)
	assert.Empty(t, res.Technology)

	msgs := logMessages(rec)
	assert.GreaterOrEqual(t, indexOfPrefix(msgs, "Error detecting technologies"), 0)
	assert.GreaterOrEqual(t, indexOfPrefix(msgs, "Error analyzing network"), 0)
	assert.GreaterOrEqual(t, indexOfPrefix(msgs, "Scan completed successfully"), 0)
}

func TestStressPublishesPerWindow(t *testing.T) {
	srv := newTarget(t, nil)
	sess, rec := newTestSession(SessionOptions{})

	cfg := disabled(srv.URL)
	cfg.Stress = config.StressOptions{Enabled: true, RequestsPerSecond: 3, Duration: 1}

	require.Equal(t, StatusStarted, sess.Start(context.Background(), cfg, ""))
	sess.Wait()

	res := terminal(t, rec)
	require.NotNil(t, res.Stress)
	assert.Equal(t, 3, res.Stress.RequestsSent)
	assert.Equal(t, res.Stress.RequestsSent, res.Stress.Successful+res.Stress.Failed)
	assert.GreaterOrEqual(t, indexOfPrefix(logMessages(rec), "Stress test completed: 3 successful, 0 failed"), 0)
}

func TestShutdownContextEndsScan(t *testing.T) {
	srv := newTarget(t, nil)
	sess, rec := newTestSession(SessionOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := config.Default()
	cfg.URL = srv.URL
	require.Equal(t, StatusStarted, sess.Start(ctx, cfg, ""))
	sess.Wait()

	res := terminal(t, rec)
	assert.True(t, res.Complete)
	assert.Empty(t, res.Error)
}

func TestSnapshotsAreIndependent(t *testing.T) {
	srv := newTarget(t, nil)
	sess, rec := newTestSession(SessionOptions{})

	cfg := disabled(srv.URL)
	cfg.Scan.AdminPaths = true

	require.Equal(t, StatusStarted, sess.Start(context.Background(), cfg, ""))
	sess.Wait()

	results := rec.Results()
	require.GreaterOrEqual(t, len(results), 3)
	first := results[0].Result
	require.Len(t, first.AdminPaths, 1)
	first.AdminPaths[0].Path = "/mutated"
	assert.Equal(t, "/admin", results[1].Result.AdminPaths[0].Path)
	assert.Equal(t, "/admin", terminal(t, rec).AdminPaths[0].Path)
}

func TestErrInvalidTargetWrapping(t *testing.T) {
	sc := newScan(&Session{opts: SessionOptions{}}, config.ScanConfig{URL: "nope"}, "")
	err := sc.execute(context.Background())
	assert.True(t, errors.Is(err, ErrInvalidTarget))
	assert.True(t, errors.Is(err, scanner.ErrInvalidOrigin))
}
