package scanner

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxvaer/webrecon/internal/config"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 Bytes"},
		{-5, "0 Bytes"},
		{1, "1 Bytes"},
		{1023, "1023 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1126, "1.1 KB"},
		{1048576, "1 MB"},
		{1073741824, "1 GB"},
		{1099511627776, "1 TB"},
		{1125899906842624, "1024 TB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.n), "FormatBytes(%d)", tt.n)
	}
}

type fakeCounter struct {
	counts ResourceCounts
	err    error
	tab    string
}

func (f *fakeCounter) Count(_ context.Context, tab string) (ResourceCounts, error) {
	f.tab = tab
	return f.counts, f.err
}

func TestPerformanceProberMeasure(t *testing.T) {
	body := strings.Repeat("x", 1536)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	counter := &fakeCounter{counts: ResourceCounts{JS: 2, CSS: 1, Img: 3, Total: 6}}
	prober := NewPerformanceProber(newTestRequester(t, srv.URL), counter, nil)

	snap := prober.Measure(context.Background(),
		config.PerformanceOptions{LoadTime: true, ResponseSize: true, ResourceCount: true}, srv.URL)

	require.NotNil(t, snap.LoadTimeMs)
	assert.GreaterOrEqual(t, *snap.LoadTimeMs, int64(0))
	require.NotNil(t, snap.ResponseSize)
	assert.Equal(t, "1.5 KB", *snap.ResponseSize)
	require.NotNil(t, snap.Resources)
	assert.Equal(t, 6, snap.Resources.Total)
	assert.Equal(t, srv.URL, counter.tab)
}

func TestPerformanceProberIndependentFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	rec := &logRecorder{}
	prober := NewPerformanceProber(newTestRequester(t, srv.URL), &fakeCounter{err: errors.New("no tab")}, rec)
	snap := prober.Measure(context.Background(),
		config.PerformanceOptions{ResponseSize: true, ResourceCount: true}, "tab-1")

	assert.Nil(t, snap.LoadTimeMs)
	require.NotNil(t, snap.ResponseSize)
	assert.Equal(t, "0 Bytes", *snap.ResponseSize)
	assert.Nil(t, snap.Resources)
	assert.Equal(t, []string{"Error counting resources: no tab"}, rec.messages(SeverityError))
}

func TestPerformanceProberNoCounter(t *testing.T) {
	rec := &logRecorder{}
	prober := NewPerformanceProber(newTestRequester(t, deadOrigin(t)), nil, rec)
	snap := prober.Measure(context.Background(), config.PerformanceOptions{LoadTime: true, ResourceCount: true}, "")

	assert.Nil(t, snap.LoadTimeMs)
	assert.Nil(t, snap.Resources)
	assert.Len(t, rec.messages(SeverityError), 1)
	assert.Equal(t, []string{"Resource counting unavailable"}, rec.messages(SeverityWarning))
}
