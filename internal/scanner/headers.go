package scanner

import (
	"math/rand/v2"
	"net/http"

	"github.com/maxvaer/webrecon/internal/signatures"
)

// browserHeaders mimic what a desktop browser sends on a top-level
// navigation, so targets answer probes the way they answer real visitors.
var browserHeaders = [][2]string{
	{"Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"},
	{"Accept-Language", "en-US,en;q=0.5"},
	{"Connection", "keep-alive"},
	{"Upgrade-Insecure-Requests", "1"},
	{"Cache-Control", "no-cache"},
	{"Pragma", "no-cache"},
}

// BuildHeaders returns the header set for one outbound request. When
// randomUA is set a user agent is drawn from the pool using pick, which
// must return a value in [0, n). A nil pick uses math/rand.
func BuildHeaders(randomUA bool, pick func(n int) int) http.Header {
	h := make(http.Header, len(browserHeaders)+1)
	for _, kv := range browserHeaders {
		h.Set(kv[0], kv[1])
	}
	if randomUA && len(signatures.UserAgents) > 0 {
		if pick == nil {
			pick = rand.IntN
		}
		h.Set("User-Agent", signatures.UserAgents[pick(len(signatures.UserAgents))])
	}
	return h
}
