package scanner

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/maxvaer/webrecon/internal/config"
	"github.com/maxvaer/webrecon/internal/signatures"
)

// NetworkAnalyzer inspects the headers and cookies of the origin's answer.
type NetworkAnalyzer struct {
	req      *Requester
	reporter Reporter
}

// NewNetworkAnalyzer creates an analyzer.
func NewNetworkAnalyzer(req *Requester, reporter Reporter) *NetworkAnalyzer {
	return &NetworkAnalyzer{req: req, reporter: orDiscard(reporter)}
}

// Analyze fetches the origin once, sending the session cookies, and runs the
// enabled extractions on the answer.
func (a *NetworkAnalyzer) Analyze(ctx context.Context, opts config.NetworkOptions) (*NetworkSnapshot, error) {
	resp, err := a.req.Get(ctx, "/")
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", a.req.Origin(), err)
	}

	snap := &NetworkSnapshot{}
	if opts.Headers {
		snap.Headers = FlattenHeaders(resp.Header)
		reportf(a.reporter, SeverityInfo, "Analyzed %d HTTP headers", len(snap.Headers))
	}

	if opts.Security {
		snap.Security = make(map[string]bool, len(signatures.SecurityHeaders))
		for _, name := range signatures.SecurityHeaders {
			present := len(resp.Header.Values(name)) > 0
			snap.Security[name] = present
			if present {
				reportf(a.reporter, SeveritySuccess, "Security header found: %s", name)
			} else {
				reportf(a.reporter, SeverityWarning, "Missing security header: %s", name)
			}
		}
	}

	if opts.Cookies {
		snap.Cookies = ParseSetCookie(strings.Join(resp.Header.Values("Set-Cookie"), ", "))
		for _, c := range snap.Cookies {
			if c.Secure {
				reportf(a.reporter, SeveritySuccess, "Cookie found: %s (secure)", c.Name)
			} else {
				reportf(a.reporter, SeverityWarning, "Cookie found: %s (not secure)", c.Name)
			}
		}
	}
	return snap, nil
}

// FlattenHeaders maps each header name to its values joined by ", ".
func FlattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// expiresDay matches an unfinished "expires=Wed" at the end of a segment,
// whose following comma belongs to the date.
var expiresDay = regexp.MustCompile(`(?i)expires\s*=\s*[a-z]{3,9}$`)

// ParseSetCookie parses joined Set-Cookie material into cookies. Cookies are
// separated by top-level commas and attributes by semicolons. The first
// name=value pair is the cookie itself; entries without '=' are skipped.
func ParseSetCookie(material string) []Cookie {
	var cookies []Cookie
	for _, raw := range splitCookies(material) {
		parts := strings.Split(raw, ";")
		name, value, ok := strings.Cut(strings.TrimSpace(parts[0]), "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		attrs := strings.ToLower(strings.Join(parts[1:], ";"))
		cookies = append(cookies, Cookie{
			Name:     name,
			Value:    strings.TrimSpace(value),
			Secure:   strings.Contains(attrs, "secure"),
			HTTPOnly: strings.Contains(attrs, "httponly"),
		})
	}
	return cookies
}

func splitCookies(material string) []string {
	var out []string
	var cur strings.Builder
	for _, r := range material {
		if r == ',' && !expiresDay.MatchString(cur.String()) {
			out = append(out, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	if strings.TrimSpace(cur.String()) != "" {
		out = append(out, cur.String())
	}
	return out
}
