package scanner

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"
	"golang.org/x/net/publicsuffix"
)

// ErrInvalidOrigin is returned when a target URL has no usable scheme or host.
var ErrInvalidOrigin = errors.New("target URL must have an http or https scheme and a host")

// Response holds the parts of an HTTP response the probes look at.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	URL        string
	Duration   time.Duration // request start to full body read
}

// RequesterOptions configures NewRequester.
type RequesterOptions struct {
	Timeout         time.Duration
	Proxy           string // http, https, socks5 or socks5h URL; "" for direct
	RandomUserAgent bool
	Jar             http.CookieJar // nil creates a fresh publicsuffix-aware jar
}

// Requester issues requests against one origin. Every request carries the
// browser-like header set and the shared cookie jar.
type Requester struct {
	client     *http.Client
	noRedirect *http.Client
	origin     *url.URL
	randomUA   bool
}

// Origin reduces a target URL to scheme://host[:port].
func Origin(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrigin, raw)
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}, nil
}

// NewRequester creates a Requester for the origin of target.
func NewRequester(target string, opts RequesterOptions) (*Requester, error) {
	origin, err := Origin(target)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	dialer := &net.Dialer{Timeout: timeout}
	transport := &http.Transport{
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
		DialContext:         dialer.DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
	}

	if opts.Proxy != "" {
		if err := applyProxy(transport, opts.Proxy, dialer); err != nil {
			return nil, err
		}
	}

	jar := opts.Jar
	if jar == nil {
		jar, err = cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("creating cookie jar: %w", err)
		}
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   timeout,
		Jar:       jar,
	}
	noRedirect := &http.Client{
		Transport: transport,
		Timeout:   timeout,
		Jar:       jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &Requester{
		client:     client,
		noRedirect: noRedirect,
		origin:     origin,
		randomUA:   opts.RandomUserAgent,
	}, nil
}

func applyProxy(transport *http.Transport, raw string, forward *net.Dialer) error {
	proxyURL, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid proxy URL %q: %w", raw, err)
	}

	switch proxyURL.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(proxyURL)
	case "socks5", "socks5h":
		// x/net/proxy only knows "socks5"; hostnames are always resolved by
		// the proxy, which is what socks5h asks for.
		socksURL := *proxyURL
		socksURL.Scheme = "socks5"
		d, err := proxy.FromURL(&socksURL, forward)
		if err != nil {
			return fmt.Errorf("creating SOCKS dialer: %w", err)
		}
		cd, ok := d.(proxy.ContextDialer)
		if !ok {
			return fmt.Errorf("SOCKS dialer for %q does not support contexts", raw)
		}
		transport.DialContext = cd.DialContext
	default:
		return fmt.Errorf("unsupported proxy scheme %q", proxyURL.Scheme)
	}
	return nil
}

// Origin returns the resolved origin the requester targets.
func (r *Requester) Origin() string {
	return r.origin.String()
}

// URL joins the origin and path.
func (r *Requester) URL(path string) string {
	return r.origin.String() + "/" + strings.TrimLeft(path, "/")
}

// Jar returns the cookie jar shared by all requests of this requester.
func (r *Requester) Jar() http.CookieJar {
	return r.client.Jar
}

// Client returns the redirect-following client, configured with the
// proxy, TLS settings and cookie jar of the requester.
func (r *Requester) Client() *http.Client {
	return r.client
}

// Get fetches origin+path, following redirects, and reads the full body.
func (r *Requester) Get(ctx context.Context, path string) (*Response, error) {
	return r.do(ctx, r.client, http.MethodGet, path)
}

// Head issues a HEAD for origin+path without following redirects.
func (r *Requester) Head(ctx context.Context, path string) (*Response, error) {
	return r.do(ctx, r.noRedirect, http.MethodHead, path)
}

func (r *Requester) do(ctx context.Context, client *http.Client, method, path string) (*Response, error) {
	target := r.URL(path)
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header = BuildHeaders(r.randomUA, nil)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body for %s: %w", path, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		URL:        target,
		Duration:   time.Since(start),
	}, nil
}
