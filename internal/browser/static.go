package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/maxvaer/webrecon/internal/scanner"
)

// StaticCounter fetches a page and counts elements in the served HTML.
// Elements added by scripts at runtime are not seen.
type StaticCounter struct {
	client *http.Client
}

// NewStaticCounter creates a counter using client, or http.DefaultClient
// when client is nil.
func NewStaticCounter(client *http.Client) *StaticCounter {
	if client == nil {
		client = http.DefaultClient
	}
	return &StaticCounter{client: client}
}

// Count fetches tab, which must be a URL, and counts its resources.
func (c *StaticCounter) Count(ctx context.Context, tab string) (scanner.ResourceCounts, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tab, nil)
	if err != nil {
		return scanner.ResourceCounts{}, fmt.Errorf("building request for %s: %w", tab, err)
	}
	req.Header = scanner.BuildHeaders(false, nil)

	resp, err := c.client.Do(req)
	if err != nil {
		return scanner.ResourceCounts{}, fmt.Errorf("fetching %s: %w", tab, err)
	}
	defer resp.Body.Close()

	return CountHTML(resp.Body)
}

// CountHTML counts script[src], link[rel="stylesheet"] and img elements.
func CountHTML(r io.Reader) (scanner.ResourceCounts, error) {
	var counts scanner.ResourceCounts
	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return counts, fmt.Errorf("parsing HTML: %w", err)
			}
			counts.Total = counts.JS + counts.CSS + counts.Img
			return counts, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "script":
				if hasAttr(tok, "src", nil) {
					counts.JS++
				}
			case "link":
				if hasAttr(tok, "rel", func(v string) bool { return v == "stylesheet" }) {
					counts.CSS++
				}
			case "img":
				counts.Img++
			}
		}
	}
}

func hasAttr(tok html.Token, key string, match func(string) bool) bool {
	for _, a := range tok.Attr {
		if strings.EqualFold(a.Key, key) {
			return match == nil || match(a.Val)
		}
	}
	return false
}
