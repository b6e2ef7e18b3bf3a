package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/maxvaer/webrecon/internal/scanner"
)

// ChromeOptions configures ChromeCounter.
type ChromeOptions struct {
	// ExecPath is the browser binary. Empty lets chromedp search for one.
	ExecPath string
	// Proxy is handed to Chrome's --proxy-server flag.
	Proxy string
	// Timeout bounds one page load. Zero means 30 seconds.
	Timeout time.Duration
	Logger  *slog.Logger
}

// ChromeCounter renders pages in headless Chrome and counts the resources
// of the resulting DOM.
type ChromeCounter struct {
	opts ChromeOptions
}

// NewChromeCounter creates a counter. The browser is started per Count call.
func NewChromeCounter(opts ChromeOptions) *ChromeCounter {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ChromeCounter{opts: opts}
}

// Count navigates to tab, a URL, and evaluates the counting script.
func (c *ChromeCounter) Count(ctx context.Context, tab string) (scanner.ResourceCounts, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("ignore-certificate-errors", true),
	)
	if c.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(c.opts.ExecPath))
	}
	if c.opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(c.opts.Proxy))
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			c.opts.Logger.Debug(fmt.Sprintf(format, args...), "component", "chromedp")
		}),
	)
	defer browserCancel()

	var counts scanner.ResourceCounts
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(tab),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(countScript, &counts),
	)
	if err != nil {
		return scanner.ResourceCounts{}, fmt.Errorf("counting resources in Chrome: %w", err)
	}
	return counts, nil
}
