// Package browser counts the script, stylesheet and image elements of a
// page. ChromeCounter renders the page in headless Chrome and sees the live
// DOM; StaticCounter parses the HTML as served.
package browser

import (
	"os"
	"os/exec"

	"github.com/maxvaer/webrecon/internal/scanner"
)

// countScript is evaluated in the page to count its resources.
const countScript = `(() => {
	const js = document.querySelectorAll('script[src]').length;
	const css = document.querySelectorAll('link[rel="stylesheet"]').length;
	const img = document.querySelectorAll('img').length;
	return {js, css, img, total: js + css + img};
})()`

var (
	_ scanner.ResourceCounter = (*ChromeCounter)(nil)
	_ scanner.ResourceCounter = (*StaticCounter)(nil)
)

// FindChrome returns the path of a Chrome or Chromium binary, or "" when
// none is installed.
func FindChrome() string {
	for _, name := range []string{"chrome", "chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	for _, path := range []string{
		`/usr/bin/google-chrome`,
		`/usr/bin/chromium-browser`,
		`/usr/bin/chromium`,
		`/snap/bin/chromium`,
		`/Applications/Google Chrome.app/Contents/MacOS/Google Chrome`,
		`/Applications/Chromium.app/Contents/MacOS/Chromium`,
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
