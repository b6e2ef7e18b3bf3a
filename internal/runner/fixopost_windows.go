//go:build windows

package runner

// fixOutputProcessing has nothing to restore on Windows: raw console input
// mode leaves output translation alone.
func fixOutputProcessing(int) {}
