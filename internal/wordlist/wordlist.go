// Package wordlist turns user-supplied candidate paths into the ordered,
// de-duplicated list the path prober consumes.
package wordlist

import (
	"fmt"
	"os"
	"strings"
)

// Load reads custom candidate paths from a file, one per line. Blank lines
// and '#' comments are skipped. Entries containing %EXT% are expanded once
// per extension, plus a bare variant with the placeholder removed.
func Load(path string, extensions []string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading paths file %s: %w", path, err)
	}
	return Expand(strings.Split(string(data), "\n"), extensions), nil
}

// Expand normalizes raw entries: trims them, drops comments, expands
// %EXT% placeholders, prefixes a leading slash and removes duplicates
// while keeping first-seen order.
func Expand(lines, extensions []string) []string {
	seen := make(map[string]struct{}, len(lines))
	var result []string

	add := func(entry string) {
		entry = Normalize(entry)
		if entry == "" {
			return
		}
		if _, ok := seen[entry]; !ok {
			seen[entry] = struct{}{}
			result = append(result, entry)
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.Contains(line, "%EXT%") {
			for _, ext := range extensions {
				ext = strings.TrimPrefix(ext, ".")
				add(strings.ReplaceAll(line, "%EXT%", ext))
			}
			bare := strings.ReplaceAll(line, ".%EXT%", "")
			bare = strings.ReplaceAll(bare, "%EXT%", "")
			add(bare)
			continue
		}
		add(line)
	}

	return result
}

// Normalize returns p with surrounding space trimmed and exactly one
// leading slash. An empty or slash-only entry yields "".
func Normalize(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
