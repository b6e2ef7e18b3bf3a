package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/maxvaer/webrecon/internal/config"
)

const bannerArt = `               __
 _      _____  / /_  ________  _________  ____
| | /| / / _ \/ __ \/ ___/ _ \/ ___/ __ \/ __ \
| |/ |/ /  __/ /_/ / /  /  __/ /__/ /_/ / / / /
|__/|__/\___/_.___/_/   \___/\___/\____/_/ /_/`

// Banner prints the startup banner and a summary of what will run.
func Banner(w io.Writer, cfg *config.ScanConfig, version string, noColor bool) {
	st := newStyles(w, noColor)

	fmt.Fprintf(w, "\n%s  %s\n\n", st.title.Render(bannerArt), st.muted.Render(VersionLabel(version)))

	rule := st.muted.Render("  " + strings.Repeat("─", 46))
	row := func(label, value string) {
		fmt.Fprintf(w, "  %s %s\n", st.muted.Render(fmt.Sprintf("%-14s", label+":")), value)
	}

	fmt.Fprintln(w, rule)
	row("Target", cfg.URL)

	var scans []string
	if cfg.Scan.Technologies {
		scans = append(scans, "technologies")
	}
	if cfg.Network.Any() {
		scans = append(scans, "network")
	}
	if cfg.Performance.Any() {
		scans = append(scans, "performance")
	}
	if cfg.Scan.AdminPaths {
		scans = append(scans, "admin paths")
	}
	if cfg.Scan.VulnerablePaths {
		scans = append(scans, "sensitive paths")
	}
	if len(cfg.CustomPaths) > 0 {
		scans = append(scans, fmt.Sprintf("%d custom paths", len(cfg.CustomPaths)))
	}
	if len(scans) == 0 {
		scans = append(scans, "none")
	}
	row("Scans", strings.Join(scans, ", "))

	if cfg.Stress.Enabled {
		row("Stress", st.warning.Render(fmt.Sprintf("%d req/s for %ds", cfg.Stress.RequestsPerSecond, cfg.Stress.Duration)))
	}
	if p := cfg.Proxy(); p != "" {
		row("Proxy", p)
	}
	fmt.Fprintf(w, "%s\n\n", rule)
}

// VersionLabel prefixes release versions with "v".
func VersionLabel(ver string) string {
	if ver != "dev" && ver != "" && !strings.HasPrefix(ver, "v") {
		return "v" + ver
	}
	return ver
}
