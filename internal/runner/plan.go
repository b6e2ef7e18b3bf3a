package runner

import (
	"github.com/maxvaer/webrecon/internal/config"
	"github.com/maxvaer/webrecon/internal/events"
	"github.com/maxvaer/webrecon/internal/signatures"
	"github.com/maxvaer/webrecon/internal/wordlist"
)

// pathSet is one candidate list and where its findings are filed.
type pathSet struct {
	category events.Category
	label    string
	paths    []string
}

// plan is the fixed set of units a run will perform. It is computed once so
// the progress denominator and the gating agree.
type plan struct {
	tech     bool
	network  bool
	perf     bool
	pathSets []pathSet
	stress   bool
}

func newPlan(cfg config.ScanConfig) plan {
	p := plan{
		tech:    cfg.Scan.Technologies,
		network: cfg.Network.Any(),
		perf:    cfg.Performance.Any(),
		stress:  cfg.Stress.Enabled,
	}
	if cfg.Scan.AdminPaths {
		p.pathSets = append(p.pathSets, pathSet{events.CategoryAdmin, "admin", signatures.AdminPaths})
	}
	if cfg.Scan.VulnerablePaths {
		p.pathSets = append(p.pathSets, pathSet{events.CategoryVulnerable, "vulnerable", signatures.VulnerablePaths})
	}
	if custom := wordlist.Expand(cfg.CustomPaths, nil); len(custom) > 0 {
		p.pathSets = append(p.pathSets, pathSet{events.CategoryCustom, "custom", custom})
	}
	return p
}

// totalUnits counts one unit per probed path and one per other sub-scan.
func (p plan) totalUnits() int {
	n := 0
	for _, on := range []bool{p.tech, p.network, p.perf, p.stress} {
		if on {
			n++
		}
	}
	for _, ps := range p.pathSets {
		n += len(ps.paths)
	}
	return n
}
