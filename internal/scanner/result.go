package scanner

import (
	"maps"
	"slices"
	"time"
)

// PathFinding is a candidate path that answered 200, 301 or 302.
type PathFinding struct {
	Path       string `json:"path"`
	URL        string `json:"url"`
	StatusCode int    `json:"status"`
}

// Cookie is one entry parsed out of the Set-Cookie material.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Secure   bool   `json:"secure"`
	HTTPOnly bool   `json:"http_only"`
}

// NetworkSnapshot is the outcome of the network analyzer. A nil field means
// the corresponding check was disabled.
type NetworkSnapshot struct {
	Headers  map[string]string `json:"headers,omitempty"`
	Security map[string]bool   `json:"security,omitempty"`
	Cookies  []Cookie          `json:"cookies,omitempty"`
}

// ResourceCounts is the number of script, stylesheet and image elements on
// the rendered page.
type ResourceCounts struct {
	JS    int `json:"js"`
	CSS   int `json:"css"`
	Img   int `json:"img"`
	Total int `json:"total"`
}

// PerformanceSnapshot holds whichever measurements were enabled and
// succeeded.
type PerformanceSnapshot struct {
	LoadTimeMs   *int64          `json:"load_time_ms,omitempty"`
	ResponseSize *string         `json:"response_size,omitempty"`
	Resources    *ResourceCounts `json:"resources,omitempty"`
}

// StressSnapshot holds the cumulative counters of a load run.
type StressSnapshot struct {
	RequestsSent  int   `json:"requests_sent"`
	Successful    int   `json:"successful"`
	Failed        int   `json:"failed"`
	AverageTimeMs int64 `json:"average_time_ms"`
}

// ScanResult is the aggregate state of one scan run. The orchestrator owns
// the value; observers only ever see copies made by Snapshot.
type ScanResult struct {
	ID              string               `json:"id"`
	Target          string               `json:"target"`
	AdminPaths      []PathFinding        `json:"admin_paths"`
	VulnerablePaths []PathFinding        `json:"vulnerable_paths"`
	CustomPaths     []PathFinding        `json:"custom_paths"`
	Technology      []string             `json:"technology"`
	Network         *NetworkSnapshot     `json:"network,omitempty"`
	Performance     *PerformanceSnapshot `json:"performance,omitempty"`
	Stress          *StressSnapshot      `json:"stress,omitempty"`
	Complete        bool                 `json:"complete"`
	Stopped         bool                 `json:"stopped,omitempty"`
	Error           string               `json:"error,omitempty"`
	StartedAt       time.Time            `json:"started_at"`
	FinishedAt      time.Time            `json:"finished_at,omitzero"`
}

// Snapshot returns a deep copy of r.
func (r *ScanResult) Snapshot() ScanResult {
	out := *r
	out.AdminPaths = slices.Clone(r.AdminPaths)
	out.VulnerablePaths = slices.Clone(r.VulnerablePaths)
	out.CustomPaths = slices.Clone(r.CustomPaths)
	out.Technology = slices.Clone(r.Technology)

	if r.Network != nil {
		n := NetworkSnapshot{
			Headers:  maps.Clone(r.Network.Headers),
			Security: maps.Clone(r.Network.Security),
			Cookies:  slices.Clone(r.Network.Cookies),
		}
		out.Network = &n
	}

	if r.Performance != nil {
		var p PerformanceSnapshot
		if r.Performance.LoadTimeMs != nil {
			v := *r.Performance.LoadTimeMs
			p.LoadTimeMs = &v
		}
		if r.Performance.ResponseSize != nil {
			v := *r.Performance.ResponseSize
			p.ResponseSize = &v
		}
		if r.Performance.Resources != nil {
			v := *r.Performance.Resources
			p.Resources = &v
		}
		out.Performance = &p
	}

	if r.Stress != nil {
		s := *r.Stress
		out.Stress = &s
	}
	return out
}

// Findings returns the total number of path findings across all lists.
func (r *ScanResult) Findings() int {
	return len(r.AdminPaths) + len(r.VulnerablePaths) + len(r.CustomPaths)
}

// Elapsed returns how long the run took, or zero while it is still going.
func (r *ScanResult) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
