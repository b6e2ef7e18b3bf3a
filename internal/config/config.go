package config

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidRPS      = errors.New("requests per second must be at least 1")
	ErrInvalidDuration = errors.New("stress duration must not be negative")
	ErrMissingProxy    = errors.New("proxy enabled but no proxy address given")
)

// ScanOptions toggles the discovery sub-scans.
type ScanOptions struct {
	Technologies    bool `yaml:"technologies"`
	AdminPaths      bool `yaml:"admin_paths"`
	VulnerablePaths bool `yaml:"vulnerable_paths"`
}

// SecurityOptions controls how outbound requests present themselves.
type SecurityOptions struct {
	UseProxy        bool   `yaml:"use_proxy"`
	ProxyAddress    string `yaml:"proxy_address,omitempty"`
	RandomUserAgent bool   `yaml:"random_user_agent"`
}

// PerformanceOptions toggles the individual performance measurements.
type PerformanceOptions struct {
	LoadTime      bool `yaml:"load_time"`
	ResponseSize  bool `yaml:"response_size"`
	ResourceCount bool `yaml:"resource_count"`
}

// Any reports whether at least one measurement is enabled.
func (p PerformanceOptions) Any() bool {
	return p.LoadTime || p.ResponseSize || p.ResourceCount
}

// NetworkOptions toggles the extractions done on the root response.
type NetworkOptions struct {
	Headers  bool `yaml:"headers"`
	Security bool `yaml:"security"`
	Cookies  bool `yaml:"cookies"`
}

// Any reports whether at least one extraction is enabled.
func (n NetworkOptions) Any() bool {
	return n.Headers || n.Security || n.Cookies
}

// StressOptions configures the load generator. Duration is a number of
// one-second windows.
type StressOptions struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerSecond int  `yaml:"requests_per_second"`
	Duration          int  `yaml:"duration"`
}

// ScanConfig is the immutable input of one scan run. It is also the shape
// persisted to the YAML settings file.
type ScanConfig struct {
	URL         string             `yaml:"url,omitempty"`
	Scan        ScanOptions        `yaml:"scan_options"`
	Security    SecurityOptions    `yaml:"security_options"`
	Performance PerformanceOptions `yaml:"performance_options"`
	Network     NetworkOptions     `yaml:"network_options"`
	Stress      StressOptions      `yaml:"stress_options"`
	CustomPaths []string           `yaml:"custom_paths,omitempty"`
}

// Default returns the configuration used when nothing was persisted yet.
func Default() ScanConfig {
	return ScanConfig{
		Scan:        ScanOptions{Technologies: true, AdminPaths: true, VulnerablePaths: true},
		Security:    SecurityOptions{RandomUserAgent: true},
		Performance: PerformanceOptions{LoadTime: true, ResponseSize: true, ResourceCount: true},
		Network:     NetworkOptions{Headers: true, Security: true, Cookies: true},
		Stress:      StressOptions{RequestsPerSecond: 10, Duration: 5},
	}
}

// Validate checks the invariants that must hold before a scan starts.
func (c *ScanConfig) Validate() error {
	if c.Stress.Enabled {
		if c.Stress.RequestsPerSecond < 1 {
			return fmt.Errorf("%w (got %d)", ErrInvalidRPS, c.Stress.RequestsPerSecond)
		}
		if c.Stress.Duration < 0 {
			return fmt.Errorf("%w (got %d)", ErrInvalidDuration, c.Stress.Duration)
		}
	}
	if c.Security.UseProxy && c.Security.ProxyAddress == "" {
		return ErrMissingProxy
	}
	return nil
}

// Proxy returns the proxy address to use, or "" when proxying is off.
func (c *ScanConfig) Proxy() string {
	if !c.Security.UseProxy {
		return ""
	}
	return c.Security.ProxyAddress
}

// Options holds all configuration for a webrecon invocation: the scan
// configuration plus settings that only matter to the CLI host.
type Options struct {
	ScanConfig

	// Settings persistence
	ConfigFile string
	SaveConfig bool

	// Targets
	PathsFile  string
	Extensions []string // substituted for %EXT% in the paths file

	// HTTP
	Timeout          time.Duration
	PathDelay        time.Duration
	AdaptiveThrottle bool

	// Resource counting
	Browser    bool
	ChromePath string

	// Output
	OutputFile   string
	OutputFormat string // "text", "json", "csv", "template"
	TemplateFile string
	Quiet        bool
	NoColor      bool
	Verbose      bool
	Tree         bool

	// Integrations
	OnResultCmd  string
	MetricsAddr  string
	OTLPEndpoint string
	OTLPInsecure bool
}
