package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/maxvaer/webrecon/internal/config"
	"github.com/maxvaer/webrecon/internal/output"
	"github.com/maxvaer/webrecon/internal/runner"
	"github.com/maxvaer/webrecon/internal/scanner"
	"github.com/maxvaer/webrecon/pkg/version"
)

var opts = config.Options{ScanConfig: config.Default()}

type flagGroup struct {
	title string
	flags []string
}

var helpGroups = []flagGroup{
	{"TARGET", []string{"url", "path", "paths-file", "extensions"}},
	{"SCANS", []string{"tech", "admin", "vulnerable", "headers", "security-headers", "cookies", "load-time", "response-size", "resource-count", "browser", "chrome-path"}},
	{"STRESS", []string{"stress", "rps", "duration"}},
	{"HTTP", []string{"proxy", "random-agent", "timeout", "delay", "adaptive-throttle"}},
	{"OUTPUT", []string{"output", "format", "template", "quiet", "no-color", "tree", "verbose"}},
	{"INTEGRATIONS", []string{"on-result", "metrics-addr", "otlp-endpoint", "otlp-insecure"}},
	{"CONFIGURATION", []string{"config", "save-config"}},
}

// scanFlags maps each flag that is part of the persisted scan configuration
// to the field it sets. Flags the user did not pass take their value from
// the config file.
var scanFlags = map[string]func(dst, src *config.ScanConfig){
	"url":              func(d, s *config.ScanConfig) { d.URL = s.URL },
	"path":             func(d, s *config.ScanConfig) { d.CustomPaths = s.CustomPaths },
	"tech":             func(d, s *config.ScanConfig) { d.Scan.Technologies = s.Scan.Technologies },
	"admin":            func(d, s *config.ScanConfig) { d.Scan.AdminPaths = s.Scan.AdminPaths },
	"vulnerable":       func(d, s *config.ScanConfig) { d.Scan.VulnerablePaths = s.Scan.VulnerablePaths },
	"headers":          func(d, s *config.ScanConfig) { d.Network.Headers = s.Network.Headers },
	"security-headers": func(d, s *config.ScanConfig) { d.Network.Security = s.Network.Security },
	"cookies":          func(d, s *config.ScanConfig) { d.Network.Cookies = s.Network.Cookies },
	"load-time":        func(d, s *config.ScanConfig) { d.Performance.LoadTime = s.Performance.LoadTime },
	"response-size":    func(d, s *config.ScanConfig) { d.Performance.ResponseSize = s.Performance.ResponseSize },
	"resource-count":   func(d, s *config.ScanConfig) { d.Performance.ResourceCount = s.Performance.ResourceCount },
	"stress":           func(d, s *config.ScanConfig) { d.Stress.Enabled = s.Stress.Enabled },
	"rps":              func(d, s *config.ScanConfig) { d.Stress.RequestsPerSecond = s.Stress.RequestsPerSecond },
	"duration":         func(d, s *config.ScanConfig) { d.Stress.Duration = s.Stress.Duration },
	"random-agent":     func(d, s *config.ScanConfig) { d.Security.RandomUserAgent = s.Security.RandomUserAgent },
	"proxy": func(d, s *config.ScanConfig) {
		d.Security.ProxyAddress = s.Security.ProxyAddress
		d.Security.UseProxy = s.Security.ProxyAddress != ""
	},
}

var rootCmd = &cobra.Command{
	Use:     "webrecon -u <url> [flags]",
	Short:   "Website reconnaissance: technologies, headers, paths and load",
	Version: version.Version,
	Long: `webrecon inspects a website for recon purposes. It detects the
technologies in use, reviews security headers and cookies, measures basic
performance, probes for admin and sensitive paths and can run a short,
rate-controlled stress test. Press 's' or Ctrl+C to stop a running scan.`,
	Example: `  webrecon -u https://example.com
  webrecon -u https://example.com --vulnerable=false --path /backup.zip --path /old
  webrecon -u https://example.com --paths-file paths.txt -e php,bak
  webrecon -u https://example.com --stress --rps 20 --duration 10
  webrecon -u https://example.com --proxy socks5://127.0.0.1:9050
  webrecon -u https://example.com -o report.json --format json
  webrecon -u https://example.com --format template --template report.tmpl
  webrecon -u https://example.com --metrics-addr :9090 --on-result "notify-send {url}"
  webrecon --save-config -u https://example.com --stress`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := mergeConfigFile(cmd.Flags()); err != nil {
			return err
		}
		if opts.URL == "" {
			_ = cmd.Help()
			fmt.Fprintln(os.Stderr)
			return fmt.Errorf("target required: use -u or set url in the config file")
		}
		if !strings.HasPrefix(opts.URL, "http://") && !strings.HasPrefix(opts.URL, "https://") {
			opts.URL = "http://" + opts.URL
		}
		if err := opts.Validate(); err != nil {
			return err
		}
		if opts.PathDelay < scanner.MinPathDelay {
			return fmt.Errorf("--delay must be at least %s", scanner.MinPathDelay)
		}
		if opts.OutputFormat == string(output.FormatTemplate) && opts.TemplateFile == "" {
			return fmt.Errorf("--format template requires --template")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runner.Run(context.Background(), &opts)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.Flags()
	sc := &opts.ScanConfig

	// Target
	f.StringVarP(&sc.URL, "url", "u", "", "Target URL")
	f.StringSliceVarP(&sc.CustomPaths, "path", "p", nil, "Custom path to probe (repeatable)")
	f.StringVarP(&opts.PathsFile, "paths-file", "w", "", "File with custom paths, one per line")
	f.StringSliceVarP(&opts.Extensions, "extensions", "e", nil, "Extensions substituted for %EXT% in the paths file")

	// Scans
	f.BoolVar(&sc.Scan.Technologies, "tech", sc.Scan.Technologies, "Detect website technologies")
	f.BoolVar(&sc.Scan.AdminPaths, "admin", sc.Scan.AdminPaths, "Probe common admin paths")
	f.BoolVar(&sc.Scan.VulnerablePaths, "vulnerable", sc.Scan.VulnerablePaths, "Probe commonly exposed sensitive paths")
	f.BoolVar(&sc.Network.Headers, "headers", sc.Network.Headers, "Collect response headers")
	f.BoolVar(&sc.Network.Security, "security-headers", sc.Network.Security, "Check for security headers")
	f.BoolVar(&sc.Network.Cookies, "cookies", sc.Network.Cookies, "Inspect cookies")
	f.BoolVar(&sc.Performance.LoadTime, "load-time", sc.Performance.LoadTime, "Measure page load time")
	f.BoolVar(&sc.Performance.ResponseSize, "response-size", sc.Performance.ResponseSize, "Measure response size")
	f.BoolVar(&sc.Performance.ResourceCount, "resource-count", sc.Performance.ResourceCount, "Count scripts, stylesheets and images")
	f.BoolVar(&opts.Browser, "browser", false, "Count resources in headless Chrome instead of the served HTML")
	f.StringVar(&opts.ChromePath, "chrome-path", "", "Chrome executable (default: auto-detect)")

	// Stress
	f.BoolVar(&sc.Stress.Enabled, "stress", sc.Stress.Enabled, "Run a stress test after the other scans")
	f.IntVar(&sc.Stress.RequestsPerSecond, "rps", sc.Stress.RequestsPerSecond, "Stress test requests per second")
	f.IntVar(&sc.Stress.Duration, "duration", sc.Stress.Duration, "Stress test duration in seconds")

	// HTTP
	f.StringVar(&sc.Security.ProxyAddress, "proxy", "", "HTTP or SOCKS5 proxy URL")
	f.BoolVar(&sc.Security.RandomUserAgent, "random-agent", sc.Security.RandomUserAgent, "Pick a random browser User-Agent per request")
	f.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "HTTP request timeout")
	f.DurationVar(&opts.PathDelay, "delay", scanner.MinPathDelay, "Delay between path probes")
	f.BoolVar(&opts.AdaptiveThrottle, "adaptive-throttle", false, "Back off on 429/503 answers")

	// Output
	f.StringVarP(&opts.OutputFile, "output", "o", "", "Report file (default: stdout)")
	f.StringVar(&opts.OutputFormat, "format", "text", "Report format: text, json, csv, template")
	f.StringVar(&opts.TemplateFile, "template", "", "Go template file for --format template")
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "Only show warnings and errors while scanning")
	f.BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	f.BoolVar(&opts.Tree, "tree", false, "Append a tree of the found paths to the text report")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "Debug logging")

	// Integrations
	f.StringVar(&opts.OnResultCmd, "on-result", "", "Shell command to run for each found path (receives JSON on stdin)")
	f.StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	f.StringVar(&opts.OTLPEndpoint, "otlp-endpoint", "", "Export traces to this OTLP/gRPC collector (e.g. localhost:4317)")
	f.BoolVar(&opts.OTLPInsecure, "otlp-insecure", false, "Connect to the OTLP collector without TLS")

	// Configuration
	f.StringVar(&opts.ConfigFile, "config", "", "Settings file (default: "+config.DefaultPath()+")")
	f.BoolVar(&opts.SaveConfig, "save-config", false, "Save the scan settings for the next run")

	// Custom help: categorized flags like httpx.
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		w := os.Stderr
		fmt.Fprint(w, helpBanner(cmd.Version))
		fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", cmd.Long, cmd.UseLine())
		fmt.Fprintf(w, "\nExamples:\n%s\n", cmd.Example)
		fmt.Fprintf(w, "\nFlags:\n")
		for _, g := range helpGroups {
			fmt.Fprintf(w, "\n%s:\n", g.title)
			for _, name := range g.flags {
				if f := cmd.Flags().Lookup(name); f != nil {
					fmt.Fprintln(w, formatFlag(f))
				}
			}
		}
		fmt.Fprintln(w)
	})
}

// mergeConfigFile fills every scan setting the user did not pass on the
// command line from the settings file. A missing file yields the defaults.
func mergeConfigFile(flags *pflag.FlagSet) error {
	path := opts.ConfigFile
	if path == "" {
		path = config.DefaultPath()
	}
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}

	merged := loaded
	for name, apply := range scanFlags {
		if flags.Changed(name) {
			apply(&merged, &opts.ScanConfig)
		}
	}
	opts.ScanConfig = merged
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func formatFlag(f *pflag.Flag) string {
	var left string
	if f.Shorthand != "" {
		left = fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	} else {
		left = fmt.Sprintf("    --%s", f.Name)
	}

	typ := f.Value.Type()
	if typ != "bool" {
		left += " " + typ
	}

	const col = 36
	left = fmt.Sprintf("%-*s", col, left)

	right := f.Usage
	def := f.DefValue
	if def != "" && def != "false" && def != "0" && def != "0s" && def != "[]" {
		right += fmt.Sprintf(" (default %s)", def)
	}

	return "   " + left + right
}

func helpBanner(ver string) string {
	return fmt.Sprintf(`
                __
  _      _____  / /_  ________  _________  ____
 | | /| / / _ \/ __ \/ ___/ _ \/ ___/ __ \/ __ \
 | |/ |/ /  __/ /_/ / /  /  __/ /__/ /_/ / / / /
 |__/|__/\___/_.___/_/   \___/\___/\____/_/ /_/   %s

`, output.VersionLabel(ver))
}
