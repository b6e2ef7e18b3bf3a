package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/maxvaer/webrecon/internal/browser"
	"github.com/maxvaer/webrecon/internal/config"
	"github.com/maxvaer/webrecon/internal/events"
	"github.com/maxvaer/webrecon/internal/hook"
	"github.com/maxvaer/webrecon/internal/metrics"
	"github.com/maxvaer/webrecon/internal/output"
	"github.com/maxvaer/webrecon/internal/scanner"
	"github.com/maxvaer/webrecon/internal/telemetry"
	"github.com/maxvaer/webrecon/internal/wordlist"
	"github.com/maxvaer/webrecon/pkg/version"
)

// Run executes one scan from the command line: it wires the observers,
// starts the scan, turns keypresses and signals into stop commands and
// waits for the final report.
func Run(ctx context.Context, opts *config.Options) error {
	logger := newLogger(os.Stderr, opts)

	// 1. Merge the paths file into the custom paths.
	cfg := opts.ScanConfig
	if opts.PathsFile != "" {
		extra, err := wordlist.Load(opts.PathsFile, opts.Extensions)
		if err != nil {
			return fmt.Errorf("loading paths file: %w", err)
		}
		cfg.CustomPaths = append(cfg.CustomPaths, extra...)
	}

	// 2. Subscribe the observers.
	disp := events.NewDispatcher(logger)
	defer func() {
		if err := disp.Close(); err != nil {
			logger.Warn("closing observers", "error", err)
		}
	}()

	if opts.OnResultCmd != "" {
		disp.Subscribe(hook.NewRunner(opts.OnResultCmd, opts.Quiet))
	}
	if opts.MetricsAddr != "" {
		m, err := metrics.New(metrics.Options{Addr: opts.MetricsAddr, Logger: logger})
		if err != nil {
			return err
		}
		disp.Subscribe(m)
		logger.Info("serving metrics", "addr", m.Addr())
	}
	if opts.OTLPEndpoint != "" {
		tel, err := telemetry.New(telemetry.Options{
			Endpoint:       opts.OTLPEndpoint,
			Insecure:       opts.OTLPInsecure,
			ServiceVersion: version.Version,
		})
		if err != nil {
			return err
		}
		disp.Subscribe(tel)
	}

	// 3. Create the report writer. It is closed once the final report is out.
	writer, err := output.NewWriter(output.WriterOptions{
		Format:       output.Format(opts.OutputFormat),
		OutputFile:   opts.OutputFile,
		TemplateFile: opts.TemplateFile,
		NoColor:      opts.NoColor,
		Tree:         opts.Tree,
	})
	if err != nil {
		return fmt.Errorf("creating output writer: %w", err)
	}

	disp.Subscribe(output.NewConsole(os.Stderr, output.ConsoleOptions{Quiet: opts.Quiet, NoColor: opts.NoColor}))
	report := output.NewReportHook(writer)
	disp.Subscribe(report)
	final := &finalResult{}
	disp.Subscribe(final)

	// 4. Print banner.
	if !opts.Quiet {
		output.Banner(os.Stderr, &cfg, version.Version, opts.NoColor)
	}

	// 5. Start the scan. ctx is cancelled only on the second interrupt.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := NewSession(disp, SessionOptions{
		Counter:          newCounter(opts, cfg, logger),
		Timeout:          opts.Timeout,
		PathDelay:        opts.PathDelay,
		AdaptiveThrottle: opts.AdaptiveThrottle,
		Logger:           logger,
	})

	cleanup := startStdinStop(sess, opts.Quiet)
	defer cleanup()
	stopSignals := handleSignals(sess, cancel, opts.Quiet)
	defer stopSignals()

	sess.Start(ctx, cfg, "")
	sess.Wait()

	// 6. Persist settings for the next run.
	if opts.SaveConfig {
		path := opts.ConfigFile
		if path == "" {
			path = config.DefaultPath()
		}
		if err := config.Save(path, opts.ScanConfig); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		logger.Info("saved settings", "path", path)
	}

	if err := report.Err(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return final.err()
}

// newCounter picks the resource counter: headless Chrome when requested,
// the static HTML counter otherwise.
func newCounter(opts *config.Options, cfg config.ScanConfig, logger *slog.Logger) scanner.ResourceCounter {
	if !cfg.Performance.ResourceCount {
		return nil
	}
	if opts.Browser {
		execPath := opts.ChromePath
		if execPath == "" {
			execPath = browser.FindChrome()
		}
		if execPath != "" {
			return browser.NewChromeCounter(browser.ChromeOptions{
				ExecPath: execPath,
				Proxy:    cfg.Proxy(),
				Timeout:  opts.Timeout,
				Logger:   logger,
			})
		}
		logger.Warn("no Chrome binary found, counting resources in the served HTML")
	}

	req, err := scanner.NewRequester(cfg.URL, scanner.RequesterOptions{
		Timeout: opts.Timeout,
		Proxy:   cfg.Proxy(),
	})
	if err != nil {
		// The scan itself reports the bad target.
		return nil
	}
	return browser.NewStaticCounter(req.Client())
}

func newLogger(w io.Writer, opts *config.Options) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// finalResult keeps the outcome of the terminal result event.
type finalResult struct {
	mu     sync.Mutex
	result *scanner.ScanResult
}

func (f *finalResult) EventTypes() []events.EventType {
	return []events.EventType{events.EventTypeResult}
}

func (f *finalResult) OnEvent(_ context.Context, event events.Event) error {
	if e, ok := event.(*events.ResultEvent); ok && e.Terminal() {
		f.mu.Lock()
		f.result = &e.Result
		f.mu.Unlock()
	}
	return nil
}

func (f *finalResult) err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case f.result == nil:
		return errors.New("scan ended without a result")
	case f.result.Error != "":
		return errors.New(f.result.Error)
	}
	return nil
}
