// Package hook runs a user-supplied shell command for every path finding.
package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/maxvaer/webrecon/internal/events"
)

// DefaultTimeout bounds a single command run.
const DefaultTimeout = 30 * time.Second

// findingJSON is the JSON payload sent to the hook command via stdin.
type findingJSON struct {
	ScanID   string `json:"scan_id"`
	Target   string `json:"target"`
	Category string `json:"category"`
	URL      string `json:"url"`
	Path     string `json:"path"`
	Status   int    `json:"status"`
}

// Runner executes a shell command for each finding event.
type Runner struct {
	cmd     string
	quiet   bool
	timeout time.Duration
	stdout  io.Writer
	stderr  io.Writer
}

// NewRunner creates a hook runner. cmd is the shell command to execute.
func NewRunner(cmd string, quiet bool) *Runner {
	return &Runner{cmd: cmd, quiet: quiet, timeout: DefaultTimeout, stdout: os.Stderr, stderr: os.Stderr}
}

// EventTypes implements events.Hook.
func (r *Runner) EventTypes() []events.EventType {
	return []events.EventType{events.EventTypeFinding}
}

// OnEvent runs the command for a finding. Command failures are reported on
// stderr and returned, but never affect the scan.
func (r *Runner) OnEvent(ctx context.Context, event events.Event) error {
	f, ok := event.(*events.FindingEvent)
	if !ok {
		return nil
	}

	data, err := json.Marshal(findingJSON{
		ScanID:   f.ScanID(),
		Target:   f.Target,
		Category: string(f.Category),
		URL:      f.Finding.URL,
		Path:     f.Finding.Path,
		Status:   f.Finding.StatusCode,
	})
	if err != nil {
		return fmt.Errorf("marshal finding: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	shell, args := shellCommand()
	cmd := exec.CommandContext(ctx, shell, append(args, r.expand(f))...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stderr = r.stderr
	cmd.WaitDelay = time.Second

	output, err := cmd.Output()
	if err != nil {
		if !r.quiet {
			fmt.Fprintf(r.stderr, "[hook] error: %v\n", err)
		}
		return fmt.Errorf("hook command: %w", err)
	}

	if len(output) > 0 && !r.quiet {
		fmt.Fprintf(r.stdout, "[hook] %s", output)
	}
	return nil
}

// expand replaces the {url}, {path}, {status}, {category} and {target}
// placeholders in the command.
func (r *Runner) expand(f *events.FindingEvent) string {
	return strings.NewReplacer(
		"{url}", f.Finding.URL,
		"{path}", f.Finding.Path,
		"{status}", strconv.Itoa(f.Finding.StatusCode),
		"{category}", string(f.Category),
		"{target}", f.Target,
	).Replace(r.cmd)
}

func shellCommand() (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C"}
	}
	return "sh", []string{"-c"}
}
