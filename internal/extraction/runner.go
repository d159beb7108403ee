package extraction

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Runner executes external OCR tools. It is an interface so tests can stub
// tool availability and output.
type Runner interface {
	// Available reports whether the named tool can be executed.
	Available(name string) bool
	// Run executes name with args, killing it when timeout elapses, and
	// returns its stdout. Failures are returned as *ToolError.
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) ([]byte, error)
}

const stderrLimit = 8 << 10

type execRunner struct {
	logger *slog.Logger
}

// NewRunner returns a Runner backed by os/exec.
func NewRunner(logger *slog.Logger) Runner {
	return &execRunner{logger: logger.With("system", "runner")}
}

func (r *execRunner) Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func (r *execRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = 5 * time.Second

	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)
	tool := filepath.Base(name)

	if err != nil {
		timedOut := errors.Is(ctx.Err(), context.DeadlineExceeded)
		r.logger.Warn("exec failed",
			"cmd", tool,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"timed_out", timedOut,
			"error", err,
			"stderr", truncate(errb.String(), stderrLimit),
		)
		return out.Bytes(), &ToolError{
			Tool:     tool,
			TimedOut: timedOut,
			Stderr:   truncate(strings.TrimSpace(errb.String()), 512),
			Err:      err,
		}
	}

	r.logger.Debug("exec ok",
		"cmd", tool,
		"args", strings.Join(args, " "),
		"duration_ms", dur.Milliseconds(),
		"stdout_bytes", out.Len(),
		"stderr_bytes", errb.Len(),
	)
	return out.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
