package probe

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"reeldex/internal/services"
)

// Prober inspects one video file and returns its technical record.
type Prober interface {
	Probe(ctx context.Context, path string, sizeBytes int64) (*Result, error)
}

// Executor abstracts command execution for the prober.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	return cmd.Output()
}

// FFprobe runs the ffprobe binary to implement Prober.
type FFprobe struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// NewFFprobe constructs a prober for the given binary. A zero timeout means
// DefaultTimeout.
func NewFFprobe(binary string, timeout time.Duration) *FFprobe {
	return NewFFprobeWithExecutor(binary, timeout, commandExecutor{})
}

// NewFFprobeWithExecutor allows injecting a custom executor for testing.
func NewFFprobeWithExecutor(binary string, timeout time.Duration, exec Executor) *FFprobe {
	if exec == nil {
		exec = commandExecutor{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &FFprobe{binary: strings.TrimSpace(binary), timeout: timeout, exec: exec}
}

// Probe invokes ffprobe with the invocation's own timeout and parses the
// JSON it prints. Timeouts surface as services.ErrTimeout so the scan
// orchestrator can record them without aborting the batch.
func (f *FFprobe) Probe(ctx context.Context, path string, sizeBytes int64) (*Result, error) {
	if f.binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, "probe", "ffprobe", "ffprobe binary not configured", nil)
	}

	runCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	args := []string{
		"-v", "error",
		"-show_format",
		"-show_streams",
		"-print_format", "json",
		path,
	}
	output, err := f.exec.Run(runCtx, f.binary, args)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "probe", "ffprobe", "ffprobe timed out", err)
		}
		// A probe killed because the whole run was cancelled surfaces as
		// the context error, not as a tool failure of this file.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, services.Wrap(services.ErrExternalTool, "probe", "ffprobe", exitDetail(err), err)
	}

	result, err := Parse(output, path, sizeBytes)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "probe", "parse", "ffprobe output unusable", err)
	}
	return result, nil
}

// exitDetail folds captured stderr into the error message when ffprobe
// exits nonzero, since cmd.Output keeps it on the ExitError.
func exitDetail(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if detail := strings.TrimSpace(string(exitErr.Stderr)); detail != "" {
			return "ffprobe failed: " + detail
		}
	}
	return "ffprobe failed"
}
