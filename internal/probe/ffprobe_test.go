package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"reeldex/internal/services"
)

type stubExecutor struct {
	output []byte
	err    error
	binary string
	args   []string
}

func (s *stubExecutor) Run(_ context.Context, binary string, args []string) ([]byte, error) {
	s.binary = binary
	s.args = args
	return s.output, s.err
}

type hangingExecutor struct{}

func (hangingExecutor) Run(ctx context.Context, _ string, _ []string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestFFprobeInvocation(t *testing.T) {
	exec := &stubExecutor{output: []byte(`{
        "streams": [{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080}],
        "format": {"format_name": "matroska", "duration": "60"}
    }`)}
	prober := NewFFprobeWithExecutor("ffprobe", 0, exec)

	result, err := prober.Probe(context.Background(), "/library/Heat (1995)/heat.mkv", 1024)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if result.ResolutionClass != "1080p" {
		t.Fatalf("unexpected result %+v", result)
	}
	if exec.binary != "ffprobe" {
		t.Fatalf("unexpected binary %q", exec.binary)
	}
	if exec.args[len(exec.args)-1] != "/library/Heat (1995)/heat.mkv" {
		t.Fatalf("expected file path as final argument, got %v", exec.args)
	}
}

func TestFFprobeTimeout(t *testing.T) {
	prober := NewFFprobeWithExecutor("ffprobe", 10*time.Millisecond, hangingExecutor{})
	_, err := prober.Probe(context.Background(), "/library/slow.mkv", 0)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !services.IsTimeout(err) {
		t.Fatalf("expected timeout classification, got %v", err)
	}
}

func TestFFprobeFailure(t *testing.T) {
	prober := NewFFprobeWithExecutor("ffprobe", 0, &stubExecutor{err: errors.New("boom")})
	_, err := prober.Probe(context.Background(), "/library/bad.mkv", 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool classification, got %v", err)
	}
}

func TestFFprobeSurfacesRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled run kills the subprocess, which reports the signal
	// rather than the context error.
	prober := NewFFprobeWithExecutor("ffprobe", 0, &stubExecutor{err: errors.New("signal: killed")})
	_, err := prober.Probe(ctx, "/library/interrupted.mkv", 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("cancellation must not classify as a tool failure: %v", err)
	}
}

func TestFFprobeRequiresBinary(t *testing.T) {
	prober := NewFFprobeWithExecutor("", 0, &stubExecutor{})
	if _, err := prober.Probe(context.Background(), "/library/x.mkv", 0); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
