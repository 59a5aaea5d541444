package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"reeldex/internal/catalog"
	"reeldex/internal/logging"
	"reeldex/internal/services"
)

// Default bounds for the two external invocations.
const (
	DefaultDecodeTimeout   = 5 * time.Minute
	DefaultKeyframeTimeout = 30 * time.Second
	DefaultKeyframeWindow  = 60 * time.Second
	DefaultWorkers         = 3
)

// Executor runs an external tool and returns stdout and stderr separately.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (stdout, stderr []byte, err error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Outcome is the verification result for one file.
type Outcome struct {
	OK       bool
	Status   catalog.VerifyStatus
	Errors   []string
	Warnings []string
	Flags    []catalog.QualityFlag
}

// Config wires the engine's binaries and timeouts.
type Config struct {
	FFmpegBinary    string
	FFprobeBinary   string
	DecodeTimeout   time.Duration
	KeyframeTimeout time.Duration
	KeyframeWindow  time.Duration
}

// Engine decodes files and classifies the decoder's diagnostics.
type Engine struct {
	cfg    Config
	store  *catalog.Store
	exec   Executor
	logger *slog.Logger
}

// NewEngine builds a verify engine. Zero timeouts fall back to the package
// defaults.
func NewEngine(cfg Config, store *catalog.Store, logger *slog.Logger) *Engine {
	return NewEngineWithExecutor(cfg, store, logger, commandExecutor{})
}

// NewEngineWithExecutor allows injecting a custom executor for testing.
func NewEngineWithExecutor(cfg Config, store *catalog.Store, logger *slog.Logger, exec Executor) *Engine {
	if cfg.DecodeTimeout <= 0 {
		cfg.DecodeTimeout = DefaultDecodeTimeout
	}
	if cfg.KeyframeTimeout <= 0 {
		cfg.KeyframeTimeout = DefaultKeyframeTimeout
	}
	if cfg.KeyframeWindow <= 0 {
		cfg.KeyframeWindow = DefaultKeyframeWindow
	}
	if exec == nil {
		exec = commandExecutor{}
	}
	return &Engine{
		cfg:    cfg,
		store:  store,
		exec:   exec,
		logger: logging.NewComponentLogger(logger, "verify"),
	}
}

// VerifyFile runs the decode pass and the keyframe analysis for one file.
// Timestamp disorder and sparse keyframes surface as quality flags; only
// hard decode errors make the outcome a failure.
func (e *Engine) VerifyFile(ctx context.Context, path string) (*Outcome, error) {
	diag, err := e.decode(ctx, path)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Errors:   diag.errors,
		Warnings: diag.warnings,
	}
	if len(diag.timestamps) > 0 {
		outcome.Flags = append(outcome.Flags, catalog.QualityFlag{
			Kind:     "backward_pts",
			Severity: catalog.SeverityFlag,
			Message:  backwardPTSMessage(diag.timestamps),
		})
	}
	if len(diag.errors) > 0 {
		outcome.Flags = append(outcome.Flags, catalog.QualityFlag{
			Kind:     "decode_error",
			Severity: catalog.SeverityFlag,
			Message:  fmt.Sprintf("%d hard decode error(s); first: %s", len(diag.errors), diag.errors[0]),
		})
	}

	if flag := e.keyframeFlag(ctx, path); flag != nil {
		outcome.Flags = append(outcome.Flags, *flag)
	}

	outcome.OK = len(outcome.Errors) == 0
	if outcome.OK {
		outcome.Status = catalog.VerifyPass
	} else {
		outcome.Status = catalog.VerifyFail
	}
	return outcome, nil
}

// decode runs the null-target decode and classifies stderr. A nonzero exit
// alone is not fatal as long as stderr is parseable; the diagnostics decide.
func (e *Engine) decode(ctx context.Context, path string) (*diagnostics, error) {
	if e.cfg.FFmpegBinary == "" {
		return nil, services.Wrap(services.ErrConfiguration, "verify", "decode", "ffmpeg binary not configured", nil)
	}

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.DecodeTimeout)
	defer cancel()

	args := []string{
		"-nostdin",
		"-v", "error",
		"-i", path,
		"-f", "null", "-",
	}
	_, stderr, err := e.exec.Run(runCtx, e.cfg.FFmpegBinary, args)
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, services.Wrap(services.ErrTimeout, "verify", "decode", "decode timed out", err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil && len(bytes.TrimSpace(stderr)) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "verify", "decode", "decoder failed with no diagnostics", err)
	}

	diag := classifyOutput(string(stderr))
	return &diag, nil
}

// keyframeFlag samples packets from the opening window and flags sparse
// keyframes. Analysis failures are logged and swallowed: seek latency is a
// quality concern, not worth failing the file over.
func (e *Engine) keyframeFlag(ctx context.Context, path string) *catalog.QualityFlag {
	if e.cfg.FFprobeBinary == "" {
		return nil
	}

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.KeyframeTimeout)
	defer cancel()

	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_packets",
		"-read_intervals", fmt.Sprintf("%%+%d", int(e.cfg.KeyframeWindow.Seconds())),
		"-print_format", "json",
		path,
	}
	stdout, _, err := e.exec.Run(runCtx, e.cfg.FFprobeBinary, args)
	if err != nil {
		e.logger.Warn("keyframe sampling failed", logging.String(logging.FieldFile, path), logging.Error(err))
		return nil
	}
	stats, err := analyzeKeyframes(stdout)
	if err != nil {
		e.logger.Warn("keyframe analysis failed", logging.String(logging.FieldFile, path), logging.Error(err))
		return nil
	}
	if stats.MaxGap <= largeGopThresholdSeconds {
		return nil
	}
	return &catalog.QualityFlag{
		Kind:     "large_gop",
		Severity: catalog.SeverityWarn,
		Message:  fmt.Sprintf("max keyframe gap %.2fs (avg %.2fs) over first %ds", stats.MaxGap, stats.AvgGap, int(e.cfg.KeyframeWindow.Seconds())),
	}
}

// Options tune one verification batch.
type Options struct {
	Workers int
	All     bool
	// Progress, when set, is called after each file completes.
	Progress func(done, total int)
}

// Report summarizes one verification batch.
type Report struct {
	Total       int
	Passed      int
	Failed      int
	Errored     int
	Cancelled   bool
	ErrorSample []string
}

const maxReportErrors = 10

// Run verifies the scanned files still pending (or all scanned files) and
// persists each outcome. Per-file failures are stored as an error outcome
// on the row; the batch keeps going.
func (e *Engine) Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}

	files, err := e.store.FilesForVerify(ctx, opts.All)
	if err != nil {
		return nil, fmt.Errorf("load verify queue: %w", err)
	}
	report := &Report{Total: len(files)}
	e.logger.Info("verify started", logging.Int("files", len(files)), logging.Int("workers", opts.Workers))

	var (
		mu   sync.Mutex
		done int
		next atomic.Int64
		wg   sync.WaitGroup
	)
	for worker := 0; worker < opts.Workers; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				index := next.Add(1) - 1
				if index >= int64(len(files)) {
					return
				}
				outcome := e.verifyOne(ctx, files[index].FilePath)

				mu.Lock()
				done++
				switch outcome.Status {
				case catalog.VerifyPass:
					report.Passed++
				case catalog.VerifyFail:
					report.Failed++
				case catalog.VerifyError:
					report.Errored++
				case catalog.VerifyPending:
					// Cancelled mid-item; stays pending.
				}
				if (outcome.Status == catalog.VerifyFail || outcome.Status == catalog.VerifyError) && len(report.ErrorSample) < maxReportErrors {
					detail := "verification failed"
					if len(outcome.Errors) > 0 {
						detail = outcome.Errors[0]
					}
					report.ErrorSample = append(report.ErrorSample, fmt.Sprintf("%s: %s", files[index].FilePath, detail))
				}
				progress := opts.Progress
				current := done
				mu.Unlock()

				if progress != nil {
					progress(current, len(files))
				}
			}
		}()
	}
	wg.Wait()

	report.Cancelled = ctx.Err() != nil
	e.logger.Info("verify finished",
		logging.Int("passed", report.Passed),
		logging.Int("failed", report.Failed),
		logging.Int("errored", report.Errored),
		logging.Bool("cancelled", report.Cancelled),
	)
	return report, nil
}

// verifyOne runs VerifyFile and persists the outcome, converting an
// invocation-level failure into an error outcome on the row.
func (e *Engine) verifyOne(ctx context.Context, path string) *Outcome {
	outcome, err := e.VerifyFile(ctx, path)
	if err != nil {
		// A decode killed by batch cancellation is not a verdict on the
		// file; leave the row pending for the next run.
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return &Outcome{Status: catalog.VerifyPending}
		}
		outcome = &Outcome{
			Status: catalog.VerifyError,
			Errors: []string{err.Error()},
		}
		if services.IsTimeout(err) {
			outcome.Errors = []string{"decode timed out after " + e.cfg.DecodeTimeout.String()}
		}
	}
	if storeErr := e.store.UpdateVerifyOutcome(context.WithoutCancel(ctx), path, outcome.Status, outcome.Flags); storeErr != nil {
		e.logger.Error("persist verify outcome", logging.String(logging.FieldFile, path), logging.Error(storeErr))
	}
	if outcome.Status != catalog.VerifyPass {
		e.logger.Warn("file did not pass",
			logging.String(logging.FieldFile, path),
			logging.String("status", string(outcome.Status)),
		)
	}
	return outcome
}
