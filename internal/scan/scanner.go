package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"reeldex/internal/catalog"
	"reeldex/internal/library"
	"reeldex/internal/logging"
	"reeldex/internal/probe"
)

// Phase names reported through the progress callback.
type Phase string

const (
	PhaseCollecting Phase = "collecting"
	PhaseProcessing Phase = "processing"
	PhaseFinished   Phase = "finished"
	PhaseCancelled  Phase = "cancelled"
)

// Progress is one snapshot of a running scan.
type Progress struct {
	Phase         Phase
	FolderCount   int
	FileCount     int
	Completed     int
	OK            int
	Errors        int
	Skipped       int
	RatePerMinute float64
	CurrentFile   string
}

// Options tune one scan run.
type Options struct {
	Force            bool
	MaxFileSizeBytes int64
	Workers          int
	MaxErrorSample   int
	Progress         func(Progress)
	FolderDone       func(folderPath string)
}

// Summary is the result of a completed (or cancelled) scan run.
type Summary struct {
	RunID       int64
	FolderCount int
	FileCount   int
	OK          int
	Errors      int
	Skipped     int
	Duration    time.Duration
	Cancelled   bool
	ErrorSample []string
}

const defaultErrorSample = 10

// Scanner walks the library root and probes its files into the catalog.
type Scanner struct {
	root   string
	store  *catalog.Store
	prober probe.Prober
	logger *slog.Logger
}

// NewScanner builds a scanner over the given root, store, and prober.
func NewScanner(root string, store *catalog.Store, prober probe.Prober, logger *slog.Logger) *Scanner {
	return &Scanner{
		root:   root,
		store:  store,
		prober: prober,
		logger: logging.NewComponentLogger(logger, "scan"),
	}
}

type workItem struct {
	movieID    int64
	folderPath string
	filePath   string
	sizeBytes  int64
}

// run carries the mutable state of one scan so concurrent workers share a
// single place to count and emit from.
type run struct {
	opts   Options
	record *catalog.ScanRun
	rate   *rateWindow

	mu           sync.Mutex
	folderCount  int
	fileCount    int
	ok           int
	errors       int
	skipped      int
	completed    int
	phase        Phase
	errorSample  []string
	pendingByDir map[string]int
}

// Run executes one scan. The only fatal errors are an unreadable library
// root and store failures at the run boundary; per-file problems are
// persisted on the rows and counted.
func (s *Scanner) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Workers <= 0 {
		opts.Workers = max(1, runtime.NumCPU()/2)
	}
	if opts.MaxErrorSample <= 0 {
		opts.MaxErrorSample = defaultErrorSample
	}

	record, err := s.store.StartScanRun(ctx, s.root)
	if err != nil {
		return nil, fmt.Errorf("start scan run: %w", err)
	}
	logger := s.logger.With(logging.Int64(logging.FieldRunID, record.ID))
	logger.Info("scan started", logging.String("root", s.root), logging.Int("workers", opts.Workers))

	state := &run{
		opts:         opts,
		record:       record,
		rate:         newRateWindow(30 * time.Second),
		phase:        PhaseCollecting,
		pendingByDir: map[string]int{},
	}

	items, err := s.collect(ctx, state, logger)
	if err != nil {
		return nil, err
	}

	state.setPhase(PhaseProcessing)
	s.process(ctx, state, items, logger)

	cancelled := ctx.Err() != nil
	if cancelled {
		state.setPhase(PhaseCancelled)
	} else {
		state.setPhase(PhaseFinished)
	}

	summary := state.summary(cancelled)
	record.FolderCount = summary.FolderCount
	record.FileCount = summary.FileCount
	record.OKCount = summary.OK + summary.Skipped
	record.ErrorCount = summary.Errors
	if cancelled {
		record.Notes = "cancelled"
	}
	// Finishing the run record must survive the caller's cancellation.
	if err := s.store.FinishScanRun(context.WithoutCancel(ctx), record); err != nil {
		return summary, fmt.Errorf("finish scan run: %w", err)
	}
	summary.Duration = record.FinishedAt.Sub(record.StartedAt)

	logger.Info("scan finished",
		logging.Int("folders", summary.FolderCount),
		logging.Int("files", summary.FileCount),
		logging.Int("ok", summary.OK),
		logging.Int("skipped", summary.Skipped),
		logging.Int("errors", summary.Errors),
		logging.Bool("cancelled", summary.Cancelled),
	)
	return summary, nil
}

// collect walks the library, upserts movies, and builds the probe worklist.
// Already-scanned files are counted as skipped unless Force; oversized files
// are recorded as scan errors without ever reaching a worker.
func (s *Scanner) collect(ctx context.Context, state *run, logger *slog.Logger) ([]workItem, error) {
	folders, err := library.Walk(s.root)
	if err != nil {
		return nil, err
	}

	var items []workItem
	for folder := range folders {
		if err := ctx.Err(); err != nil {
			break
		}
		movie, err := s.store.UpsertMovie(ctx, folder.Path, folder.Name, folder.Title, folder.Year)
		if err != nil {
			return nil, fmt.Errorf("upsert movie %q: %w", folder.Path, err)
		}
		state.addFolder()

		for _, filePath := range folder.VideoFiles {
			info, err := os.Stat(filePath)
			if err != nil {
				state.recordError(filePath, err.Error())
				if storeErr := s.store.RecordScanError(ctx, movie.ID, filePath, err.Error()); storeErr != nil {
					return nil, fmt.Errorf("record scan error: %w", storeErr)
				}
				state.addFile()
				continue
			}
			state.addFile()

			if !state.opts.Force {
				existing, err := s.store.FileByPath(ctx, filePath)
				if err != nil {
					return nil, fmt.Errorf("lookup file %q: %w", filePath, err)
				}
				if existing != nil && existing.Scanned() {
					state.addSkipped()
					continue
				}
			}

			if state.opts.MaxFileSizeBytes > 0 && info.Size() > state.opts.MaxFileSizeBytes {
				message := fmt.Sprintf("file too large: %d bytes exceeds cap of %d", info.Size(), state.opts.MaxFileSizeBytes)
				state.recordError(filePath, message)
				if storeErr := s.store.RecordScanError(ctx, movie.ID, filePath, message); storeErr != nil {
					return nil, fmt.Errorf("record scan error: %w", storeErr)
				}
				continue
			}

			items = append(items, workItem{
				movieID:    movie.ID,
				folderPath: folder.Path,
				filePath:   filePath,
				sizeBytes:  info.Size(),
			})
			state.addPending(folder.Path)
		}
		state.emit("")
	}

	logger.Info("collection complete",
		logging.Int("folders", state.folderCount),
		logging.Int("files", state.fileCount),
		logging.Int("queued", len(items)),
	)
	return items, nil
}

// process drains the worklist through the worker pool. Items are claimed by
// atomic index so each is probed exactly once; workers stop claiming once
// the context is done but an in-flight probe only dies with its own timeout.
func (s *Scanner) process(ctx context.Context, state *run, items []workItem, logger *slog.Logger) {
	if len(items) == 0 {
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	for worker := 0; worker < state.opts.Workers; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				index := next.Add(1) - 1
				if index >= int64(len(items)) {
					return
				}
				s.processItem(ctx, state, items[index], logger)
			}
		}()
	}
	wg.Wait()
}

func (s *Scanner) processItem(ctx context.Context, state *run, item workItem, logger *slog.Logger) {
	result, err := s.prober.Probe(ctx, item.filePath, item.sizeBytes)
	if err != nil {
		// A probe killed by run cancellation is not a defect of the file;
		// leave the row untouched so the next scan picks it up.
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return
		}
		state.recordError(item.filePath, err.Error())
		if storeErr := s.store.RecordScanError(context.WithoutCancel(ctx), item.movieID, item.filePath, err.Error()); storeErr != nil {
			logger.Error("persist scan error", logging.String(logging.FieldFile, item.filePath), logging.Error(storeErr))
		}
	} else {
		file := fileFromResult(item, result)
		if _, storeErr := s.store.UpsertScannedFile(context.WithoutCancel(ctx), file); storeErr != nil {
			state.recordError(item.filePath, storeErr.Error())
			logger.Error("persist scan result", logging.String(logging.FieldFile, item.filePath), logging.Error(storeErr))
		} else {
			state.addOK()
		}
	}
	state.completeItem(item, time.Now())
}

func fileFromResult(item workItem, result *probe.Result) *catalog.MovieFile {
	return &catalog.MovieFile{
		MovieID:           item.movieID,
		FilePath:          item.filePath,
		Resolution:        result.Resolution,
		ResolutionClass:   result.ResolutionClass,
		VideoCodec:        result.VideoCodec,
		BitDepth:          result.BitDepth,
		FrameRate:         result.FrameRate,
		ColorTransfer:     result.ColorTransfer,
		ColorPrimaries:    result.ColorPrimaries,
		HDRFormats:        result.HDRFormats,
		DVProfile:         result.DVProfile,
		AudioCodec:        result.AudioCodec,
		AudioChannels:     result.AudioChannels,
		AudioLanguage:     result.AudioLanguage,
		AudioTracks:       result.AudioTracks,
		SubtitleLanguages: result.SubtitleLanguages,
		Container:         result.Container,
		SizeBytes:         result.SizeBytes,
		DurationSeconds:   result.DurationSeconds,
		MBPerMinute:       result.MBPerMinute,
		ReleaseGroup:      result.ReleaseGroup,
		ProbeJSON:         result.RawJSON,
	}
}

func (r *run) addFolder() {
	r.mu.Lock()
	r.folderCount++
	r.mu.Unlock()
}

func (r *run) addFile() {
	r.mu.Lock()
	r.fileCount++
	r.mu.Unlock()
}

func (r *run) addSkipped() {
	r.mu.Lock()
	r.skipped++
	r.completed++
	r.mu.Unlock()
}

func (r *run) addOK() {
	r.mu.Lock()
	r.ok++
	r.mu.Unlock()
}

func (r *run) addPending(folderPath string) {
	r.mu.Lock()
	r.pendingByDir[folderPath]++
	r.mu.Unlock()
}

func (r *run) recordError(filePath, message string) {
	r.mu.Lock()
	r.errors++
	if len(r.errorSample) < r.opts.MaxErrorSample {
		r.errorSample = append(r.errorSample, fmt.Sprintf("%s: %s", filePath, message))
	}
	r.mu.Unlock()
}

func (r *run) setPhase(phase Phase) {
	r.mu.Lock()
	r.phase = phase
	r.mu.Unlock()
	r.emit("")
}

// completeItem updates the throughput window and counters for one drained
// item and emits progress plus, when its folder has no items left, the
// folder-completed event.
func (r *run) completeItem(item workItem, now time.Time) {
	r.rate.Add(now)

	r.mu.Lock()
	r.completed++
	r.pendingByDir[item.folderPath]--
	folderDone := r.pendingByDir[item.folderPath] == 0
	r.mu.Unlock()

	r.emit(item.filePath)
	if folderDone && r.opts.FolderDone != nil {
		r.opts.FolderDone(item.folderPath)
	}
}

// emit publishes a progress snapshot. The mutex serializes concurrent
// worker emissions so the callback never runs reentrantly.
func (r *run) emit(currentFile string) {
	if r.opts.Progress == nil {
		return
	}
	r.mu.Lock()
	snapshot := Progress{
		Phase:         r.phase,
		FolderCount:   r.folderCount,
		FileCount:     r.fileCount,
		Completed:     r.completed,
		OK:            r.ok,
		Errors:        r.errors,
		Skipped:       r.skipped,
		RatePerMinute: r.rate.PerMinute(time.Now()),
		CurrentFile:   currentFile,
	}
	progress := r.opts.Progress
	r.mu.Unlock()
	progress(snapshot)
}

func (r *run) summary(cancelled bool) *Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &Summary{
		RunID:       r.record.ID,
		FolderCount: r.folderCount,
		FileCount:   r.fileCount,
		OK:          r.ok,
		Errors:      r.errors,
		Skipped:     r.skipped,
		Cancelled:   cancelled,
		ErrorSample: append([]string(nil), r.errorSample...),
	}
}
