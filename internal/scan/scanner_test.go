package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"reeldex/internal/catalog"
	"reeldex/internal/probe"
)

type fakeProber struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeProber) Probe(_ context.Context, path string, sizeBytes int64) (*probe.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	f.mu.Unlock()
	if err, ok := f.fail[path]; ok {
		return nil, err
	}
	return &probe.Result{
		Resolution:      "1920x1080",
		ResolutionClass: "1080p",
		VideoCodec:      "h264",
		BitDepth:        8,
		SizeBytes:       sizeBytes,
	}, nil
}

func (f *fakeProber) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestStore(t *testing.T) *catalog.Store {
	t.Helper()
	store, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func makeLibrary(t *testing.T, folders map[string][]string) string {
	t.Helper()
	root := t.TempDir()
	for folder, files := range folders {
		dir := filepath.Join(root, folder)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		for _, file := range files {
			if err := os.WriteFile(filepath.Join(dir, file), []byte("0123456789"), 0o644); err != nil {
				t.Fatalf("write file: %v", err)
			}
		}
	}
	return root
}

func TestRunScansLibrary(t *testing.T) {
	root := makeLibrary(t, map[string][]string{
		"Heat (1995)":  {"heat.mkv"},
		"Alien (1979)": {"alien.mkv", "alien-extended.mkv"},
	})
	store := newTestStore(t)
	prober := &fakeProber{}

	var folderEvents []string
	var folderMu sync.Mutex
	scanner := NewScanner(root, store, prober, nil)
	summary, err := scanner.Run(context.Background(), Options{
		Workers: 4,
		FolderDone: func(path string) {
			folderMu.Lock()
			folderEvents = append(folderEvents, path)
			folderMu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.FolderCount != 2 || summary.FileCount != 3 || summary.OK != 3 || summary.Errors != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Cancelled {
		t.Fatal("expected clean finish")
	}
	if len(folderEvents) != 2 {
		t.Fatalf("expected 2 folder-done events, got %v", folderEvents)
	}

	file, err := store.FileByPath(context.Background(), filepath.Join(root, "Heat (1995)", "heat.mkv"))
	if err != nil {
		t.Fatalf("file by path: %v", err)
	}
	if file == nil || !file.Scanned() || file.ResolutionClass != "1080p" {
		t.Fatalf("expected scanned file row, got %+v", file)
	}

	runs, err := store.ScanRuns(context.Background(), 1)
	if err != nil {
		t.Fatalf("scan runs: %v", err)
	}
	if len(runs) != 1 || runs[0].FileCount != 3 || runs[0].OKCount != 3 || runs[0].FinishedAt == nil {
		t.Fatalf("unexpected run record: %+v", runs[0])
	}
}

func TestRunSkipsScannedFilesOnRestart(t *testing.T) {
	root := makeLibrary(t, map[string][]string{
		"A (2000)": {"a.mkv"},
		"B (2001)": {"b.mkv"},
		"C (2002)": {"c.mkv"},
	})
	store := newTestStore(t)
	prober := &fakeProber{fail: map[string]error{
		filepath.Join(root, "B (2001)", "b.mkv"): errors.New("probe exploded"),
	}}
	scanner := NewScanner(root, store, prober, nil)

	first, err := scanner.Run(context.Background(), Options{Workers: 1})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.OK != 2 || first.Errors != 1 {
		t.Fatalf("unexpected first summary: %+v", first)
	}
	if prober.callCount() != 3 {
		t.Fatalf("expected 3 probes in first run, got %d", prober.callCount())
	}
	if len(first.ErrorSample) != 1 || !strings.Contains(first.ErrorSample[0], "probe exploded") {
		t.Fatalf("expected error sample, got %v", first.ErrorSample)
	}

	// The rerun only re-probes the failed file; success rows are skipped.
	prober.fail = nil
	second, err := scanner.Run(context.Background(), Options{Workers: 1})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if prober.callCount() != 4 {
		t.Fatalf("expected 1 extra probe on restart, got %d total", prober.callCount())
	}
	if second.Skipped != 2 || second.OK != 1 || second.Errors != 0 {
		t.Fatalf("unexpected second summary: %+v", second)
	}
}

func TestRunForceRescansEverything(t *testing.T) {
	root := makeLibrary(t, map[string][]string{"A (2000)": {"a.mkv"}})
	store := newTestStore(t)
	prober := &fakeProber{}
	scanner := NewScanner(root, store, prober, nil)

	if _, err := scanner.Run(context.Background(), Options{Workers: 1}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := scanner.Run(context.Background(), Options{Workers: 1, Force: true}); err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if prober.callCount() != 2 {
		t.Fatalf("expected force to re-probe, got %d calls", prober.callCount())
	}
}

func TestRunOversizedFileBecomesScanError(t *testing.T) {
	root := makeLibrary(t, map[string][]string{"A (2000)": {"a.mkv"}})
	store := newTestStore(t)
	prober := &fakeProber{}
	scanner := NewScanner(root, store, prober, nil)

	summary, err := scanner.Run(context.Background(), Options{Workers: 1, MaxFileSizeBytes: 5})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Errors != 1 || summary.OK != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if prober.callCount() != 0 {
		t.Fatal("expected oversized file to skip the probe entirely")
	}
	file, err := store.FileByPath(context.Background(), filepath.Join(root, "A (2000)", "a.mkv"))
	if err != nil {
		t.Fatalf("file by path: %v", err)
	}
	if file == nil || !strings.Contains(file.ScanError, "too large") {
		t.Fatalf("expected too-large scan error, got %+v", file)
	}
}

func TestRunCancellationStopsClaiming(t *testing.T) {
	folders := map[string][]string{}
	for _, name := range []string{"A (2000)", "B (2001)", "C (2002)", "D (2003)", "E (2004)"} {
		folders[name] = []string{"movie.mkv"}
	}
	root := makeLibrary(t, folders)
	store := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	var probed atomic.Int32
	prober := &cancellingProber{cancel: cancel, probed: &probed}
	scanner := NewScanner(root, store, prober, nil)

	summary, err := scanner.Run(ctx, Options{Workers: 1})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !summary.Cancelled {
		t.Fatal("expected cancelled summary")
	}
	if got := probed.Load(); got != 1 {
		t.Fatalf("expected workers to stop claiming after cancel, got %d probes", got)
	}

	runs, err := store.ScanRuns(context.Background(), 1)
	if err != nil {
		t.Fatalf("scan runs: %v", err)
	}
	if runs[0].Notes != "cancelled" {
		t.Fatalf("expected cancelled note on the run record, got %q", runs[0].Notes)
	}
}

// cancellingProber cancels the run during the first probe.
type cancellingProber struct {
	cancel context.CancelFunc
	probed *atomic.Int32
}

func (c *cancellingProber) Probe(context.Context, string, int64) (*probe.Result, error) {
	c.probed.Add(1)
	c.cancel()
	return &probe.Result{ResolutionClass: "1080p"}, nil
}

func TestRateWindowRollsOff(t *testing.T) {
	window := newRateWindow(30 * time.Second)
	base := time.Now()
	for i := 0; i < 10; i++ {
		window.Add(base.Add(time.Duration(i) * time.Second))
	}
	if got := window.PerMinute(base.Add(10 * time.Second)); got != 20 {
		t.Fatalf("expected 20/min for 10 completions in the window, got %v", got)
	}
	// 45s later, everything has aged out.
	if got := window.PerMinute(base.Add(55 * time.Second)); got != 0 {
		t.Fatalf("expected empty window, got %v", got)
	}
}
