package scan

import (
	"sync"
	"time"
)

// rateWindow tracks completion timestamps inside a rolling window to report
// current throughput rather than a whole-run average.
type rateWindow struct {
	mu     sync.Mutex
	window time.Duration
	marks  []time.Time
}

func newRateWindow(window time.Duration) *rateWindow {
	if window <= 0 {
		window = 30 * time.Second
	}
	return &rateWindow{window: window}
}

func (r *rateWindow) Add(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.marks = append(r.marks, now)
	r.trim(now)
}

// PerMinute reports the completion rate over the window, extrapolated to
// one minute.
func (r *rateWindow) PerMinute(now time.Time) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trim(now)
	if len(r.marks) == 0 {
		return 0
	}
	return float64(len(r.marks)) / r.window.Seconds() * 60
}

func (r *rateWindow) trim(now time.Time) {
	cutoff := now.Add(-r.window)
	keep := 0
	for _, mark := range r.marks {
		if mark.After(cutoff) {
			r.marks[keep] = mark
			keep++
		}
	}
	r.marks = r.marks[:keep]
}
