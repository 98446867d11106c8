package analysis

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrInsufficientPeaks means fewer than two peaks are recorded and the
	// rate is undefined.
	ErrInsufficientPeaks = errors.New("analysis: fewer than two peaks recorded")

	// ErrEstimateInProgress means another estimation was running and this
	// trigger was dropped.
	ErrEstimateInProgress = errors.New("analysis: rate estimation already in progress")
)

// RateEstimator keeps the ordered peak timestamps and converts the mean
// inter-peak interval into a per-minute rate.
type RateEstimator struct {
	busy  atomic.Bool
	mu    sync.Mutex
	peaks []time.Time
}

func NewRateEstimator() *RateEstimator {
	return &RateEstimator{}
}

// Record appends a peak timestamp.
func (r *RateEstimator) Record(ts time.Time) {
	r.mu.Lock()
	r.peaks = append(r.peaks, ts)
	r.mu.Unlock()
}

// Peaks returns a copy of the recorded timestamps.
func (r *RateEstimator) Peaks() []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]time.Time, len(r.peaks))
	copy(out, r.peaks)
	return out
}

// Estimate returns floor(60 / mean interval) over the recorded peaks.
// A call made while another is running returns ErrEstimateInProgress
// instead of waiting.
func (r *RateEstimator) Estimate() (int, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return 0, ErrEstimateInProgress
	}
	defer r.busy.Store(false)

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.peaks) < 2 {
		return 0, ErrInsufficientPeaks
	}

	var total time.Duration
	for i := 1; i < len(r.peaks); i++ {
		total += r.peaks[i].Sub(r.peaks[i-1])
	}
	mean := total.Seconds() / float64(len(r.peaks)-1)
	if mean <= 0 {
		return 0, ErrInsufficientPeaks
	}

	return int(math.Floor(60 / mean)), nil
}

func (r *RateEstimator) Reset() {
	r.mu.Lock()
	r.peaks = r.peaks[:0]
	r.mu.Unlock()
}
