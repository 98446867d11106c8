package analysis

import (
	"sync"
	"time"
)

// HistorySize is the number of smoothed points kept for display.
const HistorySize = 100

// Point is a smoothed value paired with its sample index.
type Point struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// Result is the outcome of feeding one voltage sample through the pipeline.
type Result struct {
	Index    int
	Smoothed float64
	Peak     bool

	// Rate is valid only when RateOK is set.
	Rate   int
	RateOK bool
}

// Pipeline owns all per-stream signal state: the smoothing and peak windows,
// the peak sequence, the display history and the running sample index.
// It is safe for concurrent use.
type Pipeline struct {
	mu       sync.Mutex
	smoother *Smoother
	detector *PeakDetector
	rate     *RateEstimator
	history  []Point
	index    int
	now      func() time.Time
}

// NewPipeline returns an empty pipeline. now defaults to time.Now, whose
// readings carry the monotonic clock.
func NewPipeline(now func() time.Time) *Pipeline {
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		smoother: NewSmoother(),
		detector: NewPeakDetector(),
		rate:     NewRateEstimator(),
		history:  make([]Point, 0, HistorySize),
		now:      now,
	}
}

// Process feeds one raw voltage sample through smoothing, peak detection and,
// when a peak is recorded, rate estimation.
func (p *Pipeline) Process(v float64) Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	res := Result{Index: p.index}
	res.Smoothed = p.smoother.Process(v)

	ts := p.now()
	if p.detector.Process(res.Smoothed, ts) {
		res.Peak = true
		p.rate.Record(ts)
		if rate, err := p.rate.Estimate(); err == nil {
			res.Rate, res.RateOK = rate, true
		}
	}

	if len(p.history) == HistorySize {
		copy(p.history, p.history[1:])
		p.history = p.history[:HistorySize-1]
	}
	p.history = append(p.history, Point{Index: p.index, Value: res.Smoothed})
	p.index++

	return res
}

// Rate re-estimates from the recorded peaks without adding a sample.
func (p *Pipeline) Rate() (int, error) {
	return p.rate.Estimate()
}

// Peaks returns the recorded peak timestamps.
func (p *Pipeline) Peaks() []time.Time {
	return p.rate.Peaks()
}

// History returns the display history, oldest first.
func (p *Pipeline) History() []Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Point, len(p.history))
	copy(out, p.history)
	return out
}

// Index is the index the next sample will receive.
func (p *Pipeline) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// Clear empties every window, the peak sequence and the history and resets
// the sample index to zero.
func (p *Pipeline) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.smoother.Reset()
	p.detector.Reset()
	p.rate.Reset()
	p.history = p.history[:0]
	p.index = 0
}
