package analysis

import "time"

const (
	// PeakWindow is the number of smoothed values inspected for a local maximum.
	PeakWindow = 5

	// PeakThreshold is the minimum smoothed value of a peak.
	PeakThreshold = 0.5

	// Refractory is the minimum spacing between two recorded peaks.
	Refractory = 300 * time.Millisecond
)

// PeakDetector finds local maxima in the smoothed signal. The centre of a
// full window is a peak when it is above the threshold and strictly greater
// than both neighbours; candidates inside the refractory period of the last
// recorded peak are discarded.
type PeakDetector struct {
	win          *Window
	threshold    float64
	refractory   time.Duration
	lastPeakTime time.Time
	hasPeak      bool
}

func NewPeakDetector() *PeakDetector {
	return &PeakDetector{
		win:        NewWindow(PeakWindow),
		threshold:  PeakThreshold,
		refractory: Refractory,
	}
}

// Process adds a smoothed value observed at ts and reports whether a peak
// was recorded at ts.
func (d *PeakDetector) Process(value float64, ts time.Time) bool {
	d.win.Push(value)
	if !d.win.Full() {
		return false
	}

	mid := d.win.Len() / 2
	centre := d.win.At(mid)
	if centre <= d.threshold || centre <= d.win.At(mid-1) || centre <= d.win.At(mid+1) {
		return false
	}

	if d.hasPeak && ts.Sub(d.lastPeakTime) <= d.refractory {
		return false
	}

	d.lastPeakTime = ts
	d.hasPeak = true
	return true
}

func (d *PeakDetector) Reset() {
	d.win.Reset()
	d.lastPeakTime = time.Time{}
	d.hasPeak = false
}
