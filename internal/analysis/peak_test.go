package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// feed pushes values spaced step apart starting at start and returns the
// indexes at which a peak was recorded.
func feed(d *PeakDetector, values []float64, start time.Time, step time.Duration) []int {
	var peaks []int
	for i, v := range values {
		if d.Process(v, start.Add(time.Duration(i)*step)) {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

func TestPeakDetector_LocalMaximumAboveThreshold(t *testing.T) {
	d := NewPeakDetector()
	peaks := feed(d, []float64{0.1, 0.2, 0.9, 0.3, 0.1}, epoch, 100*time.Millisecond)
	assert.Equal(t, []int{4}, peaks)
}

func TestPeakDetector_NeedsFullWindow(t *testing.T) {
	d := NewPeakDetector()
	peaks := feed(d, []float64{0.2, 0.9, 0.3, 0.1}, epoch, 100*time.Millisecond)
	assert.Empty(t, peaks)
}

func TestPeakDetector_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"at threshold", []float64{0.1, 0.2, 0.5, 0.3, 0.1}},
		{"below threshold", []float64{0.1, 0.2, 0.4, 0.3, 0.1}},
		{"equal left neighbour", []float64{0.1, 0.9, 0.9, 0.3, 0.1}},
		{"equal right neighbour", []float64{0.1, 0.3, 0.9, 0.9, 0.1}},
		{"monotonic", []float64{0.6, 0.7, 0.8, 0.9, 1.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewPeakDetector()
			assert.Empty(t, feed(d, tt.values, epoch, 100*time.Millisecond))
		})
	}
}

func TestPeakDetector_Refractory(t *testing.T) {
	d := NewPeakDetector()
	for _, v := range []float64{0.1, 0.2, 0.9, 0.3} {
		require.False(t, d.Process(v, epoch))
	}
	require.True(t, d.Process(0.1, epoch))

	// Repeating the spike yields a new candidate on its last value.
	repeat := func(ts time.Time) bool {
		for _, v := range []float64{0.2, 0.9, 0.3} {
			require.False(t, d.Process(v, ts))
		}
		return d.Process(0.1, ts)
	}

	assert.False(t, repeat(epoch.Add(Refractory)), "exactly at the boundary")
	assert.True(t, repeat(epoch.Add(Refractory+time.Millisecond)))
	assert.False(t, repeat(epoch.Add(Refractory+100*time.Millisecond)), "measured from the last recorded peak")
}

func TestPeakDetector_ResetForgetsLastPeak(t *testing.T) {
	d := NewPeakDetector()
	spike := []float64{0.1, 0.2, 0.9, 0.3, 0.1}

	assert.Equal(t, []int{4}, feed(d, spike, epoch, 0))
	d.Reset()
	assert.Equal(t, []int{4}, feed(d, spike, epoch, 0))
}
