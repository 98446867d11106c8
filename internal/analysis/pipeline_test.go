package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

// triangle is a 20-sample triangle wave between 0 and 1.
func triangle(i int) float64 {
	p := i % 20
	if p <= 10 {
		return float64(p) / 10
	}
	return float64(20-p) / 10
}

func TestPipeline_CentreNotAboveNeighbours(t *testing.T) {
	clock := &fakeClock{t: epoch, step: 100 * time.Millisecond}
	p := NewPipeline(clock.Now)

	// Fill the smoothing window first.
	for i := 0; i < SmoothingWindow; i++ {
		require.False(t, p.Process(0.6).Peak)
	}

	want := []float64{0.6, 0.6, 0.56, 0.56, 0.56}
	for i, v := range []float64{0.6, 0.6, 0.4, 0.6, 0.6} {
		res := p.Process(v)
		assert.Equal(t, SmoothingWindow+i, res.Index)
		assert.InDelta(t, want[i], res.Smoothed, 1e-9)
		assert.False(t, res.Peak, "sample %d", i)
	}
	assert.Empty(t, p.Peaks())
}

func TestPipeline_PeriodicSignalRate(t *testing.T) {
	// 200ms per sample, 20 samples per cycle: one peak every 4s.
	clock := &fakeClock{t: epoch, step: 200 * time.Millisecond}
	p := NewPipeline(clock.Now)

	var last Result
	peaks := 0
	for i := 0; i < 70; i++ {
		res := p.Process(triangle(i))
		if res.Peak {
			peaks++
			last = res
		}
	}

	require.Equal(t, 3, peaks)
	require.True(t, last.RateOK)
	assert.Equal(t, 15, last.Rate)

	ts := p.Peaks()
	require.Len(t, ts, 3)
	assert.Equal(t, 4*time.Second, ts[1].Sub(ts[0]))

	rate, err := p.Rate()
	require.NoError(t, err)
	assert.Equal(t, 15, rate)
}

func TestPipeline_FirstPeakHasNoRate(t *testing.T) {
	clock := &fakeClock{t: epoch, step: 200 * time.Millisecond}
	p := NewPipeline(clock.Now)

	for i := 0; i < 20; i++ {
		res := p.Process(triangle(i))
		if res.Peak {
			assert.False(t, res.RateOK)
		}
	}
	_, err := p.Rate()
	assert.ErrorIs(t, err, ErrInsufficientPeaks)
}

func TestPipeline_HistoryIsBounded(t *testing.T) {
	p := NewPipeline(nil)
	for i := 0; i < HistorySize+25; i++ {
		p.Process(1)
	}

	h := p.History()
	require.Len(t, h, HistorySize)
	assert.Equal(t, 25, h[0].Index)
	assert.Equal(t, HistorySize+24, h[len(h)-1].Index)
	assert.Equal(t, HistorySize+25, p.Index())
}

func TestPipeline_Clear(t *testing.T) {
	clock := &fakeClock{t: epoch, step: 200 * time.Millisecond}
	p := NewPipeline(clock.Now)
	for i := 0; i < 50; i++ {
		p.Process(triangle(i))
	}
	require.NotEmpty(t, p.Peaks())

	p.Clear()

	assert.Equal(t, 0, p.Index())
	assert.Empty(t, p.History())
	assert.Empty(t, p.Peaks())

	// Windows are empty again: the first sample is its own mean.
	res := p.Process(0.3)
	assert.Equal(t, 0, res.Index)
	assert.InDelta(t, 0.3, res.Smoothed, 1e-12)
}
