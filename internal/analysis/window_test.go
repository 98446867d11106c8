package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow_EvictsOldestFirst(t *testing.T) {
	w := NewWindow(3)
	for _, v := range []float64{1, 2, 3, 4, 5} {
		w.Push(v)
	}

	require.True(t, w.Full())
	assert.Equal(t, []float64{3, 4, 5}, w.Values())
	assert.Equal(t, 3.0, w.At(0))
	assert.InDelta(t, 4.0, w.Mean(), 1e-12)
}

func TestWindow_Reset(t *testing.T) {
	w := NewWindow(2)
	w.Push(1)
	w.Push(2)
	w.Reset()

	assert.Equal(t, 0, w.Len())
	assert.False(t, w.Full())
	assert.Equal(t, 0.0, w.Mean())
	assert.Equal(t, 2, w.Cap())
}
