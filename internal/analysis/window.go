package analysis

// Window is a fixed-capacity buffer of recent values; the oldest value is
// evicted first once it is full.
type Window struct {
	buf  []float64
	size int
}

func NewWindow(size int) *Window {
	return &Window{buf: make([]float64, 0, size), size: size}
}

// Push appends v, evicting the oldest value when the window is full.
func (w *Window) Push(v float64) {
	if len(w.buf) == w.size {
		copy(w.buf, w.buf[1:])
		w.buf = w.buf[:w.size-1]
	}
	w.buf = append(w.buf, v)
}

func (w *Window) Len() int   { return len(w.buf) }
func (w *Window) Cap() int   { return w.size }
func (w *Window) Full() bool { return len(w.buf) == w.size }

// At returns the i-th value, oldest first.
func (w *Window) At(i int) float64 { return w.buf[i] }

// Mean of the current contents; 0 for an empty window.
func (w *Window) Mean() float64 {
	if len(w.buf) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range w.buf {
		sum += v
	}
	return sum / float64(len(w.buf))
}

// Values returns a copy of the contents, oldest first.
func (w *Window) Values() []float64 {
	out := make([]float64, len(w.buf))
	copy(out, w.buf)
	return out
}

func (w *Window) Reset() { w.buf = w.buf[:0] }
