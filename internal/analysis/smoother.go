package analysis

// SmoothingWindow is the number of raw samples averaged by the Smoother.
const SmoothingWindow = 5

// Smoother is a sliding moving average over the most recent raw samples.
type Smoother struct {
	win *Window
}

func NewSmoother() *Smoother {
	return &Smoother{win: NewWindow(SmoothingWindow)}
}

// Process adds a raw sample and returns the mean of the current window.
// While the window is filling the mean covers fewer samples.
func (s *Smoother) Process(v float64) float64 {
	s.win.Push(v)
	return s.win.Mean()
}

func (s *Smoother) Reset() { s.win.Reset() }
