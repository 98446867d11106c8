package signal

import (
	"fmt"
	"math"
	"strings"
)

// BreathSim generates a respiration-like voltage at fs Hz: a resting
// baseline, a gaussian inhale bump once per breath and a little noise.
type BreathSim struct {
	fs       float64
	phase    float64
	rateBPM  float64
	noise    float64
	baseline float64
	depth    float64
}

// NewBreathSim fs=25, rateBPM typically 10-25, noise ~0.0-0.05.
func NewBreathSim(fs, rateBPM, noise float64) *BreathSim {
	return &BreathSim{fs: fs, rateBPM: rateBPM, noise: noise, baseline: 0.2, depth: 0.7}
}

// Next returns the next sample and advances time.
func (s *BreathSim) Next() float64 {
	cycleHz := s.rateBPM / 60.0
	s.phase += cycleHz / s.fs
	if s.phase >= 1.0 {
		s.phase -= 1.0
	}

	t := s.phase

	inhale := s.depth * gauss(t, 0.4, 0.12)
	n := s.noise * (2*fract(math.Sin(12345.678*t)*9876.543) - 1)

	return s.baseline + inhale + n
}

func gauss(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-0.5 * z * z)
}

func fract(x float64) float64 { return x - math.Floor(x) }

// Vitals drifts a set of auxiliary readings around resting values.
type Vitals struct {
	step int

	HR, SpO2, Micro, SysBP, DiaBP, Fatigue int
}

func NewVitals() *Vitals {
	return &Vitals{HR: 72, SpO2: 98, Micro: 120, SysBP: 118, DiaBP: 76, Fatigue: 2}
}

// Next advances the readings and renders them as an auxiliary record.
func (v *Vitals) Next() string {
	v.step++
	wobble := func(period int, amp float64) int {
		return int(math.Round(amp * math.Sin(2*math.Pi*float64(v.step)/float64(period))))
	}

	var samples []string
	for i := 0; i < 4; i++ {
		samples = append(samples, fmt.Sprint(512+wobble(7+i, 40)))
	}

	return fmt.Sprintf("AC=[%s],HR=%d,SpO2=%d,Micro=%d,SysBP=%d,DiaBP=%d,Fatigue=%d",
		strings.Join(samples, ","),
		v.HR+wobble(11, 4),
		v.SpO2+wobble(13, 1),
		v.Micro+wobble(17, 8),
		v.SysBP+wobble(19, 5),
		v.DiaBP+wobble(23, 3),
		v.Fatigue,
	)
}
