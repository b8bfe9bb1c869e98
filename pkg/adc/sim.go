package adc

import (
	"github.com/chewxy/math32"

	"github.com/itohio/goaccel/pkg/tick"
)

// Sim simulates one axis of an analog accelerometer.
//
// The axis acceleration in g is Bias + Amplitude*sin(2*pi*Frequency*t + Phase)
// plus a small deterministic noise term. It is converted to the sensor output
// voltage through ZeroG and Sensitivity and then to converter counts through
// Scale, the number of microvolts represented by one count. The result is
// clamped to Range.
type Sim struct {
	Clock tick.Clock
	Range Range

	Bias      float32 // g
	Amplitude float32 // g
	Frequency float32 // Hz
	Phase     float32 // radians
	Noise     float32 // g

	ZeroG       float32 // output voltage at 0 g (V)
	Sensitivity float32 // V per g
	Scale       int     // microvolts per count

	// Disconnected makes every Read fail with ErrDisconnected.
	Disconnected bool
}

// Read returns the simulated count at the current clock time.
func (s *Sim) Read() (uint16, error) {
	if s.Disconnected {
		return 0, ErrDisconnected
	}

	t := float32(s.Clock.Micros()) * 1e-6
	g := s.Bias + s.Amplitude*math32.Sin(2*math32.Pi*s.Frequency*t+s.Phase)
	g += (math32.Sin(t*1013) + math32.Cos(t*1297)) * s.Noise * 0.5

	return s.countsFor(g), nil
}

// countsFor converts an acceleration to a clamped converter count.
func (s *Sim) countsFor(g float32) uint16 {
	scale := s.Scale
	if scale <= 0 {
		scale = 1
	}
	volts := s.ZeroG + g*s.Sensitivity
	counts := math32.Round(volts * 1e6 / float32(scale))

	limit := float32(s.Range.Max())
	if counts < 0 {
		counts = 0
	} else if counts > limit {
		counts = limit
	}
	return uint16(counts)
}

var _ Channel = (*Sim)(nil)
