package loop

import (
	"errors"
	"io"

	"github.com/itohio/goaccel/pkg/adc"
	"github.com/itohio/goaccel/pkg/tick"
)

const (
	// DefaultScaleFactor converts raw counts to the reported unit (microvolts).
	DefaultScaleFactor = 2000
	// DefaultSentinel replaces a raw reading that failed or fell outside the converter range.
	DefaultSentinel = -1
)

// Axis indexes the three accelerometer channels.
type Axis int

const (
	X Axis = iota
	Y
	Z
	NumAxes
)

// Reading is the result of one sampling iteration.
type Reading struct {
	Raw    [NumAxes]int // raw counts, or the sentinel on failure
	Scaled [NumAxes]int // Raw * scale factor
	Delta  int32        // microseconds since the previous sample
	Valid  [NumAxes]bool
}

// SamplerConfig holds the fixed parameters of a Sampler.
type SamplerConfig struct {
	ScaleFactor int
	Sentinel    int
	Range       adc.Range
}

// DefaultSamplerConfig returns the configuration used by the firmware.
func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		ScaleFactor: DefaultScaleFactor,
		Sentinel:    DefaultSentinel,
		Range:       adc.DefaultRange(),
	}
}

// Sampler reads the three channels, scales them and emits one text line per call.
type Sampler struct {
	cfg      SamplerConfig
	clock    tick.Clock
	channels [NumAxes]adc.Channel
	out      io.Writer

	prev    uint32
	started bool
	buf     []byte

	readErrors  uint64
	writeErrors uint64
}

// NewSampler creates a sampler reading x, y and z and writing lines to out.
func NewSampler(cfg SamplerConfig, clock tick.Clock, x, y, z adc.Channel, out io.Writer) (*Sampler, error) {
	if clock == nil {
		return nil, errors.New("clock is required")
	}
	if x == nil || y == nil || z == nil {
		return nil, errors.New("all three channels are required")
	}
	if out == nil {
		return nil, errors.New("output writer is required")
	}

	return &Sampler{
		cfg:      cfg,
		clock:    clock,
		channels: [NumAxes]adc.Channel{x, y, z},
		out:      out,
		buf:      make([]byte, 0, MaxLineLength),
	}, nil
}

// SampleAndEmit performs one sampling iteration.
// It never fails: bad channel reads are replaced by the sentinel and write
// errors are only counted.
func (s *Sampler) SampleAndEmit() Reading {
	now := s.clock.Micros()
	var r Reading
	if s.started {
		r.Delta = tick.Since(now, s.prev)
	}
	s.prev = now
	s.started = true

	for i, ch := range s.channels {
		r.Raw[i], r.Valid[i] = s.read(ch)
		r.Scaled[i] = r.Raw[i] * s.cfg.ScaleFactor
	}

	s.buf = AppendLine(s.buf[:0], r.Scaled[X], r.Scaled[Y], r.Scaled[Z], r.Delta)
	if _, err := s.out.Write(s.buf); err != nil {
		s.writeErrors++
	}

	return r
}

// read returns the raw count or the sentinel.
func (s *Sampler) read(ch adc.Channel) (int, bool) {
	v, err := ch.Read()
	if err != nil || !s.cfg.Range.Contains(v) {
		s.readErrors++
		return s.cfg.Sentinel, false
	}
	return int(v), true
}

// ReadErrors returns the number of channel reads replaced by the sentinel.
func (s *Sampler) ReadErrors() uint64 {
	return s.readErrors
}

// WriteErrors returns the number of lines the output failed to accept.
func (s *Sampler) WriteErrors() uint64 {
	return s.writeErrors
}
