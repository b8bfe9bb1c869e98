package adc

import "errors"

const (
	// DefaultResolution is the converter resolution in bits (12-bit = 0-4095).
	DefaultResolution = 12
)

// ErrDisconnected is returned by channels that have no signal attached.
var ErrDisconnected = errors.New("adc channel disconnected")

// Channel is a single analog input.
type Channel interface {
	// Read performs one blocking conversion and returns the raw count.
	Read() (uint16, error)
}

// Func adapts a plain function to a Channel.
type Func func() (uint16, error)

// Read calls f.
func (f Func) Read() (uint16, error) {
	return f()
}

// Fixed is a channel that always returns the same count.
type Fixed uint16

// Read returns the fixed count.
func (f Fixed) Read() (uint16, error) {
	return uint16(f), nil
}

// Range describes the valid output range of a converter.
type Range struct {
	Bits int
}

// DefaultRange returns the range of a 12-bit converter.
func DefaultRange() Range {
	return Range{Bits: DefaultResolution}
}

// Max returns the largest valid count.
func (r Range) Max() uint16 {
	bits := r.Bits
	if bits <= 0 || bits > 16 {
		bits = DefaultResolution
	}
	return uint16(1<<bits - 1)
}

// Contains reports whether v is a valid count.
func (r Range) Contains(v uint16) bool {
	return v <= r.Max()
}

// FromLeftAligned converts a 16-bit left-aligned reading (as returned by
// TinyGo machine.ADC.Get) to a right-aligned count of the given range.
func (r Range) FromLeftAligned(v uint16) uint16 {
	bits := r.Bits
	if bits <= 0 || bits > 16 {
		bits = DefaultResolution
	}
	return v >> (16 - bits)
}

var (
	_ Channel = Func(nil)
	_ Channel = Fixed(0)
)
