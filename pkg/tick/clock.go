package tick

import "time"

// Clock is a monotonic microsecond counter.
// The counter wraps around at 2^32 microseconds (about 71.6 minutes), the same
// contract as the micros() counter of most microcontroller runtimes. All
// arithmetic on its values must be done with unsigned subtraction.
type Clock interface {
	Micros() uint32
}

// Sleeper blocks the calling goroutine.
// SleepCoarse has millisecond granularity and is expected to be the cheaper
// (lower power) primitive. SleepFine covers sub-millisecond residuals.
type Sleeper interface {
	SleepCoarse(ms uint32)
	SleepFine(us uint32)
}

// SystemClock is a Clock backed by the runtime monotonic clock.
type SystemClock struct {
	start time.Time
}

// NewSystemClock creates a clock that starts counting at zero now.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Micros returns microseconds elapsed since the clock was created, truncated to 32 bits.
func (c *SystemClock) Micros() uint32 {
	return uint32(time.Since(c.start).Microseconds())
}

// SystemSleeper sleeps using time.Sleep.
type SystemSleeper struct{}

// SleepCoarse sleeps for ms milliseconds.
func (SystemSleeper) SleepCoarse(ms uint32) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// SleepFine sleeps for us microseconds.
func (SystemSleeper) SleepFine(us uint32) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}

// Since returns the signed number of microseconds from then to now.
// The result is correct across a single wraparound of the counter as long as
// the real gap is shorter than 2^31 microseconds.
func Since(now, then uint32) int32 {
	return int32(now - then)
}

var (
	_ Clock   = (*SystemClock)(nil)
	_ Sleeper = SystemSleeper{}
)
