package tick

import "sync"

// Manual is a simulated clock and sleeper.
// Sleeping advances the clock instantly by the requested amount, which makes
// loop timing fully deterministic. Work done between ticks is simulated with
// Advance.
type Manual struct {
	mu     sync.Mutex
	now    uint32
	coarse []uint32
	fine   []uint32
}

// NewManual creates a manual clock starting at the given microsecond value.
func NewManual(start uint32) *Manual {
	return &Manual{now: start}
}

// Micros returns the current simulated time.
func (m *Manual) Micros() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by us microseconds.
func (m *Manual) Advance(us uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += us
}

// SleepCoarse records the call and advances the clock by ms milliseconds.
func (m *Manual) SleepCoarse(ms uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coarse = append(m.coarse, ms)
	m.now += ms * 1000
}

// SleepFine records the call and advances the clock by us microseconds.
func (m *Manual) SleepFine(us uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fine = append(m.fine, us)
	m.now += us
}

// CoarseSleeps returns the recorded coarse sleep arguments.
func (m *Manual) CoarseSleeps() []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint32(nil), m.coarse...)
}

// FineSleeps returns the recorded fine sleep arguments.
func (m *Manual) FineSleeps() []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint32(nil), m.fine...)
}

// SleepCalls returns the total number of sleep calls of either kind.
func (m *Manual) SleepCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.coarse) + len(m.fine)
}

// Reset forgets recorded sleep calls without touching the clock.
func (m *Manual) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coarse = nil
	m.fine = nil
}

var (
	_ Clock   = (*Manual)(nil)
	_ Sleeper = (*Manual)(nil)
)
