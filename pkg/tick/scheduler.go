package tick

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// DefaultCoarseThreshold is the remaining budget above which the scheduler
	// sleeps in whole milliseconds first and finishes with a fine sleep.
	DefaultCoarseThreshold = 5 * time.Millisecond
)

// ErrInvalidPeriod is returned when the loop period is not a positive number of microseconds.
var ErrInvalidPeriod = errors.New("invalid loop period")

// Scheduler holds a loop to a fixed period.
//
// Each call to Wait sleeps for whatever is left of the period since the last
// scheduled tick. When the previous iteration overran the period, Wait returns
// immediately and the schedule slips by the overrun amount. Missed time is
// never made up by shortening later periods.
type Scheduler struct {
	clock   Clock
	sleeper Sleeper

	period    int64 // microseconds
	threshold int64 // microseconds
	catchUp   bool

	lastTick uint32
	overruns uint64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithCoarseThreshold sets the budget above which the two-tier sleep is used.
func WithCoarseThreshold(d time.Duration) Option {
	return func(s *Scheduler) {
		if d >= 0 {
			s.threshold = d.Microseconds()
		}
	}
}

// WithCatchUp keeps the tick on a fixed grid after an overrun.
// The next tick is then set behind the wake time and following iterations get
// shortened until the grid is reached again.
func WithCatchUp() Option {
	return func(s *Scheduler) {
		s.catchUp = true
	}
}

// NewScheduler creates a scheduler for the given period.
// The first tick is scheduled one period after construction.
func NewScheduler(period time.Duration, clock Clock, sleeper Sleeper, opts ...Option) (*Scheduler, error) {
	us := period.Microseconds()
	if us <= 0 || us > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeriod, period)
	}
	if clock == nil {
		return nil, errors.New("clock is required")
	}
	if sleeper == nil {
		return nil, errors.New("sleeper is required")
	}

	s := &Scheduler{
		clock:     clock,
		sleeper:   sleeper,
		period:    us,
		threshold: DefaultCoarseThreshold.Microseconds(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastTick = clock.Micros()

	return s, nil
}

// Wait blocks until the next tick is due.
func (s *Scheduler) Wait() {
	now := s.clock.Micros()
	remaining := s.period - int64(Since(now, s.lastTick))

	switch {
	case remaining > s.threshold:
		s.sleeper.SleepCoarse(uint32(remaining / 1000))
		if fine := remaining % 1000; fine > 0 {
			s.sleeper.SleepFine(uint32(fine))
		}
	case remaining > 0:
		s.sleeper.SleepFine(uint32(remaining))
	default:
		// Late: start immediately.
		if remaining < 0 {
			s.overruns++
		}
		if !s.catchUp {
			remaining = 0
		}
	}

	s.lastTick = now + uint32(int32(remaining))
}

// Period returns the configured period.
func (s *Scheduler) Period() time.Duration {
	return time.Duration(s.period) * time.Microsecond
}

// LastTick returns the clock value of the most recently scheduled tick.
func (s *Scheduler) LastTick() uint32 {
	return s.lastTick
}

// Overruns returns how many times Wait found the budget already spent.
func (s *Scheduler) Overruns() uint64 {
	return s.overruns
}
