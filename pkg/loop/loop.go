package loop

import (
	"context"

	"github.com/itohio/goaccel/pkg/tick"
)

// Loop alternates waiting for the next tick and sampling.
type Loop struct {
	sched   *tick.Scheduler
	sampler *Sampler
	onRead  func(Reading)
}

// New creates a loop from a scheduler and a sampler.
func New(sched *tick.Scheduler, sampler *Sampler) *Loop {
	return &Loop{
		sched:   sched,
		sampler: sampler,
	}
}

// OnReading registers a function called after every iteration.
// It runs on the loop goroutine and must return quickly.
func (l *Loop) OnReading(fn func(Reading)) {
	l.onRead = fn
}

// Step waits for the next tick and performs one sampling iteration.
func (l *Loop) Step() Reading {
	l.sched.Wait()
	r := l.sampler.SampleAndEmit()
	if l.onRead != nil {
		l.onRead(r)
	}
	return r
}

// RunN performs exactly n iterations.
func (l *Loop) RunN(n int) {
	for range n {
		l.Step()
	}
}

// Run loops until ctx is cancelled and returns ctx.Err().
// With context.Background it never returns.
func (l *Loop) Run(ctx context.Context) error {
	done := ctx.Done()
	for {
		if done != nil {
			select {
			case <-done:
				return ctx.Err()
			default:
			}
		}
		l.Step()
	}
}

// Scheduler returns the loop scheduler.
func (l *Loop) Scheduler() *tick.Scheduler {
	return l.sched
}

// Sampler returns the loop sampler.
func (l *Loop) Sampler() *Sampler {
	return l.sampler
}
