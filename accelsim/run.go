package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/itohio/goaccel/pkg/accel"
	"github.com/itohio/goaccel/pkg/config"
	"github.com/itohio/goaccel/pkg/loop"
	"github.com/itohio/goaccel/pkg/tick"
)

// stats summarizes a finished run.
type stats struct {
	Iterations  int
	Overruns    uint64
	Dropped     uint64
	Failed      uint64
	ReadErrors  uint64
	WriteErrors uint64
}

// run drives the loop with simulated channels until n iterations are done
// (n <= 0 means forever) or ctx is cancelled. Output goes through an
// AsyncWriter so a slow sink never stalls the loop.
func run(ctx context.Context, cfg *config.Config, out io.Writer, n int) (stats, error) {
	w := loop.NewAsyncWriter(out, loop.DefaultQueueDepth)

	clock := tick.NewSystemClock()
	ch := accel.SimChannels(cfg, clock)
	lp, err := accel.NewLoop(cfg, clock, tick.SystemSleeper{}, ch[0], ch[1], ch[2], w)
	if err != nil {
		w.Close()
		return stats{}, fmt.Errorf("failed to build loop: %w", err)
	}

	var st stats
	lp.OnReading(func(loop.Reading) {
		st.Iterations++
	})

	if n > 0 {
		for i := 0; i < n && ctx.Err() == nil; i++ {
			lp.Step()
		}
	} else if err := lp.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		w.Close()
		return st, err
	}

	// Close flushes queued lines before the counters are read.
	if err := w.Close(); err != nil {
		return st, fmt.Errorf("failed to flush output: %w", err)
	}

	st.Overruns = lp.Scheduler().Overruns()
	st.Dropped = w.Dropped()
	st.Failed = w.Failed()
	st.ReadErrors = lp.Sampler().ReadErrors()
	st.WriteErrors = lp.Sampler().WriteErrors()
	return st, nil
}
