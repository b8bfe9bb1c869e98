package loop

import (
	"bufio"
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/goaccel/pkg/adc"
	"github.com/itohio/goaccel/pkg/tick"
)

func newTestLoop(t *testing.T, clock *tick.Manual, period time.Duration, out *bytes.Buffer) *Loop {
	t.Helper()
	sched, err := tick.NewScheduler(period, clock, clock)
	require.NoError(t, err)
	sampler, err := NewSampler(DefaultSamplerConfig(), clock, adc.Fixed(100), adc.Fixed(200), adc.Fixed(300), out)
	require.NoError(t, err)
	return New(sched, sampler)
}

func deltas(t *testing.T, out string) []int {
	t.Helper()
	var result []int
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		require.Len(t, fields, 4)
		d, err := strconv.Atoi(fields[3])
		require.NoError(t, err)
		result = append(result, d)
	}
	return result
}

func TestLoop_SteadyCadence(t *testing.T) {
	clock := tick.NewManual(0)
	var out bytes.Buffer
	l := newTestLoop(t, clock, 500*time.Microsecond, &out)

	var readings []Reading
	l.OnReading(func(r Reading) {
		readings = append(readings, r)
		clock.Advance(80) // work
	})
	l.RunN(6)

	require.Len(t, readings, 6)
	assert.Equal(t, []int{0, 500, 500, 500, 500, 500}, deltas(t, out.String()))
	assert.Equal(t, "200000 400000 600000 500\n", strings.SplitAfter(out.String(), "\n")[1])
}

func TestLoop_OverrunNotCompensated(t *testing.T) {
	clock := tick.NewManual(0)
	var out bytes.Buffer
	l := newTestLoop(t, clock, 500*time.Microsecond, &out)

	work := []uint32{100, 900, 100, 100}
	i := 0
	l.OnReading(func(Reading) {
		clock.Advance(work[i])
		i++
	})
	l.RunN(len(work))

	// Second iteration took 900us: the next sample comes 900us later, the
	// following ones are back to the nominal period.
	assert.Equal(t, []int{0, 500, 900, 500}, deltas(t, out.String()))
	assert.Equal(t, uint64(1), l.Scheduler().Overruns())
}

func TestLoop_RunStopsOnCancel(t *testing.T) {
	clock := tick.NewManual(0)
	var out bytes.Buffer
	l := newTestLoop(t, clock, 500*time.Microsecond, &out)

	ctx, cancel := context.WithCancel(context.Background())
	n := 0
	l.OnReading(func(Reading) {
		n++
		if n == 3 {
			cancel()
		}
	})

	err := l.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, n)
	assert.Len(t, deltas(t, out.String()), 3)
}

func TestLoop_Accessors(t *testing.T) {
	clock := tick.NewManual(0)
	var out bytes.Buffer
	l := newTestLoop(t, clock, time.Millisecond, &out)

	assert.NotNil(t, l.Scheduler())
	assert.NotNil(t, l.Sampler())
	assert.Equal(t, time.Millisecond, l.Scheduler().Period())
}
