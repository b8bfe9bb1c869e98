package analysis

import (
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestAxisStats_SquareWave(t *testing.T) {
	values := []float32{-1, -1, 1, 1, -1, -1, 1, 1, -1, -1, 1, 1}

	s := axisStats(values)

	assert.Equal(t, float32(-1), s.Min)
	assert.Equal(t, float32(1), s.Max)
	assert.Equal(t, float32(0), s.Mid)
	assert.InDelta(t, 0, s.Mean, 1e-6)
	assert.InDelta(t, 1, s.Std, 1e-6)

	// Rising crossings at 2, 6 and 10 give two complete cycles.
	assert.Equal(t, 2, s.Cycles)
	assert.InDelta(t, 2, s.PeakToPeak, 1e-6)
	assert.InDelta(t, 0, s.PeakToPeakStd, 1e-6)
}

func TestAxisStats_Sine(t *testing.T) {
	const n = 1000
	values := make([]float32, n)
	for i := range values {
		values[i] = 0.5 + 0.8*math32.Sin(2*math32.Pi*5*float32(i)/n+0.1)
	}

	s := axisStats(values)

	assert.InDelta(t, 0.5, s.Mid, 1e-3)
	assert.InDelta(t, 0.5, s.Mean, 1e-3)
	assert.InDelta(t, 0.8/math32.Sqrt2, s.Std, 1e-3)
	assert.Equal(t, 4, s.Cycles)
	assert.InDelta(t, 1.6, s.PeakToPeak, 1e-3)
	assert.InDelta(t, 0, s.PeakToPeakStd, 1e-3)
}

func TestAxisStats_Constant(t *testing.T) {
	s := axisStats([]float32{1, 1, 1, 1})

	assert.Equal(t, float32(1), s.Mid)
	assert.Equal(t, float32(0), s.Std)
	assert.Equal(t, 0, s.Cycles)
	assert.Equal(t, float32(0), s.PeakToPeak)
}

func TestAxisStats_Empty(t *testing.T) {
	assert.Equal(t, AxisStats{}, axisStats(nil))
}

func TestRisingCrossings(t *testing.T) {
	tests := []struct {
		name   string
		values []float32
		mid    float32
		want   []int
	}{
		{"none", []float32{1, 2, 3}, 0, nil},
		{"single", []float32{-1, 1}, 0, []int{1}},
		{"falling ignored", []float32{1, -1, -1}, 0, nil},
		{"touching midline counts", []float32{-1, 0, -1, 0}, 0, []int{1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, risingCrossings(tt.values, tt.mid))
		})
	}
}

func TestDeltaStats(t *testing.T) {
	us := time.Microsecond
	deltas := []time.Duration{500 * us, 500 * us, 500 * us, 900 * us}

	s := deltaStats(deltas, 500*us)

	assert.Equal(t, 500*us, s.Min)
	assert.Equal(t, 900*us, s.Max)
	assert.Equal(t, 600*us, s.Mean)
	assert.Equal(t, 173*us, s.Std)
	assert.Equal(t, 1, s.Late)
	assert.Equal(t, 400*us, s.Jitter())
}

func TestDeltaStats_NoPeriod(t *testing.T) {
	s := deltaStats([]time.Duration{time.Second}, 0)
	assert.Equal(t, 0, s.Late)
}

func TestDeltaStats_Empty(t *testing.T) {
	assert.Equal(t, DeltaStats{}, deltaStats(nil, time.Millisecond))
}
