package analysis

import (
	"math"
	"time"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AxisStats summarizes one accelerometer axis over a window.
type AxisStats struct {
	Min  float32 // g
	Max  float32 // g
	Mid  float32 // (Max + Min) / 2, the midline used for cycle detection
	Mean float32 // g
	Std  float32 // g

	Cycles        int     // Complete cycles between rising midline crossings
	PeakToPeak    float32 // Mean per-cycle peak-to-peak (g)
	PeakToPeakStd float32 // Standard deviation of per-cycle peak-to-peak (g)
}

// DeltaStats summarizes the inter-sample deltas over a window.
type DeltaStats struct {
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
	Std  time.Duration
	Late int // Deltas longer than the configured loop period
}

// Jitter returns the spread between the longest and shortest delta.
func (d DeltaStats) Jitter() time.Duration {
	return d.Max - d.Min
}

// axisStats computes statistics for a series of values.
func axisStats(values []float32) AxisStats {
	if len(values) == 0 {
		return AxisStats{}
	}

	s := AxisStats{Min: values[0], Max: values[0]}
	var sum float32
	for _, v := range values {
		s.Min = math32.Min(s.Min, v)
		s.Max = math32.Max(s.Max, v)
		sum += v
	}
	s.Mid = (s.Max + s.Min) / 2
	s.Mean = sum / float32(len(values))
	s.Std = stddev(values, s.Mean)

	pkpk := cyclePeakToPeak(values, s.Mid)
	s.Cycles = len(pkpk)
	if len(pkpk) > 0 {
		s.PeakToPeak = mean(pkpk)
		s.PeakToPeakStd = stddev(pkpk, s.PeakToPeak)
	}

	return s
}

// risingCrossings returns the indices where values cross mid from below.
func risingCrossings(values []float32, mid float32) []int {
	var idx []int
	for i := 1; i < len(values); i++ {
		if values[i-1] < mid && values[i] >= mid {
			idx = append(idx, i)
		}
	}
	return idx
}

// cyclePeakToPeak splits values into cycles at rising midline crossings and
// returns the peak-to-peak amplitude of each complete cycle.
func cyclePeakToPeak(values []float32, mid float32) []float32 {
	crossings := risingCrossings(values, mid)
	if len(crossings) < 2 {
		return nil
	}

	result := make([]float32, 0, len(crossings)-1)
	for i := 0; i+1 < len(crossings); i++ {
		cycle := values[crossings[i]:crossings[i+1]]
		lo, hi := cycle[0], cycle[0]
		for _, v := range cycle {
			lo = math32.Min(lo, v)
			hi = math32.Max(hi, v)
		}
		result = append(result, hi-lo)
	}
	return result
}

// deltaStats computes statistics of sample deltas.
// The first delta of a stream is zero by definition and is expected to be
// excluded by the caller.
func deltaStats(deltas []time.Duration, period time.Duration) DeltaStats {
	if len(deltas) == 0 {
		return DeltaStats{}
	}

	var s DeltaStats
	us := make([]float64, len(deltas))
	for i, d := range deltas {
		if period > 0 && d > period {
			s.Late++
		}
		us[i] = float64(d.Microseconds())
	}

	m, variance := stat.PopMeanVariance(us, nil)
	s.Min = microseconds(floats.Min(us))
	s.Max = microseconds(floats.Max(us))
	s.Mean = microseconds(m)
	s.Std = microseconds(math.Sqrt(variance))

	return s
}

func microseconds(v float64) time.Duration {
	return time.Duration(math.Round(v)) * time.Microsecond
}

func mean(values []float32) float32 {
	var sum float32
	for _, v := range values {
		sum += v
	}
	return sum / float32(len(values))
}

// stddev returns the population standard deviation.
func stddev(values []float32, mean float32) float32 {
	var sum float32
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math32.Sqrt(sum / float32(len(values)))
}
