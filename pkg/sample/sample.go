package sample

import (
	"log"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/goaccel/pkg/accel"
	"github.com/itohio/goaccel/pkg/config"
)

// Sample represents a processed accelerometer sample with physical values.
type Sample struct {
	Timestamp time.Time     // Reconstructed from device deltas
	X         float32       // Acceleration (g)
	Y         float32       // Acceleration (g)
	Z         float32       // Acceleration (g)
	Delta     time.Duration // Time since previous sample (device clock)
}

// Converter is a function type that converts RawSample channel to Sample channel.
type Converter func(in <-chan accel.RawSample) <-chan Sample

// NewConverter creates a converter function that transforms RawSample to Sample.
func NewConverter(cfg *config.Config, bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan accel.RawSample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			var clk timeline
			for raw := range in {
				sample := convertSample(raw, clk.next(raw), &cfg.Accel)

				select {
				case out <- sample:
				case <-time.After(time.Second):
					log.Printf("Converter output channel full, dropping sample")
				}
			}
		}()

		return out
	}
}

// timeline reconstructs sample timestamps from device deltas.
// The first sample is anchored at its receive time.
type timeline struct {
	last    time.Time
	started bool
}

func (t *timeline) next(raw accel.RawSample) time.Time {
	switch {
	case !t.started:
		t.last = raw.Received
		t.started = true
	case raw.Delta > 0:
		t.last = t.last.Add(time.Duration(raw.Delta) * time.Microsecond)
	default:
		// Clock glitch or device reset: re-anchor.
		t.last = raw.Received
	}
	return t.last
}

// convertSample converts a RawSample to Sample.
func convertSample(raw accel.RawSample, ts time.Time, cfg *config.AccelConfig) Sample {
	return Sample{
		Timestamp: ts,
		X:         microvoltsToG(raw.X, cfg),
		Y:         microvoltsToG(raw.Y, cfg),
		Z:         microvoltsToG(raw.Z, cfg),
		Delta:     time.Duration(raw.Delta) * time.Microsecond,
	}
}

// microvoltsToG converts a scaled reading in microvolts to acceleration.
// Formula: g = (V - V_0g) / sensitivity, rounded to cfg.Decimals places.
func microvoltsToG(uv int, cfg *config.AccelConfig) float32 {
	volts := float32(uv) / 1e6
	g := (volts - float32(cfg.ZeroG)) / float32(cfg.Sensitivity)
	return round(g, cfg.Decimals)
}

// round rounds v to the given number of decimal places.
func round(v float32, decimals int) float32 {
	if decimals < 0 {
		return v
	}
	mult := math32.Pow(10, float32(decimals))
	return math32.Round(v*mult) / mult
}
