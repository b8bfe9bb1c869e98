package accel

import (
	"io"

	"github.com/chewxy/math32"

	"github.com/itohio/goaccel/pkg/adc"
	"github.com/itohio/goaccel/pkg/config"
	"github.com/itohio/goaccel/pkg/loop"
	"github.com/itohio/goaccel/pkg/tick"
)

// SimChannels creates simulated X, Y and Z channels from the mock configuration.
// X and Y oscillate in quadrature, Z carries constant gravity.
func SimChannels(cfg *config.Config, clock tick.Clock) [3]*adc.Sim {
	base := adc.Sim{
		Clock:       clock,
		Range:       adc.Range{Bits: cfg.Loop.Resolution},
		Noise:       float32(cfg.Mock.Noise),
		ZeroG:       float32(cfg.Accel.ZeroG),
		Sensitivity: float32(cfg.Accel.Sensitivity),
		Scale:       cfg.Loop.ScaleFactor,
	}

	x, y, z := base, base, base

	x.Amplitude = float32(cfg.Mock.Amplitude)
	x.Frequency = float32(cfg.Mock.Frequency)

	y.Amplitude = float32(cfg.Mock.Amplitude)
	y.Frequency = float32(cfg.Mock.Frequency)
	y.Phase = math32.Pi / 2

	z.Bias = float32(cfg.Mock.Gravity)

	return [3]*adc.Sim{&x, &y, &z}
}

// NewLoop builds a sampling loop from the configuration.
func NewLoop(cfg *config.Config, clock tick.Clock, sleeper tick.Sleeper, x, y, z adc.Channel, out io.Writer) (*loop.Loop, error) {
	opts := []tick.Option{tick.WithCoarseThreshold(cfg.Loop.CoarseThreshold)}
	if cfg.Loop.CatchUp {
		opts = append(opts, tick.WithCatchUp())
	}

	sched, err := tick.NewScheduler(cfg.Loop.Period, clock, sleeper, opts...)
	if err != nil {
		return nil, err
	}

	sampler, err := loop.NewSampler(loop.SamplerConfig{
		ScaleFactor: cfg.Loop.ScaleFactor,
		Sentinel:    cfg.Loop.Sentinel,
		Range:       adc.Range{Bits: cfg.Loop.Resolution},
	}, clock, x, y, z, out)
	if err != nil {
		return nil, err
	}

	return loop.New(sched, sampler), nil
}
