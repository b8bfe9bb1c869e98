//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"context"
	"machine"
	"time"

	"github.com/itohio/goaccel/pkg/adc"
	"github.com/itohio/goaccel/pkg/loop"
	"github.com/itohio/goaccel/pkg/tick"
)

var (
	adcX machine.ADC
	adcY machine.ADC
	adcZ machine.ADC
	uart = machine.UART0
)

// pinChannel reads a TinyGo ADC and right-aligns the result.
type pinChannel struct {
	adc machine.ADC
	rng adc.Range
}

func (c pinChannel) Read() (uint16, error) {
	return c.rng.FromLeftAligned(c.adc.Get()), nil
}

func main() {
	// Configure accelerometer pins as inputs and set up ADCs with highest resolution
	PIN_X.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_Y.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_Z.Configure(machine.PinConfig{Mode: machine.PinInput})

	machine.InitADC()

	adcX = machine.ADC{Pin: PIN_X}
	adcY = machine.ADC{Pin: PIN_Y}
	adcZ = machine.ADC{Pin: PIN_Z}

	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}

	adcX.Configure(adcConfig)
	adcY.Configure(adcConfig)
	adcZ.Configure(adcConfig)

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	rng := adc.Range{Bits: ADC_RESOLUTION}
	clock := tick.NewSystemClock()

	sched, err := tick.NewScheduler(LOOP_PERIOD_US*time.Microsecond, clock, tick.SystemSleeper{})
	if err != nil {
		halt(err)
	}

	sampler, err := loop.NewSampler(loop.SamplerConfig{
		ScaleFactor: SCALE_FACTOR,
		Sentinel:    SENTINEL,
		Range:       rng,
	}, clock,
		pinChannel{adc: adcX, rng: rng},
		pinChannel{adc: adcY, rng: rng},
		pinChannel{adc: adcZ, rng: rng},
		uart,
	)
	if err != nil {
		halt(err)
	}

	// Runs until reset
	loop.New(sched, sampler).Run(context.Background())
}

// halt reports a startup error forever.
func halt(err error) {
	for {
		println("startup failed:", err.Error())
		time.Sleep(time.Second)
	}
}
