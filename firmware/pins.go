//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	LOOP_PERIOD_US = 500  // Target time between samples in microseconds
	SCALE_FACTOR   = 2000 // Multiplier applied to raw ADC counts before output
	SENTINEL       = -1   // Raw value reported when a channel read fails

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Accelerometer axis pins
	PIN_X = machine.A0
	PIN_Y = machine.A1
	PIN_Z = machine.A2

	// Serial configuration
	// Line format: "x y z delta_us\n"
	// Example: "8190000 8190000 8190000 500\n" = ~28 bytes max per line
	// 2000 lines/sec * 28 bytes/line = 56,000 bytes/sec, which needs a USB CDC
	// link. On a hardware UART at 115200 (11,520 bytes/sec) iterations will
	// overrun and the loop settles at the link rate.
	UART_BAUD_RATE = 115200
)
