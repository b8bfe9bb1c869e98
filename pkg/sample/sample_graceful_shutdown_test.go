package sample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/itohio/goaccel/pkg/accel"
	"github.com/itohio/goaccel/pkg/config"
)

// TestConverter_GracefulShutdown tests that converter closes output channel
// when input channel is closed.
func TestConverter_GracefulShutdown(t *testing.T) {
	converter := NewConverter(config.Default(), 10)
	input := make(chan accel.RawSample, 10)
	output := converter(input)

	// Read samples in background
	received := make(chan int, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		count := 0
		for range output {
			count++
		}
		received <- count
	}()

	// Send some samples
	now := time.Now()
	numSamples := 3
	for i := range numSamples {
		input <- accel.RawSample{
			Received: now,
			X:        1650000,
			Y:        1650000,
			Z:        1950000,
			Delta:    int32(i * 500),
		}
	}

	// Close input channel - this should cause converter to close output
	close(input)

	// Wait for output channel to close (reader goroutine to finish)
	select {
	case <-done:
		// Output channel closed successfully
	case <-time.After(2 * time.Second):
		t.Fatal("Output channel did not close within timeout")
	}

	select {
	case count := <-received:
		assert.Equal(t, numSamples, count, "Should receive all samples before channel closes")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Did not receive sample count")
	}
}
