package analysis

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/itohio/goaccel/pkg/sample"
)

// TestAnalyzer_GracefulShutdown_NoCallbacksAfterClose tests that the analyzer
// stops sending callbacks after the input channel is closed.
func TestAnalyzer_GracefulShutdown_NoCallbacksAfterClose(t *testing.T) {
	a := New(testConfig(2))

	var mu sync.Mutex
	updates, reports := 0, 0
	a.OnUpdate(func([]sample.Sample) {
		mu.Lock()
		updates++
		mu.Unlock()
	})
	a.OnReport(func(Report) {
		mu.Lock()
		reports++
		mu.Unlock()
	})

	input := make(chan sample.Sample, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.ProcessSamples(input)
	}()

	for _, s := range stream(time.Now(), 3) {
		input <- s
	}
	close(input)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ProcessSamples did not finish within timeout")
	}

	mu.Lock()
	assert.Equal(t, 3, updates)
	assert.Equal(t, 1, reports)
	mu.Unlock()

	// A late sample completes a window but must not notify.
	a.processSample(sample.Sample{Timestamp: time.Now()})

	mu.Lock()
	assert.Equal(t, 3, updates, "No update callbacks after channel closes")
	assert.Equal(t, 1, reports, "No report callbacks after channel closes")
	mu.Unlock()
}

// TestAnalyzer_ResetShutdown tests that ResetShutdown allows callbacks again.
func TestAnalyzer_ResetShutdown(t *testing.T) {
	a := New(testConfig(100))

	var mu sync.Mutex
	count := 0
	a.OnUpdate(func([]sample.Sample) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	first := make(chan sample.Sample, 1)
	first <- sample.Sample{Timestamp: time.Now()}
	close(first)
	a.ProcessSamples(first)

	a.processSample(sample.Sample{Timestamp: time.Now()})
	mu.Lock()
	assert.Equal(t, 1, count)
	mu.Unlock()

	a.ResetShutdown()
	assert.Equal(t, 0, a.Pending())

	second := make(chan sample.Sample, 1)
	second <- sample.Sample{Timestamp: time.Now()}
	close(second)
	a.ProcessSamples(second)

	mu.Lock()
	assert.Equal(t, 2, count, "Callbacks should resume after ResetShutdown")
	mu.Unlock()
}
