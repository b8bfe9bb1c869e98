package accel

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/itohio/goaccel/pkg/config"
	"github.com/itohio/goaccel/pkg/loop"
	"github.com/itohio/goaccel/pkg/tick"
)

// Mock simulates the accelerometer MCU for testing and development.
// It runs the same sampling loop as the firmware against simulated channels
// and parses its text output, so the whole wire path is exercised.
type Mock struct {
	cfg *config.Config

	samples    chan RawSample
	mu         sync.RWMutex
	cancel     context.CancelFunc
	loopDone   chan struct{}
	readerDone chan struct{}
	writer     *loop.AsyncWriter
	pipe       *io.PipeWriter
	connected  bool
	closed     bool
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.Config) *Mock {
	if cfg == nil {
		cfg = config.Default()
	}

	return &Mock{
		cfg:       cfg,
		samples:   make(chan RawSample, DefaultBufferSize),
		connected: false,
	}
}

// Connect starts the simulated sampling loop.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}
	if m.closed {
		return fmt.Errorf("device closed")
	}

	clock := tick.NewSystemClock()
	pr, pw := io.Pipe()
	writer := loop.NewAsyncWriter(pw, loop.DefaultQueueDepth)

	ch := SimChannels(m.cfg, clock)
	lp, err := NewLoop(m.cfg, clock, tick.SystemSleeper{}, ch[0], ch[1], ch[2], writer)
	if err != nil {
		writer.Close()
		pw.Close()
		return fmt.Errorf("failed to create sampling loop: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.writer = writer
	m.pipe = pw
	m.loopDone = make(chan struct{})
	m.readerDone = make(chan struct{})
	m.connected = true

	go func() {
		defer close(m.loopDone)
		lp.Run(ctx)
	}()

	// The reader stops on EOF, after the writer side is flushed and closed.
	go func() {
		defer close(m.readerDone)
		readSamples(context.Background(), pr, m.samples)
	}()

	return nil
}

// Close stops the mocked device.
// The samples channel is closed once Close returns.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	<-m.loopDone

	m.writer.Close()
	m.pipe.Close()
	<-m.readerDone

	m.connected = false
	m.closed = true

	return nil
}

// Samples returns the channel for reading samples.
func (m *Mock) Samples() <-chan RawSample {
	return m.samples
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}
