package loop

import (
	"errors"
	"io"
	"log"
	"sync"
	"sync/atomic"
)

// DefaultQueueDepth is the default number of lines AsyncWriter buffers.
const DefaultQueueDepth = 256

// ErrDropped is returned by AsyncWriter.Write when the queue is full.
var ErrDropped = errors.New("output queue full, line dropped")

// ErrClosed is returned by AsyncWriter.Write after Close.
var ErrClosed = errors.New("writer closed")

// AsyncWriter puts a bounded queue in front of a possibly blocking writer.
// Write never blocks: if the consumer does not keep up, lines are dropped.
type AsyncWriter struct {
	w     io.Writer
	lines chan []byte
	done  chan struct{}

	mu     sync.RWMutex
	closed bool

	dropped atomic.Uint64
	failed  atomic.Uint64
}

// NewAsyncWriter starts a goroutine draining into w.
func NewAsyncWriter(w io.Writer, depth int) *AsyncWriter {
	if depth <= 0 {
		depth = DefaultQueueDepth
	}

	a := &AsyncWriter{
		w:     w,
		lines: make(chan []byte, depth),
		done:  make(chan struct{}),
	}
	go a.drain()
	return a
}

// Write queues a copy of p.
func (a *AsyncWriter) Write(p []byte) (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return 0, ErrClosed
	}

	line := make([]byte, len(p))
	copy(line, p)

	select {
	case a.lines <- line:
		return len(p), nil
	default:
		a.dropped.Add(1)
		return 0, ErrDropped
	}
}

// Close stops accepting lines, flushes the queue and waits for the drain goroutine.
func (a *AsyncWriter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.lines)
	a.mu.Unlock()

	<-a.done
	return nil
}

// Dropped returns the number of lines dropped because the queue was full.
func (a *AsyncWriter) Dropped() uint64 {
	return a.dropped.Load()
}

// Failed returns the number of lines the underlying writer rejected.
func (a *AsyncWriter) Failed() uint64 {
	return a.failed.Load()
}

func (a *AsyncWriter) drain() {
	defer close(a.done)

	for line := range a.lines {
		if _, err := a.w.Write(line); err != nil {
			// Log the first failure only.
			if a.failed.Add(1) == 1 {
				log.Printf("Error writing sample line: %v", err)
			}
		}
	}
}
