package loop

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingWriter blocks every write until released.
type blockingWriter struct {
	release chan struct{}
	mu      sync.Mutex
	buf     bytes.Buffer
}

func (w *blockingWriter) Write(p []byte) (int, error) {
	<-w.release
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("port gone") }

func TestAsyncWriter_PassesThrough(t *testing.T) {
	var out syncBuffer
	w := NewAsyncWriter(&out, 4)

	n, err := w.Write([]byte("1 2 3 4\n"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	_, err = w.Write([]byte("5 6 7 8\n"))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	assert.Equal(t, "1 2 3 4\n5 6 7 8\n", out.String())
	assert.Equal(t, uint64(0), w.Dropped())
}

func TestAsyncWriter_NeverBlocks(t *testing.T) {
	bw := &blockingWriter{release: make(chan struct{})}
	w := NewAsyncWriter(bw, 2)

	done := make(chan struct{})
	var dropped int
	go func() {
		defer close(done)
		for range 10 {
			if _, err := w.Write([]byte("x\n")); errors.Is(err, ErrDropped) {
				dropped++
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Write blocked on a stalled consumer")
	}

	// One line may be held by the drain goroutine, two in the queue.
	assert.GreaterOrEqual(t, dropped, 7)
	assert.Equal(t, uint64(dropped), w.Dropped())

	close(bw.release)
	require.NoError(t, w.Close())
}

func TestAsyncWriter_CopiesInput(t *testing.T) {
	var out syncBuffer
	w := NewAsyncWriter(&out, 4)

	buf := []byte("1 1 1 1\n")
	_, err := w.Write(buf)
	require.NoError(t, err)
	copy(buf, "9 9 9 9\n")

	require.NoError(t, w.Close())
	assert.Equal(t, "1 1 1 1\n", out.String())
}

func TestAsyncWriter_WriteAfterClose(t *testing.T) {
	var out syncBuffer
	w := NewAsyncWriter(&out, 4)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err := w.Write([]byte("x\n"))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestAsyncWriter_CountsFailures(t *testing.T) {
	w := NewAsyncWriter(errWriter{}, 4)
	for range 3 {
		_, err := w.Write([]byte("x\n"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	assert.Equal(t, uint64(3), w.Failed())
}
