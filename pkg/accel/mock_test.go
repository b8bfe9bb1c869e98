package accel

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/goaccel/pkg/config"
	"github.com/itohio/goaccel/pkg/loop"
	"github.com/itohio/goaccel/pkg/tick"
)

func mockConfig() *config.Config {
	cfg := config.Default()
	cfg.Loop.Period = time.Millisecond
	cfg.Mock.Noise = 0
	return cfg
}

// TestMock_GracefulShutdown tests that Mock device closes samples channel
// when Close() is called.
func TestMock_GracefulShutdown(t *testing.T) {
	mock := NewMock(mockConfig())
	err := mock.Connect()
	require.NoError(t, err)
	assert.True(t, mock.IsConnected())

	samples := mock.Samples()

	// Read a few samples
	received := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range samples {
			received++
			if received == 3 {
				// Got enough samples, now close device
				mock.Close()
			}
		}
	}()

	// Wait for samples and channel closure
	select {
	case <-done:
		// Channel closed successfully
	case <-time.After(5 * time.Second):
		t.Fatal("Samples channel did not close within timeout")
	}

	assert.GreaterOrEqual(t, received, 3, "Should receive samples before channel closes")
	assert.False(t, mock.IsConnected())

	_, ok := <-samples
	assert.False(t, ok, "Channel should be closed")
}

func TestMock_SampleValues(t *testing.T) {
	mock := NewMock(mockConfig())
	require.NoError(t, mock.Connect())
	defer mock.Close()

	var got []RawSample
	timeout := time.After(5 * time.Second)
	for len(got) < 5 {
		select {
		case s := <-mock.Samples():
			got = append(got, s)
		case <-timeout:
			t.Fatal("no samples from mock")
		}
	}

	// Z carries 1 g: (1.65 V + 0.3 V) / 2000 uV per count = 975 counts.
	for _, s := range got {
		assert.Equal(t, 975*2000, s.Z)
	}
	assert.Equal(t, int32(0), got[0].Delta)
	for _, s := range got[1:] {
		assert.Greater(t, s.Delta, int32(0))
	}
}

func TestMock_InvalidPeriod(t *testing.T) {
	cfg := mockConfig()
	cfg.Loop.Period = 0

	mock := NewMock(cfg)
	err := mock.Connect()
	assert.ErrorIs(t, err, tick.ErrInvalidPeriod)
	assert.False(t, mock.IsConnected())
}

func TestMock_ConnectTwice(t *testing.T) {
	mock := NewMock(mockConfig())
	require.NoError(t, mock.Connect())
	assert.Error(t, mock.Connect())
	require.NoError(t, mock.Close())
	assert.Error(t, mock.Connect(), "closed mock cannot be reused")
}

func TestNewLoop_SimulatedAxes(t *testing.T) {
	cfg := mockConfig()
	cfg.Mock.Frequency = 1
	clock := tick.NewManual(0)
	var out bytes.Buffer

	ch := SimChannels(cfg, clock)
	lp, err := NewLoop(cfg, clock, clock, ch[0], ch[1], ch[2], &out)
	require.NoError(t, err)

	// First tick at 1ms: X ~ 0 g, Y ~ +1 g, Z = +1 g.
	r := lp.Step()
	assert.InDelta(t, 825, r.Raw[loop.X], 2)
	assert.InDelta(t, 975, r.Raw[loop.Y], 1)
	assert.Equal(t, 975, r.Raw[loop.Z])
	assert.True(t, strings.HasSuffix(out.String(), " 0\n"))
}
