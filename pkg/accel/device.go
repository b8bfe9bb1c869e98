package accel

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the baud rate the firmware configures its UART with.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the samples channel buffer.
	DefaultBufferSize = 1000
)

// RawSample is one line of the sample stream as sent by the MCU.
type RawSample struct {
	Received time.Time // Host time the line was read
	X        int       // Scaled X reading
	Y        int       // Scaled Y reading
	Z        int       // Scaled Z reading
	Delta    int32     // Microseconds since the previous sample (device clock)
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial represents a connection to the accelerometer MCU.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	samples   chan RawSample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool
}

// New creates a new Serial device with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:      port,
		baudRate:  baudRate,
		bufSize:   bufSize,
		samples:   make(chan RawSample, bufSize),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		connected: false,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading samples.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}
	if d.ctx.Err() != nil {
		return fmt.Errorf("device closed")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	// Start reading samples in a goroutine
	go func() {
		defer close(d.done)
		readSamples(d.ctx, port, d.samples)
	}()

	return nil
}

// Close closes the connection and waits for the reader to stop.
// The samples channel is closed once Close returns.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	// Cancel context to stop reading goroutine
	d.cancel()

	// Closing the port unblocks the pending read
	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	<-d.done
	d.connected = false

	return nil
}

// Samples returns the channel for reading samples.
func (d *Serial) Samples() <-chan RawSample {
	return d.samples
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readSamples reads lines from r, parses them into RawSample and sends them to out.
// It closes out when r is exhausted or ctx is cancelled.
func readSamples(ctx context.Context, r io.Reader, out chan<- RawSample) {
	defer close(out)
	defer func() {
		if p := recover(); p != nil {
			log.Printf("Panic in readSamples: %v", p)
		}
	}()

	scanner := bufio.NewScanner(r)
	for {
		select {
		case <-ctx.Done():
			return
		default:
			if !scanner.Scan() {
				// Scanner stopped (EOF or error)
				if err := scanner.Err(); err != nil && !errors.Is(err, io.ErrClosedPipe) && ctx.Err() == nil {
					log.Printf("Error reading sample stream: %v", err)
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			sample, err := parseLine(line)
			if err != nil {
				log.Printf("Failed to parse line '%s': %v", line, err)
				continue
			}
			sample.Received = time.Now()

			// Send sample to channel (non-blocking)
			select {
			case out <- sample:
			case <-ctx.Done():
				return
			default:
				// Channel full, log and skip
				log.Printf("Samples channel full, dropping sample")
			}
		}
	}
}

// parseLine parses a line from the MCU into a RawSample.
// Format: x y z delta_us
// Example: 200000 400000 600000 500
func parseLine(line string) (RawSample, error) {
	parts := strings.Fields(line)
	if len(parts) != 4 {
		return RawSample{}, fmt.Errorf("invalid line format: expected 4 space-separated values, got %d", len(parts))
	}

	var axes [3]int
	for i, name := range []string{"x", "y", "z"} {
		v, err := strconv.ParseInt(parts[i], 10, 64)
		if err != nil {
			return RawSample{}, fmt.Errorf("invalid %s value: %w", name, err)
		}
		axes[i] = int(v)
	}

	delta, err := strconv.ParseInt(parts[3], 10, 32)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid delta: %w", err)
	}

	return RawSample{
		X:     axes[0],
		Y:     axes[1],
		Z:     axes[2],
		Delta: int32(delta),
	}, nil
}
