package analysis

import (
	"sync"
	"time"

	"github.com/itohio/goaccel/pkg/config"
	"github.com/itohio/goaccel/pkg/sample"
)

var _ WindowAnalyzer = (*Analyzer)(nil)

// Report holds statistics of one complete window of samples.
type Report struct {
	Start   time.Time // Timestamp of the first sample in the window
	End     time.Time // Timestamp of the last sample in the window
	Samples int

	X AxisStats
	Y AxisStats
	Z AxisStats

	Delta DeltaStats
}

// Duration returns the time span covered by the report.
func (r Report) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// WindowAnalyzer consumes samples, keeps a display buffer and produces
// periodic window reports.
type WindowAnalyzer interface {
	ProcessSamples(input <-chan sample.Sample)
	// Samples returns the display buffer, oldest first.
	Samples() []sample.Sample
	// LastReport returns the most recent complete report.
	LastReport() (Report, bool)
	// OnUpdate registers a callback called after every sample.
	OnUpdate(func(samples []sample.Sample))
	// OnReport registers a callback called after every complete window.
	OnReport(func(report Report))
}

// Analyzer implements WindowAnalyzer.
type Analyzer struct {
	// Display buffer, trimmed by timestamp.
	samples []sample.Sample

	// Current statistics window, trimmed by count.
	window []sample.Sample

	last    Report
	hasLast bool

	mu sync.RWMutex

	updateCallbacks []func(samples []sample.Sample)
	reportCallbacks []func(report Report)
	cbMu            sync.RWMutex

	windowSamples   int
	displayDuration time.Duration
	period          time.Duration

	// Set when the input channel closes; suppresses further callbacks.
	shutdown bool
}

// New creates a new Analyzer.
func New(cfg *config.Config) *Analyzer {
	windowSamples := cfg.Analysis.WindowSamples
	if windowSamples <= 0 {
		windowSamples = config.DefaultWindowSamples
	}

	return &Analyzer{
		samples:         make([]sample.Sample, 0),
		window:          make([]sample.Sample, 0, windowSamples),
		windowSamples:   windowSamples,
		displayDuration: time.Duration(cfg.Analysis.DisplaySeconds * float64(time.Second)),
		period:          cfg.Loop.Period,
	}
}

// ProcessSamples consumes samples until the input channel closes.
// After that no further callbacks are invoked until ResetShutdown.
func (a *Analyzer) ProcessSamples(input <-chan sample.Sample) {
	for s := range input {
		a.processSample(s)
	}
	a.mu.Lock()
	a.shutdown = true
	a.mu.Unlock()
}

func (a *Analyzer) processSample(s sample.Sample) {
	report, complete, notify := a.add(s)
	if !notify {
		return
	}

	a.notifyUpdate()
	if complete {
		a.notifyReport(report)
	}
}

// add appends s to both buffers and closes the window when it is full.
func (a *Analyzer) add(s sample.Sample) (report Report, complete, notify bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.samples = append(a.samples, s)
	a.trimDisplay(s.Timestamp)

	a.window = append(a.window, s)
	if len(a.window) >= a.windowSamples {
		report = Analyze(a.window, a.period)
		a.last = report
		a.hasLast = true
		a.window = a.window[:0]
		complete = true
	}

	return report, complete, !a.shutdown
}

// trimDisplay drops samples older than the display duration.
func (a *Analyzer) trimDisplay(latest time.Time) {
	if a.displayDuration <= 0 {
		return
	}

	cutoff := latest.Add(-a.displayDuration)
	drop := 0
	for drop < len(a.samples) && !a.samples[drop].Timestamp.After(cutoff) {
		drop++
	}
	if drop > 0 {
		a.samples = append(a.samples[:0], a.samples[drop:]...)
	}
}

// Analyze computes a report for a window of samples.
// Deltas that are not positive (stream start, re-anchoring) are excluded
// from the delta statistics.
func Analyze(samples []sample.Sample, period time.Duration) Report {
	if len(samples) == 0 {
		return Report{}
	}

	xs := make([]float32, len(samples))
	ys := make([]float32, len(samples))
	zs := make([]float32, len(samples))
	deltas := make([]time.Duration, 0, len(samples))
	for i, s := range samples {
		xs[i], ys[i], zs[i] = s.X, s.Y, s.Z
		if s.Delta > 0 {
			deltas = append(deltas, s.Delta)
		}
	}

	return Report{
		Start:   samples[0].Timestamp,
		End:     samples[len(samples)-1].Timestamp,
		Samples: len(samples),
		X:       axisStats(xs),
		Y:       axisStats(ys),
		Z:       axisStats(zs),
		Delta:   deltaStats(deltas, period),
	}
}

// Samples returns a copy of the display buffer.
func (a *Analyzer) Samples() []sample.Sample {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make([]sample.Sample, len(a.samples))
	copy(result, a.samples)
	return result
}

// Pending returns the number of samples collected towards the next report.
func (a *Analyzer) Pending() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.window)
}

// LastReport returns the most recent complete report.
func (a *Analyzer) LastReport() (Report, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last, a.hasLast
}

// OnUpdate registers a callback invoked with a copy of the display buffer
// after every sample. The callback should return quickly.
func (a *Analyzer) OnUpdate(callback func(samples []sample.Sample)) {
	a.cbMu.Lock()
	defer a.cbMu.Unlock()
	a.updateCallbacks = append(a.updateCallbacks, callback)
}

// OnReport registers a callback invoked after every complete window.
func (a *Analyzer) OnReport(callback func(report Report)) {
	a.cbMu.Lock()
	defer a.cbMu.Unlock()
	a.reportCallbacks = append(a.reportCallbacks, callback)
}

// ResetShutdown allows callbacks again and clears the pending window.
// Call it before starting a new chain.
func (a *Analyzer) ResetShutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.shutdown = false
	a.window = a.window[:0]
}

func (a *Analyzer) notifyUpdate() {
	samples := a.Samples()

	a.cbMu.RLock()
	callbacks := make([]func(samples []sample.Sample), len(a.updateCallbacks))
	copy(callbacks, a.updateCallbacks)
	a.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(samples)
		}
	}
}

func (a *Analyzer) notifyReport(report Report) {
	a.cbMu.RLock()
	callbacks := make([]func(report Report), len(a.reportCallbacks))
	copy(callbacks, a.reportCallbacks)
	a.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(report)
		}
	}
}
