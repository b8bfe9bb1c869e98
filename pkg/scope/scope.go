package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/goaccel/pkg/analysis"
	"github.com/itohio/goaccel/pkg/config"
	"github.com/itohio/goaccel/pkg/sample"
)

const defaultDisplayPoints = 1000

// ScopeWidget is a custom Fyne widget that displays the three accelerometer
// axes oscilloscope-style, together with the latest window report.
type ScopeWidget struct {
	widget.BaseWidget

	cfg *config.Config

	// Data (protected by mu)
	mu        sync.RWMutex
	report    analysis.Report
	hasReport bool

	// Display buffer (reused for downsampling)
	displaySamples []sample.Sample

	// Auto-scaling
	yMin, yMax float32
	xMin, xMax time.Time

	maxDisplayPoints int
}

// New creates a new ScopeWidget instance.
func New(cfg *config.Config) *ScopeWidget {
	s := &ScopeWidget{
		cfg:              cfg,
		displaySamples:   make([]sample.Sample, 0, defaultDisplayPoints),
		maxDisplayPoints: defaultDisplayPoints,
	}
	s.ExtendBaseWidget(s)
	s.updateAutoScale()
	s.Refresh()
	return s
}

// UpdateData updates the widget with new samples.
// This should be called from the analyzer callback using fyne.Do().
func (s *ScopeWidget) UpdateData(samples []sample.Sample) {
	s.mu.Lock()
	s.displaySamples = sample.DownsampleSamples(s.displaySamples, samples, s.maxDisplayPoints)
	s.updateAutoScale()
	s.mu.Unlock()

	s.Refresh()
}

// UpdateReport shows the statistics of the latest complete window.
func (s *ScopeWidget) UpdateReport(report analysis.Report) {
	s.mu.Lock()
	s.report = report
	s.hasReport = true
	s.mu.Unlock()

	s.Refresh()
}

// Clear removes all data from the display.
func (s *ScopeWidget) Clear() {
	s.mu.Lock()
	s.displaySamples = s.displaySamples[:0]
	s.report = analysis.Report{}
	s.hasReport = false
	s.updateAutoScale()
	s.mu.Unlock()

	s.Refresh()
}

// updateAutoScale calculates axis ranges from current data.
func (s *ScopeWidget) updateAutoScale() {
	s.yMin, s.yMax = valueRange(s.displaySamples)
	s.xMin, s.xMax = timeRange(s.displaySamples, s.displayWindow())
}

func (s *ScopeWidget) displayWindow() time.Duration {
	if s.cfg == nil || s.cfg.Analysis.DisplaySeconds <= 0 {
		return time.Second
	}
	return time.Duration(s.cfg.Analysis.DisplaySeconds * float64(time.Second))
}

// valueRange returns the Y range covering all three axes with a 10% margin.
// Empty input yields a range of one g around zero.
func valueRange(samples []sample.Sample) (lo, hi float32) {
	if len(samples) == 0 {
		return -1, 1
	}

	lo, hi = samples[0].X, samples[0].X
	for _, s := range samples {
		lo = min(lo, s.X, s.Y, s.Z)
		hi = max(hi, s.X, s.Y, s.Z)
	}

	span := hi - lo
	if span == 0 {
		span = 1
	}
	margin := span * 0.1
	return lo - margin, hi + margin
}

// timeRange returns the X range, at least window wide.
func timeRange(samples []sample.Sample, window time.Duration) (start, end time.Time) {
	if len(samples) == 0 {
		now := time.Now()
		return now, now.Add(window)
	}

	start = samples[0].Timestamp
	end = samples[len(samples)-1].Timestamp
	if end.Sub(start) < window {
		end = start.Add(window)
	}
	return start, end
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	grid := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &scopeRenderer{
		scope:   s,
		grid:    grid,
		objects: []fyne.CanvasObject{grid},
	}
}
