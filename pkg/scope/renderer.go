package scope

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/itohio/goaccel/pkg/analysis"
	"github.com/itohio/goaccel/pkg/sample"
)

var (
	gridColor  = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	textColor  = color.RGBA{R: 200, G: 200, B: 200, A: 255}

	traceColors = [3]color.Color{
		color.RGBA{R: 255, G: 165, B: 0, A: 255},   // X: orange
		color.RGBA{R: 100, G: 200, B: 255, A: 255}, // Y: light blue
		color.RGBA{R: 120, G: 220, B: 120, A: 255}, // Z: green
	}
	traceNames = [3]string{"X", "Y", "Z"}
)

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	// Background
	grid *canvas.Rectangle

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// plotArea is the rectangle traces are drawn into, with its value ranges.
type plotArea struct {
	x, y, width, height float32

	yMin, yMax float32
	xMin, xMax time.Time
}

func (p plotArea) pos(t time.Time, v float32) fyne.Position {
	span := p.xMax.Sub(p.xMin).Seconds()
	x := p.x
	if span > 0 {
		x += float32(t.Sub(p.xMin).Seconds()/span) * p.width
	}
	y := p.y + p.height - (v-p.yMin)/(p.yMax-p.yMin)*p.height
	return fyne.NewPos(x, y)
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	r.grid.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh updates the widget display.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	samples := make([]sample.Sample, len(r.scope.displaySamples))
	copy(samples, r.scope.displaySamples)
	report, hasReport := r.scope.report, r.scope.hasReport
	area := plotArea{
		yMin: r.scope.yMin,
		yMax: r.scope.yMax,
		xMin: r.scope.xMin,
		xMax: r.scope.xMax,
	}
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.grid}

	marginLeft := float32(60.0)
	marginRight := float32(20.0)
	marginTop := float32(20.0)
	marginBottom := float32(40.0)

	area.x = marginLeft
	area.y = marginTop
	area.width = size.Width - marginLeft - marginRight
	area.height = size.Height - marginTop - marginBottom

	r.drawGrid(area)

	if len(samples) > 1 {
		for axis := range traceColors {
			r.drawTrace(area, samples, axis)
		}
	}

	r.drawLegend(area)

	if hasReport {
		r.drawReport(area, report)
	}
}

// drawGrid draws the oscilloscope-style grid.
func (r *scopeRenderer) drawGrid(p plotArea) {
	// Horizontal grid lines (acceleration)
	numHLines := 8
	for i := range numHLines + 1 {
		y := p.y + float32(i)*p.height/float32(numHLines)
		r.addLine(gridColor, 1, fyne.NewPos(p.x, y), fyne.NewPos(p.x+p.width, y))

		value := p.yMax - float32(i)*(p.yMax-p.yMin)/float32(numHLines)
		text := canvas.NewText(formatG(value), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(p.x-5, y-6))
		r.objects = append(r.objects, text)
	}

	// Vertical grid lines (time)
	numVLines := 10
	span := p.xMax.Sub(p.xMin)
	for i := range numVLines + 1 {
		x := p.x + float32(i)*p.width/float32(numVLines)
		r.addLine(gridColor, 1, fyne.NewPos(x, p.y), fyne.NewPos(x, p.y+p.height))

		offset := span * time.Duration(i) / time.Duration(numVLines)
		text := canvas.NewText(formatTime(offset), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-20, p.y+p.height+5))
		r.objects = append(r.objects, text)
	}
}

// drawTrace draws one axis as connected line segments.
func (r *scopeRenderer) drawTrace(p plotArea, samples []sample.Sample, axis int) {
	prev := p.pos(samples[0].Timestamp, axisValue(samples[0], axis))
	for _, s := range samples[1:] {
		next := p.pos(s.Timestamp, axisValue(s, axis))
		r.addLine(traceColors[axis], 1.5, prev, next)
		prev = next
	}
}

func (r *scopeRenderer) drawLegend(p plotArea) {
	x := p.x + p.width - 90
	for i, name := range traceNames {
		text := canvas.NewText(name, traceColors[i])
		text.TextSize = 11
		text.TextStyle = fyne.TextStyle{Bold: true}
		text.Move(fyne.NewPos(x+float32(i)*30, p.y+5))
		r.objects = append(r.objects, text)
	}
}

// drawReport draws the latest window statistics in the top-left corner.
func (r *scopeRenderer) drawReport(p plotArea, report analysis.Report) {
	lines := reportLines(report)
	for i, line := range lines {
		c := color.Color(textColor)
		if i < len(traceColors) {
			c = traceColors[i]
		}
		text := canvas.NewText(line, c)
		text.TextSize = 11
		text.TextStyle = fyne.TextStyle{Monospace: true}
		text.Move(fyne.NewPos(p.x+10, p.y+5+float32(i)*14))
		r.objects = append(r.objects, text)
	}
}

func (r *scopeRenderer) addLine(c color.Color, width float32, from, to fyne.Position) {
	line := canvas.NewLine(c)
	line.Position1 = from
	line.Position2 = to
	line.StrokeWidth = width
	r.objects = append(r.objects, line)
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {}

func axisValue(s sample.Sample, axis int) float32 {
	switch axis {
	case 0:
		return s.X
	case 1:
		return s.Y
	default:
		return s.Z
	}
}

// reportLines formats a report as one line per axis plus one for deltas.
func reportLines(r analysis.Report) []string {
	axes := [3]analysis.AxisStats{r.X, r.Y, r.Z}
	lines := make([]string, 0, len(axes)+1)
	for i, a := range axes {
		lines = append(lines, fmt.Sprintf("%s mid %s pk-pk %s ±%s (%d cycles) std %s",
			traceNames[i], formatG(a.Mid), formatG(a.PeakToPeak), formatG(a.PeakToPeakStd), a.Cycles, formatG(a.Std)))
	}
	lines = append(lines, fmt.Sprintf("dT %v ±%v [%v..%v] late %d/%d",
		r.Delta.Mean, r.Delta.Std, r.Delta.Min, r.Delta.Max, r.Delta.Late, r.Samples))
	return lines
}

func formatG(v float32) string {
	return fmt.Sprintf("%.3fg", v)
}

func formatTime(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
