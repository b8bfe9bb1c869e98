package main

import (
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/goaccel/pkg/accel"
	"github.com/itohio/goaccel/pkg/analysis"
	"github.com/itohio/goaccel/pkg/config"
	"github.com/itohio/goaccel/pkg/sample"
	"github.com/itohio/goaccel/pkg/scope"
)

// Scope refresh interval (~60 FPS).
const updateInterval = 16 * time.Millisecond

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use simulated device instead of serial port")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	application := app.NewWithID("com.itohio.goaccel")

	window := application.NewWindow("Accelerometer Scope")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		window:     window,
		useMock:    *mockFlag,
	}
	state.scopeWidget = scope.New(cfg)
	state.analyzer = newAnalyzer(state)

	toolbar := createToolbar(state)

	window.SetContent(container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		state.scopeWidget,
	))
	window.SetOnClosed(func() {
		closeMeasurementChain(state.chain)
	})
	window.ShowAndRun()
}

// measurementChain tracks the components of the measurement chain for graceful shutdown.
type measurementChain struct {
	device        accel.Device
	samplesStream <-chan sample.Sample
	analyzerDone  chan struct{} // Closed when the analyzer goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg         *config.Config
	configPath  string
	device      accel.Device
	analyzer    *analysis.Analyzer
	scopeWidget *scope.ScopeWidget
	window      fyne.Window
	connectBtn  *widget.Button
	statusLabel *widget.Label
	useMock     bool
	chain       *measurementChain // Current measurement chain (nil if not connected)

	// Throttling for scope updates
	lastUpdateTime time.Time
	updateMu       sync.Mutex
}

// newAnalyzer creates an analyzer for the current configuration and routes
// its callbacks to the scope widget.
func newAnalyzer(state *appState) *analysis.Analyzer {
	a := analysis.New(state.cfg)

	a.OnUpdate(func(samples []sample.Sample) {
		state.updateMu.Lock()
		now := time.Now()
		if now.Sub(state.lastUpdateTime) < updateInterval {
			state.updateMu.Unlock()
			return
		}
		state.lastUpdateTime = now
		state.updateMu.Unlock()

		fyne.Do(func() {
			state.scopeWidget.UpdateData(samples)
		})
	})

	a.OnReport(func(report analysis.Report) {
		fyne.Do(func() {
			state.scopeWidget.UpdateReport(report)
			state.setStatus(fmt.Sprintf("%d samples in %v, %d late", report.Samples, report.Duration(), report.Delta.Late))
		})
	})

	return a
}

// createToolbar creates the application toolbar with Connect, Settings and Clear buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	clearBtn := widget.NewButtonWithIcon("", theme.ContentClearIcon(), func() {
		state.scopeWidget.Clear()
	})

	state.statusLabel = widget.NewLabel("Disconnected")

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(connectBtn, settingsBtn, clearBtn),
		state.statusLabel,
		nil,
	)
}

func (state *appState) setStatus(text string) {
	if state.statusLabel != nil {
		state.statusLabel.SetText(text)
	}
}

func (state *appState) connected() bool {
	return state.device != nil && state.device.IsConnected()
}

// closeMeasurementChain gracefully closes the measurement chain.
// Waits for the analyzer goroutine to drain the converter output.
func closeMeasurementChain(chain *measurementChain) {
	if chain == nil {
		return
	}

	// Closing the device closes its samples channel, which closes the
	// converter output, which ends ProcessSamples.
	if chain.device != nil {
		if err := chain.device.Close(); err != nil {
			log.Printf("Failed to close device: %v", err)
		}
	}

	if chain.analyzerDone != nil {
		<-chain.analyzerDone
	}
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.connected() {
		disconnect(state)
		return
	}
	connect(state)
}

func disconnect(state *appState) {
	closeMeasurementChain(state.chain)
	state.chain = nil
	state.device = nil
	state.setStatus("Disconnected")
	if state.useMock {
		log.Println("Disconnected from simulated device")
	} else {
		log.Println("Disconnected from serial port")
	}
}

func connect(state *appState) {
	var device accel.Device
	if state.useMock {
		device = accel.NewMock(state.cfg)
		log.Println("Using simulated device")
	} else {
		device = accel.New(state.cfg.Serial.Port, state.cfg.Serial.BaudRate, accel.DefaultBufferSize)
	}

	if err := device.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to start simulated device: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	state.device = device
	if state.useMock {
		state.setStatus("Simulated device")
	} else {
		log.Printf("Connected to serial port: %s", state.cfg.Serial.Port)
		state.setStatus(state.cfg.Serial.Port)
	}

	// Reset analyzer shutdown flag for new chain
	analyzer := state.analyzer
	analyzer.ResetShutdown()

	samplesStream := sample.NewConverter(state.cfg, 500)(device.Samples())

	analyzerDone := make(chan struct{})
	go func() {
		defer close(analyzerDone)
		analyzer.ProcessSamples(samplesStream)
	}()

	state.chain = &measurementChain{
		device:        device,
		samplesStream: samplesStream,
		analyzerDone:  analyzerDone,
	}
}

// reconnect restarts the measurement chain if it is running.
func reconnect(state *appState) {
	if !state.connected() {
		return
	}
	disconnect(state)
	connect(state)
}
