package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/goaccel/pkg/accel"
	"github.com/itohio/goaccel/pkg/config"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createLoopTab(state),
		createAccelTab(state),
		createAnalysisTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// applyConfig validates and saves the edited configuration, rolling back on
// failure. On success restart is called.
func applyConfig(state *appState, edit func(cfg *config.Config), restart func()) {
	previous := *state.cfg
	edit(state.cfg)

	if err := state.cfg.Validate(); err != nil {
		*state.cfg = previous
		dialog.ShowError(fmt.Errorf("invalid settings: %w", err), state.window)
		return
	}
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
	}
	if restart != nil {
		restart()
	}
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := accel.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			applyConfig(state, func(cfg *config.Config) {
				if portSelect.Selected != "" {
					selectedPort := portMap[portSelect.Selected]
					if selectedPort == "" {
						selectedPort = portSelect.Selected
					}
					cfg.Serial.Port = selectedPort
				}
				if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
					cfg.Serial.BaudRate = baud
				}
			}, func() {
				if !state.useMock {
					reconnect(state)
				}
			})
		},
	}

	return container.NewTabItem("Serial", form)
}

// createLoopTab creates the sampling loop configuration tab.
// The values must match the firmware constants when a real device is used.
func createLoopTab(state *appState) *container.TabItem {
	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Loop.Period.String())

	thresholdEntry := widget.NewEntry()
	thresholdEntry.SetText(state.cfg.Loop.CoarseThreshold.String())

	catchUpCheck := widget.NewCheck("", nil)
	catchUpCheck.SetChecked(state.cfg.Loop.CatchUp)

	scaleEntry := widget.NewEntry()
	scaleEntry.SetText(strconv.Itoa(state.cfg.Loop.ScaleFactor))

	resolutionEntry := widget.NewEntry()
	resolutionEntry.SetText(strconv.Itoa(state.cfg.Loop.Resolution))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Period", Widget: periodEntry},
			{Text: "Coarse Sleep Threshold", Widget: thresholdEntry},
			{Text: "Catch Up After Overrun", Widget: catchUpCheck},
			{Text: "Scale Factor (µV/count)", Widget: scaleEntry},
			{Text: "ADC Resolution (bits)", Widget: resolutionEntry},
		},
		OnSubmit: func() {
			applyConfig(state, func(cfg *config.Config) {
				if p, err := time.ParseDuration(periodEntry.Text); err == nil {
					cfg.Loop.Period = p
				}
				if th, err := time.ParseDuration(thresholdEntry.Text); err == nil {
					cfg.Loop.CoarseThreshold = th
				}
				cfg.Loop.CatchUp = catchUpCheck.Checked
				if sf, err := strconv.Atoi(scaleEntry.Text); err == nil {
					cfg.Loop.ScaleFactor = sf
				}
				if res, err := strconv.Atoi(resolutionEntry.Text); err == nil {
					cfg.Loop.Resolution = res
				}
			}, func() {
				rebuildAnalyzer(state)
			})
		},
	}

	return container.NewTabItem("Loop", form)
}

// createAccelTab creates the accelerometer conversion tab.
func createAccelTab(state *appState) *container.TabItem {
	zeroGEntry := widget.NewEntry()
	zeroGEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Accel.ZeroG))

	sensitivityEntry := widget.NewEntry()
	sensitivityEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Accel.Sensitivity))

	decimalsEntry := widget.NewEntry()
	decimalsEntry.SetText(strconv.Itoa(state.cfg.Accel.Decimals))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Zero-g Output (V)", Widget: zeroGEntry},
			{Text: "Sensitivity (V/g)", Widget: sensitivityEntry},
			{Text: "Decimals", Widget: decimalsEntry},
		},
		OnSubmit: func() {
			applyConfig(state, func(cfg *config.Config) {
				if v, err := strconv.ParseFloat(zeroGEntry.Text, 64); err == nil {
					cfg.Accel.ZeroG = v
				}
				if v, err := strconv.ParseFloat(sensitivityEntry.Text, 64); err == nil {
					cfg.Accel.Sensitivity = v
				}
				if v, err := strconv.Atoi(decimalsEntry.Text); err == nil {
					cfg.Accel.Decimals = v
				}
			}, func() {
				reconnect(state)
			})
		},
	}

	return container.NewTabItem("Accelerometer", form)
}

// createAnalysisTab creates the statistics window configuration tab.
func createAnalysisTab(state *appState) *container.TabItem {
	windowEntry := widget.NewEntry()
	windowEntry.SetText(strconv.Itoa(state.cfg.Analysis.WindowSamples))

	displayEntry := widget.NewEntry()
	displayEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Analysis.DisplaySeconds))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Window (samples)", Widget: windowEntry},
			{Text: "Display (seconds)", Widget: displayEntry},
		},
		OnSubmit: func() {
			applyConfig(state, func(cfg *config.Config) {
				if n, err := strconv.Atoi(windowEntry.Text); err == nil && n > 0 {
					cfg.Analysis.WindowSamples = n
				}
				if ds, err := strconv.ParseFloat(displayEntry.Text, 64); err == nil && ds > 0 {
					cfg.Analysis.DisplaySeconds = ds
				}
			}, func() {
				rebuildAnalyzer(state)
			})
		},
	}

	return container.NewTabItem("Analysis", form)
}

// createMockTab creates the simulated device configuration tab.
func createMockTab(state *appState) *container.TabItem {
	amplitudeEntry := widget.NewEntry()
	amplitudeEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Mock.Amplitude))

	frequencyEntry := widget.NewEntry()
	frequencyEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Mock.Frequency))

	gravityEntry := widget.NewEntry()
	gravityEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Mock.Gravity))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.4f", state.cfg.Mock.Noise))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Amplitude (g)", Widget: amplitudeEntry},
			{Text: "Frequency (Hz)", Widget: frequencyEntry},
			{Text: "Gravity (g)", Widget: gravityEntry},
			{Text: "Noise (g)", Widget: noiseEntry},
		},
		OnSubmit: func() {
			applyConfig(state, func(cfg *config.Config) {
				if v, err := strconv.ParseFloat(amplitudeEntry.Text, 64); err == nil {
					cfg.Mock.Amplitude = v
				}
				if v, err := strconv.ParseFloat(frequencyEntry.Text, 64); err == nil {
					cfg.Mock.Frequency = v
				}
				if v, err := strconv.ParseFloat(gravityEntry.Text, 64); err == nil {
					cfg.Mock.Gravity = v
				}
				if v, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil {
					cfg.Mock.Noise = v
				}
			}, func() {
				if state.useMock {
					reconnect(state)
				}
			})
		},
	}

	return container.NewTabItem("Simulation", form)
}

// rebuildAnalyzer replaces the analyzer so new window and period settings
// take effect, restarting a running chain around it.
func rebuildAnalyzer(state *appState) {
	wasConnected := state.connected()
	if wasConnected {
		disconnect(state)
	}

	state.analyzer = newAnalyzer(state)
	state.scopeWidget.Clear()

	if wasConnected {
		connect(state)
	}
}
