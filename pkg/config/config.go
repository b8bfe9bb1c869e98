package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidPeriod is returned by Validate when the loop period is not positive.
var ErrInvalidPeriod = errors.New("loop period must be positive")

// DefaultWindowSamples is the number of samples per statistics report.
const DefaultWindowSamples = 1000

// Config represents the application configuration.
type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Loop     LoopConfig     `yaml:"loop"`
	Accel    AccelConfig    `yaml:"accel"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Mock     MockConfig     `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// LoopConfig contains the sampling loop parameters.
// They mirror the compile-time constants of the firmware and must match them
// when talking to real hardware.
type LoopConfig struct {
	Period          time.Duration `yaml:"period"`           // Target time between samples
	CoarseThreshold time.Duration `yaml:"coarse_threshold"` // Budget above which millisecond sleeps are used
	CatchUp         bool          `yaml:"catch_up"`         // Keep a fixed tick grid after overruns
	ScaleFactor     int           `yaml:"scale_factor"`     // Microvolts per ADC count
	Resolution      int           `yaml:"resolution"`       // ADC resolution in bits
	Sentinel        int           `yaml:"sentinel"`         // Raw value reported for failed reads
}

// AccelConfig describes the analog accelerometer.
type AccelConfig struct {
	ZeroG       float64 `yaml:"zero_g"`      // Output voltage at 0 g (V)
	Sensitivity float64 `yaml:"sensitivity"` // Output change per g (V/g)
	Decimals    int     `yaml:"decimals"`    // Decimal places kept after conversion to g
}

// AnalysisConfig contains window statistics and display parameters.
type AnalysisConfig struct {
	WindowSamples  int     `yaml:"window_samples"`  // Samples per statistics report
	DisplaySeconds float64 `yaml:"display_seconds"` // Time span kept for display
}

// MockConfig contains simulated accelerometer configuration.
type MockConfig struct {
	Amplitude float64 `yaml:"amplitude"` // X/Y oscillation amplitude (g)
	Frequency float64 `yaml:"frequency"` // X/Y oscillation frequency (Hz)
	Gravity   float64 `yaml:"gravity"`   // Constant Z acceleration (g)
	Noise     float64 `yaml:"noise"`     // Noise level (g)
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "COM6", // Default for Windows, should be "/dev/ttyUSB0" on Linux
			BaudRate: 115200,
		},
		Loop: LoopConfig{
			Period:          500 * time.Microsecond,
			CoarseThreshold: 5 * time.Millisecond,
			CatchUp:         false,
			ScaleFactor:     2000,
			Resolution:      12,
			Sentinel:        -1,
		},
		Accel: AccelConfig{
			ZeroG:       1.65,
			Sensitivity: 0.3,
			Decimals:    3,
		},
		Analysis: AnalysisConfig{
			WindowSamples:  DefaultWindowSamples,
			DisplaySeconds: 2,
		},
		Mock: MockConfig{
			Amplitude: 1.0,
			Frequency: 2.0,
			Gravity:   1.0,
			Noise:     0.01,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values. The result is validated.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects configurations the sampling loop cannot run with.
func (c *Config) Validate() error {
	us := c.Loop.Period.Microseconds()
	if us <= 0 || us > math.MaxInt32 {
		return fmt.Errorf("%w: %v", ErrInvalidPeriod, c.Loop.Period)
	}
	if c.Loop.CoarseThreshold < 0 {
		return fmt.Errorf("coarse threshold must not be negative: %v", c.Loop.CoarseThreshold)
	}
	if c.Loop.Resolution < 1 || c.Loop.Resolution > 16 {
		return fmt.Errorf("resolution must be between 1 and 16 bits: %d", c.Loop.Resolution)
	}
	if c.Accel.Sensitivity <= 0 {
		return fmt.Errorf("sensitivity must be positive: %v", c.Accel.Sensitivity)
	}
	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
// The loop period is deliberately left alone so an explicit zero fails validation.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Loop.ScaleFactor == 0 {
		c.Loop.ScaleFactor = def.Loop.ScaleFactor
	}
	if c.Loop.Resolution == 0 {
		c.Loop.Resolution = def.Loop.Resolution
	}

	if c.Accel.Sensitivity == 0 {
		c.Accel.Sensitivity = def.Accel.Sensitivity
	}

	if c.Analysis.WindowSamples == 0 {
		c.Analysis.WindowSamples = def.Analysis.WindowSamples
	}
	if c.Analysis.DisplaySeconds == 0 {
		c.Analysis.DisplaySeconds = def.Analysis.DisplaySeconds
	}

	if c.Mock.Frequency == 0 {
		c.Mock.Frequency = def.Mock.Frequency
	}
}
