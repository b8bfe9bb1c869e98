package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(tmpfile.Name()) })

	_, err = tmpfile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())
	return tmpfile.Name()
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "COM6", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, 500*time.Microsecond, cfg.Loop.Period)
	assert.Equal(t, 5*time.Millisecond, cfg.Loop.CoarseThreshold)
	assert.False(t, cfg.Loop.CatchUp)
	assert.Equal(t, 2000, cfg.Loop.ScaleFactor)
	assert.Equal(t, 12, cfg.Loop.Resolution)
	assert.Equal(t, -1, cfg.Loop.Sentinel)
	assert.Equal(t, 1.65, cfg.Accel.ZeroG)
	assert.Equal(t, 0.3, cfg.Accel.Sensitivity)
	assert.Equal(t, 3, cfg.Accel.Decimals)
	assert.Equal(t, 1000, cfg.Analysis.WindowSamples)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "COM6", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	name := writeTemp(t, `
serial:
  port: "/dev/ttyUSB0"
  baud_rate: 921600

loop:
  period: 1ms
  coarse_threshold: 2ms
  catch_up: true
  scale_factor: 806
  resolution: 10
  sentinel: 0

accel:
  zero_g: 1.5
  sensitivity: 0.33
  decimals: 4

analysis:
  window_samples: 500
  display_seconds: 5

mock:
  amplitude: 0.5
  frequency: 10
  gravity: 0.98
  noise: 0.02
`)

	cfg, err := Load(name)
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, 921600, cfg.Serial.BaudRate)
	assert.Equal(t, time.Millisecond, cfg.Loop.Period)
	assert.Equal(t, 2*time.Millisecond, cfg.Loop.CoarseThreshold)
	assert.True(t, cfg.Loop.CatchUp)
	assert.Equal(t, 806, cfg.Loop.ScaleFactor)
	assert.Equal(t, 10, cfg.Loop.Resolution)
	assert.Equal(t, 0, cfg.Loop.Sentinel)
	assert.Equal(t, 1.5, cfg.Accel.ZeroG)
	assert.Equal(t, 0.33, cfg.Accel.Sensitivity)
	assert.Equal(t, 4, cfg.Accel.Decimals)
	assert.Equal(t, 500, cfg.Analysis.WindowSamples)
	assert.Equal(t, float64(5), cfg.Analysis.DisplaySeconds)
	assert.Equal(t, 0.5, cfg.Mock.Amplitude)
	assert.Equal(t, float64(10), cfg.Mock.Frequency)
	assert.Equal(t, 0.98, cfg.Mock.Gravity)
	assert.Equal(t, 0.02, cfg.Mock.Noise)
}

func TestLoad_InvalidYAML(t *testing.T) {
	name := writeTemp(t, "invalid: yaml: content: [")

	cfg, err := Load(name)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	name := writeTemp(t, `
serial:
  port: "/dev/ttyACM0"
`)

	cfg, err := Load(name)
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Should use defaults for missing fields
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)           // default
	assert.Equal(t, 500*time.Microsecond, cfg.Loop.Period) // default
	assert.Equal(t, 1000, cfg.Analysis.WindowSamples)      // default
}

func TestLoad_RejectsNonPositivePeriod(t *testing.T) {
	tests := []struct {
		name   string
		period string
	}{
		{"zero", "0s"},
		{"negative", "-1ms"},
		{"sub microsecond", "100ns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := writeTemp(t, "loop:\n  period: "+tt.period+"\n")
			cfg, err := Load(name)
			assert.ErrorIs(t, err, ErrInvalidPeriod)
			assert.Nil(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"negative threshold", func(c *Config) { c.Loop.CoarseThreshold = -time.Millisecond }, true},
		{"zero resolution", func(c *Config) { c.Loop.Resolution = 0 }, true},
		{"too wide resolution", func(c *Config) { c.Loop.Resolution = 17 }, true},
		{"zero sensitivity", func(c *Config) { c.Accel.Sensitivity = 0 }, true},
		{"long period", func(c *Config) { c.Loop.Period = time.Second }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Loop.Period = 2 * time.Millisecond

	name := writeTemp(t, "")

	err := cfg.Save(name)
	require.NoError(t, err)

	// Load it back and verify
	loaded, err := Load(name)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, 2*time.Millisecond, loaded.Loop.Period)
}
