package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "A0", cfg.Sensor.Channel)
	assert.Equal(t, float64(5.0), cfg.Sensor.VRef)
	assert.Equal(t, 1024, cfg.Sensor.Resolution)
	assert.Equal(t, float64(0.5), cfg.Sensor.Offset)
	assert.Equal(t, float64(100.0), cfg.Sensor.Scale)
	assert.Equal(t, 10, cfg.Store.Capacity)
	assert.Equal(t, 20*time.Second, cfg.Loop.Interval)
	assert.False(t, cfg.Loop.CheckedRead)
	assert.Equal(t, ReportLegacy, cfg.Loop.ReportMode)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Empty(t, cfg.Serial.Port)
	assert.Empty(t, cfg.Serial.Output)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, 1024, cfg.Sensor.Resolution)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
sensor:
  channel: "A1"
  vref: 3.3
  resolution: 4096
  offset: 0.4
  scale: 51.2

store:
  capacity: 32

loop:
  interval: 5s
  checked_read: true
  report_mode: latest

serial:
  port: "/dev/ttyACM0"
  baud_rate: 115200
  read_timeout: 500ms
  output: "/dev/ttyUSB1"

mock:
  sequence: [512, 102, -1]
  fault_every: 7

log:
  level: debug
  format: json
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "A1", cfg.Sensor.Channel)
	assert.Equal(t, float64(3.3), cfg.Sensor.VRef)
	assert.Equal(t, 4096, cfg.Sensor.Resolution)
	assert.Equal(t, float64(0.4), cfg.Sensor.Offset)
	assert.Equal(t, float64(51.2), cfg.Sensor.Scale)
	assert.Equal(t, 32, cfg.Store.Capacity)
	assert.Equal(t, 5*time.Second, cfg.Loop.Interval)
	assert.True(t, cfg.Loop.CheckedRead)
	assert.Equal(t, ReportLatest, cfg.Loop.ReportMode)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, 500*time.Millisecond, cfg.Serial.ReadTimeout)
	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.Output)
	assert.Equal(t, []int{512, 102, -1}, cfg.Mock.Sequence)
	assert.Equal(t, 7, cfg.Mock.FaultEvery)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidReportMode(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("loop:\n  report_mode: newest\n")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.ErrorContains(t, err, "report_mode")
	assert.Nil(t, cfg)
}

func TestLoad_InvalidInterval(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"negative interval", "loop:\n  interval: -5s\n", "interval"},
		{"negative read timeout", "serial:\n  read_timeout: -1s\n", "read_timeout"},
		{"read timeout below poll slice", "serial:\n  read_timeout: 5ns\n", "read_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
			require.NoError(t, err)
			defer os.Remove(tmpfile.Name())

			_, err = tmpfile.WriteString(tt.content)
			require.NoError(t, err)
			require.NoError(t, tmpfile.Close())

			cfg, err := Load(tmpfile.Name())
			assert.ErrorContains(t, err, tt.wantErr)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyACM0"
store:
  capacity: 0
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Should use defaults for missing fields
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 10, cfg.Store.Capacity)            // zero replaced by default
	assert.Equal(t, float64(0.5), cfg.Sensor.Offset)   // default
	assert.Equal(t, 20*time.Second, cfg.Loop.Interval) // default
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Loop.Interval = 15 * time.Second
	cfg.Mock.Sequence = []int{1, 2, 3}

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, 15*time.Second, loaded.Loop.Interval)
	assert.Equal(t, []int{1, 2, 3}, loaded.Mock.Sequence)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"latest mode", func(c *Config) { c.Loop.ReportMode = ReportLatest }, false},
		{"unknown mode", func(c *Config) { c.Loop.ReportMode = "x" }, true},
		{"negative resolution", func(c *Config) { c.Sensor.Resolution = -1 }, true},
		{"negative capacity", func(c *Config) { c.Store.Capacity = -5 }, true},
		{"negative fault_every", func(c *Config) { c.Mock.FaultEvery = -1 }, true},
		{"negative interval", func(c *Config) { c.Loop.Interval = -5 * time.Second }, true},
		{"zero interval", func(c *Config) { c.Loop.Interval = 0 }, true},
		{"negative read_timeout", func(c *Config) { c.Serial.ReadTimeout = -time.Second }, true},
		{"read_timeout too short", func(c *Config) { c.Serial.ReadTimeout = 9 * time.Nanosecond }, true},
		{"read_timeout minimum", func(c *Config) { c.Serial.ReadTimeout = 10 * time.Nanosecond }, false},
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
