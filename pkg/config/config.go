package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Report modes select which store slot the transmission step reports.
const (
	// ReportLegacy reports the slot at the write cursor, i.e. the next one to be
	// overwritten. Once the buffer has wrapped this lags the newest write by a
	// full cycle.
	ReportLegacy = "legacy"
	// ReportLatest reports the record written by the current cycle.
	ReportLatest = "latest"
)

// Config represents the application configuration.
type Config struct {
	Sensor SensorConfig `yaml:"sensor"`
	Store  StoreConfig  `yaml:"store"`
	Loop   LoopConfig   `yaml:"loop"`
	Serial SerialConfig `yaml:"serial"`
	Mock   MockConfig   `yaml:"mock"`
	Log    LogConfig    `yaml:"log"`
}

// SensorConfig describes the analog channel and its calibration.
type SensorConfig struct {
	Channel    string  `yaml:"channel"`    // Analog input identifier on the MCU
	VRef       float64 `yaml:"vref"`       // ADC reference voltage (V)
	Resolution int     `yaml:"resolution"` // Number of ADC steps
	Offset     float64 `yaml:"offset"`     // Sensor output at 0 °C (V)
	Scale      float64 `yaml:"scale"`      // Degrees per volt
}

// StoreConfig contains record store parameters.
type StoreConfig struct {
	Capacity int `yaml:"capacity"`
}

// LoopConfig contains acquisition loop parameters.
type LoopConfig struct {
	Interval    time.Duration `yaml:"interval"`
	CheckedRead bool          `yaml:"checked_read"` // Treat raw -1 as a sensor fault
	ReportMode  string        `yaml:"report_mode"`  // legacy or latest
	MarkEmpty   bool          `yaml:"mark_empty"`   // Tag unfilled slots in the dump
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port        string        `yaml:"port"` // Sensor MCU port; empty uses the mock sensor
	BaudRate    int           `yaml:"baud_rate"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
	Output      string        `yaml:"output"` // Report port; empty writes to stdout
}

// MockConfig contains simulated sensor configuration.
type MockConfig struct {
	Baseline   float64       `yaml:"baseline"`    // Mean temperature (°C)
	Swing      float64       `yaml:"swing"`       // Peak deviation from baseline (°C)
	Period     time.Duration `yaml:"period"`      // Period of the swing
	NoiseLevel float64       `yaml:"noise_level"` // Noise amplitude (°C)
	Sequence   []int         `yaml:"sequence"`    // Fixed raw values to replay instead of the waveform
	FaultEvery int           `yaml:"fault_every"` // Return the fault sentinel every N reads (0 = never)
}

// LogConfig contains diagnostic logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns a configuration matching the reference hardware setup.
func Default() *Config {
	return &Config{
		Sensor: SensorConfig{
			Channel:    "A0",
			VRef:       5.0,
			Resolution: 1024, // 10-bit ADC
			Offset:     0.5,
			Scale:      100.0, // 10 mV/°C
		},
		Store: StoreConfig{
			Capacity: 10,
		},
		Loop: LoopConfig{
			Interval:    20 * time.Second,
			CheckedRead: false,
			ReportMode:  ReportLegacy,
		},
		Serial: SerialConfig{
			Port:        "",
			BaudRate:    9600,
			ReadTimeout: 2 * time.Second,
		},
		Mock: MockConfig{
			Baseline:   22.0,
			Swing:      3.0,
			Period:     10 * time.Minute,
			NoiseLevel: 0.2,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

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

// Validate reports settings that cannot be fixed by falling back to defaults.
func (c *Config) Validate() error {
	switch c.Loop.ReportMode {
	case ReportLegacy, ReportLatest:
	default:
		return fmt.Errorf("invalid report_mode %q (allowed: %s, %s)", c.Loop.ReportMode, ReportLegacy, ReportLatest)
	}
	if c.Sensor.Resolution < 0 {
		return fmt.Errorf("invalid resolution %d", c.Sensor.Resolution)
	}
	if c.Store.Capacity < 0 {
		return fmt.Errorf("invalid capacity %d", c.Store.Capacity)
	}
	if c.Loop.Interval <= 0 {
		return fmt.Errorf("invalid interval %v (must be positive)", c.Loop.Interval)
	}
	// The serial sensor polls in slices of a tenth of this.
	if c.Serial.ReadTimeout < 10*time.Nanosecond {
		return fmt.Errorf("invalid read_timeout %v (min 10ns)", c.Serial.ReadTimeout)
	}
	if c.Mock.FaultEvery < 0 {
		return fmt.Errorf("invalid fault_every %d", c.Mock.FaultEvery)
	}
	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Sensor.Channel == "" {
		c.Sensor.Channel = def.Sensor.Channel
	}
	if c.Sensor.VRef == 0 {
		c.Sensor.VRef = def.Sensor.VRef
	}
	if c.Sensor.Resolution == 0 {
		c.Sensor.Resolution = def.Sensor.Resolution
	}
	if c.Sensor.Scale == 0 {
		c.Sensor.Scale = def.Sensor.Scale
	}

	if c.Store.Capacity == 0 {
		c.Store.Capacity = def.Store.Capacity
	}

	if c.Loop.Interval == 0 {
		c.Loop.Interval = def.Loop.Interval
	}
	if c.Loop.ReportMode == "" {
		c.Loop.ReportMode = def.Loop.ReportMode
	}

	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}
	if c.Serial.ReadTimeout == 0 {
		c.Serial.ReadTimeout = def.Serial.ReadTimeout
	}

	if c.Mock.Period == 0 {
		c.Mock.Period = def.Mock.Period
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}
