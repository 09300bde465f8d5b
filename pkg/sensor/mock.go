package sensor

import (
	"fmt"
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/tempmon/pkg/config"
	"github.com/itohio/tempmon/pkg/conversion"
)

// Mock simulates an analog temperature sensor for testing and development.
//
// Unless a fixed Sequence is configured, it produces a slow sinusoidal swing
// around the baseline temperature with a little deterministic noise, computed
// in float32 like the MCU would, and quantized to ADC counts.
type Mock struct {
	cfg        *config.MockConfig
	conv       *conversion.Converter
	resolution int

	mu        sync.Mutex
	connected bool
	startTime time.Time
	reads     int
	now       func() time.Time
}

// NewMock creates a new mocked sensor. A nil mock config selects the defaults.
func NewMock(cfg *config.MockConfig, sensorCfg config.SensorConfig) *Mock {
	if cfg == nil {
		def := config.Default().Mock
		cfg = &def
	}
	if sensorCfg.Resolution == 0 {
		sensorCfg = config.Default().Sensor
	}

	return &Mock{
		cfg:        cfg,
		conv:       conversion.New(sensorCfg),
		resolution: sensorCfg.Resolution,
		now:        time.Now,
	}
}

// Connect simulates connecting to the sensor.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true
	m.startTime = m.now()
	m.reads = 0

	return nil
}

// Close disconnects the mocked sensor.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connected = false
	return nil
}

// IsConnected returns whether the sensor is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// ReadRaw returns the next simulated sample.
func (m *Mock) ReadRaw() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return FaultReading
	}

	m.reads++
	if m.cfg.FaultEvery > 0 && m.reads%m.cfg.FaultEvery == 0 {
		return FaultReading
	}

	if len(m.cfg.Sequence) > 0 {
		return m.cfg.Sequence[(m.reads-1)%len(m.cfg.Sequence)]
	}

	return m.generate(m.now().Sub(m.startTime))
}

// generate computes the waveform at elapsed and quantizes it.
func (m *Mock) generate(elapsed time.Duration) int {
	t := float32(elapsed.Seconds())

	temp := float32(m.cfg.Baseline)
	if m.cfg.Period > 0 {
		phase := 2 * math32.Pi * t / float32(m.cfg.Period.Seconds())
		temp += float32(m.cfg.Swing) * math32.Sin(phase)
	}

	noise := (math32.Sin(t*7.3) + math32.Cos(t*11.9)) * 0.5
	temp += noise * float32(m.cfg.NoiseLevel)

	raw := int(math32.Round(float32(m.conv.CelsiusToRaw(float64(temp)))))
	return clamp(raw, 0, m.resolution-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
