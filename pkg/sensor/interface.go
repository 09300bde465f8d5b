package sensor

// FaultReading is the raw value a Sensor returns when the read failed.
const FaultReading = -1

// Sensor defines the interface for analog temperature sensors (real or mocked).
type Sensor interface {
	Connect() error
	Close() error
	// ReadRaw samples the ADC now. It returns a count in [0, resolution) or
	// FaultReading.
	ReadRaw() int
	IsConnected() bool
}

// Ensure Serial implements Sensor.
var _ Sensor = (*Serial)(nil)

// Ensure Mock implements Sensor.
var _ Sensor = (*Mock)(nil)
