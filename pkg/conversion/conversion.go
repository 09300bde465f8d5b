// Package conversion turns raw ADC counts from an analog temperature sensor
// into calibrated temperatures.
package conversion

import (
	"github.com/itohio/tempmon/pkg/config"
)

// Reading is one raw ADC sample together with its derived physical values.
type Reading struct {
	Raw        int
	Voltage    float64 // Sensor output voltage (V)
	Celsius    float64
	Fahrenheit float64
}

// Converter maps raw ADC counts to temperatures for a linear sensor
// (e.g. TMP36: 0.5 V offset, 10 mV/°C).
// Out-of-range input is not rejected; it yields an out-of-range temperature.
type Converter struct {
	vref       float64
	resolution float64
	offset     float64
	scale      float64
}

// New creates a Converter from the sensor calibration.
func New(cfg config.SensorConfig) *Converter {
	return &Converter{
		vref:       cfg.VRef,
		resolution: float64(cfg.Resolution),
		offset:     cfg.Offset,
		scale:      cfg.Scale,
	}
}

// RawToVoltage converts ADC counts to the voltage seen on the analog pin.
func (c *Converter) RawToVoltage(raw float64) float64 {
	return raw * (c.vref / c.resolution)
}

// RawToCelsius converts ADC counts to degrees Celsius.
func (c *Converter) RawToCelsius(raw float64) float64 {
	return (c.RawToVoltage(raw) - c.offset) * c.scale
}

// CelsiusToRaw is the inverse of RawToCelsius. The result is not rounded or
// clamped to the ADC range.
func (c *Converter) CelsiusToRaw(celsius float64) float64 {
	return (celsius/c.scale + c.offset) * (c.resolution / c.vref)
}

// Convert runs the whole pipeline for one raw sample.
func (c *Converter) Convert(raw int) Reading {
	celsius := c.RawToCelsius(float64(raw))
	return Reading{
		Raw:        raw,
		Voltage:    c.RawToVoltage(float64(raw)),
		Celsius:    celsius,
		Fahrenheit: CelsiusToFahrenheit(celsius),
	}
}

// CelsiusToFahrenheit converts degrees Celsius to degrees Fahrenheit.
func CelsiusToFahrenheit(c float64) float64 {
	return c*1.8 + 32
}
