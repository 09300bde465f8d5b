//go:build tinygo

//go:generate tinygo flash -target=arduino

package main

import (
	"machine"
	"time"
)

var (
	adcSensor machine.ADC
	uart      = machine.Serial

	// Serial buffer for reading request lines
	serialBuffer [8]byte
	serialPos    int
)

func main() {
	PIN_SENSOR.Configure(machine.PinConfig{Mode: machine.PinInput})

	machine.InitADC()
	adcSensor = machine.ADC{Pin: PIN_SENSOR}
	adcSensor.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	for {
		processSerial()
		time.Sleep(time.Millisecond)
	}
}

// readSensor returns the sensor voltage as a 10-bit count.
// ADC.Get scales every resolution to 16 bits.
func readSensor() uint16 {
	return adcSensor.Get() >> (16 - ADC_RESOLUTION)
}

func processSerial() {
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}

		if data == '\n' || data == '\r' {
			if serialPos == 1 && serialBuffer[0] == 'r' {
				// Output format: "reading\n", e.g. "512\n"
				println(readSensor())
			}
			serialPos = 0
			continue
		}

		if data == ' ' || data == '\t' {
			continue
		}

		if serialPos < len(serialBuffer) {
			serialBuffer[serialPos] = data
			serialPos++
		}
	}
}
