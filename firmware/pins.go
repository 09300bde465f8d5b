//go:build tinygo

package main

import "machine"

const (
	// ADC configuration
	ADC_REFERENCE_MV = 5000 // Reference voltage in millivolts (5.0V)
	ADC_RESOLUTION   = 10   // ADC resolution in bits (10-bit = 0-1023)

	// Temperature sensor pin
	PIN_SENSOR = machine.ADC0 // A0

	// Serial configuration
	// One request ("r\n") and one response ("1023\n") per sampling interval;
	// 9600 baud is plenty.
	UART_BAUD_RATE = 9600
)
