// Package report writes the human-readable monitoring output: a startup
// banner, the simulated transmission of a reading and a dump of the store.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"go.bug.st/serial"

	"github.com/itohio/tempmon/pkg/store"
)

// Reporter writes line-oriented reports to a sink.
type Reporter struct {
	w         *bufio.Writer
	markEmpty bool
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithMarkEmpty tags dump lines of slots that were never written.
func WithMarkEmpty(mark bool) Option {
	return func(r *Reporter) {
		r.markEmpty = mark
	}
}

// New creates a Reporter writing to w.
func New(w io.Writer, opts ...Option) *Reporter {
	r := &Reporter{w: bufio.NewWriter(w)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OpenSerial opens a serial port to be used as a report sink.
func OpenSerial(port string, baudRate int) (io.WriteCloser, error) {
	p, err := serial.Open(port, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("failed to open report port %s: %w", port, err)
	}
	return p, nil
}

// Startup announces that monitoring has begun.
func (r *Reporter) Startup() error {
	r.w.WriteString("Starting temperature monitoring system...\n")
	return r.flush()
}

// Transmit reports rec as if sending it to a remote collector.
func (r *Reporter) Transmit(rec store.Record) error {
	fmt.Fprintf(r.w, "Sending data to IoT server (simulated)... Temperature (C): %s, Temperature (F): %s, Timestamp: %d\n",
		formatFloat(rec.Celsius), formatFloat(rec.Fahrenheit), rec.TimestampMillis)
	return r.flush()
}

// SensorFault reports a failed sensor read.
func (r *Reporter) SensorFault() error {
	r.w.WriteString("Sensor read error.\n")
	return r.flush()
}

// Dump writes every slot of s in storage order, numbered from 1.
func (r *Reporter) Dump(s *store.Store) error {
	r.w.WriteString("Simulated database contents:\n")
	for i, rec := range s.Scan() {
		fmt.Fprintf(r.w, "Record %d - Celsius: %s, Fahrenheit: %s, Timestamp: %d",
			i+1, formatFloat(rec.Celsius), formatFloat(rec.Fahrenheit), rec.TimestampMillis)
		if r.markEmpty && !s.Filled(i) {
			r.w.WriteString(" (empty)")
		}
		r.w.WriteByte('\n')
	}
	return r.flush()
}

func (r *Reporter) flush() error {
	if err := r.w.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// formatFloat prints two decimals, as serial consoles on the MCU side do.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
