package sensor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate matches the MCU firmware UART setting.
	DefaultBaudRate = 9600
	// DefaultReadTimeout bounds how long ReadRaw waits for the MCU to answer.
	DefaultReadTimeout = 2 * time.Second
	// DefaultResolution is the 10-bit ADC range.
	DefaultResolution = 1024

	readRequest    = "r\n"
	minPollTimeout = time.Millisecond
	maxLineLen     = 16
)

var errTimeout = errors.New("timed out waiting for response")

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// port is the subset of serial.Port used by Serial.
type port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// Serial is a sensor attached to an MCU that answers read requests over UART.
//
// Protocol: the host writes "r\n"; the MCU replies with the ADC count as a
// decimal line, e.g. "512\n".
type Serial struct {
	port        string
	baudRate    int
	readTimeout time.Duration
	resolution  int

	open func() (port, error)

	conn      port
	mu        sync.Mutex
	connected bool
}

// NewSerial creates a Serial sensor for the given port. Zero values select the defaults.
func NewSerial(portName string, baudRate int, readTimeout time.Duration, resolution int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	if resolution == 0 {
		resolution = DefaultResolution
	}

	s := &Serial{
		port:        portName,
		baudRate:    baudRate,
		readTimeout: readTimeout,
		resolution:  resolution,
	}
	s.open = func() (port, error) {
		return serial.Open(s.port, &serial.Mode{BaudRate: s.baudRate})
	}
	return s
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port.
func (s *Serial) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return fmt.Errorf("already connected")
	}

	conn, err := s.open()
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.port, err)
	}

	// Short per-call timeout so ReadRaw can enforce its own deadline.
	if err := conn.SetReadTimeout(max(s.readTimeout/10, minPollTimeout)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set read timeout on %s: %w", s.port, err)
	}

	s.conn = conn
	s.connected = true

	return nil
}

// Close closes the serial port.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return nil
	}

	err := s.conn.Close()
	s.conn = nil
	s.connected = false
	if err != nil {
		return fmt.Errorf("failed to close serial port %s: %w", s.port, err)
	}

	return nil
}

// IsConnected returns whether the port is open.
func (s *Serial) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// ReadRaw requests one sample from the MCU. Transport and protocol errors
// are logged and reported as FaultReading.
func (s *Serial) ReadRaw() int {
	raw, err := s.request()
	if err != nil {
		slog.Warn("serial sensor read failed", "port", s.port, "err", err)
		return FaultReading
	}
	return raw
}

func (s *Serial) request() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return 0, fmt.Errorf("not connected")
	}

	// Drop anything left over from a previous timed-out request.
	if err := s.conn.ResetInputBuffer(); err != nil {
		return 0, fmt.Errorf("failed to reset input buffer: %w", err)
	}

	if _, err := s.conn.Write([]byte(readRequest)); err != nil {
		return 0, fmt.Errorf("failed to send read request: %w", err)
	}

	line, err := readLine(s.conn, time.Now().Add(s.readTimeout))
	if err != nil {
		return 0, err
	}

	return parseLine(line, s.resolution)
}

// readLine reads bytes until a newline or the deadline. r is expected to
// return (0, nil) when its own read timeout expires.
func readLine(r io.Reader, deadline time.Time) (string, error) {
	var line bytes.Buffer
	buf := make([]byte, maxLineLen)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			if i := bytes.IndexByte(buf[:n], '\n'); i >= 0 {
				line.Write(buf[:i])
				return line.String(), nil
			}
			line.Write(buf[:n])
			if line.Len() > maxLineLen {
				return "", fmt.Errorf("response too long: %q", line.String())
			}
		}
		if err != nil {
			return "", fmt.Errorf("failed to read response: %w", err)
		}
		if time.Now().After(deadline) {
			return "", errTimeout
		}
	}
}

// parseLine parses an MCU response line into an ADC count.
// Format: decimal count, optional surrounding whitespace. Example: "512"
func parseLine(line string, resolution int) (int, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, fmt.Errorf("empty response")
	}

	raw, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("invalid reading: %w", err)
	}
	if raw < 0 || raw >= resolution {
		return 0, fmt.Errorf("reading out of range: %d (max %d)", raw, resolution-1)
	}

	return raw, nil
}
