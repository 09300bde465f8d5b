// Package monitor runs the acquisition cycle: read the sensor, convert the
// sample, store it, report it and dump the store, then pause.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/itohio/tempmon/pkg/config"
	"github.com/itohio/tempmon/pkg/conversion"
	"github.com/itohio/tempmon/pkg/report"
	"github.com/itohio/tempmon/pkg/sensor"
	"github.com/itohio/tempmon/pkg/store"
)

// Clock returns monotonic milliseconds used to timestamp records.
type Clock func() uint64

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock replaces the default clock (milliseconds since New).
func WithClock(c Clock) Option {
	return func(m *Monitor) {
		m.clock = c
	}
}

// Monitor owns the record store and drives one sensor.
// It is meant to be used from a single goroutine.
type Monitor struct {
	sensor   sensor.Sensor
	conv     *conversion.Converter
	store    *store.Store
	reporter *report.Reporter
	clock    Clock

	interval    time.Duration
	checkedRead bool
	reportMode  string
}

// New creates a Monitor. The sensor must already be connected.
func New(cfg *config.Config, s sensor.Sensor, r *report.Reporter, opts ...Option) *Monitor {
	start := time.Now()
	m := &Monitor{
		sensor:   s,
		conv:     conversion.New(cfg.Sensor),
		store:    store.New(cfg.Store.Capacity),
		reporter: r,
		clock: func() uint64 {
			return uint64(time.Since(start).Milliseconds())
		},
		interval:    cfg.Loop.Interval,
		checkedRead: cfg.Loop.CheckedRead,
		reportMode:  cfg.Loop.ReportMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store returns the record store.
func (m *Monitor) Store() *store.Store {
	return m.store
}

// Run announces startup and repeats Step every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.reporter.Startup(); err != nil {
		return err
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		if err := m.Step(); err != nil {
			return err
		}
		timer.Reset(m.interval)
	}
}

// Step performs one acquisition cycle.
//
// With checked reads disabled a fault sentinel from the sensor is converted
// and stored like any other sample. With checked reads enabled the fault is
// reported, nothing is stored or transmitted, and the store is still dumped.
func (m *Monitor) Step() error {
	var raw int
	if m.checkedRead {
		checked := sensor.ReadRawChecked(m.sensor)
		if checked == sensor.FaultReading {
			if err := m.reporter.SensorFault(); err != nil {
				return err
			}
			return m.reporter.Dump(m.store)
		}
		raw = int(checked)
	} else {
		raw = m.sensor.ReadRaw()
	}

	reading := m.conv.Convert(raw)
	m.store.Append(reading.Celsius, reading.Fahrenheit, m.clock())

	slog.Debug("sample stored",
		"raw", reading.Raw,
		"voltage", reading.Voltage,
		"celsius", reading.Celsius,
		"fahrenheit", reading.Fahrenheit,
		"slot", (m.store.Next()-1+m.store.Cap())%m.store.Cap(),
	)

	rec, err := m.reported()
	if err != nil {
		return err
	}
	if err := m.reporter.Transmit(rec); err != nil {
		return err
	}
	return m.reporter.Dump(m.store)
}

// reported selects the record handed to the transmission step.
func (m *Monitor) reported() (store.Record, error) {
	switch m.reportMode {
	case config.ReportLatest:
		rec, _ := m.store.Latest()
		return rec, nil
	case config.ReportLegacy, "":
		return m.store.OverwriteCandidate(), nil
	default:
		return store.Record{}, fmt.Errorf("unknown report mode %q", m.reportMode)
	}
}
