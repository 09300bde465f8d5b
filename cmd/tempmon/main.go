package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itohio/tempmon/internal/logging"
	"github.com/itohio/tempmon/pkg/config"
	"github.com/itohio/tempmon/pkg/monitor"
	"github.com/itohio/tempmon/pkg/report"
	"github.com/itohio/tempmon/pkg/sensor"
)

const appName = "tempmon"

// cliFlags holds the command line options that are not config overrides.
type cliFlags struct {
	config string
	mock   bool
	list   bool
}

// newFlagSet declares the command line. Config overrides are only applied
// when explicitly set, see applyOverrides.
func newFlagSet() (*flag.FlagSet, *cliFlags) {
	fs := flag.NewFlagSet(appName, flag.ExitOnError)
	opts := &cliFlags{}

	fs.StringVar(&opts.config, "config", "config.yaml", "Configuration file path")
	fs.BoolVar(&opts.mock, "mock", false, "Use simulated sensor instead of serial port")
	fs.BoolVar(&opts.list, "list-ports", false, "List available serial ports and exit")

	fs.String("p", "", "Sensor serial port override (e.g., COM3 or /dev/ttyACM0)")
	fs.Duration("interval", 0, "Sampling interval (overrides config)")
	fs.Bool("checked", false, "Treat raw -1 as a sensor fault (overrides config)")
	fs.String("report", "", "Reported record: legacy or latest (overrides config)")
	fs.String("o", "", "Serial port for report output (overrides config)")

	return fs, opts
}

// applyOverrides copies every explicitly set override flag onto cfg and
// validates the result.
func applyOverrides(fs *flag.FlagSet, cfg *config.Config) error {
	fs.Visit(func(f *flag.Flag) {
		getter, ok := f.Value.(flag.Getter)
		if !ok {
			return
		}
		switch f.Name {
		case "p":
			cfg.Serial.Port = f.Value.String()
		case "interval":
			cfg.Loop.Interval = getter.Get().(time.Duration)
		case "checked":
			cfg.Loop.CheckedRead = getter.Get().(bool)
		case "report":
			cfg.Loop.ReportMode = f.Value.String()
		case "o":
			cfg.Serial.Output = f.Value.String()
		}
	})
	return cfg.Validate()
}

func main() {
	fs, opts := newFlagSet()
	fs.Parse(os.Args[1:])

	if opts.list {
		ports, err := sensor.Ports()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		for _, p := range ports {
			fmt.Println(p.Name)
		}
		return
	}

	cfg, err := config.Load(opts.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if err := applyOverrides(fs, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log, os.Stderr, appName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts.mock); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}

	slog.Info("shutting down")
}

func run(ctx context.Context, cfg *config.Config, useMock bool) error {
	var dev sensor.Sensor
	if useMock || cfg.Serial.Port == "" {
		dev = sensor.NewMock(&cfg.Mock, cfg.Sensor)
	} else {
		dev = sensor.NewSerial(cfg.Serial.Port, cfg.Serial.BaudRate, cfg.Serial.ReadTimeout, cfg.Sensor.Resolution)
	}
	if err := dev.Connect(); err != nil {
		return err
	}
	defer dev.Close()

	var sink io.Writer = os.Stdout
	if cfg.Serial.Output != "" {
		out, err := report.OpenSerial(cfg.Serial.Output, cfg.Serial.BaudRate)
		if err != nil {
			return err
		}
		defer out.Close()
		sink = out
	}

	slog.Info("starting",
		"channel", cfg.Sensor.Channel,
		"port", cfg.Serial.Port,
		"mock", useMock || cfg.Serial.Port == "",
		"interval", cfg.Loop.Interval,
		"capacity", cfg.Store.Capacity,
		"checked_read", cfg.Loop.CheckedRead,
		"report_mode", cfg.Loop.ReportMode,
	)

	mon := monitor.New(cfg, dev, report.New(sink, report.WithMarkEmpty(cfg.Loop.MarkEmpty)))
	return mon.Run(ctx)
}
