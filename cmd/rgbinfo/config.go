package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	rgbinfo "github.com/luhtfiimanal/go-rgb-timing"
)

const (
	opMeasure        = "measure"
	opRead           = "read"
	opMeasureAndRead = "measureAndRead"

	backendTermios  = "termios"
	backendPortable = "portable"
)

var errUsage = errors.New("usage")

type options struct {
	Op          string
	Device      string
	BaudRate    int
	ReadTimeout time.Duration
	Backend     string
	Debug       bool
	Raw         bool
	Clock       rgbinfo.Clock
}

type fileConfig struct {
	Device      string  `toml:"device"`
	BaudRate    int     `toml:"baud_rate"`
	ReadTimeout string  `toml:"read_timeout"`
	Backend     string  `toml:"backend"`
	Debug       bool    `toml:"debug"`
	VidClk      float64 `toml:"vidclk"`
}

func defaultOptions() options {
	return options{
		Device:      rgbinfo.DefaultDevice,
		BaudRate:    rgbinfo.DefaultBaudRate,
		ReadTimeout: rgbinfo.DefaultReadTimeout,
		Backend:     backendTermios,
		Clock:       rgbinfo.NoClock,
	}
}

func (o options) sessionConfig() rgbinfo.Config {
	cfg := rgbinfo.DefaultConfig()
	cfg.Device = o.Device
	cfg.BaudRate = o.BaudRate
	cfg.ReadTimeout = o.ReadTimeout
	cfg.Debug = o.Debug
	return cfg
}

// loadFileConfig overlays the keys present in the TOML file at path onto opts.
func loadFileConfig(path string, opts *options) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("device") {
		opts.Device = strings.TrimSpace(raw.Device)
	}
	if meta.IsDefined("baud_rate") {
		opts.BaudRate = raw.BaudRate
	}
	if meta.IsDefined("read_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ReadTimeout))
		if err != nil {
			return fmt.Errorf("parse read_timeout: %w", err)
		}
		opts.ReadTimeout = d
	}
	if meta.IsDefined("backend") {
		opts.Backend = strings.TrimSpace(raw.Backend)
	}
	if meta.IsDefined("debug") {
		opts.Debug = raw.Debug
	}
	if meta.IsDefined("vidclk") {
		opts.Clock = rgbinfo.ClockHz(raw.VidClk)
	}
	return nil
}

// parseArgs resolves options from defaults, then the config file, then explicitly set flags.
func parseArgs(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("rgbinfo", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		op         = fs.String("op", "", "operation: measure, read, measureAndRead")
		vidclk     = fs.String("vidclk", "", "video clock frequency in Hz")
		device     = fs.String("device", rgbinfo.DefaultDevice, "serial device")
		baud       = fs.Int("baud", rgbinfo.DefaultBaudRate, "baud rate")
		timeout    = fs.Duration("timeout", rgbinfo.DefaultReadTimeout, "per-line read timeout")
		backend    = fs.String("backend", backendTermios, "serial backend: termios, portable")
		debug      = fs.Bool("debug", false, "log every raw transfer")
		raw        = fs.Bool("raw", false, "also print the decoded fields")
		configPath = fs.String("config", "", "optional TOML config file")
	)
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("%w: unexpected argument %q", errUsage, fs.Arg(0))
	}

	opts := defaultOptions()
	if *configPath != "" {
		if err := loadFileConfig(*configPath, &opts); err != nil {
			return options{}, err
		}
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "device":
			opts.Device = *device
		case "baud":
			opts.BaudRate = *baud
		case "timeout":
			opts.ReadTimeout = *timeout
		case "backend":
			opts.Backend = *backend
		case "debug":
			opts.Debug = *debug
		case "vidclk":
			hz, err := strconv.ParseFloat(strings.TrimSpace(*vidclk), 64)
			if err != nil {
				flagErr = fmt.Errorf("%w: parse -vidclk: %v", errUsage, err)
				return
			}
			opts.Clock = rgbinfo.ClockHz(hz)
		}
	})
	if flagErr != nil {
		return options{}, flagErr
	}
	opts.Op = *op
	opts.Raw = *raw

	if err := opts.validate(); err != nil {
		return options{}, err
	}
	return opts, nil
}

func (o options) validate() error {
	switch o.Op {
	case opMeasure, opRead, opMeasureAndRead:
	case "":
		return fmt.Errorf("%w: missing -op", errUsage)
	default:
		return fmt.Errorf("%w: unknown op %q", errUsage, o.Op)
	}
	switch o.Backend {
	case backendTermios, backendPortable:
	default:
		return fmt.Errorf("%w: unknown backend %q", errUsage, o.Backend)
	}
	if o.Device == "" {
		return fmt.Errorf("%w: empty device", errUsage)
	}
	if o.BaudRate <= 0 {
		return fmt.Errorf("%w: baud rate must be positive, got %d", errUsage, o.BaudRate)
	}
	if o.ReadTimeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", errUsage, o.ReadTimeout)
	}
	if hz, ok := o.Clock.Hz(); ok && (hz <= 0 || math.IsInf(hz, 0) || math.IsNaN(hz)) {
		return fmt.Errorf("%w: video clock must be a positive frequency, got %g", errUsage, hz)
	}
	return nil
}
