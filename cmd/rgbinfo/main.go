package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	rgbinfo "github.com/luhtfiimanal/go-rgb-timing"
	"github.com/luhtfiimanal/go-rgb-timing/internal/logging"
	"github.com/rs/zerolog"
)

type transport interface {
	rgbinfo.Transport
	io.Closer
}

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		fmt.Fprintf(os.Stderr, "rgbinfo: %v\n", err)
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "rgbinfo: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	log := logging.New(logging.RuntimeConfig(opts.Debug, os.Getenv), stderr)

	t, err := openTransport(opts, log)
	if err != nil {
		log.Error().Err(err).Str("kind", rgbinfo.KindOf(err).String()).Msg("open failed")
		return err
	}
	defer t.Close()
	log.Debug().Str("device", opts.Device).Int("baud", opts.BaudRate).Str("backend", opts.Backend).Msg("session opened")

	c := rgbinfo.NewClient(t, rgbinfo.WithLogger(log))
	if err := execute(c, opts, stdout); err != nil {
		log.Error().Err(err).Str("op", opts.Op).Str("kind", rgbinfo.KindOf(err).String()).Msg("exchange failed")
		return err
	}
	return nil
}

func openTransport(opts options, log zerolog.Logger) (transport, error) {
	cfg := opts.sessionConfig()
	cfg.Logger = &log
	if opts.Backend == backendPortable {
		p, err := rgbinfo.OpenPort(cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	s, err := rgbinfo.Open(cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func execute(c *rgbinfo.Client, opts options, w io.Writer) error {
	switch opts.Op {
	case opMeasure:
		if err := c.Measure(); err != nil {
			return err
		}
		fmt.Fprintln(w, "Measure acknowledged")
		return nil
	case opRead:
		p, err := c.Read()
		if err != nil {
			return err
		}
		return render(w, p, opts)
	case opMeasureAndRead:
		p, err := c.MeasureAndRead()
		if err != nil {
			return err
		}
		return render(w, p, opts)
	default:
		return fmt.Errorf("%w: unknown op %q", errUsage, opts.Op)
	}
}

func render(w io.Writer, p rgbinfo.VideoTimingParameters, opts options) error {
	if opts.Raw {
		if err := rgbinfo.Dump(w, p); err != nil {
			return err
		}
	}
	return rgbinfo.Report(w, p, opts.Clock)
}
