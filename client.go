package rgbinfo

import (
	"bytes"

	"github.com/rs/zerolog"
)

// Command bytes understood by the device.
const (
	CommandMeasure byte = 'M'
	CommandRead    byte = 'R'
)

var (
	markerACK = []byte("ACK")
	markerNAK = []byte("NAK")
)

// Client issues measure and read exchanges over a Transport.
// Exchanges are strictly sequential; a Client must not be shared between goroutines.
type Client struct {
	t   Transport
	log zerolog.Logger
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithLogger sets the logger used to report exchange outcomes.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient returns a Client driving t.
func NewClient(t Transport, opts ...Option) *Client {
	if t == nil {
		panic("transport cannot be nil")
	}
	c := &Client{t: t, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Measure asks the device to capture a new set of timings.
// It succeeds only if the device answers with an ACK line.
func (c *Client) Measure() error {
	if err := c.t.WriteCommand(CommandMeasure); err != nil {
		return err
	}
	line, err := c.t.ReadLine()
	if err != nil {
		return err
	}
	if !hasMarker(line, markerACK) {
		c.log.Debug().Str("op", "measure").Bytes("line", line).Msg("rejected")
		return &ProtocolError{Op: "measure", Message: "measure command rejected", Line: line}
	}
	c.log.Debug().Str("op", "measure").Msg("acknowledged")
	return nil
}

// Read fetches the most recent measurement. The device answers with a data
// line (or NAK) followed by an ACK line.
func (c *Client) Read() (VideoTimingParameters, error) {
	if err := c.t.WriteCommand(CommandRead); err != nil {
		return VideoTimingParameters{}, err
	}

	data, err := c.t.ReadLine()
	if err != nil {
		return VideoTimingParameters{}, err
	}
	if hasMarker(data, markerNAK) {
		c.log.Debug().Str("op", "read").Msg("NAK before data")
		return VideoTimingParameters{}, &ProtocolError{Op: "read", Message: "read rejected: NAK before data", Line: data}
	}

	ack, err := c.t.ReadLine()
	if err != nil {
		return VideoTimingParameters{}, err
	}
	if !hasMarker(ack, markerACK) {
		c.log.Debug().Str("op", "read").Bytes("line", ack).Msg("no ACK after data")
		return VideoTimingParameters{}, &ProtocolError{Op: "read", Message: "read rejected: no ACK after data", Line: ack}
	}

	p, err := ParseParameters(data)
	if err != nil {
		return VideoTimingParameters{}, err
	}
	c.log.Debug().Str("op", "read").Uint32("frame_cycles", p.FrameCycles).Msg("decoded")
	return p, nil
}

// MeasureAndRead triggers a measurement and reads it back.
func (c *Client) MeasureAndRead() (VideoTimingParameters, error) {
	if err := c.Measure(); err != nil {
		return VideoTimingParameters{}, err
	}
	return c.Read()
}

func hasMarker(line, marker []byte) bool {
	return len(line) >= len(marker) && bytes.Equal(line[:len(marker)], marker)
}
