package rgbinfo

import (
	"bytes"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultDevice      = "/dev/ttyUSB1"
	DefaultBaudRate    = 1500000
	DefaultReadTimeout = 100 * time.Millisecond
	DefaultDelimiter   = "\n"
)

// Config holds configuration parameters for opening a session to the device.
// It is copied at open time; later changes have no effect on an open session.
type Config struct {
	Device   string
	BaudRate int

	// ReadTimeout bounds each ReadLine call independently
	ReadTimeout time.Duration

	Delimiter string // default "\n"

	// Debug logs every raw transfer at debug level
	Debug  bool
	Logger *zerolog.Logger
}

// DefaultConfig returns the configuration used by the device's reference client.
func DefaultConfig() Config {
	return Config{
		Device:      DefaultDevice,
		BaudRate:    DefaultBaudRate,
		ReadTimeout: DefaultReadTimeout,
		Delimiter:   DefaultDelimiter,
	}
}

func (c Config) withDefaults() Config {
	if c.Device == "" {
		c.Device = DefaultDevice
	}
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.Delimiter == "" {
		c.Delimiter = DefaultDelimiter
	}
	return c
}

func (c Config) logger() zerolog.Logger {
	if c.Logger == nil {
		return zerolog.Nop()
	}
	return c.Logger.With().Str("device", c.Device).Logger()
}

// Transport is the line-oriented channel a Client drives.
type Transport interface {
	// WriteCommand sends one command byte and waits until it is transmitted.
	WriteCommand(cmd byte) error

	// ReadLine returns the next line including its delimiter, or whatever
	// arrived before the read timeout (possibly nothing) without an error.
	ReadLine() ([]byte, error)
}

// lineBuffer accumulates received bytes and splits them on a delimiter.
// Bytes past the first delimiter are kept for the next line.
type lineBuffer struct {
	delim []byte
	buf   []byte
}

func newLineBuffer(delim string) *lineBuffer {
	return &lineBuffer{delim: []byte(delim)}
}

func (b *lineBuffer) write(p []byte) {
	b.buf = append(b.buf, p...)
}

func (b *lineBuffer) next() ([]byte, bool) {
	idx := bytes.Index(b.buf, b.delim)
	if idx < 0 {
		return nil, false
	}
	end := idx + len(b.delim)
	line := append([]byte(nil), b.buf[:end]...)
	b.buf = append(b.buf[:0], b.buf[end:]...)
	return line, true
}

// drain returns the partial line accumulated so far and resets the buffer.
func (b *lineBuffer) drain() []byte {
	line := append([]byte{}, b.buf...)
	b.buf = b.buf[:0]
	return line
}

func logTransfer(log zerolog.Logger, enabled bool, dir string, raw []byte) {
	if !enabled {
		return
	}
	log.Debug().Str("dir", dir).Str("raw", strconv.Quote(string(raw))).Msg("transfer")
}
