//go:build !linux

package rgbinfo

import "errors"

var errNoTermios = errors.New("termios session is only available on linux, use OpenPort")

// Session is unavailable outside Linux; Open always fails.
type Session struct{}

func Open(cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	return nil, &ConnectionError{Device: cfg.Device, BaudRate: cfg.BaudRate, Err: errNoTermios}
}

func (s *Session) Config() Config { return Config{} }

func (s *Session) WriteCommand(cmd byte) error {
	return &IOError{Op: "write", Err: ErrClosed}
}

func (s *Session) ReadLine() ([]byte, error) {
	return nil, &IOError{Op: "read", Err: ErrClosed}
}

func (s *Session) Close() error { return nil }
