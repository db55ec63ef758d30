package rgbinfo

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.bug.st/serial"
)

// PortSession is a Transport backed by go.bug.st/serial. It behaves like
// Session and also works on platforms without termios.
type PortSession struct {
	port      serial.Port
	config    Config
	log       zerolog.Logger
	lines     *lineBuffer
	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// OpenPort opens cfg.Device as 8N1 at cfg.BaudRate through go.bug.st/serial.
func OpenPort(cfg Config) (*PortSession, error) {
	cfg = cfg.withDefaults()
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.Device, mode)
	if err != nil {
		return nil, &ConnectionError{Device: cfg.Device, BaudRate: cfg.BaudRate, Err: err}
	}
	return newPortSession(port, cfg), nil
}

func newPortSession(port serial.Port, cfg Config) *PortSession {
	return &PortSession{
		port:   port,
		config: cfg,
		log:    cfg.logger(),
		lines:  newLineBuffer(cfg.Delimiter),
	}
}

// Config returns the configuration the session was opened with.
func (p *PortSession) Config() Config {
	return p.config
}

// WriteCommand writes a single command byte and drains the output buffer.
func (p *PortSession) WriteCommand(cmd byte) error {
	if p.isClosed() {
		return &IOError{Op: "write", Err: ErrClosed}
	}
	if _, err := p.port.Write([]byte{cmd}); err != nil {
		return &IOError{Op: "write", Err: err}
	}
	if err := p.port.Drain(); err != nil {
		return &IOError{Op: "write", Err: fmt.Errorf("drain: %w", err)}
	}
	logTransfer(p.log, p.config.Debug, "tx", []byte{cmd})
	return nil
}

// ReadLine has the same contract as Session.ReadLine.
func (p *PortSession) ReadLine() ([]byte, error) {
	if p.isClosed() {
		return nil, &IOError{Op: "read", Err: ErrClosed}
	}
	if line, ok := p.lines.next(); ok {
		logTransfer(p.log, p.config.Debug, "rx", line)
		return line, nil
	}

	deadline := time.Now().Add(p.config.ReadTimeout)
	buf := make([]byte, 4096)
	for {
		if p.isClosed() {
			return nil, &IOError{Op: "read", Err: ErrClosed}
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			line := p.lines.drain()
			logTransfer(p.log, p.config.Debug, "rx", line)
			return line, nil
		}
		if err := p.port.SetReadTimeout(remaining); err != nil {
			return nil, &IOError{Op: "read", Err: err}
		}
		n, err := p.port.Read(buf)
		if err != nil {
			var portErr *serial.PortError
			if errors.As(err, &portErr) && portErr.Code() == serial.PortClosed {
				err = ErrClosed
			}
			return nil, &IOError{Op: "read", Err: err}
		}
		if n == 0 {
			// read timeout
			continue
		}
		p.lines.write(buf[:n])
		if line, ok := p.lines.next(); ok {
			logTransfer(p.log, p.config.Debug, "rx", line)
			return line, nil
		}
	}
}

// Close closes the port. Safe to call multiple times.
func (p *PortSession) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		err = p.port.Close()
	})
	return err
}

func (p *PortSession) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
