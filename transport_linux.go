//go:build linux

package rgbinfo

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// Session is a raw, unbuffered termios session on a Linux serial device.
// One goroutine drives WriteCommand/ReadLine; Close may be called from any goroutine.
type Session struct {
	fd        int
	file      *os.File
	done      chan struct{}
	closeOnce sync.Once
	config    Config
	log       zerolog.Logger
	lines     *lineBuffer
	pipeR     int // self-pipe read fd
	pipeW     int // self-pipe write fd
}

// Open opens the device described by cfg and returns a Session.
// The port is configured for raw 8N1 operation at cfg.BaudRate.
func Open(cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	connErr := func(err error) error {
		return &ConnectionError{Device: cfg.Device, BaudRate: cfg.BaudRate, Err: err}
	}

	baud, ok := baudToUnix(cfg.BaudRate)
	if !ok {
		return nil, connErr(errors.New("unsupported baud rate"))
	}

	fd, err := syscall.Open(cfg.Device, syscall.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0666)
	if err != nil {
		return nil, connErr(fmt.Errorf("open failed: %w", err))
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		syscall.Close(fd)
		return nil, connErr(fmt.Errorf("get termios: %w", err))
	}

	// Raw mode
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB
	termios.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL

	termios.Cflag &^= unix.CBAUD
	termios.Cflag |= baud

	// Reads only happen after poll reports data
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		syscall.Close(fd)
		return nil, connErr(fmt.Errorf("set termios: %w", err))
	}

	if err := syscall.SetNonblock(fd, false); err != nil {
		syscall.Close(fd)
		return nil, connErr(fmt.Errorf("set blocking: %w", err))
	}

	pipeFds := make([]int, 2)
	if err := unix.Pipe(pipeFds); err != nil {
		syscall.Close(fd)
		return nil, connErr(fmt.Errorf("pipe: %w", err))
	}

	return &Session{
		fd:     fd,
		file:   os.NewFile(uintptr(fd), cfg.Device),
		done:   make(chan struct{}),
		config: cfg,
		log:    cfg.logger(),
		lines:  newLineBuffer(cfg.Delimiter),
		pipeR:  pipeFds[0],
		pipeW:  pipeFds[1],
	}, nil
}

// Config returns the configuration the session was opened with.
func (s *Session) Config() Config {
	return s.config
}

// WriteCommand writes a single command byte and blocks until the driver has transmitted it.
func (s *Session) WriteCommand(cmd byte) error {
	if s.closed() {
		return &IOError{Op: "write", Err: ErrClosed}
	}
	if _, err := s.file.Write([]byte{cmd}); err != nil {
		return &IOError{Op: "write", Err: err}
	}
	// TCSBRK with a non-zero argument is tcdrain(3)
	if err := unix.IoctlSetInt(s.fd, unix.TCSBRK, 1); err != nil {
		return &IOError{Op: "write", Err: fmt.Errorf("drain: %w", err)}
	}
	logTransfer(s.log, s.config.Debug, "tx", []byte{cmd})
	return nil
}

// ReadLine reads one delimiter-terminated line, waiting at most ReadTimeout.
// On timeout the bytes received so far are returned with a nil error.
func (s *Session) ReadLine() ([]byte, error) {
	if s.closed() {
		return nil, &IOError{Op: "read", Err: ErrClosed}
	}
	if line, ok := s.lines.next(); ok {
		logTransfer(s.log, s.config.Debug, "rx", line)
		return line, nil
	}

	deadline := time.Now().Add(s.config.ReadTimeout)
	buf := make([]byte, 4096)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			line := s.lines.drain()
			logTransfer(s.log, s.config.Debug, "rx", line)
			return line, nil
		}

		// Use poll to wait for data, the deadline or a kill signal
		pfd := []unix.PollFd{
			{Fd: int32(s.fd), Events: unix.POLLIN},
			{Fd: int32(s.pipeR), Events: unix.POLLIN},
		}
		n, err := unix.Poll(pfd, pollTimeout(remaining))
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return nil, &IOError{Op: "read", Err: err}
		}
		if s.closed() {
			return nil, &IOError{Op: "read", Err: ErrClosed}
		}
		if pfd[1].Revents&unix.POLLIN != 0 {
			var b [1]byte
			unix.Read(s.pipeR, b[:])
			return nil, &IOError{Op: "read", Err: ErrClosed}
		}
		if n == 0 {
			continue
		}

		switch {
		case pfd[0].Revents&unix.POLLIN != 0:
			m, err := s.file.Read(buf)
			if err != nil {
				return nil, &IOError{Op: "read", Err: err}
			}
			s.lines.write(buf[:m])
			if line, ok := s.lines.next(); ok {
				logTransfer(s.log, s.config.Debug, "rx", line)
				return line, nil
			}
		case pfd[0].Revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0:
			return nil, &IOError{Op: "read", Err: errors.New("device hung up")}
		}
	}
}

// Close closes the device and unblocks a pending ReadLine.
// Safe to call multiple times; subsequent calls are no-ops.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		// Wake up poll using self-pipe
		unix.Write(s.pipeW, []byte{1})
		err = s.file.Close()
		unix.Close(s.pipeR)
		unix.Close(s.pipeW)
	})
	return err
}

func (s *Session) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// pollTimeout rounds d up to whole milliseconds so a short remainder still waits.
func pollTimeout(d time.Duration) int {
	ms := int((d + time.Millisecond - 1) / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	return ms
}

func baudToUnix(baud int) (uint32, bool) {
	switch baud {
	case 9600:
		return unix.B9600, true
	case 19200:
		return unix.B19200, true
	case 38400:
		return unix.B38400, true
	case 57600:
		return unix.B57600, true
	case 115200:
		return unix.B115200, true
	case 230400:
		return unix.B230400, true
	case 460800:
		return unix.B460800, true
	case 500000:
		return unix.B500000, true
	case 576000:
		return unix.B576000, true
	case 921600:
		return unix.B921600, true
	case 1000000:
		return unix.B1000000, true
	case 1152000:
		return unix.B1152000, true
	case 1500000:
		return unix.B1500000, true
	case 2000000:
		return unix.B2000000, true
	case 2500000:
		return unix.B2500000, true
	case 3000000:
		return unix.B3000000, true
	case 3500000:
		return unix.B3500000, true
	case 4000000:
		return unix.B4000000, true
	default:
		return 0, false
	}
}
