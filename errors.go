package rgbinfo

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by transport operations after Close.
var ErrClosed = errors.New("session closed")

// ErrorKind classifies a failure returned by a Session or Client.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindConnection
	KindIO
	KindProtocol
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindIO:
		return "io"
	case KindProtocol:
		return "protocol"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// KindOf reports the kind of the first typed error found in err's chain.
func KindOf(err error) ErrorKind {
	var (
		connErr  *ConnectionError
		ioErr    *IOError
		protoErr *ProtocolError
		decErr   *DecodeError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &protoErr):
		return KindProtocol
	case errors.As(err, &decErr):
		return KindDecode
	case errors.As(err, &ioErr):
		return KindIO
	case errors.As(err, &connErr):
		return KindConnection
	default:
		return KindUnknown
	}
}

// ConnectionError indicates that the device could not be opened at the requested rate.
type ConnectionError struct {
	Device   string
	BaudRate int
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("open %s at %d baud: %v", e.Device, e.BaudRate, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IOError is a read or write fault on an open session.
type IOError struct {
	// Op is "read" or "write"
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ProtocolError indicates a response that did not match the expected handshake.
type ProtocolError struct {
	// Op is the exchange that failed ("measure" or "read")
	Op string

	Message string

	// Expected and Actual are set for field count mismatches
	Expected int
	Actual   int

	// Line is the raw response line that was rejected
	Line []byte
}

func (e *ProtocolError) Error() string {
	return e.Message
}

// DecodeError indicates a data field that is not a valid hexadecimal word.
type DecodeError struct {
	Index int
	Field string
	Token string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode field %d (%s) %q: %v", e.Index, e.Field, e.Token, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsProtocolError returns true if err is or wraps a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// IsDecodeError returns true if err is or wraps a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
