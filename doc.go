// Package rgbinfo is a client for an RGB video-timing measurement device
// attached over a serial link.
//
// The device speaks a line-based ASCII protocol driven by single-byte commands:
//
//	M  measure: the device captures timings and answers "ACK"
//	R  read:    the device answers with 17 comma-separated hex words, then "ACK",
//	            or with "NAK" when no measurement is available
//
// Features:
//   - Raw termios Session on Linux with a per-read timeout and self-pipe killability
//   - PortSession on go.bug.st/serial for other platforms
//   - Typed errors (ConnectionError, IOError, ProtocolError, DecodeError) with KindOf
//   - Optional verbatim transfer logging through zerolog
//   - PTY-based tests for reliability
//
// Example usage:
//
//	s, err := rgbinfo.Open(rgbinfo.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	c := rgbinfo.NewClient(s)
//	if err := c.Measure(); err != nil {
//	    log.Fatal(err)
//	}
//	p, err := c.Read()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rgbinfo.Report(os.Stdout, p, rgbinfo.ClockHz(25.175e6))
package rgbinfo
