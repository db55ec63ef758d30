package rgbinfo

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDataLine = "1,3210,a0,5,1e0,1b0,21c,320,28,d,32,a,6,8,0,320,380\n"

// fakeDevice is an in-memory Transport that replays scripted lines.
type fakeDevice struct {
	sent     []byte
	lines    [][]byte
	reads    int
	writeErr error
	readErr  error
}

func newFakeDevice(lines ...string) *fakeDevice {
	d := &fakeDevice{}
	for _, l := range lines {
		d.lines = append(d.lines, []byte(l))
	}
	return d
}

func (d *fakeDevice) WriteCommand(cmd byte) error {
	if d.writeErr != nil {
		return d.writeErr
	}
	d.sent = append(d.sent, cmd)
	return nil
}

func (d *fakeDevice) ReadLine() ([]byte, error) {
	if d.readErr != nil {
		return nil, d.readErr
	}
	d.reads++
	if len(d.lines) == 0 {
		// timeout with nothing received
		return []byte{}, nil
	}
	l := d.lines[0]
	d.lines = d.lines[1:]
	return l, nil
}

func TestClient_ReadSample(t *testing.T) {
	dev := newFakeDevice(sampleDataLine, "ACK\n")
	p, err := NewClient(dev).Read()
	require.NoError(t, err)
	require.Equal(t, []byte{'R'}, dev.sent)

	want := VideoTimingParameters{
		HasDataEnable:                     1,
		FrameCycles:                       12816,
		HorizontalSyncCycles:              160,
		VerticalSyncCycles:                5,
		DataEnableLines:                   0x1e0,
		ImageLines:                        0x1b0,
		FrameLines:                        0x21c,
		ColumnPixels:                      0x320,
		BackPorchHorizontalCycles:         0x28,
		BackPorchVerticalLines:            0xd,
		FrontPorchHorizontalCycles:        0x32,
		FrontPorchVerticalLines:           0xa,
		VgaFrontPorchVerticalLines:        6,
		VgaBackPorchVerticalLines:         8,
		VgaBackPorchHorizontalEndCycle:    0,
		VgaFrontPorchHorizontalStartCycle: 0x320,
		VgaFrontPorchHorizontalEndCycle:   896,
	}
	require.Equal(t, want, p)
	require.True(t, p.DataEnableAvailable())
}

func TestClient_ReadNAKStopsBeforeSecondLine(t *testing.T) {
	dev := newFakeDevice("NAK\n", "ACK\n")
	_, err := NewClient(dev).Read()
	require.Error(t, err)
	require.Equal(t, KindProtocol, KindOf(err))
	require.EqualError(t, err, "read rejected: NAK before data")
	require.Equal(t, 1, dev.reads)
}

func TestClient_ReadNAKWithTrailingContent(t *testing.T) {
	dev := newFakeDevice("NAK,1,2,3\n", "ACK\n")
	_, err := NewClient(dev).Read()
	require.True(t, IsProtocolError(err))
}

func TestClient_ReadMissingACK(t *testing.T) {
	for _, second := range []string{"NAK\n", "", "AC\n", "ack\n", sampleDataLine} {
		dev := newFakeDevice(sampleDataLine, second)
		_, err := NewClient(dev).Read()
		require.Error(t, err, "second line %q", second)
		require.Equal(t, KindProtocol, KindOf(err))
		require.EqualError(t, err, "read rejected: no ACK after data")
	}
}

func TestClient_ReadFieldCountMismatch(t *testing.T) {
	fields := strings.Split(strings.TrimSuffix(sampleDataLine, "\n"), ",")
	for _, n := range []int{16, 18} {
		var words []string
		if n < len(fields) {
			words = fields[:n]
		} else {
			words = append(append([]string{}, fields...), "0")
		}
		dev := newFakeDevice(strings.Join(words, ",")+"\n", "ACK\n")
		_, err := NewClient(dev).Read()

		var pe *ProtocolError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, FieldCount, pe.Expected)
		assert.Equal(t, n, pe.Actual)
		assert.EqualError(t, err, fmt.Sprintf("field count mismatch: expected 17, got %d", n))
	}
}

func TestClient_ReadEmptyDataLine(t *testing.T) {
	dev := newFakeDevice("", "ACK\n")
	_, err := NewClient(dev).Read()
	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, 1, pe.Actual)
}

func TestClient_ReadBadHexWord(t *testing.T) {
	line := strings.Replace(sampleDataLine, ",a0,", ",zz,", 1)
	dev := newFakeDevice(line, "ACK\n")
	_, err := NewClient(dev).Read()

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	require.Equal(t, 2, de.Index)
	require.Equal(t, "HScycles", de.Field)
	require.Equal(t, "zz", de.Token)
	require.Equal(t, KindDecode, KindOf(err))
}

func TestClient_Measure(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr bool
	}{
		{name: "ack", line: "ACK\n"},
		{name: "ack with crlf", line: "ACK\r\n"},
		{name: "ack prefix", line: "ACKNOWLEDGED\n"},
		{name: "nak", line: "NAK\n", wantErr: true},
		{name: "empty", line: "", wantErr: true},
		{name: "short", line: "AC", wantErr: true},
		{name: "lowercase", line: "ack\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newFakeDevice(tt.line)
			err := NewClient(dev).Measure()
			require.Equal(t, []byte{'M'}, dev.sent)
			if tt.wantErr {
				require.EqualError(t, err, "measure command rejected")
				require.Equal(t, KindProtocol, KindOf(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestClient_TransportErrorsPropagate(t *testing.T) {
	writeErr := &IOError{Op: "write", Err: errors.New("broken pipe")}
	dev := &fakeDevice{writeErr: writeErr}
	c := NewClient(dev)

	require.ErrorIs(t, c.Measure(), writeErr)
	_, err := c.Read()
	require.ErrorIs(t, err, writeErr)

	readErr := &IOError{Op: "read", Err: ErrClosed}
	dev = &fakeDevice{readErr: readErr}
	_, err = NewClient(dev).Read()
	require.Equal(t, KindIO, KindOf(err))
	require.ErrorIs(t, err, ErrClosed)
}

func TestClient_MeasureAndRead(t *testing.T) {
	dev := newFakeDevice("ACK\n", sampleDataLine, "ACK\n")
	p, err := NewClient(dev).MeasureAndRead()
	require.NoError(t, err)
	require.Equal(t, []byte("MR"), dev.sent)
	require.Equal(t, uint32(896), p.VgaFrontPorchHorizontalEndCycle)

	dev = newFakeDevice("NAK\n")
	_, err = NewClient(dev).MeasureAndRead()
	require.EqualError(t, err, "measure command rejected")
	require.Equal(t, []byte("M"), dev.sent)
}

func TestNewClient_NilTransportPanics(t *testing.T) {
	require.Panics(t, func() { NewClient(nil) })
}
