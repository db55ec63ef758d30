package rgbinfo

import (
	"bytes"
	"fmt"
)

// FieldCount is the number of hex words in a read response data line.
const FieldCount = 17

// FieldNames are the device's short names for each data line field, in wire order.
var FieldNames = [FieldCount]string{
	"hasDE",
	"frameCycles",
	"HScycles",
	"VScycles",
	"DElines",
	"ImgLines",
	"FrameLines",
	"ColumnPixels",
	"BPHCycles",
	"BPVLines",
	"FPHCycles",
	"FPVLines",
	"VgaFPVLines",
	"VgaBPVLines",
	"VgaBPHEndCycle",
	"VgaFPHStartCycle",
	"VgaFPHEndCycle",
}

// VideoTimingParameters holds one decoded measurement from the device.
// All cycle counts are in pixel clock cycles.
type VideoTimingParameters struct {
	HasDataEnable                     uint32
	FrameCycles                       uint32
	HorizontalSyncCycles              uint32
	VerticalSyncCycles                uint32
	DataEnableLines                   uint32
	ImageLines                        uint32
	FrameLines                        uint32
	ColumnPixels                      uint32
	BackPorchHorizontalCycles         uint32
	BackPorchVerticalLines            uint32
	FrontPorchHorizontalCycles        uint32
	FrontPorchVerticalLines           uint32
	VgaFrontPorchVerticalLines        uint32
	VgaBackPorchVerticalLines         uint32
	VgaBackPorchHorizontalEndCycle    uint32
	VgaFrontPorchHorizontalStartCycle uint32
	VgaFrontPorchHorizontalEndCycle   uint32
}

// DataEnableAvailable reports whether the measured source drove a DE signal.
func (p VideoTimingParameters) DataEnableAvailable() bool {
	return p.HasDataEnable == 1
}

// Fields returns the values in wire order.
func (p VideoTimingParameters) Fields() [FieldCount]uint32 {
	return [FieldCount]uint32{
		p.HasDataEnable,
		p.FrameCycles,
		p.HorizontalSyncCycles,
		p.VerticalSyncCycles,
		p.DataEnableLines,
		p.ImageLines,
		p.FrameLines,
		p.ColumnPixels,
		p.BackPorchHorizontalCycles,
		p.BackPorchVerticalLines,
		p.FrontPorchHorizontalCycles,
		p.FrontPorchVerticalLines,
		p.VgaFrontPorchVerticalLines,
		p.VgaBackPorchVerticalLines,
		p.VgaBackPorchHorizontalEndCycle,
		p.VgaFrontPorchHorizontalStartCycle,
		p.VgaFrontPorchHorizontalEndCycle,
	}
}

func parametersFromFields(v [FieldCount]uint32) VideoTimingParameters {
	return VideoTimingParameters{
		HasDataEnable:                     v[0],
		FrameCycles:                       v[1],
		HorizontalSyncCycles:              v[2],
		VerticalSyncCycles:                v[3],
		DataEnableLines:                   v[4],
		ImageLines:                        v[5],
		FrameLines:                        v[6],
		ColumnPixels:                      v[7],
		BackPorchHorizontalCycles:         v[8],
		BackPorchVerticalLines:            v[9],
		FrontPorchHorizontalCycles:        v[10],
		FrontPorchVerticalLines:           v[11],
		VgaFrontPorchVerticalLines:        v[12],
		VgaBackPorchVerticalLines:         v[13],
		VgaBackPorchHorizontalEndCycle:    v[14],
		VgaFrontPorchHorizontalStartCycle: v[15],
		VgaFrontPorchHorizontalEndCycle:   v[16],
	}
}

// ParseParameters decodes a read response data line. The line terminator, if
// present, is ignored. A field count other than FieldCount yields a
// *ProtocolError; a malformed word yields a *DecodeError.
func ParseParameters(line []byte) (VideoTimingParameters, error) {
	words := bytes.Split(line, []byte{','})
	if len(words) != FieldCount {
		return VideoTimingParameters{}, &ProtocolError{
			Op:       "read",
			Message:  fmt.Sprintf("field count mismatch: expected %d, got %d", FieldCount, len(words)),
			Expected: FieldCount,
			Actual:   len(words),
			Line:     line,
		}
	}

	var vals [FieldCount]uint32
	for i, w := range words {
		tok := string(bytes.TrimSpace(w))
		v, err := DecodeHexWord(tok)
		if err != nil {
			return VideoTimingParameters{}, &DecodeError{
				Index: i,
				Field: FieldNames[i],
				Token: tok,
				Err:   err,
			}
		}
		vals[i] = v
	}
	return parametersFromFields(vals), nil
}

// EncodeParameters renders p as a data line the way the device sends it,
// each word padded to minWidth digits and terminated by "\n".
func EncodeParameters(p VideoTimingParameters, minWidth int) []byte {
	var buf bytes.Buffer
	for i, v := range p.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(EncodeHexWord(v, minWidth))
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}
