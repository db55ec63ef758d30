package rgbinfo

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleParameters(t *testing.T) VideoTimingParameters {
	t.Helper()
	p, err := ParseParameters([]byte(sampleDataLine))
	require.NoError(t, err)
	return p
}

func TestReport_NoClock(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Report(&out, sampleParameters(t), NoClock))
	s := out.String()

	assert.Contains(t, s, "Pixel DataEnable signal was available\n")
	assert.Contains(t, s, "Frame time: 12816 pixel clock cycles.\n")
	assert.Contains(t, s, "Horizontal sync: 160 pixel clock cycles.\n")
	assert.Contains(t, s, "Image pixel lines: 432 scanlines\n")
	assert.Contains(t, s, "Vertical Back Porch: 13 scanlines.\n")
	assert.Contains(t, s, "Computed Horizontal Front Porch: 96 pixel clock cycles/pixels.\n")
	// 5 / (160 + 800), 12816 / 960
	assert.Contains(t, s, "Vertical sync: 0.005 lines.\n")
	assert.Contains(t, s, "Frame: 13.350 total scanlines.\n")
	assert.True(t, strings.HasSuffix(s, "Ok\n"))
	assert.NotContains(t, s, " s per frame")
}

func TestReport_WithClock(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Report(&out, sampleParameters(t), ClockHz(12816)))
	s := out.String()

	assert.Contains(t, s, "Frame time: 12816 pixel clock cycles, or 1.000 s per frame, or 1.000 fps.\n")
	assert.Contains(t, s, "Horizontal sync: 160 pixel clock cycles, or 0.012484395s\n")
	// 13 lines of 800 cycles
	assert.Contains(t, s, "Vertical Back Porch: 13 scanlines, or 0.811485643s\n")
}

func TestReport_WithoutDataEnable(t *testing.T) {
	p := sampleParameters(t)
	p.HasDataEnable = 0

	var out bytes.Buffer
	require.NoError(t, Report(&out, p, NoClock))
	s := out.String()

	assert.Contains(t, s, "Pixel DataEnable signal was NOT available\n")
	assert.NotContains(t, s, "Image pixel lines")
	assert.NotContains(t, s, "Horizontal Front Porch: 50")
	assert.Contains(t, s, "--- VGA estimated parameters ---")
}

func TestReport_ZeroLineWidth(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Report(&out, VideoTimingParameters{}, ClockHz(1e6)))
	s := out.String()

	assert.Contains(t, s, "Vertical sync: n/a lines.\n")
	assert.Contains(t, s, "Frame: n/a total scanlines.\n")
}

func TestClock(t *testing.T) {
	_, ok := NoClock.Hz()
	require.False(t, ok)
	require.Equal(t, "none", NoClock.String())

	hz, ok := ClockHz(25.175e6).Hz()
	require.True(t, ok)
	require.Equal(t, 25.175e6, hz)
}

func TestDump(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Dump(&out, sampleParameters(t)))
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, FieldCount)
	require.Equal(t, "hasDE=1 (0x000001)", lines[0])
	require.Equal(t, "VgaFPHEndCycle=896 (0x000380)", lines[16])
}
