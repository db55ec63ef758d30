package rgbinfo

import (
	"bufio"
	"fmt"
	"io"
)

// Clock is an optional pixel clock frequency used to convert cycle counts to time.
type Clock struct {
	hz    float64
	valid bool
}

// NoClock reports cycle counts only.
var NoClock = Clock{}

// ClockHz returns a present Clock of hz.
func ClockHz(hz float64) Clock {
	return Clock{hz: hz, valid: true}
}

// Hz returns the frequency and whether one was given.
func (c Clock) Hz() (float64, bool) {
	return c.hz, c.valid
}

func (c Clock) String() string {
	if !c.valid {
		return "none"
	}
	return fmt.Sprintf("%g Hz", c.hz)
}

type reporter struct {
	w   *bufio.Writer
	clk Clock
}

func (r *reporter) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

// cycles terminates a line with the duration of n pixel clock cycles, if a clock is known.
func (r *reporter) cycles(n float64) {
	hz, ok := r.clk.Hz()
	if !ok {
		r.printf(".\n")
		return
	}
	r.printf(", or %.9fs\n", n/hz)
}

// scanlines is cycles for a count of lines of the given width.
func (r *reporter) scanlines(lines, width uint32) {
	r.cycles(float64(lines) * float64(width))
}

// Report writes a human-readable interpretation of p to w.
func Report(w io.Writer, p VideoTimingParameters, clk Clock) error {
	r := &reporter{w: bufio.NewWriter(w), clk: clk}
	hasDE := p.DataEnableAvailable()

	if hasDE {
		r.printf("Pixel DataEnable signal was available\n")
	} else {
		r.printf("Pixel DataEnable signal was NOT available\n")
	}

	r.printf("Frame time: %d pixel clock cycles", p.FrameCycles)
	if hz, ok := clk.Hz(); ok {
		frameTime := float64(p.FrameCycles) / hz
		r.printf(", or %.3f s per frame, or %.3f fps.\n", frameTime, 1/frameTime)
	} else {
		r.printf(".\n")
	}

	r.printf("Horizontal sync: %d pixel clock cycles", p.HorizontalSyncCycles)
	r.cycles(float64(p.HorizontalSyncCycles))
	r.printf("Vertical sync: %d pixel clock cycles", p.VerticalSyncCycles)
	r.cycles(float64(p.VerticalSyncCycles))

	if hasDE {
		r.printf("Image pixels per line with pixel DataEnable signal active: %d scanlines\n", p.DataEnableLines)
		r.printf("Image pixel lines: %d scanlines\n", p.ImageLines)
	}
	r.printf("Total frame lines: %d scanlines\n", p.FrameLines)
	r.printf("Total scanline length without horizontal sync.: %d video clock cycles\n", p.ColumnPixels)

	if hasDE {
		r.printf("Horizontal Back Porch: %d video clock cycles", p.BackPorchHorizontalCycles)
		r.cycles(float64(p.BackPorchHorizontalCycles))
		r.printf("Horizontal Front Porch: %d video clock cycles", p.FrontPorchHorizontalCycles)
		r.cycles(float64(p.FrontPorchHorizontalCycles))
		r.printf("Vertical Front Porch: %d scanlines", p.FrontPorchVerticalLines)
		r.scanlines(p.FrontPorchVerticalLines, p.ColumnPixels)
		r.printf("Vertical Back Porch: %d scanlines", p.BackPorchVerticalLines)
		r.scanlines(p.BackPorchVerticalLines, p.ColumnPixels)
	}

	r.printf("--------------------------------\n")
	r.printf("--- VGA estimated parameters ---\n")
	r.printf("--------------------------------\n")
	r.printf("Horizontal Front Porch start cycle: %d start pixel clock cycle.\n", p.VgaFrontPorchHorizontalStartCycle)
	r.printf("Horizontal Front Porch end cycle: %d end pixel clock cycle.\n", p.VgaFrontPorchHorizontalEndCycle)
	r.printf("Horizontal Back Porch: %d video clock cycles/pixels", p.VgaBackPorchHorizontalEndCycle)
	r.cycles(float64(p.VgaBackPorchHorizontalEndCycle))
	r.printf("Total scanline length without horizontal sync.: %d video clock cycles.\n", p.VgaFrontPorchHorizontalEndCycle)

	// signed: the device may report an end cycle before the start cycle
	fph := int64(p.VgaFrontPorchHorizontalEndCycle) - int64(p.VgaFrontPorchHorizontalStartCycle)
	r.printf("Computed Horizontal Front Porch: %d pixel clock cycles/pixels", fph)
	r.cycles(float64(fph))
	r.printf("Vertical Front Porch: %d scanlines", p.VgaFrontPorchVerticalLines)
	r.scanlines(p.VgaFrontPorchVerticalLines, p.ColumnPixels)
	r.printf("Vertical Back Porch: %d scanlines", p.VgaBackPorchVerticalLines)
	r.scanlines(p.VgaBackPorchVerticalLines, p.ColumnPixels)

	r.printf("------------------------\n")
	r.printf("--- Other statistics ---\n")
	r.printf("------------------------\n")
	lineWidth := float64(p.HorizontalSyncCycles) + float64(p.ColumnPixels)
	if lineWidth == 0 {
		r.printf("Vertical sync: n/a lines.\n")
		r.printf("Frame: n/a total scanlines.\n")
	} else {
		r.printf("Vertical sync: %.3f lines.\n", float64(p.VerticalSyncCycles)/lineWidth)
		r.printf("Frame: %.3f total scanlines.\n", float64(p.FrameCycles)/lineWidth)
	}
	r.printf("Ok\n")

	return r.w.Flush()
}

// Dump writes one name=value line per field in wire order.
func Dump(w io.Writer, p VideoTimingParameters) error {
	bw := bufio.NewWriter(w)
	for i, v := range p.Fields() {
		fmt.Fprintf(bw, "%s=%d (0x%s)\n", FieldNames[i], v, EncodeHexWord(v, 6))
	}
	return bw.Flush()
}
