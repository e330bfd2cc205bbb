package altitude

import (
	"fmt"

	"hud/hudos/canvas"
)

// Canvas geometry of the tape.
const (
	Width   = 48
	Height  = 100
	xCenter = Width/2 - 15
	yCenter = Height/2 - 1
)

// Drawer is the subset of canvas primitives the tape is painted with.
type Drawer interface {
	OHLine(x0, x1, y int, c, border canvas.Color)
	HLine(x0, x1, y int, c canvas.Color)
	VLine(x, y0, y1 int, c canvas.Color)
	Line(x0, y0, x1, y1 int, c canvas.Color)
	FillRect(x0, y0, x1, y1 int, c canvas.Color)
	Text(s string, x, y int, c canvas.Color)
}

// Tick is one graduation on the tape.
type Tick struct {
	Y     int
	Value int
	Major bool
}

// Ticks lays out the graduations of a tape of span rng centered on alt, mapped
// onto h pixel rows. Row 0 of the span sits at y == h, below the visible area.
//
// When consecutive offsets map to the same pixel row, only the first drawn
// tick on that row survives; a row with no tick does not claim it.
func Ticks(alt, rng, h int) []Tick {
	major, minor := Spacing(rng)
	ticks := make([]Tick, 0, rng/minor+1)

	lastY, drawn := -1, false
	for i := 0; i < rng; i++ {
		y := h - i*h/rng
		if drawn && y == lastY {
			continue
		}
		lastY = y

		v := alt + i - rng/2
		switch {
		case v%major == 0:
			ticks = append(ticks, Tick{Y: y, Value: v, Major: true})
			drawn = true
		case v%minor == 0:
			ticks = append(ticks, Tick{Y: y, Value: v})
			drawn = true
		default:
			drawn = false
		}
	}
	return ticks
}

// DrawTape paints the full tape for alt onto d.
func DrawTape(d Drawer, alt, rng int) {
	for _, t := range Ticks(alt, rng, Height) {
		if t.Major {
			d.OHLine(xCenter-4, xCenter+2, t.Y, canvas.White, canvas.Black)
			d.Text(formatLabel(t.Value), xCenter+13, t.Y-3, canvas.White)
			continue
		}
		d.OHLine(xCenter-2, xCenter+2, t.Y, canvas.White, canvas.Black)
	}

	// readout
	d.FillRect(xCenter+10, yCenter-4, Width-2, yCenter+4, canvas.Transparent)
	d.Text(formatLabel(alt), xCenter+13, yCenter-3, canvas.White)
	d.HLine(xCenter+10, Width-1, yCenter-5, canvas.White)
	d.HLine(xCenter+10, Width-1, yCenter+5, canvas.White)
	d.VLine(Width-1, yCenter-4, yCenter+4, canvas.White)

	// pointer
	d.Line(xCenter+10, yCenter-5, xCenter+5, yCenter, canvas.White)
	d.Line(xCenter+10, yCenter+5, xCenter+5, yCenter, canvas.White)
}

// formatLabel renders v right-aligned in four columns. Wider values overflow
// and are clipped by the canvas.
func formatLabel(v int) string {
	return fmt.Sprintf("%4d", v)
}
