package canvas

import (
	"image/color"

	"hud/hudos/fonts/font6x8"

	"tinygo.org/x/tinyfont"
)

// Buffer is one page of canvas pixels. All primitives clip to the page.
//
// Buffer implements drivers.Displayer so tinyfont can render into it.
type Buffer struct {
	w, h int
	pix  []Color
}

// NewBuffer returns a standalone w x h buffer that is not attached to any canvas.
func NewBuffer(w, h int) *Buffer {
	return &Buffer{w: w, h: h, pix: make([]Color, w*h)}
}

func (b *Buffer) Width() int  { return b.w }
func (b *Buffer) Height() int { return b.h }

// Pix returns the backing pixels in row-major order.
func (b *Buffer) Pix() []Color { return b.pix }

// At returns the pixel at (x, y), or Transparent outside the page.
func (b *Buffer) At(x, y int) Color {
	if x < 0 || x >= b.w || y < 0 || y >= b.h {
		return Transparent
	}
	return b.pix[y*b.w+x]
}

func (b *Buffer) Size() (x, y int16) {
	return int16(b.w), int16(b.h)
}

func (b *Buffer) SetPixel(x, y int16, c color.RGBA) {
	b.Pixel(int(x), int(y), FromRGBA(c))
}

func (b *Buffer) Display() error { return nil }

// Clear resets every pixel to Transparent.
func (b *Buffer) Clear() {
	for i := range b.pix {
		b.pix[i] = Transparent
	}
}

// Pixel sets a single pixel.
func (b *Buffer) Pixel(x, y int, c Color) {
	if x < 0 || x >= b.w || y < 0 || y >= b.h {
		return
	}
	b.pix[y*b.w+x] = c
}

// HLine draws a horizontal line between x0 and x1 inclusive, in either order.
func (b *Buffer) HLine(x0, x1, y int, c Color) {
	if y < 0 || y >= b.h {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 < 0 || x0 >= b.w {
		return
	}
	x0 = clampInt(x0, 0, b.w-1)
	x1 = clampInt(x1, 0, b.w-1)
	row := b.pix[y*b.w : (y+1)*b.w]
	for x := x0; x <= x1; x++ {
		row[x] = c
	}
}

// VLine draws a vertical line between y0 and y1 inclusive, in either order.
func (b *Buffer) VLine(x, y0, y1 int, c Color) {
	if x < 0 || x >= b.w {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 < 0 || y0 >= b.h {
		return
	}
	y0 = clampInt(y0, 0, b.h-1)
	y1 = clampInt(y1, 0, b.h-1)
	for y := y0; y <= y1; y++ {
		b.pix[y*b.w+x] = c
	}
}

// OHLine draws a horizontal line surrounded by a one pixel outline of border.
func (b *Buffer) OHLine(x0, x1, y int, c, border Color) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	b.HLine(x0-1, x1+1, y-1, border)
	b.HLine(x0-1, x1+1, y+1, border)
	b.Pixel(x0-1, y, border)
	b.Pixel(x1+1, y, border)
	b.HLine(x0, x1, y, c)
}

// Line draws a straight line with Bresenham's algorithm.
func (b *Buffer) Line(x0, y0, x1, y1 int, c Color) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.Pixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// FillRect fills the rectangle with corners (x0, y0) and (x1, y1), both inclusive.
func (b *Buffer) FillRect(x0, y0, x1, y1 int, c Color) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		b.HLine(x0, x1, y, c)
	}
}

// Text draws s with its top-left corner at (x, y) using the 6x8 OSD font.
func (b *Buffer) Text(s string, x, y int, c Color) {
	tinyfont.WriteLine(b, font6x8.Font, int16(x), int16(y+font6x8.Height-1), s, c.ToRGBA())
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
