package compositor

import (
	"image/color"

	"hud/hal"
)

// fbDisplay adapts an RGB565 frame buffer to drivers.Displayer.
type fbDisplay struct {
	fb  hal.Framebuffer
	buf []byte
}

func newFBDisplay(fb hal.Framebuffer) *fbDisplay {
	return &fbDisplay{fb: fb, buf: fb.Buffer()}
}

func (d *fbDisplay) Size() (x, y int16) {
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.fb.Format() != hal.PixelFormatRGB565 || d.buf == nil {
		return
	}
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}
	off := iy*d.fb.StrideBytes() + ix*2
	if off < 0 || off+1 >= len(d.buf) {
		return
	}
	pixel := hal.RGB565(c.R, c.G, c.B)
	d.buf[off] = byte(pixel)
	d.buf[off+1] = byte(pixel >> 8)
}

func (d *fbDisplay) Display() error {
	return d.fb.Present()
}
