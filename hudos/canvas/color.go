package canvas

import "image/color"

// Color is a 2-bit OSD pixel value.
type Color uint8

const (
	Transparent Color = iota
	White
	Gray
	Black
)

// ToRGBA returns the preview color for c.
func (c Color) ToRGBA() color.RGBA {
	switch c {
	case White:
		return color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	case Gray:
		return color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	case Black:
		return color.RGBA{A: 0xFF}
	default:
		return color.RGBA{}
	}
}

// FromRGBA maps an arbitrary color onto the OSD palette.
func FromRGBA(c color.RGBA) Color {
	if c.A < 0x80 {
		return Transparent
	}
	luma := (int(c.R) + int(c.G) + int(c.B)) / 3
	switch {
	case luma >= 0xC0:
		return White
	case luma >= 0x40:
		return Gray
	default:
		return Black
	}
}

func (c Color) String() string {
	switch c {
	case Transparent:
		return "transparent"
	case White:
		return "white"
	case Gray:
		return "gray"
	case Black:
		return "black"
	default:
		return "unknown"
	}
}
