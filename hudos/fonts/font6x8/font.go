package font6x8

import (
	"image/color"
	"strings"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Width and Height are the cell size of every glyph, including spacing.
const (
	Width  = 6
	Height = 8
)

// Font is the OSD label font: a 6x8 monospace bitmap covering digits, signs and the
// few letters used in unit suffixes.
//
// It implements tinyfont.Fonter. Concurrent access is not safe due to internal glyph reuse.
var Font tinyfont.Fonter = &font6x8{}

type font6x8 struct {
	g glyph
}

type glyph struct {
	r rune
}

func (g *glyph) Draw(display drivers.Displayer, x, y int16, c color.RGBA) {
	idx := glyphIndex(g.r)
	if idx < 0 {
		return
	}

	base := idx * Height
	for row := 0; row < Height; row++ {
		b := glyphData[base+row]
		// Bits are stored as 0b00xxxxxx (bit5 = leftmost pixel).
		for col := 0; col < Width; col++ {
			if b&(0x20>>col) == 0 {
				continue
			}
			display.SetPixel(x+int16(col), y-int16(Height-1-row), c)
		}
	}
}

func (g *glyph) Info() tinyfont.GlyphInfo {
	return tinyfont.GlyphInfo{
		Rune:     g.r,
		Width:    Width,
		Height:   Height,
		XAdvance: Width,
		XOffset:  0,
		YOffset:  -(Height - 1),
	}
}

func (f *font6x8) GetYAdvance() uint8 { return Height }

func (f *font6x8) GetGlyph(r rune) tinyfont.Glypher {
	f.g.r = r
	return &f.g
}

// Covers reports whether r has a visible glyph. Other runes still advance one cell.
func Covers(r rune) bool {
	return glyphIndex(r) >= 0
}

const charset = " +-.0123456789?FLMT"

func glyphIndex(r rune) int {
	if r > 0x7f {
		return -1
	}
	return strings.IndexRune(charset, r)
}

// glyphData holds Height rows per glyph, in charset order.
var glyphData = [...]byte{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // ' '
	0x00, 0x08, 0x08, 0x3E, 0x08, 0x08, 0x00, 0x00, // '+'
	0x00, 0x00, 0x00, 0x3E, 0x00, 0x00, 0x00, 0x00, // '-'
	0x00, 0x00, 0x00, 0x00, 0x00, 0x18, 0x18, 0x00, // '.'
	0x1C, 0x22, 0x26, 0x2A, 0x32, 0x22, 0x1C, 0x00, // '0'
	0x08, 0x18, 0x08, 0x08, 0x08, 0x08, 0x1C, 0x00, // '1'
	0x1C, 0x22, 0x02, 0x04, 0x08, 0x10, 0x3E, 0x00, // '2'
	0x3E, 0x04, 0x08, 0x04, 0x02, 0x22, 0x1C, 0x00, // '3'
	0x04, 0x0C, 0x14, 0x24, 0x3E, 0x04, 0x04, 0x00, // '4'
	0x3E, 0x20, 0x3C, 0x02, 0x02, 0x22, 0x1C, 0x00, // '5'
	0x0C, 0x10, 0x20, 0x3C, 0x22, 0x22, 0x1C, 0x00, // '6'
	0x3E, 0x02, 0x04, 0x08, 0x10, 0x10, 0x10, 0x00, // '7'
	0x1C, 0x22, 0x22, 0x1C, 0x22, 0x22, 0x1C, 0x00, // '8'
	0x1C, 0x22, 0x22, 0x1E, 0x02, 0x04, 0x18, 0x00, // '9'
	0x1C, 0x22, 0x02, 0x04, 0x08, 0x00, 0x08, 0x00, // '?'
	0x3E, 0x20, 0x20, 0x3C, 0x20, 0x20, 0x20, 0x00, // 'F'
	0x20, 0x20, 0x20, 0x20, 0x20, 0x20, 0x3E, 0x00, // 'L'
	0x22, 0x36, 0x2A, 0x2A, 0x22, 0x22, 0x22, 0x00, // 'M'
	0x3E, 0x08, 0x08, 0x08, 0x08, 0x08, 0x08, 0x00, // 'T'
}
