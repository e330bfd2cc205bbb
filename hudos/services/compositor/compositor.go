// Package compositor blits finished widget canvases into the video frame.
package compositor

import (
	"image/color"
	"sync"

	"hud/hal"
	"hud/hudos/canvas"

	"tinygo.org/x/drivers"
)

// Background stands in for the camera image behind the overlay.
var Background = color.RGBA{R: 0x20, G: 0x30, B: 0x40, A: 0xFF}

// CanvasSource lists the canvases to composite.
type CanvasSource interface {
	Canvases() []*canvas.Canvas
}

// Stats counts compositor work.
type Stats struct {
	Composes uint64
	Frames   uint64
}

// Compositor keeps the most recent frame of every canvas and redraws them all
// on each Compose.
type Compositor struct {
	src CanvasSource
	bg  color.RGBA

	mu    sync.Mutex
	last  map[*canvas.Canvas]canvas.Frame
	stats Stats
}

func New(src CanvasSource) *Compositor {
	return &Compositor{
		src:  src,
		bg:   Background,
		last: make(map[*canvas.Canvas]canvas.Frame),
	}
}

// Compose collects pending frames, paints the frame buffer and presents it.
func (c *Compositor) Compose(fb hal.Framebuffer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	canvases := c.src.Canvases()
	for _, ca := range canvases {
		f, ok := ca.Take()
		if !ok {
			continue
		}
		prev := c.last[ca]
		f.Pix = append(prev.Pix[:0], f.Pix...)
		c.last[ca] = f
		c.stats.Frames++
	}

	fb.ClearRGB(c.bg.R, c.bg.G, c.bg.B)
	d := newFBDisplay(fb)
	for _, ca := range canvases {
		f, ok := c.last[ca]
		if !ok {
			continue
		}
		blit(d, f)
	}
	c.stats.Composes++
	return d.Display()
}

func (c *Compositor) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func blit(d drivers.Displayer, f canvas.Frame) {
	for y := 0; y < f.H; y++ {
		row := f.Pix[y*f.W : (y+1)*f.W]
		for x, px := range row {
			if px == canvas.Transparent {
				continue
			}
			d.SetPixel(int16(f.X+x), int16(f.Y+y), px.ToRGBA())
		}
	}
}
