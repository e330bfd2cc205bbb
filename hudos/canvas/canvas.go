package canvas

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrBusy is returned by Acquire while a frame is being drawn or the last
	// submitted frame has not been taken by the compositor yet.
	ErrBusy = errors.New("canvas: busy")

	// ErrNoMemory is returned by Pool.Alloc when the byte budget is exhausted.
	ErrNoMemory = errors.New("canvas: out of memory")

	// ErrNotAcquired is returned by Submit for a buffer that is not the current acquisition.
	ErrNotAcquired = errors.New("canvas: buffer not acquired")
)

// Pool hands out canvases from a fixed pixel budget, the way the overlay
// hardware carves widget canvases out of one shared memory block.
type Pool struct {
	mu       sync.Mutex
	budget   int
	used     int
	canvases []*Canvas
}

// NewPool creates a pool that can hold budget bytes of pixel storage.
func NewPool(budget int) *Pool {
	return &Pool{budget: budget}
}

// Alloc reserves a double-buffered w x h canvas positioned at (x, y) on screen.
func (p *Pool) Alloc(x, y, w, h int) (*Canvas, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("canvas: invalid size %dx%d", w, h)
	}
	need := 2 * w * h

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.used+need > p.budget {
		return nil, fmt.Errorf("canvas: alloc %dx%d (%d bytes, %d free): %w", w, h, need, p.budget-p.used, ErrNoMemory)
	}
	p.used += need

	c := &Canvas{x: x, y: y, w: w, h: h}
	for i := range c.bufs {
		c.bufs[i] = Buffer{w: w, h: h, pix: make([]Color, w*h)}
	}
	p.canvases = append(p.canvases, c)
	return c, nil
}

// Used returns the number of bytes allocated so far.
func (p *Pool) Used() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.used
}

// Canvases returns the allocated canvases in allocation order.
func (p *Pool) Canvases() []*Canvas {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Canvas, len(p.canvases))
	copy(out, p.canvases)
	return out
}

// Frame is a finished canvas image handed to the compositor.
//
// Pix aliases canvas memory and stays valid until the canvas is acquired twice more.
type Frame struct {
	X, Y int
	W, H int
	Pix  []Color
}

// Canvas is a double-buffered drawing surface owned by one widget.
type Canvas struct {
	x, y int
	w, h int

	mu       sync.Mutex
	bufs     [2]Buffer
	back     int
	acquired bool
	pending  bool
}

func (c *Canvas) X() int      { return c.x }
func (c *Canvas) Y() int      { return c.y }
func (c *Canvas) Width() int  { return c.w }
func (c *Canvas) Height() int { return c.h }

// Acquire returns the cleared back buffer for exclusive drawing.
func (c *Canvas) Acquire() (*Buffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.acquired || c.pending {
		return nil, ErrBusy
	}
	c.acquired = true
	b := &c.bufs[c.back]
	b.Clear()
	return b, nil
}

// Submit hands the acquired buffer to the compositor and releases it.
func (c *Canvas) Submit(b *Buffer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.acquired || b != &c.bufs[c.back] {
		return ErrNotAcquired
	}
	c.acquired = false
	c.pending = true
	c.back = 1 - c.back
	return nil
}

// Take returns the pending frame, if any, and frees the slot for the next render.
func (c *Canvas) Take() (Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pending {
		return Frame{}, false
	}
	c.pending = false
	front := &c.bufs[1-c.back]
	return Frame{X: c.x, Y: c.y, W: c.w, H: c.h, Pix: front.pix}, true
}
