package compositor

import (
	"testing"

	"hud/hal"
	"hud/hudos/canvas"
)

type memFB struct {
	w, h     int
	buf      []byte
	presents int
}

func newMemFB(w, h int) *memFB { return &memFB{w: w, h: h, buf: make([]byte, w*h*2)} }

func (f *memFB) Width() int              { return f.w }
func (f *memFB) Height() int             { return f.h }
func (f *memFB) Format() hal.PixelFormat { return hal.PixelFormatRGB565 }
func (f *memFB) StrideBytes() int        { return f.w * 2 }
func (f *memFB) Buffer() []byte          { return f.buf }
func (f *memFB) Present() error          { f.presents++; return nil }

func (f *memFB) ClearRGB(r, g, b uint8) {
	p := hal.RGB565(r, g, b)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i], f.buf[i+1] = byte(p), byte(p>>8)
	}
}

func (f *memFB) at(x, y int) uint16 {
	off := y*f.w*2 + x*2
	return uint16(f.buf[off]) | uint16(f.buf[off+1])<<8
}

func TestComposeBlitsOpaquePixels(t *testing.T) {
	pool := canvas.NewPool(1024)
	ca, err := pool.Alloc(2, 1, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	buf, err := ca.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	buf.Pixel(0, 0, canvas.White)
	buf.Pixel(1, 1, canvas.Black)
	if err := ca.Submit(buf); err != nil {
		t.Fatal(err)
	}

	fb := newMemFB(8, 4)
	c := New(pool)
	if err := c.Compose(fb); err != nil {
		t.Fatalf("Compose() err = %v", err)
	}

	bg := hal.RGB565(Background.R, Background.G, Background.B)
	checks := []struct {
		x, y int
		want uint16
	}{
		{2, 1, 0xFFFF},
		{3, 2, 0x0000},
		{3, 1, bg},
		{0, 0, bg},
		{7, 3, bg},
	}
	for _, tt := range checks {
		if got := fb.at(tt.x, tt.y); got != tt.want {
			t.Fatalf("fb(%d,%d) = %#04x, want %#04x", tt.x, tt.y, got, tt.want)
		}
	}
	if fb.presents != 1 {
		t.Fatalf("presents = %d, want 1", fb.presents)
	}
	if _, err := ca.Acquire(); err != nil {
		t.Fatalf("Acquire() after Compose err = %v", err)
	}
}

func TestComposeKeepsLastFrame(t *testing.T) {
	pool := canvas.NewPool(1024)
	ca, _ := pool.Alloc(0, 0, 2, 2)
	buf, _ := ca.Acquire()
	buf.Pixel(1, 1, canvas.White)
	_ = ca.Submit(buf)

	fb := newMemFB(4, 4)
	c := New(pool)
	_ = c.Compose(fb)

	// A render in progress must not disturb the cached frame.
	buf, _ = ca.Acquire()
	buf.Pixel(0, 0, canvas.White)
	if err := c.Compose(fb); err != nil {
		t.Fatal(err)
	}
	if fb.at(1, 1) != 0xFFFF {
		t.Fatalf("fb(1,1) = %#04x, want last frame kept", fb.at(1, 1))
	}
	if fb.at(0, 0) == 0xFFFF {
		t.Fatal("unsubmitted pixel reached the frame")
	}
	st := c.Stats()
	if st.Composes != 2 || st.Frames != 1 {
		t.Fatalf("Stats() = %+v, want 2 composes 1 frame", st)
	}
}

func TestComposeClipsToFramebuffer(t *testing.T) {
	pool := canvas.NewPool(1024)
	ca, _ := pool.Alloc(3, 3, 4, 4)
	buf, _ := ca.Acquire()
	buf.FillRect(0, 0, 3, 3, canvas.White)
	_ = ca.Submit(buf)

	fb := newMemFB(5, 5)
	if err := New(pool).Compose(fb); err != nil {
		t.Fatal(err)
	}
	if fb.at(4, 4) != 0xFFFF || fb.at(2, 2) == 0xFFFF {
		t.Fatalf("clip: fb(4,4) = %#04x fb(2,2) = %#04x", fb.at(4, 4), fb.at(2, 2))
	}
}
