package hal

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is the final video frame the OSD is composited into, plus a
// "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer.
type Display interface {
	Framebuffer() Framebuffer
}

// Time provides a base tick stream.
//
// The tick duration is platform-defined; one tick per millisecond on the host.
type Time interface {
	Ticks() <-chan uint64
}

// HAL is the only contact point between the OSD and the outside world.
type HAL interface {
	Display() Display
	Time() Time
}

// Screen sizes the host framebuffer.
type Screen struct {
	Width  int
	Height int
}
