//go:build !tinygo

package hal

type hostHAL struct {
	fb *hostFramebuffer
	t  *hostTime
}

// New returns a host HAL with a framebuffer of the given size.
func New(s Screen) HAL {
	return newHost(s)
}

func newHost(s Screen) *hostHAL {
	if s.Width <= 0 {
		s.Width = 360
	}
	if s.Height <= 0 {
		s.Height = 288
	}
	return &hostHAL{
		fb: newHostFramebuffer(s.Width, s.Height),
		t:  newHostTime(),
	}
}

func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Time() Time       { return h.t }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }
