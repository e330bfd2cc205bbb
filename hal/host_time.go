//go:build !tinygo

package hal

import "time"

// hostTick is the host tick period.
const hostTick = time.Millisecond

// hostTime turns wall-clock progress between frames into a monotonic tick
// sequence. Ticks are dropped, not queued, when nobody drains the channel.
type hostTime struct {
	ch      chan uint64
	seq     uint64
	dropped uint64

	last time.Time
	acc  time.Duration
	now  func() time.Time
}

func newHostTime() *hostTime {
	return &hostTime{ch: make(chan uint64, 1024), now: time.Now}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

// step is called once per frame. The first call emits n ticks; later calls emit
// one tick per elapsed hostTick.
func (t *hostTime) step(n uint64) {
	now := t.now()
	if t.last.IsZero() {
		t.last = now
		t.emit(n)
		return
	}

	t.acc += now.Sub(t.last)
	t.last = now
	if ticks := uint64(t.acc / hostTick); ticks > 0 {
		t.acc %= hostTick
		t.emit(ticks)
	}
}

func (t *hostTime) emit(n uint64) {
	for i := uint64(0); i < n; i++ {
		t.seq++
		select {
		case t.ch <- t.seq:
		default:
			t.dropped++
		}
	}
}
