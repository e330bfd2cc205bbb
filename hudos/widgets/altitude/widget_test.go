package altitude

import (
	"errors"
	"sync"
	"testing"

	"hud/hudos/canvas"
	"hud/hudos/kernel"
	"hud/hudos/proto"
	"hud/hudos/services/home"
	"hud/hudos/services/telemetry"
	"hud/internal/config"
)

type fakeSched struct {
	mu    sync.Mutex
	marks int
}

func (s *fakeSched) MarkDirty(id kernel.WidgetID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == ID {
		s.marks++
	}
}

type fixedHome struct{ pos home.Position }

func (h fixedHome) Position() home.Position { return h.pos }

func gps(altMM int32) telemetry.Message {
	return telemetry.Message{
		Kind:    proto.MsgGPSRawInt,
		Payload: proto.GPSRawIntPayload(proto.GPSRawInt{Fix: proto.Fix3D, Satellites: 9, AltMM: altMM}),
	}
}

func newWidget(t *testing.T, cfg config.Widget, hs HomeSource) (*Widget, *telemetry.Feed, *canvas.Pool, *fakeSched) {
	t.Helper()
	feed := telemetry.NewFeed()
	pool := canvas.NewPool(2 * Width * Height)
	sched := &fakeSched{}
	w := New(feed, hs, pool, sched, nil)
	if err := w.Init(cfg); err != nil {
		t.Fatalf("Init() err = %v", err)
	}
	return w, feed, pool, sched
}

func TestScenarioMetricAbsolute(t *testing.T) {
	w, feed, _, sched := newWidget(t, config.Widget{Name: Name}, nil)
	feed.Publish(gps(12345))
	if got := w.Altitude(); got != 12 {
		t.Fatalf("Altitude() = %d, want 12", got)
	}
	if w.rng != 100 {
		t.Fatalf("range = %d, want 100", w.rng)
	}
	if sched.marks != 1 {
		t.Fatalf("MarkDirty calls = %d, want 1", sched.marks)
	}
}

func TestScenarioImperialAbsolute(t *testing.T) {
	w, feed, _, _ := newWidget(t, config.Widget{Name: Name, Units: config.UnitsImperial}, nil)
	feed.Publish(gps(1000))
	if got := w.Altitude(); got != 3 {
		t.Fatalf("Altitude() = %d, want 3", got)
	}
	if w.rng != 500 {
		t.Fatalf("range = %d, want 500", w.rng)
	}
}

func TestScenarioHomeRelative(t *testing.T) {
	hs := fixedHome{pos: home.Position{Altitude: 50, Lock: home.Locked}}
	w, feed, _, _ := newWidget(t, config.Widget{Name: Name, Mode: config.ModeHomeRelative}, hs)
	for _, alt := range []int32{0, 87000, -3000} {
		feed.Publish(gps(alt))
		if got := w.Altitude(); got != 50 {
			t.Fatalf("Altitude() after raw %d = %d, want 50", alt, got)
		}
	}
}

func TestHomeRelativeUnlockedReadsZero(t *testing.T) {
	hs := fixedHome{pos: home.Position{Altitude: 50, Lock: home.Unlocked}}
	w, feed, _, _ := newWidget(t, config.Widget{Name: Name, Mode: config.ModeHomeRelative}, hs)
	feed.Publish(gps(120000))
	if got := w.Altitude(); got != 0 {
		t.Fatalf("Altitude() = %d, want 0", got)
	}
}

func TestHandlerToleratesShortPayload(t *testing.T) {
	w, feed, _, sched := newWidget(t, config.Widget{Name: Name}, nil)
	feed.Publish(gps(40000))
	feed.Publish(telemetry.Message{Kind: proto.MsgGPSRawInt})
	if got := w.Altitude(); got != 0 {
		t.Fatalf("Altitude() = %d, want 0", got)
	}
	if sched.marks != 2 {
		t.Fatalf("MarkDirty calls = %d, want 2", sched.marks)
	}
}

func TestRangeFixedUntilReinit(t *testing.T) {
	w, _, pool, _ := newWidget(t, config.Widget{Name: Name}, nil)
	used := pool.Used()
	if err := w.Init(config.Widget{Name: Name, Units: config.UnitsImperial}); err != nil {
		t.Fatal(err)
	}
	if w.rng != 500 {
		t.Fatalf("range after reinit = %d, want 500", w.rng)
	}
	if pool.Used() != used {
		t.Fatalf("reinit allocated another canvas: used %d -> %d", used, pool.Used())
	}
}

func TestReinitReplacesSubscription(t *testing.T) {
	w, feed, _, sched := newWidget(t, config.Widget{Name: Name}, nil)
	if err := w.Init(config.Widget{Name: Name}); err != nil {
		t.Fatal(err)
	}
	feed.Publish(gps(5000))
	if sched.marks != 1 {
		t.Fatalf("MarkDirty calls = %d, want 1", sched.marks)
	}
	w.Close()
	feed.Publish(gps(6000))
	if sched.marks != 1 || w.Altitude() != 5 {
		t.Fatalf("handler ran after Close: marks %d alt %d", sched.marks, w.Altitude())
	}
}

func TestInitFailsWithoutCanvasMemory(t *testing.T) {
	w := New(telemetry.NewFeed(), nil, canvas.NewPool(100), &fakeSched{}, nil)
	if err := w.Init(config.Widget{Name: Name}); !errors.Is(err, canvas.ErrNoMemory) {
		t.Fatalf("Init() err = %v, want ErrNoMemory", err)
	}
	if err := w.Render(); err == nil {
		t.Fatal("Render() before a successful Init err = nil")
	}
}

func takeFrame(t *testing.T, pool *canvas.Pool) []canvas.Color {
	t.Helper()
	f, ok := pool.Canvases()[0].Take()
	if !ok {
		t.Fatal("Take() ok = false, want a pending frame")
	}
	return append([]canvas.Color(nil), f.Pix...)
}

func TestRenderIdempotent(t *testing.T) {
	w, feed, pool, _ := newWidget(t, config.Widget{Name: Name}, nil)
	feed.Publish(gps(12345))

	if err := w.Render(); err != nil {
		t.Fatalf("Render() err = %v", err)
	}
	first := takeFrame(t, pool)
	if err := w.Render(); err != nil {
		t.Fatalf("Render() err = %v", err)
	}
	second := takeFrame(t, pool)

	if len(first) != Width*Height {
		t.Fatalf("frame size = %d, want %d", len(first), Width*Height)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("pixel %d,%d differs between renders: %s vs %s", i%Width, i/Width, first[i], second[i])
		}
	}
}

func TestRenderBusyDrawsNothing(t *testing.T) {
	w, feed, pool, _ := newWidget(t, config.Widget{Name: Name}, nil)
	feed.Publish(gps(12000))
	if err := w.Render(); err != nil {
		t.Fatal(err)
	}

	feed.Publish(gps(80000))
	if err := w.Render(); !errors.Is(err, canvas.ErrBusy) {
		t.Fatalf("Render() err = %v, want ErrBusy", err)
	}

	f := takeFrame(t, pool)
	want := canvas.NewBuffer(Width, Height)
	DrawTape(want, 12, 100)
	for i, c := range want.Pix() {
		if f[i] != c {
			t.Fatalf("pixel %d,%d = %s, want %s from the first render", i%Width, i/Width, f[i], c)
		}
	}
	if _, ok := pool.Canvases()[0].Take(); ok {
		t.Fatal("busy render left a pending frame")
	}
}

func TestRenderPixels(t *testing.T) {
	w, _, pool, _ := newWidget(t, config.Widget{Name: Name}, nil)
	if err := w.Render(); err != nil {
		t.Fatal(err)
	}
	f := takeFrame(t, pool)
	at := func(x, y int) canvas.Color { return f[y*Width+x] }

	checks := []struct {
		x, y int
		want canvas.Color
	}{
		{Width - 1, yCenter, canvas.White},
		{xCenter + 10, yCenter - 5, canvas.White},
		{Width - 1, yCenter + 5, canvas.White},
		{xCenter + 5, yCenter, canvas.White},
		{xCenter + 11, yCenter, canvas.Transparent},
		// tick 0 sits on the readout row at altitude 0
		{xCenter, yCenter + 1, canvas.White},
		{xCenter - 5, yCenter + 1, canvas.Black},
		{xCenter, yCenter, canvas.Black},
	}
	for _, c := range checks {
		if got := at(c.x, c.y); got != c.want {
			t.Fatalf("pixel (%d,%d) = %s, want %s", c.x, c.y, got, c.want)
		}
	}
}

func TestConcurrentUpdatesAndRenders(t *testing.T) {
	w, feed, pool, _ := newWidget(t, config.Widget{Name: Name}, nil)
	ca := pool.Canvases()[0]

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := int32(0); i < 2000; i++ {
			feed.Publish(gps(i * 1000))
		}
	}()
	for i := 0; i < 500; i++ {
		if err := w.Render(); err != nil && !errors.Is(err, canvas.ErrBusy) {
			t.Fatalf("Render() err = %v", err)
		}
		ca.Take()
	}
	<-done
	if got := w.Altitude(); got != 1999 {
		t.Fatalf("Altitude() = %d, want 1999", got)
	}
}
