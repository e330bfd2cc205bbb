// Package altitude implements the scrolling altitude tape instrument.
package altitude

import (
	"fmt"
	"log/slog"
	"sync"

	"hud/hudos/canvas"
	"hud/hudos/kernel"
	"hud/hudos/proto"
	"hud/hudos/services/home"
	"hud/hudos/services/telemetry"
	"hud/internal/config"
	"hud/internal/log"
)

const (
	ID   kernel.WidgetID = 1
	Name                 = "altitude"
)

// Subscriber is the part of the telemetry feed the widget listens on.
type Subscriber interface {
	Subscribe(kind proto.Kind, h telemetry.Handler) (cancel func())
}

// HomeSource supplies the home reference for home-relative mode.
type HomeSource interface {
	Position() home.Position
}

// Surface allocates the widget canvas.
type Surface interface {
	Alloc(x, y, w, h int) (*canvas.Canvas, error)
}

// Scheduler is notified when the widget has something new to draw.
type Scheduler interface {
	MarkDirty(id kernel.WidgetID)
}

// Widget is the altitude tape. It is safe to deliver telemetry while the
// kernel renders it.
type Widget struct {
	feed  Subscriber
	home  HomeSource
	pool  Surface
	sched Scheduler
	log   *slog.Logger

	mu     sync.Mutex
	cfg    config.Widget
	rng    int
	ca     *canvas.Canvas
	cancel func()

	st state
}

var _ kernel.Widget = (*Widget)(nil)

func New(feed Subscriber, hs HomeSource, pool Surface, sched Scheduler, logger *slog.Logger) *Widget {
	if logger == nil {
		logger = log.Discard()
	}
	return &Widget{
		feed:  feed,
		home:  hs,
		pool:  pool,
		sched: sched,
		log:   logger.With(slog.String("widget", Name)),
	}
}

func (w *Widget) ID() kernel.WidgetID { return ID }
func (w *Widget) Name() string        { return Name }

// Init fixes the tape span from cfg.Units, allocates the canvas on first use and
// subscribes to GPS telemetry. Calling Init again replaces the configuration and
// the subscription; the canvas keeps its original position.
func (w *Widget) Init(cfg config.Widget) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ca == nil {
		ca, err := w.pool.Alloc(cfg.X, cfg.Y, Width, Height)
		if err != nil {
			return fmt.Errorf("altitude: %w", err)
		}
		w.ca = ca
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.cfg = cfg
	w.rng = Range(cfg.Units)
	w.st.store(0)
	w.cancel = w.feed.Subscribe(proto.MsgGPSRawInt, w.handle)
	w.log.Debug("tape configured", slog.Int("range", w.rng))
	return nil
}

// handle is the telemetry update handler.
func (w *Widget) handle(msg telemetry.Message) {
	w.mu.Lock()
	cfg := w.cfg
	w.mu.Unlock()

	raw, _ := proto.DecodeAltitude(msg.Payload)
	var hp home.Position
	if cfg.Mode == config.ModeHomeRelative && w.home != nil {
		hp = w.home.Position()
	}
	w.st.store(int(Altitude(cfg, raw, hp)))
	w.sched.MarkDirty(ID)
}

// Altitude returns the value currently shown on the readout.
func (w *Widget) Altitude() int {
	return w.st.load()
}

// Render redraws the whole tape. It returns canvas.ErrBusy without drawing
// anything while the previous frame is still waiting for the compositor.
func (w *Widget) Render() error {
	w.mu.Lock()
	ca, rng := w.ca, w.rng
	w.mu.Unlock()
	if ca == nil {
		return fmt.Errorf("altitude: render before init")
	}

	buf, err := ca.Acquire()
	if err != nil {
		return err
	}
	DrawTape(buf, w.st.load(), rng)
	return ca.Submit(buf)
}

// Close drops the telemetry subscription.
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}
