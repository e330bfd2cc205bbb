package kernel

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"hud/internal/config"
	"hud/internal/log"
)

// MaxWidgets bounds widget IDs so the dirty set fits one machine word.
const MaxWidgets = 64

// WidgetID identifies a widget kind. It doubles as the dirty-bit index.
type WidgetID uint8

// Widget is one on-screen instrument.
//
// Init is called once from the startup goroutine before telemetry flows. Render is
// called by the kernel when the widget is dirty; a non-nil error means "nothing was
// drawn, try again next step".
type Widget interface {
	ID() WidgetID
	Name() string
	Init(cfg config.Widget) error
	Render() error
}

var (
	ErrDuplicateWidget = errors.New("kernel: duplicate widget")
	ErrUnknownWidget   = errors.New("kernel: unknown widget")
	ErrWidgetID        = errors.New("kernel: widget id out of range")
)

// Stats describes one widget's render history.
type Stats struct {
	Enabled  bool
	Renders  uint64
	Failures uint64
	Panicked bool
}

type widgetState struct {
	w     Widget
	stats Stats
}

// Kernel is the widget registry plus a cooperative render scheduler.
//
// MarkDirty may be called from any goroutine. RunPending and Step serialize renders:
// at most one widget renders at a time.
type Kernel struct {
	log *slog.Logger

	mu      sync.Mutex
	widgets []widgetState
	byName  map[string]int
	byID    [MaxWidgets]bool
	rr      int

	dirty atomic.Uint64
}

// New creates a kernel instance.
func New(logger *slog.Logger) *Kernel {
	if logger == nil {
		logger = log.Discard()
	}
	return &Kernel{log: logger, byName: make(map[string]int)}
}

// Register adds w to the registry. Registered widgets stay disabled until Init.
func (k *Kernel) Register(w Widget) error {
	id := w.ID()
	if int(id) >= MaxWidgets {
		return fmt.Errorf("%w: %s id %d", ErrWidgetID, w.Name(), id)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.byID[id] {
		return fmt.Errorf("%w: id %d", ErrDuplicateWidget, id)
	}
	if _, ok := k.byName[w.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateWidget, w.Name())
	}
	k.byID[id] = true
	k.byName[w.Name()] = len(k.widgets)
	k.widgets = append(k.widgets, widgetState{w: w})
	k.log.Debug("widget registered", slog.String("widget", w.Name()), slog.Int("id", int(id)))
	return nil
}

// Init initializes and enables the widgets named in cfgs, in order.
func (k *Kernel) Init(cfgs []config.Widget) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, cfg := range cfgs {
		idx, ok := k.byName[cfg.Name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownWidget, cfg.Name)
		}
		st := &k.widgets[idx]
		if err := st.w.Init(cfg); err != nil {
			return fmt.Errorf("kernel: init %s: %w", cfg.Name, err)
		}
		st.stats.Enabled = true
		k.MarkDirty(st.w.ID())
		k.log.Info("widget enabled",
			slog.String("widget", cfg.Name),
			slog.Int("x", cfg.X), slog.Int("y", cfg.Y),
			slog.String("mode", cfg.Mode.String()),
			slog.String("units", cfg.Units.String()))
	}
	return nil
}

// MarkDirty requests a render of widget id. It never blocks; repeated calls before
// the next render collapse into one.
func (k *Kernel) MarkDirty(id WidgetID) {
	if int(id) >= MaxWidgets {
		return
	}
	k.markMask(1 << id)
}

func (k *Kernel) markMask(mask uint64) {
	if mask == 0 {
		return
	}
	for {
		old := k.dirty.Load()
		if old&mask == mask {
			return
		}
		if k.dirty.CompareAndSwap(old, old|mask) {
			return
		}
	}
}

// Dirty reports whether id has a render pending.
func (k *Kernel) Dirty(id WidgetID) bool {
	if int(id) >= MaxWidgets {
		return false
	}
	return k.dirty.Load()&(1<<id) != 0
}

// Step renders at most one dirty widget.
func (k *Kernel) Step() bool {
	return k.RunPending(1) > 0
}

// RunPending renders up to budget dirty widgets, round robin, and returns how many
// render attempts were made. Widgets whose render fails, and dirty widgets beyond the
// budget, stay dirty for the next call.
func (k *Kernel) RunPending(budget int) int {
	k.mu.Lock()
	defer k.mu.Unlock()

	pending := k.dirty.Swap(0)
	if pending == 0 || len(k.widgets) == 0 {
		return 0
	}

	var retry uint64
	n := 0
	count := len(k.widgets)
	start := k.rr
	for i := 0; i < count; i++ {
		idx := (start + i) % count
		st := &k.widgets[idx]
		bit := uint64(1) << st.w.ID()
		if pending&bit == 0 || !st.stats.Enabled {
			continue
		}
		if n >= budget {
			retry |= bit
			continue
		}
		n++
		k.rr = (idx + 1) % count
		if err := k.render(st); err != nil && st.stats.Enabled {
			retry |= bit
		}
	}
	k.markMask(retry)
	return n
}

func (k *Kernel) render(st *widgetState) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		st.stats.Enabled = false
		st.stats.Panicked = true
		st.stats.Failures++
		k.log.Error("widget panic, disabled",
			slog.String("widget", st.w.Name()),
			slog.String("panic", fmt.Sprint(r)),
			slog.String("stack", string(debug.Stack())))
		err = fmt.Errorf("kernel: %s panicked: %v", st.w.Name(), r)
	}()

	st.stats.Renders++
	if err := st.w.Render(); err != nil {
		st.stats.Failures++
		k.log.Debug("render deferred", slog.String("widget", st.w.Name()), slog.Any("err", err))
		return err
	}
	return nil
}

// Stats returns the render history of the named widget.
func (k *Kernel) Stats(name string) (Stats, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	idx, ok := k.byName[name]
	if !ok {
		return Stats{}, false
	}
	return k.widgets[idx].stats, true
}

// Widgets returns the registered widget names in registration order.
func (k *Kernel) Widgets() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	names := make([]string, 0, len(k.widgets))
	for _, st := range k.widgets {
		names = append(names, st.w.Name())
	}
	return names
}
