package home

import (
	"log/slog"
	"sync"

	"hud/hudos/proto"
	"hud/hudos/services/telemetry"
	"hud/internal/log"
)

// Lock reports whether a home position has been captured.
type Lock uint8

const (
	Unlocked Lock = iota
	Locked
)

func (l Lock) String() string {
	if l == Locked {
		return "locked"
	}
	return "unlocked"
}

// Position is a read-only snapshot of the home reference.
//
// Altitude is the current GPS altitude relative to home, in meters. It is only
// meaningful while Lock is Locked.
type Position struct {
	Altitude float64
	Lock     Lock
}

// Config controls when home locks.
type Config struct {
	MinFixes int
	MinSats  int
}

// Subscriber is the part of the telemetry feed the tracker needs.
type Subscriber interface {
	Subscribe(kind proto.Kind, h telemetry.Handler) (cancel func())
}

// Tracker captures the home altitude after a run of good GPS fixes and then
// reports altitude relative to it.
type Tracker struct {
	cfg Config
	log *slog.Logger

	mu        sync.Mutex
	good      int
	lock      Lock
	homeAltMM int32
	lastAltMM int32
}

func New(cfg Config, logger *slog.Logger) *Tracker {
	if cfg.MinFixes <= 0 {
		cfg.MinFixes = 1
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Tracker{cfg: cfg, log: logger}
}

// Attach subscribes the tracker to GPS reports on feed.
func (t *Tracker) Attach(feed Subscriber) (cancel func()) {
	return feed.Subscribe(proto.MsgGPSRawInt, func(msg telemetry.Message) {
		m, ok := proto.DecodeGPSRawInt(msg.Payload)
		if !ok {
			return
		}
		t.Update(m)
	})
}

// Update feeds one GPS report into the tracker.
func (t *Tracker) Update(m proto.GPSRawInt) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastAltMM = m.AltMM
	if t.lock == Locked {
		return
	}
	if m.Fix < proto.Fix3D || int(m.Satellites) < t.cfg.MinSats {
		t.good = 0
		return
	}
	t.good++
	if t.good < t.cfg.MinFixes {
		return
	}
	t.lock = Locked
	t.homeAltMM = m.AltMM
	t.log.Info("home locked", slog.Float64("alt_m", float64(m.AltMM)/1000), slog.Int("sats", int(m.Satellites)))
}

// Position returns the current home snapshot.
func (t *Tracker) Position() Position {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lock != Locked {
		return Position{Lock: Unlocked}
	}
	return Position{
		Altitude: float64(t.lastAltMM-t.homeAltMM) / 1000,
		Lock:     Locked,
	}
}

// Reset drops the home lock; the next run of good fixes captures a new home.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lock == Locked {
		t.log.Info("home reset")
	}
	t.lock = Unlocked
	t.good = 0
	t.homeAltMM = 0
}
