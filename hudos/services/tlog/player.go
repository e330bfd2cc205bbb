package tlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hud/hudos/services/telemetry"
	"hud/internal/log"
)

// Sleeper waits between records.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realSleeper struct{}

func (realSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Player is a telemetry source that replays records with their original spacing.
//
// Speed 1 is real time, 2 is twice as fast.
type Player struct {
	Records []Record
	Speed   float64
	Loop    bool
	Sleeper Sleeper
	Log     *slog.Logger
}

var _ telemetry.Source = (*Player)(nil)

// Run publishes the records until they run out (without Loop) or ctx is done.
func (p *Player) Run(ctx context.Context, pub telemetry.Publisher) error {
	if p.Speed <= 0 {
		return fmt.Errorf("tlog: speed must be > 0, got %v", p.Speed)
	}
	if len(p.Records) == 0 {
		return errors.New("tlog: no records to replay")
	}
	sl := p.Sleeper
	if sl == nil {
		sl = realSleeper{}
	}
	logger := p.Log
	if logger == nil {
		logger = log.Discard()
	}
	logger.Info("replay started", slog.Int("records", len(p.Records)), slog.Float64("speed", p.Speed), slog.Bool("loop", p.Loop))

	for pass := 1; ; pass++ {
		last := p.Records[0].At
		for _, rec := range p.Records {
			if wait := time.Duration(float64(rec.At-last) / p.Speed); wait > 0 {
				if err := sl.Sleep(ctx, wait); err != nil {
					return nil
				}
			}
			if ctx.Err() != nil {
				return nil
			}
			pub.Publish(rec.Message())
			last = rec.At
		}
		if !p.Loop {
			logger.Info("replay finished", slog.Int("passes", pass))
			return nil
		}
	}
}
