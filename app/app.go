// Package app wires the OSD services and widgets together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"hud/hal"
	"hud/hudos/canvas"
	"hud/hudos/kernel"
	"hud/hudos/proto"
	"hud/hudos/services/compositor"
	"hud/hudos/services/gpssim"
	"hud/hudos/services/home"
	"hud/hudos/services/telemetry"
	"hud/hudos/services/tlog"
	"hud/hudos/widgets/altitude"
	"hud/internal/config"
	"hud/internal/log"
)

// ticksPerHeartbeat is one second of host ticks.
const ticksPerHeartbeat = 1000

// System is a running OSD: telemetry sources feeding widgets that are
// rendered and composited once per Step.
type System struct {
	log  *slog.Logger
	fb   hal.Framebuffer
	feed *telemetry.Feed
	home *home.Tracker
	pool *canvas.Pool
	k    *kernel.Kernel
	comp *compositor.Compositor

	cancel context.CancelFunc
	done   chan struct{}
	err    error
	frames uint64
}

// New builds the OSD on h and starts its telemetry sources. The sources stop
// when ctx is done or Close is called.
func New(ctx context.Context, h hal.HAL, cfg config.Config, logger *slog.Logger) (*System, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := config.Validate(&cfg); err != nil {
		return nil, err
	}
	disp := h.Display()
	if disp == nil || disp.Framebuffer() == nil {
		return nil, errors.New("app: no framebuffer")
	}

	s := &System{
		log:  logger,
		fb:   disp.Framebuffer(),
		feed: telemetry.NewFeed(),
		pool: canvas.NewPool(cfg.Display.CanvasBudget),
		k:    kernel.New(logger.With(slog.String("svc", "kernel"))),
		done: make(chan struct{}),
	}
	s.home = home.New(home.Config{MinFixes: cfg.Home.MinFixes, MinSats: cfg.Home.MinSats}, logger.With(slog.String("svc", "home")))
	s.home.Attach(s.feed)
	s.comp = compositor.New(s.pool)

	widgets := []kernel.Widget{
		altitude.New(s.feed, s.home, s.pool, s.k, logger),
	}
	for _, w := range widgets {
		if err := s.k.Register(w); err != nil {
			return nil, err
		}
	}
	if err := s.k.Init(cfg.Widgets); err != nil {
		return nil, err
	}

	src, err := newSource(cfg, logger)
	if err != nil {
		return nil, err
	}
	var rec *tlog.Recorder
	if cfg.Telemetry.RecordPath != "" {
		w, err := tlog.Create(cfg.Telemetry.RecordPath)
		if err != nil {
			return nil, fmt.Errorf("app: record: %w", err)
		}
		rec = tlog.NewRecorder(w, logger.With(slog.String("svc", "record")))
		rec.Attach(s.feed, proto.MsgGPSRawInt, proto.MsgHeartbeat)
	}

	ctx, s.cancel = context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return src.Run(gctx, s.feed) })
	if rec != nil {
		g.Go(func() error { return rec.Run(gctx) })
	}
	if t := h.Time(); t != nil && t.Ticks() != nil {
		g.Go(func() error { return s.heartbeat(gctx, t.Ticks()) })
	}
	go func() {
		s.err = g.Wait()
		close(s.done)
	}()

	logger.Info("osd started",
		slog.String("source", cfg.Telemetry.Source),
		slog.Int("widgets", len(cfg.Widgets)),
		slog.Int("canvas_bytes", s.pool.Used()))
	return s, nil
}

func newSource(cfg config.Config, logger *slog.Logger) (telemetry.Source, error) {
	switch cfg.Telemetry.Source {
	case config.SourceReplay:
		recs, err := tlog.Load(cfg.Telemetry.ReplayPath)
		if err != nil {
			return nil, fmt.Errorf("app: replay: %w", err)
		}
		return &tlog.Player{
			Records: recs,
			Speed:   cfg.Telemetry.Speed,
			Loop:    cfg.Telemetry.Loop,
			Log:     logger.With(slog.String("svc", "replay")),
		}, nil
	default:
		return gpssim.FromConfig(cfg.Sim, cfg.Telemetry, logger.With(slog.String("svc", "gpssim"))), nil
	}
}

// heartbeat publishes a MsgHeartbeat every second of host ticks.
func (s *System) heartbeat(ctx context.Context, ticks <-chan uint64) error {
	var next uint64 = ticksPerHeartbeat
	for {
		select {
		case <-ctx.Done():
			return nil
		case seq, ok := <-ticks:
			if !ok {
				return nil
			}
			if seq < next {
				continue
			}
			next = seq + ticksPerHeartbeat
			s.feed.Publish(telemetry.Message{Kind: proto.MsgHeartbeat})
		}
	}
}

// Step renders every dirty widget and composites one video frame. It returns
// the error of a failed telemetry source.
func (s *System) Step() error {
	select {
	case <-s.done:
		if s.err != nil {
			return fmt.Errorf("app: telemetry: %w", s.err)
		}
	default:
	}

	s.k.RunPending(kernel.MaxWidgets)
	if err := s.comp.Compose(s.fb); err != nil {
		return err
	}
	s.frames++
	if s.frames%600 == 0 {
		fs := s.feed.Stats()
		s.log.Debug("osd stats",
			slog.Uint64("frames", s.frames),
			slog.Uint64("published", fs.Published),
			slog.Uint64("unrouted", fs.Unrouted),
			slog.String("home", s.home.Position().Lock.String()))
	}
	return nil
}

// Close stops the telemetry sources and waits for them.
func (s *System) Close() error {
	s.cancel()
	<-s.done
	return s.err
}

func (s *System) Kernel() *kernel.Kernel { return s.k }

func (s *System) Home() home.Position { return s.home.Position() }

func (s *System) Feed() *telemetry.Feed { return s.feed }
