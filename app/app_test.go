package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"hud/hal"
	"hud/hudos/kernel"
	"hud/hudos/proto"
	"hud/hudos/services/tlog"
	"hud/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Telemetry.RateHz = 200
	return cfg
}

func stepUntil(t *testing.T, s *System, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timeout waiting for condition")
		}
		if err := s.Step(); err != nil {
			t.Fatalf("Step() err = %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestSystemRendersAltitudeTape(t *testing.T) {
	h := hal.New(hal.Screen{})
	s, err := New(context.Background(), h, testConfig(t), nil)
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}
	defer s.Close()

	stepUntil(t, s, func() bool {
		st, _ := s.Kernel().Stats("altitude")
		return st.Renders >= 2
	})
	if err := s.Step(); err != nil {
		t.Fatal(err)
	}

	fb := h.Display().Framebuffer()
	buf := fb.Buffer()
	// right border of the readout box, in screen coordinates
	x, y := 300+47, 94+49
	off := y*fb.StrideBytes() + x*2
	if p := uint16(buf[off]) | uint16(buf[off+1])<<8; p != 0xFFFF {
		t.Fatalf("fb(%d,%d) = %#04x, want white", x, y, p)
	}
}

func TestSystemRejectsUnknownWidget(t *testing.T) {
	cfg := testConfig(t)
	cfg.Widgets = append(cfg.Widgets, config.Widget{Name: "airspeed"})
	_, err := New(context.Background(), hal.New(hal.Screen{}), cfg, nil)
	if !errors.Is(err, kernel.ErrUnknownWidget) {
		t.Fatalf("New() err = %v, want ErrUnknownWidget", err)
	}
}

func TestSystemReplayMissingFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.Source = config.SourceReplay
	cfg.Telemetry.ReplayPath = filepath.Join(t.TempDir(), "missing"+tlog.Ext)
	if _, err := New(context.Background(), hal.New(hal.Screen{}), cfg, nil); err == nil {
		t.Fatal("New() err = nil for missing replay file")
	}
}

func TestSystemRecordsAndReplays(t *testing.T) {
	dir := t.TempDir()
	recPath := filepath.Join(dir, "rec"+tlog.Ext)

	cfg := testConfig(t)
	cfg.Telemetry.RecordPath = recPath
	s, err := New(context.Background(), hal.New(hal.Screen{}), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	stepUntil(t, s, func() bool { return s.Feed().Stats().Published >= 10 })
	if err := s.Close(); err != nil {
		t.Fatalf("Close() err = %v", err)
	}

	recs, err := tlog.Load(recPath)
	if err != nil {
		t.Fatalf("tlog.Load() err = %v", err)
	}
	if len(recs) < 10 {
		t.Fatalf("recorded %d records, want >= 10", len(recs))
	}
	for _, r := range recs {
		if r.Kind != proto.MsgGPSRawInt && r.Kind != proto.MsgHeartbeat {
			t.Fatalf("unexpected record kind %v", r.Kind)
		}
	}

	cfg = testConfig(t)
	cfg.Telemetry.Source = config.SourceReplay
	cfg.Telemetry.ReplayPath = recPath
	cfg.Telemetry.Speed = 50
	rs, err := New(context.Background(), hal.New(hal.Screen{}), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer rs.Close()
	stepUntil(t, rs, func() bool { return rs.Feed().Stats().Published >= uint64(len(recs)) })
	// an exhausted replay is not an error
	if err := rs.Step(); err != nil {
		t.Fatalf("Step() after replay err = %v", err)
	}
}
