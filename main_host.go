//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"hud/app"
	"hud/hal"
	"hud/internal/config"
	"hud/internal/log"
)

func main() {
	var (
		cfgPath  string
		headless bool
		hcfg     hal.HeadlessConfig
		logLevel string
		record   string
		replay   string
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config (defaults built in).")
	flag.BoolVar(&headless, "headless", false, "Run without a window.")
	flag.IntVar(&hcfg.Hz, "hz", 60, "Frame rate in headless mode.")
	flag.Uint64Var(&hcfg.Ticks, "ticks", 0, "Stop after N frames in headless mode (0 = run forever).")
	flag.StringVar(&logLevel, "log-level", "", "Override log level (debug|info|warn|error).")
	flag.StringVar(&record, "record", "", "Record telemetry to this .tlog.zst file.")
	flag.StringVar(&replay, "replay", "", "Replay telemetry from this .tlog.zst file instead of the simulator.")
	flag.Parse()

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			fatal(err)
		}
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if record != "" {
		cfg.Telemetry.RecordPath = record
	}
	if replay != "" {
		cfg.Telemetry.Source = config.SourceReplay
		cfg.Telemetry.ReplayPath = replay
	}
	if err := config.Validate(&cfg); err != nil {
		fatal(err)
	}

	logger, err := log.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var sys *app.System
	newApp := func(h hal.HAL) (hal.StepFunc, error) {
		s, err := app.New(ctx, h, cfg, logger)
		if err != nil {
			return nil, err
		}
		sys = s
		return s.Step, nil
	}
	screen := hal.Screen{Width: cfg.Display.Width, Height: cfg.Display.Height}

	if headless {
		hcfg.Screen = screen
		err = hal.RunHeadless(ctx, newApp, hcfg)
	} else {
		err = hal.RunWindow(screen, newApp)
	}
	if sys != nil {
		if cerr := sys.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("osd stopped", "err", err)
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
