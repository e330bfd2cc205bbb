package config

import "fmt"

// Validate checks configuration correctness. It does not mutate cfg.
func Validate(cfg *Config) error {
	if cfg.Display.Width <= 0 || cfg.Display.Height <= 0 {
		return fmt.Errorf("display: size must be positive (got %dx%d)", cfg.Display.Width, cfg.Display.Height)
	}
	if cfg.Display.CanvasBudget <= 0 {
		return fmt.Errorf("display.canvas_budget must be > 0")
	}

	switch cfg.Telemetry.Source {
	case SourceSim:
	case SourceReplay:
		if cfg.Telemetry.ReplayPath == "" {
			return fmt.Errorf("telemetry.replay_path is required when telemetry.source is replay")
		}
	default:
		return fmt.Errorf("telemetry.source: unknown source %q", cfg.Telemetry.Source)
	}
	if cfg.Telemetry.RateHz < 0 {
		return fmt.Errorf("telemetry.rate_hz must be > 0")
	}
	if cfg.Telemetry.Speed < 0 {
		return fmt.Errorf("telemetry.speed must be > 0")
	}
	if cfg.Telemetry.Source == SourceReplay && cfg.Telemetry.RecordPath == cfg.Telemetry.ReplayPath {
		return fmt.Errorf("telemetry.record_path must differ from telemetry.replay_path")
	}

	if cfg.Sim.Sats < 0 || cfg.Sim.Sats > 255 {
		return fmt.Errorf("sim.sats out of range: %d", cfg.Sim.Sats)
	}
	if cfg.Home.MinFixes < 0 {
		return fmt.Errorf("home.min_fixes must be >= 0")
	}

	seen := make(map[string]bool, len(cfg.Widgets))
	for i, w := range cfg.Widgets {
		if w.Name == "" {
			return fmt.Errorf("widgets[%d]: name is required", i)
		}
		if seen[w.Name] {
			return fmt.Errorf("widgets[%d]: duplicate widget %q", i, w.Name)
		}
		seen[w.Name] = true
		if w.X < 0 || w.Y < 0 || w.X >= cfg.Display.Width || w.Y >= cfg.Display.Height {
			return fmt.Errorf("widget %q: position (%d,%d) outside %dx%d display", w.Name, w.X, w.Y, cfg.Display.Width, cfg.Display.Height)
		}
	}
	return nil
}
