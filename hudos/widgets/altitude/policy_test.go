package altitude

import (
	"math"
	"testing"

	"hud/hudos/services/home"
	"hud/internal/config"
)

var allProps = []config.Widget{
	{Mode: config.ModeAbsolute, Units: config.UnitsMetric},
	{Mode: config.ModeAbsolute, Units: config.UnitsImperial},
	{Mode: config.ModeHomeRelative, Units: config.UnitsMetric},
	{Mode: config.ModeHomeRelative, Units: config.UnitsImperial},
}

func TestRangeDivisibleForAllProps(t *testing.T) {
	for _, cfg := range allProps {
		rng := Range(cfg.Units)
		if rng <= 0 || rng%20 != 0 {
			t.Fatalf("Range(%s) = %d, want positive multiple of 20", cfg.Units, rng)
		}
		major, minor := Spacing(rng)
		if major <= 0 || minor <= 0 || major%minor != 0 {
			t.Fatalf("Spacing(%d) = %d, %d", rng, major, minor)
		}
	}
}

func TestSpacingPresets(t *testing.T) {
	tests := []struct {
		units        config.Units
		rng          int
		major, minor int
	}{
		{config.UnitsMetric, 100, 20, 5},
		{config.UnitsImperial, 500, 100, 25},
	}
	for _, tt := range tests {
		rng := Range(tt.units)
		major, minor := Spacing(rng)
		if rng != tt.rng || major != tt.major || minor != tt.minor {
			t.Fatalf("%s: range %d spacing %d/%d, want %d %d/%d", tt.units, rng, major, minor, tt.rng, tt.major, tt.minor)
		}
	}
}

func TestAltitudeAbsolute(t *testing.T) {
	metric := config.Widget{Units: config.UnitsMetric}
	if got := int(Altitude(metric, 12345, home.Position{})); got != 12 {
		t.Fatalf("Altitude(12345mm, metric) = %d, want 12", got)
	}
	imperial := config.Widget{Units: config.UnitsImperial}
	if got := int(Altitude(imperial, 1000, home.Position{})); got != 3 {
		t.Fatalf("Altitude(1000mm, imperial) = %d, want 3", got)
	}
	if got := int(Altitude(metric, -1500, home.Position{})); got != -1 {
		t.Fatalf("Altitude(-1500mm, metric) = %d, want -1", got)
	}
}

func TestAltitudeHomeRelative(t *testing.T) {
	cfg := config.Widget{Mode: config.ModeHomeRelative}
	locked := home.Position{Altitude: 50.9, Lock: home.Locked}
	if got := Altitude(cfg, 999999, locked); got != 50 {
		t.Fatalf("Altitude(locked 50.9) = %v, want 50", got)
	}
	unlocked := home.Position{Altitude: 50, Lock: home.Unlocked}
	for _, raw := range []int32{0, 12345, -4000} {
		if got := Altitude(cfg, raw, unlocked); got != 0 {
			t.Fatalf("Altitude(unlocked, raw %d) = %v, want 0", raw, got)
		}
	}

	cfg.Units = config.UnitsImperial
	if got := int(Altitude(cfg, 0, home.Position{Altitude: 10.7, Lock: home.Locked})); got != 32 {
		t.Fatalf("Altitude(locked 10.7, imperial) = %d, want 32", got)
	}
}

func TestFeetRoundTrip(t *testing.T) {
	cfg := config.Widget{Units: config.UnitsImperial}
	for m := -2000; m <= 5000; m += 7 {
		ft := int(Altitude(cfg, int32(m*1000), home.Position{}))
		back := float64(ft) / metersToFeet
		if math.Abs(back-float64(m)) > 1 {
			t.Fatalf("%dm -> %dft -> %.3fm, off by more than one unit", m, ft, back)
		}
	}
}
