package altitude

import (
	"hud/hudos/services/home"
	"hud/internal/config"
)

const metersToFeet = 3.28084

// Tape spans five major divisions of four minor divisions each.
const (
	majorDivisions = 5
	minorDivisions = 4
)

// Range returns the visible tape span, in display units, for u.
func Range(u config.Units) int {
	switch u {
	case config.UnitsImperial:
		return 500
	default:
		return 100
	}
}

// Spacing returns the major and minor tick spacing for a tape of span rng.
func Spacing(rng int) (major, minor int) {
	major = rng / majorDivisions
	return major, major / minorDivisions
}

// Altitude converts the latest telemetry into the value the tape displays.
//
// rawAltMM is the GPS altitude in millimeters. In home-relative mode the home
// altitude is truncated to whole meters before unit conversion; an unlocked home
// reads as 0.
func Altitude(cfg config.Widget, rawAltMM int32, hp home.Position) float64 {
	var v float64
	switch cfg.Mode {
	case config.ModeHomeRelative:
		if hp.Lock == home.Locked {
			v = float64(int64(hp.Altitude))
		}
	default:
		v = float64(rawAltMM) / 1000.0
	}
	if cfg.Units == config.UnitsImperial {
		v *= metersToFeet
	}
	return v
}
