package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// AltitudeMode selects which altitude an instrument shows.
type AltitudeMode uint8

const (
	// ModeAbsolute shows raw GPS altitude above mean sea level.
	ModeAbsolute AltitudeMode = iota
	// ModeHomeRelative shows altitude relative to the locked home position.
	ModeHomeRelative
)

func (m AltitudeMode) String() string {
	switch m {
	case ModeAbsolute:
		return "absolute"
	case ModeHomeRelative:
		return "home"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

func (m *AltitudeMode) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "absolute", "gps":
		*m = ModeAbsolute
	case "home", "relative", "home_relative":
		*m = ModeHomeRelative
	default:
		return fmt.Errorf("line %d: unknown altitude mode %q", n.Line, s)
	}
	return nil
}

func (m AltitudeMode) MarshalYAML() (any, error) {
	return m.String(), nil
}

// Units selects the display unit system.
type Units uint8

const (
	UnitsMetric Units = iota
	UnitsImperial
)

func (u Units) String() string {
	switch u {
	case UnitsMetric:
		return "metric"
	case UnitsImperial:
		return "imperial"
	default:
		return fmt.Sprintf("units(%d)", uint8(u))
	}
}

func (u *Units) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "metric":
		*u = UnitsMetric
	case "imperial":
		*u = UnitsImperial
	default:
		return fmt.Errorf("line %d: unknown units %q", n.Line, s)
	}
	return nil
}

func (u Units) MarshalYAML() (any, error) {
	return u.String(), nil
}
