package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Display   DisplayConfig   `yaml:"display"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Sim       SimConfig       `yaml:"sim"`
	Home      HomeConfig      `yaml:"home"`
	Widgets   []Widget        `yaml:"widgets"`
}

type DisplayConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// CanvasBudget is the pixel memory (bytes) shared by all widget canvases.
	CanvasBudget int `yaml:"canvas_budget"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type TelemetryConfig struct {
	Source     string  `yaml:"source"`
	RateHz     int     `yaml:"rate_hz"`
	ReplayPath string  `yaml:"replay_path"`
	Speed      float64 `yaml:"speed"`
	Loop       bool    `yaml:"loop"`
	RecordPath string  `yaml:"record_path"`
}

const (
	SourceSim    = "sim"
	SourceReplay = "replay"
)

type SimConfig struct {
	BaseAltM   float64       `yaml:"base_alt_m"`
	AmplitudeM float64       `yaml:"amplitude_m"`
	Period     time.Duration `yaml:"period"`
	Sats       int           `yaml:"sats"`
}

type HomeConfig struct {
	MinFixes int `yaml:"min_fixes"`
	MinSats  int `yaml:"min_sats"`
}

// Widget places one instrument on screen and carries its display properties.
type Widget struct {
	Name  string       `yaml:"name"`
	X     int          `yaml:"x"`
	Y     int          `yaml:"y"`
	Mode  AltitudeMode `yaml:"mode"`
	Units Units        `yaml:"units"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg := Config{
		Widgets: []Widget{{Name: "altitude", X: 300, Y: 94}},
	}
	applyDefaults(&cfg)
	return cfg
}

// Load reads, defaults and validates a YAML config file.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(b)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML config bytes, applies defaults and validates the result.
func Parse(b []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Display.Width == 0 {
		cfg.Display.Width = 360
	}
	if cfg.Display.Height == 0 {
		cfg.Display.Height = 288
	}
	if cfg.Display.CanvasBudget == 0 {
		cfg.Display.CanvasBudget = 32 * 1024
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Telemetry.Source == "" {
		cfg.Telemetry.Source = SourceSim
	}
	if cfg.Telemetry.RateHz == 0 {
		cfg.Telemetry.RateHz = 5
	}
	if cfg.Telemetry.Speed == 0 {
		cfg.Telemetry.Speed = 1
	}
	if cfg.Sim.BaseAltM == 0 {
		cfg.Sim.BaseAltM = 120
	}
	if cfg.Sim.AmplitudeM == 0 {
		cfg.Sim.AmplitudeM = 40
	}
	if cfg.Sim.Period <= 0 {
		cfg.Sim.Period = 60 * time.Second
	}
	if cfg.Sim.Sats == 0 {
		cfg.Sim.Sats = 10
	}
	if cfg.Home.MinFixes == 0 {
		cfg.Home.MinFixes = 5
	}
	if cfg.Home.MinSats == 0 {
		cfg.Home.MinSats = 6
	}
}
