// Package gpssim is a deterministic GPS telemetry source for bench testing.
package gpssim

import (
	"context"
	"log/slog"
	"math"
	"time"

	"hud/hudos/proto"
	"hud/hudos/services/telemetry"
	"hud/internal/config"
	"hud/internal/log"
)

// Sim flies a sinusoidal altitude profile around BaseAltM.
type Sim struct {
	BaseAltM   float64
	AmplitudeM float64
	Period     time.Duration
	Sats       uint8
	RateHz     float64

	// Acquire is how long the receiver reports a 2D fix before going 3D.
	Acquire time.Duration

	LatDeg float64
	LonDeg float64

	Log *slog.Logger
}

// FromConfig builds a simulator from the sim and telemetry sections.
func FromConfig(sc config.SimConfig, tc config.TelemetryConfig, logger *slog.Logger) *Sim {
	return &Sim{
		BaseAltM:   sc.BaseAltM,
		AmplitudeM: sc.AmplitudeM,
		Period:     sc.Period,
		Sats:       uint8(sc.Sats),
		RateHz:     float64(tc.RateHz),
		Acquire:    2 * time.Second,
		LatDeg:     45.0,
		LonDeg:     7.0,
		Log:        logger,
	}
}

// Sample returns the GPS report at elapsed time t since the simulation started.
func (s *Sim) Sample(t time.Duration) proto.GPSRawInt {
	period := s.Period
	if period <= 0 {
		period = 60 * time.Second
	}
	phase := float64(t%period) / float64(period)
	alt := s.BaseAltM + s.AmplitudeM*math.Sin(2*math.Pi*phase)

	m := proto.GPSRawInt{
		Fix:        proto.Fix3D,
		Satellites: s.Sats,
		Lat:        int32(math.Round(s.LatDeg * 1e7)),
		Lon:        int32(math.Round(s.LonDeg * 1e7)),
		AltMM:      int32(math.Round(alt * 1000)),
	}
	if t < s.Acquire {
		m.Fix = proto.Fix2D
		m.Satellites = s.Sats / 2
	}
	return m
}

// Run publishes one sample per tick until ctx is done.
func (s *Sim) Run(ctx context.Context, pub telemetry.Publisher) error {
	rate := s.RateHz
	if rate <= 0 {
		rate = 5
	}
	logger := s.Log
	if logger == nil {
		logger = log.Discard()
	}
	interval := time.Duration(float64(time.Second) / rate)
	logger.Info("gps simulator started", slog.Float64("rate_hz", rate), slog.Float64("base_alt_m", s.BaseAltM))
	defer logger.Info("gps simulator stopped")

	tk := time.NewTicker(interval)
	defer tk.Stop()
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-tk.C:
			m := s.Sample(now.Sub(start))
			pub.Publish(telemetry.Message{Kind: proto.MsgGPSRawInt, Payload: proto.GPSRawIntPayload(m)})
		}
	}
}
