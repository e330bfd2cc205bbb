package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"hud/hudos/proto"
	"hud/hudos/services/gpssim"
	"hud/hudos/services/tlog"
	"hud/internal/config"
)

func main() {
	var (
		inPath  = flag.String("in", "", "Input log (dump mode).")
		outPath = flag.String("out", "", "Output log (gen mode).")
		mode    = flag.String("mode", "gen", "gen|dump.")
		dur     = flag.Duration("dur", 60*time.Second, "Simulated duration (gen mode).")
		rate    = flag.Int("rate", 5, "GPS reports per second (gen mode).")
		base    = flag.Float64("base", 120, "Base altitude in meters (gen mode).")
		amp     = flag.Float64("amp", 40, "Altitude swing in meters (gen mode).")
		period  = flag.Duration("period", 60*time.Second, "Altitude cycle period (gen mode).")
	)
	flag.Parse()

	switch strings.ToLower(*mode) {
	case "gen":
		if *outPath == "" {
			fatalf("usage: mktlog -mode gen -out out%s [-dur 60s] [-rate 5] [-base 120] [-amp 40] [-period 60s]", tlog.Ext)
		}
		sc := config.SimConfig{BaseAltM: *base, AmplitudeM: *amp, Period: *period, Sats: 10}
		tc := config.TelemetryConfig{RateHz: *rate}
		n, err := generate(*outPath, gpssim.FromConfig(sc, tc, nil), *dur, *rate)
		if err != nil {
			fatalf("gen: %v", err)
		}
		fmt.Printf("wrote %d records to %s\n", n, *outPath)
	case "dump":
		if *inPath == "" {
			fatalf("usage: mktlog -mode dump -in in%s", tlog.Ext)
		}
		if err := dump(*inPath, os.Stdout); err != nil {
			fatalf("dump: %v", err)
		}
	default:
		fatalf("unknown mode: %s", *mode)
	}
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

func generate(path string, sim *gpssim.Sim, dur time.Duration, rate int) (int, error) {
	if rate <= 0 || rate > 1000 {
		return 0, fmt.Errorf("rate out of range: %d", rate)
	}
	if dur <= 0 {
		return 0, fmt.Errorf("duration must be > 0")
	}
	w, err := tlog.Create(path)
	if err != nil {
		return 0, err
	}
	step := time.Second / time.Duration(rate)
	n := 0
	for at := time.Duration(0); at < dur; at += step {
		rec := tlog.Record{At: at, Kind: proto.MsgGPSRawInt, Payload: proto.GPSRawIntPayload(sim.Sample(at))}
		if err := w.Write(rec); err != nil {
			_ = w.Close()
			return n, err
		}
		n++
		if at%time.Second == 0 {
			if err := w.Write(tlog.Record{At: at, Kind: proto.MsgHeartbeat}); err != nil {
				_ = w.Close()
				return n, err
			}
			n++
		}
	}
	return n, w.Close()
}

func dump(path string, out io.Writer) error {
	r, err := tlog.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	bw := bufio.NewWriter(out)
	defer bw.Flush()

	h := r.Header()
	fmt.Fprintf(bw, "# %s v%d created %s\n", h.Magic, h.Version, h.Created.Format(time.RFC3339))
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch rec.Kind {
		case proto.MsgGPSRawInt:
			m, ok := proto.DecodeGPSRawInt(rec.Payload)
			if !ok {
				fmt.Fprintf(bw, "%10.3f %-15s short payload (%d bytes)\n", rec.At.Seconds(), rec.Kind, len(rec.Payload))
				continue
			}
			fmt.Fprintf(bw, "%10.3f %-15s fix=%d sats=%d alt=%.3fm\n", rec.At.Seconds(), rec.Kind, m.Fix, m.Satellites, float64(m.AltMM)/1000)
		default:
			fmt.Fprintf(bw, "%10.3f %-15s %d bytes\n", rec.At.Seconds(), rec.Kind, len(rec.Payload))
		}
	}
}
