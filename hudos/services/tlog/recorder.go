package tlog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"hud/hudos/proto"
	"hud/hudos/services/telemetry"
	"hud/internal/log"
)

// Subscriber is the part of the telemetry feed the recorder listens on.
type Subscriber interface {
	Subscribe(kind proto.Kind, h telemetry.Handler) (cancel func())
}

// Recorder writes every message of the subscribed kinds to a Writer.
type Recorder struct {
	w     *Writer
	log   *slog.Logger
	now   func() time.Time
	start time.Time

	mu      sync.Mutex
	err     error
	cancels []func()
}

func NewRecorder(w *Writer, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = log.Discard()
	}
	r := &Recorder{w: w, log: logger, now: time.Now}
	r.start = r.now()
	return r
}

// Attach subscribes the recorder to kinds on feed.
func (r *Recorder) Attach(feed Subscriber, kinds ...proto.Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range kinds {
		r.cancels = append(r.cancels, feed.Subscribe(k, r.record))
	}
}

func (r *Recorder) record(msg telemetry.Message) {
	err := r.w.Write(Record{At: r.now().Sub(r.start), Kind: msg.Kind, Payload: msg.Payload})
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err == nil {
		r.err = err
		r.log.Warn("telemetry recording failed", slog.Any("err", err))
	}
}

// Err returns the first write error.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Run waits for ctx, then unsubscribes and closes the log.
func (r *Recorder) Run(ctx context.Context) error {
	<-ctx.Done()
	return r.Close()
}

// Close unsubscribes and closes the log. It returns the first write error, if any.
func (r *Recorder) Close() error {
	r.mu.Lock()
	cancels := r.cancels
	r.cancels = nil
	r.mu.Unlock()
	for _, c := range cancels {
		c()
	}

	cerr := r.w.Close()
	r.log.Info("telemetry recording closed", slog.Int("records", r.w.Count()))
	if err := r.Err(); err != nil {
		return err
	}
	return cerr
}
