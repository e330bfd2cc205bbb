// Package tlog reads and writes telemetry logs.
//
// A log is a zstd stream holding a msgpack Header followed by msgpack Records.
// Record times are relative to the start of the recording.
package tlog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"hud/hudos/proto"
	"hud/hudos/services/telemetry"
)

const (
	Magic   = "hudtlog"
	Version = 1

	// Ext is the conventional file extension.
	Ext = ".tlog.zst"
)

var (
	ErrBadHeader = errors.New("tlog: not a telemetry log")
	ErrClosed    = errors.New("tlog: writer is closed")
)

type Header struct {
	Magic   string    `msgpack:"magic"`
	Version int       `msgpack:"version"`
	Created time.Time `msgpack:"created"`
}

// Record is one telemetry message and when it arrived.
type Record struct {
	At      time.Duration `msgpack:"at"`
	Kind    proto.Kind    `msgpack:"kind"`
	Payload []byte        `msgpack:"payload"`
}

func (r Record) Message() telemetry.Message {
	return telemetry.Message{Kind: r.Kind, Payload: r.Payload}
}

type Writer struct {
	mu     sync.Mutex
	zw     *zstd.Encoder
	enc    *msgpack.Encoder
	closer io.Closer
	n      int
	closed bool
}

// NewWriter starts a log on w and writes its header.
func NewWriter(w io.Writer, created time.Time) (*Writer, error) {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("tlog: zstd writer: %w", err)
	}
	enc := msgpack.NewEncoder(zw)
	enc.UseCompactInts(true)
	if err := enc.Encode(Header{Magic: Magic, Version: Version, Created: created.UTC()}); err != nil {
		zw.Close()
		return nil, fmt.Errorf("tlog: write header: %w", err)
	}
	return &Writer{zw: zw, enc: enc}, nil
}

// Create writes a new log file at path, replacing any existing file.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(f, time.Now())
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

func (w *Writer) Write(r Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if r.At < 0 {
		r.At = 0
	}
	if err := w.enc.Encode(&r); err != nil {
		return fmt.Errorf("tlog: write record: %w", err)
	}
	w.n++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}

// Flush pushes buffered records through the compressor.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	return w.zw.Flush()
}

// Close finishes the zstd stream and closes the underlying file, if any.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.zw.Close()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("tlog: close: %w", err)
	}
	return nil
}

type Reader struct {
	zr     *zstd.Decoder
	dec    *msgpack.Decoder
	closer io.Closer
	hdr    Header
}

// NewReader opens a log stream and checks its header.
func NewReader(r io.Reader) (*Reader, error) {
	zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("tlog: zstd reader: %w", err)
	}
	dec := msgpack.NewDecoder(zr)
	var hdr Header
	if err := dec.Decode(&hdr); err != nil {
		zr.Close()
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if hdr.Magic != Magic {
		zr.Close()
		return nil, fmt.Errorf("%w: magic %q", ErrBadHeader, hdr.Magic)
	}
	if hdr.Version != Version {
		zr.Close()
		return nil, fmt.Errorf("tlog: unsupported version %d", hdr.Version)
	}
	return &Reader{zr: zr, dec: dec, hdr: hdr}, nil
}

// Open reads the log file at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.closer = f
	return r, nil
}

func (r *Reader) Header() Header { return r.hdr }

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("tlog: read record: %w", err)
	}
	return rec, nil
}

// ReadAll returns every remaining record.
func (r *Reader) ReadAll() ([]Record, error) {
	var recs []Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return recs, nil
		}
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
}

func (r *Reader) Close() error {
	r.zr.Close()
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Load reads a whole log file into memory.
func Load(path string) ([]Record, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.ReadAll()
}
