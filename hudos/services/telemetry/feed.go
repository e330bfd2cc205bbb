package telemetry

import (
	"context"
	"sync"
	"sync/atomic"

	"hud/hudos/proto"
)

// Message is one decoded telemetry message.
type Message struct {
	Kind    proto.Kind
	Payload []byte
}

// Handler receives messages of the kind it subscribed to.
//
// Handlers run on the publisher's goroutine and must return promptly.
type Handler func(Message)

// Publisher accepts decoded messages from a telemetry source.
type Publisher interface {
	Publish(Message)
}

// Source produces telemetry until ctx is done or the source is exhausted.
type Source interface {
	Run(ctx context.Context, pub Publisher) error
}

// Stats counts feed traffic.
type Stats struct {
	Published uint64
	Delivered uint64
	Unrouted  uint64
}

type subscription struct {
	id uint64
	h  Handler
}

// Feed routes messages to subscribers by kind.
type Feed struct {
	mu     sync.RWMutex
	subs   map[proto.Kind][]subscription
	nextID uint64

	published atomic.Uint64
	delivered atomic.Uint64
	unrouted  atomic.Uint64
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[proto.Kind][]subscription)}
}

// Subscribe registers h for kind and returns a function that removes it.
func (f *Feed) Subscribe(kind proto.Kind, h Handler) (cancel func()) {
	if h == nil {
		return func() {}
	}
	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.subs[kind] = append(f.subs[kind], subscription{id: id, h: h})
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { f.unsubscribe(kind, id) })
	}
}

func (f *Feed) unsubscribe(kind proto.Kind, id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.subs[kind]
	for i, s := range list {
		if s.id != id {
			continue
		}
		next := make([]subscription, 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		f.subs[kind] = next
		return
	}
}

// Publish delivers msg to every handler subscribed to msg.Kind, in subscription order.
func (f *Feed) Publish(msg Message) {
	f.published.Add(1)

	f.mu.RLock()
	list := f.subs[msg.Kind]
	f.mu.RUnlock()

	if len(list) == 0 {
		f.unrouted.Add(1)
		return
	}
	for _, s := range list {
		s.h(msg)
		f.delivered.Add(1)
	}
}

func (f *Feed) Stats() Stats {
	return Stats{
		Published: f.published.Load(),
		Delivered: f.delivered.Load(),
		Unrouted:  f.unrouted.Load(),
	}
}
