// Package eventbus is the single-producer, multi-subscriber broadcaster for
// chain events. Each subscriber owns an independent bounded queue; when a
// subscriber's queue is full the bus drops the oldest event for that
// subscriber only and increments its lag counter. Modeled as a broadcast
// channel with per-subscriber backlog rather than a callback list, per the
// Design Notes ("callback lists... would deadlock under the state lock").
package eventbus

import (
	"sync"
	"sync/atomic"

	"github.com/pulsenetwork/pulsenoded/internal/pulsetypes"
)

// EventType discriminates the payload carried by an Event.
type EventType string

const (
	EventNewBlock       EventType = "new_block"
	EventStats          EventType = "stats"
	EventHeartbeatCount EventType = "heartbeat_count"
)

// Event is the tagged union delivered to subscribers.
type Event struct {
	Type           EventType
	Block          *pulsetypes.PulseBlock
	Stats          *pulsetypes.NetworkStats
	HeartbeatCount uint64
}

// DefaultBacklog is the default per-subscriber queue capacity.
const DefaultBacklog = 64

// Subscription is a live handle to a subscriber's event stream.
type Subscription struct {
	ch     chan Event
	lag    atomic.Uint64
	bus    *Bus
	id     uint64
	closed atomic.Bool
}

// Events returns the channel to range over for delivered events. It is
// closed when the bus shuts down or the subscription is cancelled.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Lag returns the number of events dropped for this subscriber so far
// because its queue was full.
func (s *Subscription) Lag() uint64 { return s.lag.Load() }

// Cancel deregisters the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.bus.unsubscribe(s)
}

// Bus is the chain engine's single producer, fanning events out to any
// number of subscribers.
type Bus struct {
	mu      sync.RWMutex
	subs    map[uint64]*Subscription
	nextID  uint64
	backlog int
	closed  bool
}

// New returns a Bus whose subscribers each get a queue of the given
// capacity (DefaultBacklog if backlog <= 0).
func New(backlog int) *Bus {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	return &Bus{subs: make(map[uint64]*Subscription), backlog: backlog}
}

// Subscribe registers a new subscriber and returns its handle.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription{ch: make(chan Event, b.backlog), bus: b, id: b.nextID}
	b.nextID++
	if b.closed {
		close(sub.ch)
		return sub
	}
	b.subs[sub.id] = sub
	return sub
}

func (b *Bus) unsubscribe(sub *Subscription) {
	if !sub.closed.CompareAndSwap(false, true) {
		return
	}
	b.mu.Lock()
	delete(b.subs, sub.id)
	b.mu.Unlock()
	close(sub.ch)
}

// Publish fans ev out to every live subscriber. If a subscriber's queue is
// full, the oldest queued event for that subscriber is dropped to make room
// and its lag counter is incremented; Publish itself never blocks.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, sub := range b.subs {
		deliver(sub, ev)
	}
}

func deliver(sub *Subscription, ev Event) {
	select {
	case sub.ch <- ev:
		return
	default:
	}
	// Queue full: drop the oldest buffered event, then retry once.
	select {
	case <-sub.ch:
		sub.lag.Add(1)
	default:
	}
	select {
	case sub.ch <- ev:
	default:
		// Another publisher raced us; count this event as dropped too.
		sub.lag.Add(1)
	}
}

// Close shuts the bus down, closing every subscriber's channel cleanly. No
// further Subscribe or Publish calls have any effect afterward.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subs {
		if sub.closed.CompareAndSwap(false, true) {
			close(sub.ch)
		}
	}
	b.subs = make(map[uint64]*Subscription)
}
