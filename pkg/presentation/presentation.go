package presentation

import (
	"sync"
	"time"

	"github.com/cbodonnell/simon/pkg/game/types"
	"github.com/cbodonnell/simon/pkg/log"
)

const (
	// DefaultSubscriberBufferSize is the per-subscriber event buffer
	DefaultSubscriberBufferSize = 256
)

// Sink receives presentation events. Emit is fire-and-forget: it never blocks
// on observers and never reports a failure to the caller.
type Sink interface {
	Emit(kind types.EventKind, payload interface{})
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(kind types.EventKind, payload interface{})

func (f SinkFunc) Emit(kind types.EventKind, payload interface{}) {
	f(kind, payload)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Emit(types.EventKind, interface{}) {}

// Event is one emitted presentation event.
type Event struct {
	// Seq increases by one for every event emitted through a registry
	Seq       uint64
	Kind      types.EventKind
	Payload   interface{}
	Timestamp int64
}

// Subscription delivers events to one observer in emission order.
type Subscription struct {
	id uint64
	ch chan Event
}

// C returns the channel events are delivered on. It is closed on unsubscribe.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Registry fans events out to any number of subscribers.
// Events are delivered to each subscriber in the order Emit was called;
// a subscriber whose buffer is full misses the event.
type Registry struct {
	lock       sync.Mutex
	subs       map[uint64]*Subscription
	nextID     uint64
	seq        uint64
	bufferSize int
	onDrop     func(event Event)
}

type NewRegistryOptions struct {
	// BufferSize is the per-subscriber buffer, DefaultSubscriberBufferSize if zero
	BufferSize int
	// OnDrop is called for every event a subscriber missed
	OnDrop func(event Event)
}

// NewRegistry creates a new Registry.
func NewRegistry(opts NewRegistryOptions) *Registry {
	bufferSize := opts.BufferSize
	if bufferSize <= 0 {
		bufferSize = DefaultSubscriberBufferSize
	}
	return &Registry{
		subs:       make(map[uint64]*Subscription),
		bufferSize: bufferSize,
		onDrop:     opts.OnDrop,
	}
}

// Emit delivers the event to every subscriber without blocking.
// With no subscribers the call is a no-op.
func (r *Registry) Emit(kind types.EventKind, payload interface{}) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.seq++
	event := Event{
		Seq:       r.seq,
		Kind:      kind,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
	for id, sub := range r.subs {
		select {
		case sub.ch <- event:
		default:
			log.Warn("Subscriber %d is full, dropping %s event %d", id, kind, event.Seq)
			if r.onDrop != nil {
				r.onDrop(event)
			}
		}
	}
}

// Subscribe registers a new observer.
func (r *Registry) Subscribe() *Subscription {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.nextID++
	sub := &Subscription{
		id: r.nextID,
		ch: make(chan Event, r.bufferSize),
	}
	r.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes an observer and closes its channel.
func (r *Registry) Unsubscribe(sub *Subscription) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.subs[sub.id]; !ok {
		return
	}
	delete(r.subs, sub.id)
	close(sub.ch)
}

// Subscribers returns the number of registered observers.
func (r *Registry) Subscribers() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.subs)
}
