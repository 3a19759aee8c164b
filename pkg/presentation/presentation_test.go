package presentation

import (
	"sync"
	"testing"

	"github.com/cbodonnell/simon/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(sub *Subscription) []Event {
	var events []Event
	for {
		select {
		case e := <-sub.C():
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestRegistry_noSubscribers(t *testing.T) {
	r := NewRegistry(NewRegistryOptions{})
	assert.NotPanics(t, func() {
		r.Emit(types.EventGameStatus, types.GameStatusPayload{Msg: "hello"})
	})
	assert.Equal(t, 0, r.Subscribers())
}

func TestRegistry_ordering(t *testing.T) {
	r := NewRegistry(NewRegistryOptions{})
	a := r.Subscribe()
	b := r.Subscribe()

	for i := 0; i < 10; i++ {
		r.Emit(types.EventGameOver, types.GameOverPayload{Score: i})
	}

	for _, sub := range []*Subscription{a, b} {
		events := drain(sub)
		require.Len(t, events, 10)
		for i, e := range events {
			assert.Equal(t, uint64(i+1), e.Seq)
			assert.Equal(t, types.GameOverPayload{Score: i}, e.Payload)
		}
	}
}

func TestRegistry_dropsWhenFull(t *testing.T) {
	var lock sync.Mutex
	var dropped []uint64
	r := NewRegistry(NewRegistryOptions{
		BufferSize: 2,
		OnDrop: func(e Event) {
			lock.Lock()
			defer lock.Unlock()
			dropped = append(dropped, e.Seq)
		},
	})
	sub := r.Subscribe()

	r.Emit(types.EventGameStatus, types.GameStatusPayload{Msg: "1"})
	r.Emit(types.EventGameStatus, types.GameStatusPayload{Msg: "2"})
	r.Emit(types.EventGameStatus, types.GameStatusPayload{Msg: "3"})

	events := drain(sub)
	require.Len(t, events, 2)
	assert.Equal(t, []uint64{3}, dropped)
}

func TestRegistry_Unsubscribe(t *testing.T) {
	r := NewRegistry(NewRegistryOptions{})
	sub := r.Subscribe()
	r.Unsubscribe(sub)
	r.Unsubscribe(sub)

	_, ok := <-sub.C()
	assert.False(t, ok)
	assert.Equal(t, 0, r.Subscribers())

	assert.NotPanics(t, func() {
		r.Emit(types.EventGameStatus, types.GameStatusPayload{Msg: "after"})
	})
}

func TestSinkFunc(t *testing.T) {
	var got types.EventKind
	var sink Sink = SinkFunc(func(kind types.EventKind, payload interface{}) {
		got = kind
	})
	sink.Emit(types.EventRequestName, types.RequestNamePayload{Score: 1})
	assert.Equal(t, types.EventRequestName, got)

	NopSink{}.Emit(types.EventRequestName, nil)
}
