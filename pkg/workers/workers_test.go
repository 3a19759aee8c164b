package workers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cbodonnell/simon/pkg/game/types"
	"github.com/cbodonnell/simon/pkg/messages"
	"github.com/cbodonnell/simon/pkg/metrics"
	"github.com/cbodonnell/simon/pkg/network"
	"github.com/cbodonnell/simon/pkg/presentation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBroadcaster struct {
	lock sync.Mutex
	sent []*messages.Message
}

func (b *recordingBroadcaster) SendMessageToAll(ctx context.Context, msg *messages.Message) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.sent = append(b.sent, msg)
}

func (b *recordingBroadcaster) kinds() []messages.MessageType {
	b.lock.Lock()
	defer b.lock.Unlock()
	got := make([]messages.MessageType, len(b.sent))
	for i, msg := range b.sent {
		got[i] = msg.Type
	}
	return got
}

func TestBroadcastMessageWorker(t *testing.T) {
	registry := presentation.NewRegistry(presentation.NewRegistryOptions{})
	sub := registry.Subscribe()
	broadcaster := &recordingBroadcaster{}
	w := NewBroadcastMessageWorker(NewBroadcastMessageWorkerOptions{
		Broadcaster:  broadcaster,
		Subscription: sub,
	})

	registry.Emit(types.EventLedState, types.LedStatePayload{Color: "red", State: types.LedOn})
	registry.Emit(types.EventLedState, types.LedStatePayload{Color: "red", State: types.LedOff})
	registry.Emit(types.EventGameStatus, types.GameStatusPayload{Msg: "Your turn!"})
	registry.Emit(types.EventGameOver, types.GameOverPayload{Score: 2})
	registry.Unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop after the subscription closed")
	}

	assert.Equal(t, []messages.MessageType{
		messages.MessageTypeServerLedState,
		messages.MessageTypeServerLedState,
		messages.MessageTypeServerGameStatus,
		messages.MessageTypeServerGameOver,
	}, broadcaster.kinds())

	payload := &types.LedStatePayload{}
	require.NoError(t, messages.DecodePayload(broadcaster.sent[1], payload))
	assert.Equal(t, types.LedOff, payload.State)
}

func TestBroadcastMessageWorker_cancel(t *testing.T) {
	registry := presentation.NewRegistry(presentation.NewRegistryOptions{})
	w := NewBroadcastMessageWorker(NewBroadcastMessageWorkerOptions{
		Broadcaster:  &recordingBroadcaster{},
		Subscription: registry.Subscribe(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Start(ctx)
}

func TestConnectionEventWorker(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	events := make(chan network.ClientEvent, 3)
	events <- network.ClientEvent{ClientID: 1, Type: network.ClientEventTypeConnect}
	events <- network.ClientEvent{ClientID: 2, Type: network.ClientEventTypeConnect}
	events <- network.ClientEvent{ClientID: 1, Type: network.ClientEventTypeDisconnect}

	w := NewConnectionEventWorker(NewConnectionEventWorkerOptions{
		ClientEventChan: events,
		Metrics:         m,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	assert.Eventually(t, func() bool {
		return len(events) == 0 && testutil.ToFloat64(m.ConnectedClients) == 1.0
	}, time.Second, 5*time.Millisecond)
}
