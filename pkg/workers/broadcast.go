package workers

import (
	"context"

	"github.com/cbodonnell/simon/pkg/log"
	"github.com/cbodonnell/simon/pkg/messages"
	"github.com/cbodonnell/simon/pkg/presentation"
)

// Broadcaster delivers a message to every connected observer.
type Broadcaster interface {
	SendMessageToAll(ctx context.Context, msg *messages.Message)
}

type BroadcastMessageWorker struct {
	broadcaster  Broadcaster
	subscription *presentation.Subscription
}

type NewBroadcastMessageWorkerOptions struct {
	Broadcaster  Broadcaster
	Subscription *presentation.Subscription
}

// NewBroadcastMessageWorker creates a new BroadcastMessageWorker.
// The worker forwards presentation events to observers in the order they were emitted.
func NewBroadcastMessageWorker(opts NewBroadcastMessageWorkerOptions) *BroadcastMessageWorker {
	return &BroadcastMessageWorker{
		broadcaster:  opts.Broadcaster,
		subscription: opts.Subscription,
	}
}

// Start runs until the context is done or the subscription is closed.
func (w *BroadcastMessageWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.subscription.C():
			if !ok {
				log.Debug("Presentation subscription closed, stopping broadcast")
				return
			}
			msg, err := messages.NewEventMessage(event.Kind, event.Payload)
			if err != nil {
				log.Error("Failed to encode %s event %d: %v", event.Kind, event.Seq, err)
				continue
			}
			w.broadcaster.SendMessageToAll(ctx, msg)
		}
	}
}
