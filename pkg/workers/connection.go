package workers

import (
	"context"

	"github.com/cbodonnell/simon/pkg/log"
	"github.com/cbodonnell/simon/pkg/metrics"
	"github.com/cbodonnell/simon/pkg/network"
)

type ConnectionEventWorker struct {
	clientEventChan <-chan network.ClientEvent
	metrics         *metrics.Metrics
}

type NewConnectionEventWorkerOptions struct {
	ClientEventChan <-chan network.ClientEvent
	Metrics         *metrics.Metrics
}

// NewConnectionEventWorker creates a new ConnectionEventWorker.
// The worker processes client events like connect and disconnect.
func NewConnectionEventWorker(opts NewConnectionEventWorkerOptions) *ConnectionEventWorker {
	return &ConnectionEventWorker{
		clientEventChan: opts.ClientEventChan,
		metrics:         opts.Metrics,
	}
}

func (w *ConnectionEventWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-w.clientEventChan:
			switch event.Type {
			case network.ClientEventTypeConnect:
				log.Debug("Observer %d joined", event.ClientID)
				w.metrics.ClientConnected()
			case network.ClientEventTypeDisconnect:
				log.Debug("Observer %d left", event.ClientID)
				w.metrics.ClientDisconnected()
			default:
				log.Error("Unknown client event type: %v", event.Type)
			}
		}
	}
}
