package network

import (
	"context"
	"fmt"
	"time"

	"github.com/cbodonnell/simon/pkg/messages"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// WriteTimeout bounds a single write to an observer
const WriteTimeout = 5 * time.Second

// WriteMessageToWS writes a Message to a WebSocket connection
func WriteMessageToWS(ctx context.Context, conn *websocket.Conn, msg *messages.Message) error {
	ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()

	if err := wsjson.Write(ctx, conn, msg); err != nil {
		return fmt.Errorf("failed to write message to WebSocket connection: %v", err)
	}

	return nil
}

// isClosed reports whether err is the peer going away rather than a failure
func isClosed(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return false
}
