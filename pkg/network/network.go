package network

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cbodonnell/simon/pkg/game/constants"
	"github.com/cbodonnell/simon/pkg/game/types"
	"github.com/cbodonnell/simon/pkg/log"
	"github.com/cbodonnell/simon/pkg/messages"
	"github.com/cbodonnell/simon/pkg/presentation"
	"nhooyr.io/websocket"
)

// GameController is the part of the engine that remote observers may drive.
type GameController interface {
	SubmitRemoteInput(raw string) (types.Color, bool)
	SubmitNameForScore(name string) bool
	SetDifficulty(level string) (string, bool)
	Snapshot(ctx context.Context) (*types.Snapshot, error)
	PendingScore() (int, bool)
}

type NetworkManager struct {
	ClientManager  *ClientManager
	game           GameController
	sink           presentation.Sink
	originPatterns []string
}

type NewNetworkManagerOptions struct {
	ClientManager  *ClientManager
	Game           GameController
	// Sink receives the led_state echo of accepted remote presses
	Sink           presentation.Sink
	// OriginPatterns lists the host patterns of cross origin pages allowed
	// to open a websocket. Same origin requests are always accepted.
	OriginPatterns []string
}

func NewNetworkManager(options NewNetworkManagerOptions) *NetworkManager {
	clientManager := options.ClientManager
	if clientManager == nil {
		clientManager = NewClientManager()
	}
	sink := options.Sink
	if sink == nil {
		sink = presentation.NopSink{}
	}
	return &NetworkManager{
		ClientManager:  clientManager,
		game:           options.Game,
		sink:           sink,
		originPatterns: options.OriginPatterns,
	}
}

// HandleWebSocket upgrades the request and serves one observer until it disconnects.
func (n *NetworkManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: n.originPatterns,
	})
	if err != nil {
		log.Error("Failed to upgrade to WebSocket: %v", err)
		return
	}
	conn.SetReadLimit(messages.MessageBufferSize)

	clientID, err := n.ClientManager.ConnectClient(conn, r.RemoteAddr)
	if err != nil {
		log.Error("Failed to connect client from %s: %v", r.RemoteAddr, err)
		conn.Close(websocket.StatusTryAgainLater, "server is full")
		return
	}
	log.Info("Client %d connected from %s", clientID, r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer func() {
		cancel()
		n.ClientManager.DisconnectClient(clientID)
		conn.Close(websocket.StatusNormalClosure, "")
		log.Info("Client %d disconnected", clientID)
	}()

	if err := n.sendCatchUp(ctx, clientID); err != nil {
		log.Error("Failed to send catch-up to client %d: %v", clientID, err)
		return
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if isClosed(err) || ctx.Err() != nil {
				log.Trace("Connection closed for client %d", clientID)
				return
			}
			log.Warn("Failed to read message from client %d: %v", clientID, err)
			return
		}

		message, err := messages.DeserializeMessage(data)
		if err != nil {
			log.Warn("Rejected message from client %d: %v", clientID, err)
			if err := n.sendError(ctx, clientID, err.Error()); err != nil {
				log.Error("Failed to send error to client %d: %v", clientID, err)
				return
			}
			continue
		}
		message.ClientID = clientID
		n.handleMessage(ctx, message)
	}
}

func (n *NetworkManager) handleMessage(ctx context.Context, message *messages.Message) {
	var err error
	switch message.Type {
	case messages.MessageTypeClientPing:
		err = n.reply(ctx, message.ClientID, messages.MessageTypeServerPong, nil)
	case messages.MessageTypeClientRemoteInput:
		err = n.handleRemoteInput(ctx, message)
	case messages.MessageTypeClientChangeDifficulty:
		err = n.handleChangeDifficulty(ctx, message)
	case messages.MessageTypeClientSubmitName:
		err = n.handleSubmitName(ctx, message)
	case messages.MessageTypeClientRequestSnapshot:
		err = n.sendState(ctx, message.ClientID)
	default:
		log.Warn("Received unknown message type %q from client %d", message.Type, message.ClientID)
		err = n.sendError(ctx, message.ClientID, fmt.Sprintf("unknown message type %q", message.Type))
	}
	if err != nil {
		log.Error("Failed to handle %s message from client %d: %v", message.Type, message.ClientID, err)
	}
}

func (n *NetworkManager) handleRemoteInput(ctx context.Context, message *messages.Message) error {
	input := &messages.ClientRemoteInput{}
	if err := messages.DecodePayload(message, input); err != nil {
		return n.sendError(ctx, message.ClientID, err.Error())
	}
	c, ok := n.game.SubmitRemoteInput(input.Color)
	if !ok {
		return n.sendError(ctx, message.ClientID, fmt.Sprintf("unknown color %q", input.Color))
	}
	EchoRemotePress(n.sink, c)
	return nil
}

// EchoRemotePress tells every observer that a remote button was pressed so
// all connected dashboards light it. The engine's own flash follows only if
// the press is consumed as input.
func EchoRemotePress(sink presentation.Sink, c types.Color) {
	sink.Emit(types.EventLedState, types.LedStatePayload{Color: c, State: types.LedOn})
}

func (n *NetworkManager) handleChangeDifficulty(ctx context.Context, message *messages.Message) error {
	change := &messages.ClientChangeDifficulty{}
	if err := messages.DecodePayload(message, change); err != nil {
		return n.sendError(ctx, message.ClientID, err.Error())
	}
	if _, ok := n.game.SetDifficulty(change.Level); !ok {
		return n.sendError(ctx, message.ClientID, fmt.Sprintf("unknown difficulty %q", change.Level))
	}
	return nil
}

func (n *NetworkManager) handleSubmitName(ctx context.Context, message *messages.Message) error {
	submit := &messages.ClientSubmitName{}
	if err := messages.DecodePayload(message, submit); err != nil {
		return n.sendError(ctx, message.ClientID, err.Error())
	}
	if !n.game.SubmitNameForScore(submit.Name) {
		return n.sendError(ctx, message.ClientID, "name was not accepted")
	}
	return nil
}

// sendCatchUp brings a fresh observer up to date without waiting for the next event.
func (n *NetworkManager) sendCatchUp(ctx context.Context, clientID uint32) error {
	if err := n.reply(ctx, clientID, messages.MessageTypeServerGameStatus, types.GameStatusPayload{Msg: constants.StatusConnected}); err != nil {
		return err
	}

	snapshot, err := n.game.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to get snapshot: %v", err)
	}
	if err := n.reply(ctx, clientID, messages.MessageTypeServerGameState, snapshot); err != nil {
		return err
	}
	if err := n.reply(ctx, clientID, messages.MessageTypeServerLedSnapshot, types.LedSnapshotPayload{States: snapshot.Leds}); err != nil {
		return err
	}
	if err := n.reply(ctx, clientID, messages.MessageTypeServerDifficultyChanged, types.DifficultyChangedPayload{Level: snapshot.Difficulty}); err != nil {
		return err
	}
	if score, ok := n.game.PendingScore(); ok {
		if err := n.reply(ctx, clientID, messages.MessageTypeServerRequestName, types.RequestNamePayload{Score: score}); err != nil {
			return err
		}
	}
	return nil
}

func (n *NetworkManager) sendState(ctx context.Context, clientID uint32) error {
	snapshot, err := n.game.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to get snapshot: %v", err)
	}
	return n.reply(ctx, clientID, messages.MessageTypeServerGameState, snapshot)
}

func (n *NetworkManager) sendError(ctx context.Context, clientID uint32, reason string) error {
	return n.reply(ctx, clientID, messages.MessageTypeServerError, messages.ServerError{Reason: reason})
}

func (n *NetworkManager) reply(ctx context.Context, clientID uint32, t messages.MessageType, payload interface{}) error {
	msg, err := messages.NewMessage(t, payload)
	if err != nil {
		return err
	}
	if err := n.SendMessageToClient(ctx, clientID, msg); err != nil {
		return fmt.Errorf("failed to send %s message: %v", t, err)
	}
	return nil
}

// SendMessageToAll writes msg to every connected client. A failed write is logged
// and does not stop delivery to the others.
func (n *NetworkManager) SendMessageToAll(ctx context.Context, msg *messages.Message) {
	for _, client := range n.ClientManager.GetClients() {
		if err := WriteMessageToWS(ctx, client.WSConn, msg); err != nil {
			log.Error("Failed to send message to client %d: %v", client.ID, err)
		}
	}
}

func (n *NetworkManager) SendMessageToClient(ctx context.Context, clientID uint32, msg *messages.Message) error {
	client, err := n.ClientManager.GetClient(clientID)
	if err != nil {
		return fmt.Errorf("failed to get client %d: %v", clientID, err)
	}

	if err := WriteMessageToWS(ctx, client.WSConn, msg); err != nil {
		return fmt.Errorf("failed to send message to client %d: %v", clientID, err)
	}

	return nil
}

// CloseAll closes every client connection, ending their handlers.
func (n *NetworkManager) CloseAll() {
	for _, client := range n.ClientManager.GetClients() {
		client.WSConn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}
