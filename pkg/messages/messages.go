package messages

import (
	"encoding/json"

	"github.com/cbodonnell/simon/pkg/game/types"
)

const (
	// MessageBufferSize represents the maximum size of an inbound message
	MessageBufferSize = 1024
)

// MessageType names the payload carried by a Message
type MessageType string

// Client to server message types
const (
	MessageTypeClientPing             MessageType = "ping"
	MessageTypeClientRemoteInput      MessageType = "remote_input"
	MessageTypeClientChangeDifficulty MessageType = "change_difficulty"
	MessageTypeClientSubmitName       MessageType = "submit_name"
	MessageTypeClientRequestSnapshot  MessageType = "request_snapshot"
)

// Server to client message types. Presentation events keep their event kind as type.
const (
	MessageTypeServerPong              MessageType = "pong"
	MessageTypeServerError             MessageType = "error"
	MessageTypeServerGameState         MessageType = "state"
	MessageTypeServerLedState          MessageType = MessageType(types.EventLedState)
	MessageTypeServerLedSnapshot       MessageType = MessageType(types.EventLedSnapshot)
	MessageTypeServerGameStatus        MessageType = MessageType(types.EventGameStatus)
	MessageTypeServerGameOver          MessageType = MessageType(types.EventGameOver)
	MessageTypeServerRequestName       MessageType = MessageType(types.EventRequestName)
	MessageTypeServerDifficultyChanged MessageType = MessageType(types.EventDifficultyChanged)
)

// Message represents a generic message for serialization/deserialization
type Message struct {
	ClientID uint32          `json:"clientID,omitempty"`
	Type     MessageType     `json:"type"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

type ClientRemoteInput struct {
	Color string `json:"color"`
}

type ClientChangeDifficulty struct {
	Level string `json:"level"`
}

type ClientSubmitName struct {
	Name string `json:"name"`
}

type ServerError struct {
	Reason string `json:"reason"`
}
