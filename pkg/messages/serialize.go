package messages

import (
	"encoding/json"
	"fmt"

	"github.com/cbodonnell/simon/pkg/game/types"
)

// NewMessage builds a message with a JSON encoded payload. A nil payload is omitted.
func NewMessage(t MessageType, payload interface{}) (*Message, error) {
	msg := &Message{
		Type: t,
	}
	if payload == nil {
		return msg, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %v", t, err)
	}
	msg.Payload = b
	return msg, nil
}

// NewEventMessage wraps a presentation event for observers.
func NewEventMessage(kind types.EventKind, payload interface{}) (*Message, error) {
	return NewMessage(MessageType(kind), payload)
}

func SerializeMessage(m *Message) ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize message: %v", err)
	}
	return b, nil
}

func DeserializeMessage(data []byte) (*Message, error) {
	if len(data) > MessageBufferSize {
		return nil, fmt.Errorf("message of %d bytes exceeds %d bytes", len(data), MessageBufferSize)
	}
	message := &Message{}
	if err := json.Unmarshal(data, message); err != nil {
		return nil, fmt.Errorf("failed to deserialize message: %v", err)
	}
	if message.Type == "" {
		return nil, fmt.Errorf("message has no type")
	}
	return message, nil
}

// DecodePayload unmarshals the payload of m into v.
func DecodePayload(m *Message, v interface{}) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("%s message has no payload", m.Type)
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %v", m.Type, err)
	}
	return nil
}
