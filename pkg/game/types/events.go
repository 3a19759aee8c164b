package types

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// EventKind names a presentation event.
type EventKind string

const (
	EventLedState          EventKind = "led_state"
	EventLedSnapshot       EventKind = "led_snapshot"
	EventGameStatus        EventKind = "game_status"
	EventGameOver          EventKind = "game_over"
	EventRequestName       EventKind = "request_name"
	EventDifficultyChanged EventKind = "difficulty_changed"
)

type LedStatePayload struct {
	Color Color    `json:"color"`
	State LedState `json:"state"`
}

type LedSnapshotPayload struct {
	States map[Color]LedState `json:"states"`
}

type GameStatusPayload struct {
	Msg string `json:"msg"`
}

type GameOverPayload struct {
	Score int `json:"score"`
}

type RequestNamePayload struct {
	Score int `json:"score"`
}

type DifficultyChangedPayload struct {
	Level string `json:"level"`
}

const (
	// PlayerNameMinLength is the minimum length of a player name
	PlayerNameMinLength = 3
	// PlayerNameMaxLength is the maximum length of a player name
	PlayerNameMaxLength = 50
)

// ErrInvalidName is returned when a submitted player name fails validation.
var ErrInvalidName = errors.New("invalid player name")

// NormalizePlayerName trims the name and checks its length.
func NormalizePlayerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < PlayerNameMinLength || n > PlayerNameMaxLength {
		return "", fmt.Errorf("%w: must be between %d and %d characters", ErrInvalidName, PlayerNameMinLength, PlayerNameMaxLength)
	}
	return name, nil
}
