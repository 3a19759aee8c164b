package types

import "time"

// Phase is a state of the sequence engine.
type Phase string

const (
	PhaseAttract    Phase = "attract"
	PhasePresent    Phase = "present"
	PhaseAwaitInput Phase = "await_input"
	PhaseRoundWon   Phase = "round_won"
	PhaseGameOver   Phase = "game_over"
	PhaseAwaitName  Phase = "await_name"
)

// LedState is the on/off state of an LED as seen by observers.
type LedState string

const (
	LedOn  LedState = "on"
	LedOff LedState = "off"
)

// LedStateFromBool converts a boolean into a LedState.
func LedStateFromBool(on bool) LedState {
	if on {
		return LedOn
	}
	return LedOff
}

// DifficultyProfile holds the timing parameters read by the engine at each flash step.
type DifficultyProfile struct {
	FlashDuration  time.Duration `json:"flashDuration" yaml:"flash"`
	InterStepPause time.Duration `json:"interStepPause" yaml:"pause"`
}

// Snapshot is the externally visible state of the game.
type Snapshot struct {
	// Timestamp is the time at which the snapshot was last updated
	Timestamp int64 `json:"timestamp"`
	// SessionID identifies the current game session, empty in attract mode
	SessionID string `json:"sessionID,omitempty"`
	// Phase is the current engine state
	Phase Phase `json:"phase"`
	// SequenceLength is the length of the current sequence
	SequenceLength int `json:"sequenceLength"`
	// PendingScore is the score waiting for a name, only set in the await name phase
	PendingScore *int `json:"pendingScore,omitempty"`
	// Difficulty is the name of the active difficulty preset
	Difficulty string `json:"difficulty"`
	// Leds maps colors to their last known state
	Leds map[Color]LedState `json:"leds"`
}

// NewSnapshot creates a snapshot in attract mode with every LED off.
func NewSnapshot(palette *Palette) *Snapshot {
	leds := make(map[Color]LedState, palette.Len())
	for _, c := range palette.Colors() {
		leds[c] = LedOff
	}
	return &Snapshot{
		Phase: PhaseAttract,
		Leds:  leds,
	}
}

// Copy returns a deep copy of the snapshot.
func (s *Snapshot) Copy() *Snapshot {
	c := *s
	c.Leds = make(map[Color]LedState, len(s.Leds))
	for k, v := range s.Leds {
		c.Leds[k] = v
	}
	if s.PendingScore != nil {
		score := *s.PendingScore
		c.PendingScore = &score
	}
	return &c
}
