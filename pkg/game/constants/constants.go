package constants

import "time"

const (

	// InputPollInterval is the sleep between input multiplexer polling ticks
	InputPollInterval time.Duration = 10 * time.Millisecond
	// SwitchReleasePollInterval is the sleep while waiting for a held switch to be released
	SwitchReleasePollInterval time.Duration = 10 * time.Millisecond

	// AttractTick is how long each LED stays lit in the attract animation
	AttractTick time.Duration = 100 * time.Millisecond
	// AttractSubTick is the start signal polling interval inside an attract tick
	AttractSubTick time.Duration = 10 * time.Millisecond
	// AttractSettleDelay keeps the press that started a session from being read as the first input
	AttractSettleDelay time.Duration = 500 * time.Millisecond

	// SessionStartDelay is the pause after the "session starting" status
	SessionStartDelay time.Duration = 1 * time.Second
	// PresentLeadIn is the pause after the "presenting" status before the first flash
	PresentLeadIn time.Duration = 1 * time.Second
	// RoundWonDelay is the pause between a completed round and the next presentation
	RoundWonDelay time.Duration = 500 * time.Millisecond

	// GameOverBlinks is the number of blink/beep cycles of the game over animation
	GameOverBlinks int = 3
	// GameOverBlinkDuration is the on and off duration of one game over blink
	GameOverBlinkDuration time.Duration = 300 * time.Millisecond

	// NameAnnounceInterval is how often a pending name request is re-emitted
	NameAnnounceInterval time.Duration = 1 * time.Second
	// ScoreSaveTimeout bounds a single persistence call
	ScoreSaveTimeout time.Duration = 5 * time.Second

	// DefaultHighscoreLimit is the number of highscores returned when no limit is given
	DefaultHighscoreLimit int = 10
)

// Status messages shown to observers
const (
	StatusPressToStart = "Press any button to start"
	StatusStarting     = "Game starting!"
	StatusPresenting   = "Simon is showing..."
	StatusYourTurn     = "Your turn!"
	StatusEnterName    = "Game over! Enter your name"
	StatusConnected    = "Connected to Simon"
)
