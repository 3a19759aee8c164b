package hardware

import (
	"github.com/cbodonnell/simon/pkg/game/types"
)

// Board is the peripheral capability the game runs against.
// Each configured color maps to one LED output and one momentary switch input,
// and one shared output drives the audio cue.
//
// Implementations must be safe for concurrent use and must not fail loudly:
// a missing or broken peripheral degrades to a no-op.
type Board interface {
	// SetLED switches the LED of a color on or off.
	SetLED(color types.Color, on bool)
	// IsPressed reports whether the switch of a color is currently held down.
	IsPressed(color types.Color) bool
	// SetBuzzer switches the audio cue on or off.
	SetBuzzer(on bool)
	// Close releases the peripheral.
	Close() error
}

// AllOff switches every LED of the palette and the buzzer off.
func AllOff(board Board, palette *types.Palette) {
	for _, c := range palette.Colors() {
		board.SetLED(c, false)
	}
	board.SetBuzzer(false)
}

// AllOn switches every LED of the palette on.
func AllOn(board Board, palette *types.Palette) {
	for _, c := range palette.Colors() {
		board.SetLED(c, true)
	}
}

// AnyPressed reports whether any switch of the palette is held down.
func AnyPressed(board Board, palette *types.Palette) bool {
	for _, c := range palette.Colors() {
		if board.IsPressed(c) {
			return true
		}
	}
	return false
}
