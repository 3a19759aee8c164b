// Package memory provides an in-memory simulated board.
package memory

import (
	"sync"
	"time"

	"github.com/cbodonnell/simon/pkg/game/types"
)

// Change is a recorded output transition.
type Change struct {
	Color  types.Color // empty for the buzzer
	On     bool
	Buzzer bool
}

// ChangeHandler is called after every output transition.
type ChangeHandler func(change Change)

// Board is a simulated board. Switches are driven with Press, Release and Tap.
type Board struct {
	lock     sync.RWMutex
	leds     map[types.Color]bool
	pressed  map[types.Color]bool
	buzzer   bool
	history  []Change
	record   bool
	handlers []ChangeHandler
}

// NewBoard creates a board with every LED off and no switch pressed.
func NewBoard(palette *types.Palette) *Board {
	b := &Board{
		leds:    make(map[types.Color]bool, palette.Len()),
		pressed: make(map[types.Color]bool, palette.Len()),
	}
	for _, c := range palette.Colors() {
		b.leds[c] = false
		b.pressed[c] = false
	}
	return b
}

// Record enables keeping a history of output transitions.
func (b *Board) Record() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.record = true
}

// OnChange registers a handler for output transitions.
func (b *Board) OnChange(handler ChangeHandler) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.handlers = append(b.handlers, handler)
}

func (b *Board) SetLED(color types.Color, on bool) {
	b.lock.Lock()
	if _, ok := b.leds[color]; !ok {
		b.lock.Unlock()
		return
	}
	b.leds[color] = on
	change := Change{Color: color, On: on}
	handlers := b.apply(change)
	b.lock.Unlock()

	for _, h := range handlers {
		h(change)
	}
}

func (b *Board) SetBuzzer(on bool) {
	b.lock.Lock()
	b.buzzer = on
	change := Change{On: on, Buzzer: true}
	handlers := b.apply(change)
	b.lock.Unlock()

	for _, h := range handlers {
		h(change)
	}
}

// apply records a change and returns the handlers to notify. Callers hold the lock.
func (b *Board) apply(change Change) []ChangeHandler {
	if b.record {
		b.history = append(b.history, change)
	}
	handlers := make([]ChangeHandler, len(b.handlers))
	copy(handlers, b.handlers)
	return handlers
}

func (b *Board) IsPressed(color types.Color) bool {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.pressed[color]
}

func (b *Board) Close() error {
	return nil
}

// Press holds the switch of a color down.
func (b *Board) Press(color types.Color) {
	b.setPressed(color, true)
}

// Release lets go of the switch of a color.
func (b *Board) Release(color types.Color) {
	b.setPressed(color, false)
}

// Tap presses the switch of a color and releases it after d.
func (b *Board) Tap(color types.Color, d time.Duration) {
	b.Press(color)
	time.AfterFunc(d, func() {
		b.Release(color)
	})
}

func (b *Board) setPressed(color types.Color, pressed bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if _, ok := b.pressed[color]; !ok {
		return
	}
	b.pressed[color] = pressed
}

// LED returns the current state of the LED of a color.
func (b *Board) LED(color types.Color) bool {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.leds[color]
}

// Buzzer returns the current state of the buzzer.
func (b *Board) Buzzer() bool {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.buzzer
}

// History returns a copy of the recorded output transitions.
func (b *Board) History() []Change {
	b.lock.RLock()
	defer b.lock.RUnlock()
	out := make([]Change, len(b.history))
	copy(out, b.history)
	return out
}

// ResetHistory discards the recorded output transitions.
func (b *Board) ResetHistory() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.history = nil
}
