// Package gpio drives real LEDs, switches and a buzzer through periph.io.
package gpio

import (
	"fmt"
	"sync"

	"github.com/cbodonnell/simon/pkg/game/types"
	"github.com/cbodonnell/simon/pkg/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PinMapping assigns the BCM pin numbers of one color.
type PinMapping struct {
	Color  types.Color
	LED    int
	Button int
}

type NewBoardOptions struct {
	Pins      []PinMapping
	BuzzerPin int
}

// Board is a Raspberry Pi style GPIO board.
// Buttons are wired active low with the internal pull-up enabled.
type Board struct {
	lock    sync.Mutex
	leds    map[types.Color]gpio.PinIO
	buttons map[types.Color]gpio.PinIO
	buzzer  gpio.PinIO
	logger  *log.Logger
}

// NewBoard initializes the host drivers and claims every configured pin.
// A missing buzzer pin is not fatal, the board runs without the audio cue.
func NewBoard(opts NewBoardOptions) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize host drivers: %v", err)
	}

	b := &Board{
		leds:    make(map[types.Color]gpio.PinIO, len(opts.Pins)),
		buttons: make(map[types.Color]gpio.PinIO, len(opts.Pins)),
		logger:  log.Component("gpio"),
	}

	for _, p := range opts.Pins {
		led, err := lookupPin(p.LED)
		if err != nil {
			return nil, fmt.Errorf("failed to set up LED for %s: %v", p.Color, err)
		}
		if err := led.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("failed to configure LED for %s: %v", p.Color, err)
		}
		b.leds[p.Color] = led

		button, err := lookupPin(p.Button)
		if err != nil {
			return nil, fmt.Errorf("failed to set up button for %s: %v", p.Color, err)
		}
		if err := button.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("failed to configure button for %s: %v", p.Color, err)
		}
		b.buttons[p.Color] = button
	}

	buzzer, err := lookupPin(opts.BuzzerPin)
	if err == nil {
		err = buzzer.Out(gpio.Low)
	}
	if err != nil {
		b.logger.Warn("Buzzer unavailable, continuing without audio cue: %v", err)
	} else {
		b.buzzer = buzzer
	}

	return b, nil
}

func lookupPin(bcm int) (gpio.PinIO, error) {
	name := fmt.Sprintf("GPIO%d", bcm)
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("pin %s not found", name)
	}
	return pin, nil
}

func (b *Board) SetLED(color types.Color, on bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	led, ok := b.leds[color]
	if !ok {
		return
	}
	if err := led.Out(gpio.Level(on)); err != nil {
		b.logger.Warn("Failed to set LED %s: %v", color, err)
	}
}

func (b *Board) IsPressed(color types.Color) bool {
	button, ok := b.buttons[color]
	if !ok {
		return false
	}
	return button.Read() == gpio.Low
}

func (b *Board) SetBuzzer(on bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.buzzer == nil {
		return
	}
	if err := b.buzzer.Out(gpio.Level(on)); err != nil {
		b.logger.Warn("Failed to set buzzer: %v", err)
	}
}

// Close switches every output off and releases the pins.
func (b *Board) Close() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	for color, led := range b.leds {
		if err := led.Out(gpio.Low); err != nil {
			b.logger.Warn("Failed to switch off LED %s: %v", color, err)
		}
		if err := led.Halt(); err != nil {
			b.logger.Warn("Failed to halt LED %s: %v", color, err)
		}
	}
	if b.buzzer != nil {
		if err := b.buzzer.Out(gpio.Low); err != nil {
			b.logger.Warn("Failed to switch off buzzer: %v", err)
		}
	}
	return nil
}
