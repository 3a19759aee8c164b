package memory

import (
	"testing"
	"time"

	"github.com/cbodonnell/simon/pkg/game/types"
	"github.com/cbodonnell/simon/pkg/hardware"
	"github.com/stretchr/testify/assert"
)

var _ hardware.Board = (*Board)(nil)

func TestBoard_outputs(t *testing.T) {
	palette := types.MustPalette("red", "green")
	b := NewBoard(palette)
	b.Record()

	var notified []Change
	b.OnChange(func(c Change) {
		notified = append(notified, c)
	})

	b.SetLED("red", true)
	b.SetBuzzer(true)
	b.SetLED("purple", true) // unknown colors are ignored

	assert.True(t, b.LED("red"))
	assert.True(t, b.Buzzer())
	want := []Change{
		{Color: "red", On: true},
		{On: true, Buzzer: true},
	}
	assert.Equal(t, want, b.History())
	assert.Equal(t, want, notified)

	hardware.AllOff(b, palette)
	assert.False(t, b.LED("red"))
	assert.False(t, b.Buzzer())
}

func TestBoard_switches(t *testing.T) {
	palette := types.MustPalette("red", "green")
	b := NewBoard(palette)

	assert.False(t, hardware.AnyPressed(b, palette))

	b.Press("green")
	assert.True(t, b.IsPressed("green"))
	assert.True(t, hardware.AnyPressed(b, palette))

	b.Release("green")
	assert.False(t, b.IsPressed("green"))

	b.Tap("red", 10*time.Millisecond)
	assert.True(t, b.IsPressed("red"))
	assert.Eventually(t, func() bool {
		return !b.IsPressed("red")
	}, time.Second, 5*time.Millisecond)
}
