// Package attract runs the idle light animation shown between sessions.
package attract

import (
	"context"
	"iter"
	"time"

	"github.com/cbodonnell/simon/pkg/game/constants"
	"github.com/cbodonnell/simon/pkg/game/types"
	"github.com/cbodonnell/simon/pkg/hardware"
	"github.com/cbodonnell/simon/pkg/input"
)

// Cycle returns one period of the ping-pong traversal: forward through every
// color, then backward through the interior colors only. For n >= 2 colors
// the period has 2n-2 steps.
func Cycle(colors []types.Color) []types.Color {
	n := len(colors)
	if n <= 2 {
		out := make([]types.Color, n)
		copy(out, colors)
		return out
	}
	out := make([]types.Color, 0, 2*n-2)
	out = append(out, colors...)
	for i := n - 2; i > 0; i-- {
		out = append(out, colors[i])
	}
	return out
}

// PingPong lazily repeats Cycle forever. Every range over the result starts
// again from the first color.
func PingPong(colors []types.Color) iter.Seq[types.Color] {
	cycle := Cycle(colors)
	return func(yield func(types.Color) bool) {
		if len(cycle) == 0 {
			return
		}
		for {
			for _, c := range cycle {
				if !yield(c) {
					return
				}
			}
		}
	}
}

// Animator plays the attract animation until someone asks to start.
type Animator struct {
	board       hardware.Board
	palette     *types.Palette
	multiplexer *input.Multiplexer
	tick        time.Duration
	subTick     time.Duration
	settle      time.Duration
	sleep       input.SleepFunc
}

type NewAnimatorOptions struct {
	Board       hardware.Board
	Palette     *types.Palette
	Multiplexer *input.Multiplexer
	// Tick defaults to constants.AttractTick
	Tick time.Duration
	// SubTick defaults to constants.AttractSubTick
	SubTick time.Duration
	// Settle defaults to constants.AttractSettleDelay
	Settle time.Duration
	// Sleep defaults to input.Sleep
	Sleep input.SleepFunc
}

// NewAnimator creates a new Animator.
func NewAnimator(opts NewAnimatorOptions) *Animator {
	a := &Animator{
		board:       opts.Board,
		palette:     opts.Palette,
		multiplexer: opts.Multiplexer,
		tick:        opts.Tick,
		subTick:     opts.SubTick,
		settle:      opts.Settle,
		sleep:       opts.Sleep,
	}
	if a.tick <= 0 {
		a.tick = constants.AttractTick
	}
	if a.subTick <= 0 {
		a.subTick = constants.AttractSubTick
	}
	if a.settle <= 0 {
		a.settle = constants.AttractSettleDelay
	}
	if a.sleep == nil {
		a.sleep = input.Sleep
	}
	return a
}

// RunUntilStart animates the LEDs until a switch is pressed or remote input
// arrives. The triggering input is discarded so it does not count as the first
// move of the game. It only returns early with an error when ctx is done.
func (a *Animator) RunUntilStart(ctx context.Context) error {
	mailbox := a.multiplexer.Mailbox()
	mailbox.Clear()

	for c := range PingPong(a.palette.Colors()) {
		a.board.SetLED(c, true)

		started, err := a.watch(ctx)
		if err != nil {
			hardware.AllOff(a.board, a.palette)
			return err
		}
		if started {
			hardware.AllOff(a.board, a.palette)
			mailbox.Clear()
			if err := a.multiplexer.AwaitRelease(ctx); err != nil {
				return err
			}
			if err := a.sleep(ctx, a.settle); err != nil {
				return err
			}
			mailbox.Clear()
			return nil
		}

		a.board.SetLED(c, false)
	}
	return nil
}

// watch polls for a start signal for one animation tick.
func (a *Animator) watch(ctx context.Context) (bool, error) {
	steps := int(a.tick / a.subTick)
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		if a.multiplexer.StartRequested() {
			return true, nil
		}
		if err := a.sleep(ctx, a.subTick); err != nil {
			return false, err
		}
	}
	return false, nil
}
