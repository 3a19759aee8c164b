package input

import (
	"context"
	"time"

	"github.com/cbodonnell/simon/pkg/game/constants"
	"github.com/cbodonnell/simon/pkg/game/types"
	"github.com/cbodonnell/simon/pkg/hardware"
)

// SleepFunc waits for d or until ctx is done, whichever comes first.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Multiplexer merges the physical switches and the remote mailbox into a
// single stream of chosen colors. Physical input wins within a polling tick.
type Multiplexer struct {
	board           hardware.Board
	palette         *types.Palette
	mailbox         *Mailbox
	pollInterval    time.Duration
	releaseInterval time.Duration
	sleep           SleepFunc
}

type NewMultiplexerOptions struct {
	Board   hardware.Board
	Palette *types.Palette
	Mailbox *Mailbox
	// PollInterval defaults to constants.InputPollInterval
	PollInterval time.Duration
	// Sleep defaults to Sleep
	Sleep SleepFunc
}

// NewMultiplexer creates a new Multiplexer.
func NewMultiplexer(opts NewMultiplexerOptions) *Multiplexer {
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = constants.InputPollInterval
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	mailbox := opts.Mailbox
	if mailbox == nil {
		mailbox = NewMailbox()
	}
	return &Multiplexer{
		board:           opts.Board,
		palette:         opts.Palette,
		mailbox:         mailbox,
		pollInterval:    pollInterval,
		releaseInterval: constants.SwitchReleasePollInterval,
		sleep:           sleep,
	}
}

// Mailbox returns the remote input mailbox read by the multiplexer.
func (m *Multiplexer) Mailbox() *Mailbox {
	return m.mailbox
}

// AwaitChoice blocks until a color is chosen on either channel.
// Stale remote input is discarded before waiting. A physical press is
// returned only once the switch is released, so holding a switch yields one choice.
func (m *Multiplexer) AwaitChoice(ctx context.Context) (types.Color, error) {
	m.mailbox.Clear()
	for {
		if c, ok := m.pressedSwitch(); ok {
			if err := m.awaitRelease(ctx, c); err != nil {
				return "", err
			}
			return c, nil
		}
		if c, ok := m.mailbox.Take(); ok {
			return c, nil
		}
		if err := m.sleep(ctx, m.pollInterval); err != nil {
			return "", err
		}
	}
}

// StartRequested reports, without consuming anything, whether any switch is
// pressed or remote input is pending.
func (m *Multiplexer) StartRequested() bool {
	if _, ok := m.pressedSwitch(); ok {
		return true
	}
	return m.mailbox.Pending()
}

// AwaitRelease blocks until no switch is pressed.
func (m *Multiplexer) AwaitRelease(ctx context.Context) error {
	for hardware.AnyPressed(m.board, m.palette) {
		if err := m.sleep(ctx, m.releaseInterval); err != nil {
			return err
		}
	}
	return nil
}

// pressedSwitch scans the switches in palette order and returns the first pressed one.
func (m *Multiplexer) pressedSwitch() (types.Color, bool) {
	for _, c := range m.palette.Colors() {
		if m.board.IsPressed(c) {
			return c, true
		}
	}
	return "", false
}

func (m *Multiplexer) awaitRelease(ctx context.Context, c types.Color) error {
	for m.board.IsPressed(c) {
		if err := m.sleep(ctx, m.releaseInterval); err != nil {
			return err
		}
	}
	return nil
}
