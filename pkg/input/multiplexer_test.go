package input

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cbodonnell/simon/pkg/game/types"
	"github.com/cbodonnell/simon/pkg/hardware/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSleep runs one step per sleep call instead of waiting.
type scriptedSleep struct {
	steps []func()
	calls int
}

func (s *scriptedSleep) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.calls < len(s.steps) {
		s.steps[s.calls]()
	}
	s.calls++
	return nil
}

func newTestMultiplexer(steps ...func()) (*Multiplexer, *memory.Board, *scriptedSleep) {
	palette := types.MustPalette("red", "green", "blue", "yellow")
	board := memory.NewBoard(palette)
	s := &scriptedSleep{steps: steps}
	m := NewMultiplexer(NewMultiplexerOptions{
		Board:   board,
		Palette: palette,
		Sleep:   s.sleep,
	})
	return m, board, s
}

func TestMailbox(t *testing.T) {
	m := NewMailbox()
	_, ok := m.Take()
	assert.False(t, ok)

	m.Put("red")
	m.Put("blue")
	assert.True(t, m.Pending())

	c, ok := m.Take()
	assert.True(t, ok)
	assert.Equal(t, types.Color("blue"), c)

	_, ok = m.Take()
	assert.False(t, ok)
	assert.False(t, m.Pending())
}

func TestMailbox_concurrentWriters(t *testing.T) {
	m := NewMailbox()
	colors := []types.Color{"red", "green", "blue", "yellow"}

	var wg sync.WaitGroup
	for _, c := range colors {
		wg.Add(1)
		go func(c types.Color) {
			defer wg.Done()
			m.Put(c)
		}(c)
	}
	wg.Wait()

	c, ok := m.Take()
	require.True(t, ok)
	assert.Contains(t, colors, c)
	_, ok = m.Take()
	assert.False(t, ok)
}

func TestMultiplexer_AwaitChoice(t *testing.T) {
	t.Run("physical press wins over mailbox in the same tick", func(t *testing.T) {
		var m *Multiplexer
		var board *memory.Board
		m, board, _ = newTestMultiplexer(
			func() {
				// both arrive while the multiplexer sleeps
				board.Press("blue")
				m.Mailbox().Put("red")
			},
			func() {
				board.Release("blue")
			},
		)

		c, err := m.AwaitChoice(context.Background())
		require.NoError(t, err)
		assert.Equal(t, types.Color("blue"), c)
		// the remote value is still pending for the next tick
		assert.True(t, m.Mailbox().Pending())
	})

	t.Run("mailbox value is returned exactly once", func(t *testing.T) {
		var m *Multiplexer
		m, _, _ = newTestMultiplexer(
			func() {
				m.Mailbox().Put("green")
			},
		)

		c, err := m.AwaitChoice(context.Background())
		require.NoError(t, err)
		assert.Equal(t, types.Color("green"), c)
		assert.False(t, m.Mailbox().Pending())
	})

	t.Run("second write before read wins", func(t *testing.T) {
		var m *Multiplexer
		m, _, _ = newTestMultiplexer(
			func() {
				m.Mailbox().Put("green")
				m.Mailbox().Put("yellow")
			},
		)

		c, err := m.AwaitChoice(context.Background())
		require.NoError(t, err)
		assert.Equal(t, types.Color("yellow"), c)
		assert.False(t, m.Mailbox().Pending())
	})

	t.Run("stale mailbox value is cleared before waiting", func(t *testing.T) {
		var m *Multiplexer
		m, _, _ = newTestMultiplexer(
			func() {},
			func() {
				m.Mailbox().Put("blue")
			},
		)
		m.Mailbox().Put("red")

		c, err := m.AwaitChoice(context.Background())
		require.NoError(t, err)
		assert.Equal(t, types.Color("blue"), c)
	})

	t.Run("held switch yields one choice after release", func(t *testing.T) {
		var board *memory.Board
		var m *Multiplexer
		var s *scriptedSleep
		m, board, s = newTestMultiplexer(
			func() {}, // still held
			func() {}, // still held
			func() {
				board.Release("red")
			},
		)
		board.Press("red")

		c, err := m.AwaitChoice(context.Background())
		require.NoError(t, err)
		assert.Equal(t, types.Color("red"), c)
		assert.Equal(t, 3, s.calls)
	})

	t.Run("switches are scanned in palette order", func(t *testing.T) {
		m, board, _ := newTestMultiplexer()
		board.Press("yellow")
		board.Press("green")
		go func() {
			time.Sleep(10 * time.Millisecond)
			board.Release("green")
		}()

		// the scripted sleep does not block, so release happens on the real clock
		m.sleep = Sleep
		c, err := m.AwaitChoice(context.Background())
		require.NoError(t, err)
		assert.Equal(t, types.Color("green"), c)
	})

	t.Run("cancelled context", func(t *testing.T) {
		m, _, _ := newTestMultiplexer()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := m.AwaitChoice(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMultiplexer_StartRequested(t *testing.T) {
	m, board, _ := newTestMultiplexer()
	assert.False(t, m.StartRequested())

	m.Mailbox().Put("red")
	assert.True(t, m.StartRequested())
	// checking does not consume
	assert.True(t, m.Mailbox().Pending())
	m.Mailbox().Clear()

	board.Press("yellow")
	assert.True(t, m.StartRequested())
}

func TestSleep(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), 0))
	assert.NoError(t, Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}
