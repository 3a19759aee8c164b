package attract

import (
	"context"
	"testing"
	"time"

	"github.com/cbodonnell/simon/pkg/game/types"
	"github.com/cbodonnell/simon/pkg/hardware/memory"
	"github.com/cbodonnell/simon/pkg/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func colorsN(n int) []types.Color {
	all := []types.Color{"red", "green", "blue", "yellow", "white", "orange", "purple"}
	return all[:n]
}

func TestCycle(t *testing.T) {
	tests := []struct {
		name   string
		colors []types.Color
		want   []types.Color
	}{
		{
			name:   "four colors",
			colors: colorsN(4),
			want:   []types.Color{"red", "green", "blue", "yellow", "blue", "green"},
		},
		{
			name:   "two colors",
			colors: colorsN(2),
			want:   []types.Color{"red", "green"},
		},
		{
			name:   "one color",
			colors: colorsN(1),
			want:   []types.Color{"red"},
		},
		{
			name:   "no colors",
			colors: nil,
			want:   []types.Color{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Cycle(tt.colors))
		})
	}
}

func TestCycle_lengthAndVisits(t *testing.T) {
	for n := 2; n <= 7; n++ {
		colors := colorsN(n)
		cycle := Cycle(colors)
		require.Len(t, cycle, 2*n-2)

		visits := map[types.Color]int{}
		for _, c := range cycle {
			visits[c]++
		}
		for i, c := range colors {
			want := 2
			if i == 0 || i == n-1 {
				want = 1
			}
			assert.Equal(t, want, visits[c], "n=%d color=%s", n, c)
		}
	}
}

func TestPingPong_restartable(t *testing.T) {
	seq := PingPong(colorsN(3))

	take := func(n int) []types.Color {
		var out []types.Color
		for c := range seq {
			out = append(out, c)
			if len(out) == n {
				break
			}
		}
		return out
	}

	want := []types.Color{"red", "green", "blue", "green", "red", "green", "blue"}
	assert.Equal(t, want, take(7))
	assert.Equal(t, want[:3], take(3))
}

type countingSleep struct {
	calls   int
	onCall  map[int]func()
	elapsed time.Duration
}

func (s *countingSleep) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.calls++
	s.elapsed += d
	if f, ok := s.onCall[s.calls]; ok {
		f()
	}
	return nil
}

func newTestAnimator(s *countingSleep) (*Animator, *memory.Board, *input.Multiplexer) {
	palette := types.MustPalette(colorsN(4)...)
	board := memory.NewBoard(palette)
	board.Record()
	mux := input.NewMultiplexer(input.NewMultiplexerOptions{
		Board:   board,
		Palette: palette,
		Sleep:   s.sleep,
	})
	a := NewAnimator(NewAnimatorOptions{
		Board:       board,
		Palette:     palette,
		Multiplexer: mux,
		Tick:        100 * time.Millisecond,
		SubTick:     10 * time.Millisecond,
		Settle:      500 * time.Millisecond,
		Sleep:       s.sleep,
	})
	return a, board, mux
}

func TestAnimator_RunUntilStart(t *testing.T) {
	t.Run("remote input starts and is drained", func(t *testing.T) {
		s := &countingSleep{onCall: map[int]func(){}}
		a, board, mux := newTestAnimator(s)
		// 10 sub ticks per LED; arrive while the third LED is lit
		s.onCall[25] = func() {
			mux.Mailbox().Put("green")
		}

		require.NoError(t, a.RunUntilStart(context.Background()))

		assert.False(t, mux.Mailbox().Pending())
		for _, c := range colorsN(4) {
			assert.False(t, board.LED(c))
		}

		var lit []types.Color
		for _, change := range board.History() {
			if change.On && !change.Buzzer {
				lit = append(lit, change.Color)
			}
		}
		assert.Equal(t, []types.Color{"red", "green", "blue"}, lit)
		// 25 sub ticks plus the settle delay
		assert.Equal(t, 25*10*time.Millisecond+500*time.Millisecond, s.elapsed)
	})

	t.Run("physical press waits for release then settles", func(t *testing.T) {
		s := &countingSleep{onCall: map[int]func(){}}
		a, board, _ := newTestAnimator(s)
		s.onCall[3] = func() {
			board.Press("yellow")
		}
		s.onCall[6] = func() {
			board.Release("yellow")
		}

		require.NoError(t, a.RunUntilStart(context.Background()))
		assert.False(t, board.IsPressed("yellow"))
		// 3 sub ticks, 3 release polls, 1 settle
		assert.Equal(t, 7, s.calls)
	})

	t.Run("stale remote input from before attract is ignored", func(t *testing.T) {
		s := &countingSleep{onCall: map[int]func(){}}
		a, _, mux := newTestAnimator(s)
		mux.Mailbox().Put("red")
		s.onCall[42] = func() {
			mux.Mailbox().Put("blue")
		}

		require.NoError(t, a.RunUntilStart(context.Background()))
		assert.Equal(t, 43, s.calls)
	})

	t.Run("cancelled context", func(t *testing.T) {
		s := &countingSleep{}
		a, board, _ := newTestAnimator(s)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.ErrorIs(t, a.RunUntilStart(ctx), context.Canceled)
		assert.False(t, board.LED("red"))
	})
}
