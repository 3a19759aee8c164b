// Package terminal renders the board in a terminal and turns key presses into switch presses.
package terminal

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/cbodonnell/simon/pkg/game/types"
	"github.com/cbodonnell/simon/pkg/hardware/memory"
	"github.com/cbodonnell/simon/pkg/presentation"
	"github.com/gdamore/tcell/v2"
)

const (
	// DefaultPressDuration is how long a key press holds the simulated switch down
	DefaultPressDuration = 200 * time.Millisecond
)

// Board is a simulated board drawn on a tcell screen.
type Board struct {
	*memory.Board
	screen        tcell.Screen
	palette       *types.Palette
	keys          map[rune]types.Color
	pressDuration time.Duration
	onQuit        func()

	lock   sync.Mutex
	status string
}

type NewBoardOptions struct {
	Palette *types.Palette
	// Screen defaults to a new terminal screen
	Screen tcell.Screen
	// PressDuration defaults to DefaultPressDuration
	PressDuration time.Duration
	// OnQuit is called when the user presses q, Esc or Ctrl-C
	OnQuit func()
}

// NewBoard creates and initializes the terminal screen.
func NewBoard(opts NewBoardOptions) (*Board, error) {
	screen := opts.Screen
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("failed to create screen: %v", err)
		}
		screen = s
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %v", err)
	}

	pressDuration := opts.PressDuration
	if pressDuration <= 0 {
		pressDuration = DefaultPressDuration
	}

	b := &Board{
		Board:         memory.NewBoard(opts.Palette),
		screen:        screen,
		palette:       opts.Palette,
		keys:          KeyMap(opts.Palette),
		pressDuration: pressDuration,
		onQuit:        opts.OnQuit,
	}
	b.Board.OnChange(func(memory.Change) {
		b.draw()
	})
	b.draw()

	return b, nil
}

// KeyMap assigns keys to colors: the digits 1-9 in palette order, plus the
// first letter of each color name unless another color already claimed it.
func KeyMap(palette *types.Palette) map[rune]types.Color {
	keys := make(map[rune]types.Color)
	for i, c := range palette.Colors() {
		if i < 9 {
			keys[rune('1'+i)] = c
		}
	}
	for _, c := range palette.Colors() {
		name := strings.TrimSpace(string(c))
		if name == "" {
			continue
		}
		r := unicode.ToLower([]rune(name)[0])
		if r == 'q' || unicode.IsDigit(r) {
			continue
		}
		if _, taken := keys[r]; !taken {
			keys[r] = c
		}
	}
	return keys
}

// Run processes terminal events until ctx is done or the user quits.
func (b *Board) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		b.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	for {
		ev := b.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
				(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
				if b.onQuit != nil {
					b.onQuit()
				}
				return
			}
			if ev.Key() == tcell.KeyRune {
				b.handleRune(ev.Rune())
			}
		case *tcell.EventResize:
			b.screen.Sync()
			b.draw()
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return
			}
			b.draw()
		}
	}
}

func (b *Board) handleRune(r rune) {
	color, ok := b.keys[unicode.ToLower(r)]
	if !ok {
		return
	}
	b.Board.Tap(color, b.pressDuration)
}

// Observe shows game status events in the status line until the subscription closes.
func (b *Board) Observe(ctx context.Context, sub *presentation.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.C():
			if !ok {
				return
			}
			switch payload := event.Payload.(type) {
			case types.GameStatusPayload:
				b.SetStatus(payload.Msg)
			case types.GameOverPayload:
				b.SetStatus(fmt.Sprintf("Game over! Score: %d", payload.Score))
			case types.DifficultyChangedPayload:
				b.SetStatus(fmt.Sprintf("Difficulty: %s", payload.Level))
			}
		}
	}
}

// SetStatus replaces the status line.
func (b *Board) SetStatus(status string) {
	b.lock.Lock()
	b.status = status
	b.lock.Unlock()
	b.draw()
}

func (b *Board) draw() {
	b.lock.Lock()
	status := b.status
	b.lock.Unlock()

	s := b.screen
	s.Clear()
	drawText(s, 1, 0, tcell.StyleDefault.Bold(true), "Simon Says GPIO Emulator")

	keyFor := make(map[types.Color][]rune)
	for r, c := range b.keys {
		keyFor[c] = append(keyFor[c], r)
	}

	for i, c := range b.palette.Colors() {
		y := 2 + i*2
		lit := b.Board.LED(c)
		style := tcell.StyleDefault.Foreground(tcell.ColorGray)
		label := "OFF"
		if lit {
			style = tcell.StyleDefault.Background(tcell.GetColor(string(c))).Foreground(tcell.ColorBlack)
			label = "ON "
		}
		drawText(s, 1, y, tcell.StyleDefault, fmt.Sprintf("%-10s", strings.ToUpper(string(c))))
		drawText(s, 12, y, style, fmt.Sprintf(" %s ", label))
		drawText(s, 18, y, tcell.StyleDefault.Foreground(tcell.ColorGray), fmt.Sprintf("keys: %s", sortedKeys(keyFor[c])))
	}

	y := 2 + b.palette.Len()*2
	buzzerStyle := tcell.StyleDefault
	buzzerLabel := "BUZZER"
	if b.Board.Buzzer() {
		buzzerStyle = tcell.StyleDefault.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack)
		buzzerLabel = "BEEP!"
	}
	drawText(s, 1, y, buzzerStyle, fmt.Sprintf(" %-8s ", buzzerLabel))
	drawText(s, 1, y+2, tcell.StyleDefault, status)
	drawText(s, 1, y+4, tcell.StyleDefault.Foreground(tcell.ColorGray), "q to quit")
	s.Show()
}

// sortedKeys lists digits before letters, each group in ascending order.
func sortedKeys(keys []rune) string {
	sorted := slices.Clone(keys)
	slices.SortFunc(sorted, func(a, b rune) int {
		da, db := unicode.IsDigit(a), unicode.IsDigit(b)
		if da != db {
			if da {
				return -1
			}
			return 1
		}
		return cmp.Compare(a, b)
	})
	out := make([]string, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, string(r))
	}
	return strings.Join(out, " ")
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}

// Close restores the terminal.
func (b *Board) Close() error {
	b.screen.Fini()
	return b.Board.Close()
}
