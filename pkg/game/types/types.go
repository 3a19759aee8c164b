package types

import (
	"errors"
	"fmt"
	"strings"
)

// Color is a symbolic token identifying one LED/switch pair.
type Color string

func (c Color) String() string {
	return string(c)
}

// ErrUnknownColor is returned when a token does not name a configured color.
var ErrUnknownColor = errors.New("unknown color")

// Palette is the ordered set of configured colors.
// The order is the configuration order and never changes for the lifetime of the process.
type Palette struct {
	colors []Color
	index  map[Color]int
}

// NewPalette creates a palette from colors in configuration order.
// Duplicate and empty names are rejected.
func NewPalette(colors ...Color) (*Palette, error) {
	if len(colors) == 0 {
		return nil, fmt.Errorf("palette must contain at least one color")
	}
	p := &Palette{
		colors: make([]Color, 0, len(colors)),
		index:  make(map[Color]int, len(colors)),
	}
	for _, c := range colors {
		if strings.TrimSpace(string(c)) == "" {
			return nil, fmt.Errorf("color name cannot be empty")
		}
		if _, ok := p.index[c]; ok {
			return nil, fmt.Errorf("duplicate color %q", c)
		}
		p.index[c] = len(p.colors)
		p.colors = append(p.colors, c)
	}
	return p, nil
}

// MustPalette is like NewPalette but panics on error.
func MustPalette(colors ...Color) *Palette {
	p, err := NewPalette(colors...)
	if err != nil {
		panic(err)
	}
	return p
}

// Colors returns a copy of the colors in configuration order.
func (p *Palette) Colors() []Color {
	out := make([]Color, len(p.colors))
	copy(out, p.colors)
	return out
}

// Len returns the number of colors.
func (p *Palette) Len() int {
	return len(p.colors)
}

// At returns the color at position i.
func (p *Palette) At(i int) Color {
	return p.colors[i]
}

// Contains reports whether c is a configured color.
func (p *Palette) Contains(c Color) bool {
	_, ok := p.index[c]
	return ok
}

// Parse resolves a raw token to a configured color.
func (p *Palette) Parse(raw string) (Color, error) {
	c := Color(strings.TrimSpace(strings.ToLower(raw)))
	if !p.Contains(c) {
		return "", fmt.Errorf("%w: %q", ErrUnknownColor, raw)
	}
	return c, nil
}

// Sequence is the growing list of colors the player has to repeat.
// It is only ever appended to or reset.
type Sequence struct {
	colors []Color
}

// Append adds one color to the end of the sequence.
func (s *Sequence) Append(c Color) {
	s.colors = append(s.colors, c)
}

// Reset empties the sequence.
func (s *Sequence) Reset() {
	s.colors = nil
}

// Len returns the number of colors in the sequence.
func (s *Sequence) Len() int {
	return len(s.colors)
}

// Colors returns a copy of the sequence.
func (s *Sequence) Colors() []Color {
	out := make([]Color, len(s.colors))
	copy(out, s.colors)
	return out
}
