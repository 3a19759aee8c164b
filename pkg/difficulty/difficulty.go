// Package difficulty holds the shared timing profile read by the engine.
package difficulty

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cbodonnell/simon/pkg/game/types"
)

const (
	LevelEasy   = "easy"
	LevelMedium = "medium"
	LevelHard   = "hard"

	// LevelCustom is reported after SetProfile is called directly.
	LevelCustom = "custom"
)

// DefaultPresets returns the built-in named profiles.
func DefaultPresets() map[string]types.DifficultyProfile {
	return map[string]types.DifficultyProfile{
		LevelEasy: {
			FlashDuration:  800 * time.Millisecond,
			InterStepPause: 500 * time.Millisecond,
		},
		LevelMedium: {
			FlashDuration:  500 * time.Millisecond,
			InterStepPause: 300 * time.Millisecond,
		},
		LevelHard: {
			FlashDuration:  200 * time.Millisecond,
			InterStepPause: 100 * time.Millisecond,
		},
	}
}

// ErrUnknownLevel is returned when a preset name is not recognized.
type ErrUnknownLevel struct {
	Level string
}

func (e *ErrUnknownLevel) Error() string {
	return fmt.Sprintf("unknown difficulty level %q", e.Level)
}

// IsUnknownLevel returns true if the error is an ErrUnknownLevel.
func IsUnknownLevel(err error) bool {
	_, ok := err.(*ErrUnknownLevel)
	return ok
}

// Controller is a thread-safe holder of the active profile. Writes replace the
// whole profile and the last write wins.
type Controller struct {
	lock    sync.RWMutex
	profile types.DifficultyProfile
	level   string
	presets map[string]types.DifficultyProfile
}

type NewControllerOptions struct {
	// Presets defaults to DefaultPresets
	Presets map[string]types.DifficultyProfile
	// Level is the preset applied at construction, defaults to LevelMedium
	Level string
}

// NewController creates a Controller with the initial level applied.
func NewController(opts NewControllerOptions) (*Controller, error) {
	presets := opts.Presets
	if len(presets) == 0 {
		presets = DefaultPresets()
	}
	c := &Controller{
		presets: make(map[string]types.DifficultyProfile, len(presets)),
	}
	for name, p := range presets {
		if p.FlashDuration < 0 || p.InterStepPause < 0 {
			return nil, fmt.Errorf("preset %q has a negative duration", name)
		}
		c.presets[strings.ToLower(name)] = p
	}

	level := opts.Level
	if level == "" {
		level = LevelMedium
	}
	if _, err := c.Apply(level); err != nil {
		return nil, err
	}
	return c, nil
}

// SetProfile replaces the active profile. Negative durations are rejected.
func (c *Controller) SetProfile(flash, pause time.Duration) error {
	if flash < 0 || pause < 0 {
		return fmt.Errorf("durations must be non-negative: flash=%v pause=%v", flash, pause)
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	c.profile = types.DifficultyProfile{
		FlashDuration:  flash,
		InterStepPause: pause,
	}
	c.level = LevelCustom
	return nil
}

// CurrentProfile returns the latest profile.
func (c *Controller) CurrentProfile() types.DifficultyProfile {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.profile
}

// Level returns the name of the active preset, or LevelCustom.
func (c *Controller) Level() string {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.level
}

// Resolve looks up a preset by name, case-insensitively.
func (c *Controller) Resolve(level string) (types.DifficultyProfile, error) {
	p, ok := c.presets[strings.ToLower(strings.TrimSpace(level))]
	if !ok {
		return types.DifficultyProfile{}, &ErrUnknownLevel{Level: level}
	}
	return p, nil
}

// Apply resolves a preset and makes it the active profile.
// It returns the normalized level name.
func (c *Controller) Apply(level string) (string, error) {
	p, err := c.Resolve(level)
	if err != nil {
		return "", err
	}
	name := strings.ToLower(strings.TrimSpace(level))

	c.lock.Lock()
	defer c.lock.Unlock()
	c.profile = p
	c.level = name
	return name, nil
}

// Levels returns the preset names from the slowest flash to the fastest.
func (c *Controller) Levels() []string {
	names := make([]string, 0, len(c.presets))
	for name := range c.presets {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := c.presets[names[i]], c.presets[names[j]]
		if a.FlashDuration != b.FlashDuration {
			return a.FlashDuration > b.FlashDuration
		}
		return names[i] < names[j]
	})
	return names
}
