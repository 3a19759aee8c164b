package state

import (
	"context"
	"sync"
	"testing"

	"github.com/cbodonnell/simon/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStateManager(t *testing.T) {
	ctx := context.Background()
	m := NewInMemoryStateManager(types.MustPalette("red", "green"))

	s, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.PhaseAttract, s.Phase)
	assert.Equal(t, types.LedOff, s.Leds["red"])

	score := 4
	require.NoError(t, m.Update(ctx, func(s *types.Snapshot) {
		s.Phase = types.PhaseAwaitName
		s.PendingScore = &score
		s.Leds["red"] = types.LedOn
	}))

	s, err = m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.PhaseAwaitName, s.Phase)
	require.NotNil(t, s.PendingScore)
	assert.Equal(t, 4, *s.PendingScore)
	assert.NotZero(t, s.Timestamp)

	// mutating a returned copy does not leak back
	s.Leds["red"] = types.LedOff
	*s.PendingScore = 99
	again, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.LedOn, again.Leds["red"])
	assert.Equal(t, 4, *again.PendingScore)

	assert.Error(t, m.Update(ctx, nil))
}

func TestInMemoryStateManager_concurrent(t *testing.T) {
	ctx := context.Background()
	m := NewInMemoryStateManager(types.MustPalette("red", "green"))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = m.Update(ctx, func(s *types.Snapshot) {
				s.SequenceLength++
			})
		}()
		go func() {
			defer wg.Done()
			_, _ = m.Get(ctx)
		}()
	}
	wg.Wait()

	s, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, s.SequenceLength)
}
