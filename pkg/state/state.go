package state

import (
	"context"

	"github.com/cbodonnell/simon/pkg/game/types"
)

// StateManager provides shared access to the externally visible game state.
// Implementations must be thread-safe.
type StateManager interface {
	// Get returns a copy of the current snapshot.
	Get(ctx context.Context) (*types.Snapshot, error)
	// Update applies fn to the current snapshot atomically.
	Update(ctx context.Context, fn func(s *types.Snapshot)) error
}
