package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/simon/pkg/game/types"
)

type InMemoryStateManager struct {
	lock     sync.RWMutex
	snapshot *types.Snapshot
}

func NewInMemoryStateManager(palette *types.Palette) *InMemoryStateManager {
	return &InMemoryStateManager{
		snapshot: types.NewSnapshot(palette),
	}
}

func (m *InMemoryStateManager) Get(ctx context.Context) (*types.Snapshot, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.snapshot.Copy(), nil
}

func (m *InMemoryStateManager) Update(ctx context.Context, fn func(s *types.Snapshot)) error {
	if fn == nil {
		return fmt.Errorf("update func is nil")
	}
	m.lock.Lock()
	defer m.lock.Unlock()

	fn(m.snapshot)
	m.snapshot.Timestamp = time.Now().UnixMilli()
	return nil
}
