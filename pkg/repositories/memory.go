package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/cbodonnell/simon/pkg/repositories/models"
)

type MemoryRepository struct {
	lock   sync.RWMutex
	scores []*models.Score
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Close(ctx context.Context) error {
	return nil
}

func (r *MemoryRepository) AddScore(ctx context.Context, score *models.Score) error {
	if err := validateScore(score); err != nil {
		return err
	}
	record := *score
	record.AchievedAt = achievedAt(score)

	r.lock.Lock()
	defer r.lock.Unlock()
	r.scores = append(r.scores, &record)
	return nil
}

func (r *MemoryRepository) TopScores(ctx context.Context, limit int) ([]*models.Score, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.ranked(normalizeLimit(limit), func(*models.Score) bool { return true }), nil
}

func (r *MemoryRepository) PlayerScores(ctx context.Context, name string, limit int) ([]*models.Score, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	scores := r.ranked(normalizeLimit(limit), func(s *models.Score) bool { return s.Name == name })
	if len(scores) == 0 {
		return nil, &ErrNotFound{}
	}
	return scores, nil
}

// ranked must be called with the lock held.
func (r *MemoryRepository) ranked(limit int, keep func(*models.Score) bool) []*models.Score {
	out := make([]*models.Score, 0, len(r.scores))
	for _, s := range r.scores {
		if keep(s) {
			c := *s
			out = append(out, &c)
		}
	}
	// insertion order breaks ties between equal timestamps
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].AchievedAt.Before(out[j].AchievedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
