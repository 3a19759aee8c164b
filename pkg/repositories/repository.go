package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cbodonnell/simon/pkg/repositories/models"
)

// DefaultLimit is used when a query is given a non-positive limit.
const DefaultLimit = 10

// Repository persists high scores.
// Scores are ordered highest first, ties broken by the earliest achieved.
type Repository interface {
	Close(ctx context.Context) error
	// AddScore records a score, creating the player if needed.
	AddScore(ctx context.Context, score *models.Score) error
	// TopScores returns the best scores across all players.
	TopScores(ctx context.Context, limit int) ([]*models.Score, error)
	// PlayerScores returns the best scores of one player.
	// It returns ErrNotFound if the player has never saved a score.
	PlayerScores(ctx context.Context, name string, limit int) ([]*models.Score, error)
}

// Open selects a backend by the scheme of databaseURL:
// memory://, sqlite://<path>, postgres:// or postgresql://, redis:// or rediss://.
func Open(ctx context.Context, databaseURL string) (Repository, error) {
	var (
		repository Repository
		err        error
	)
	switch {
	case databaseURL == "" || strings.HasPrefix(databaseURL, "memory://"):
		return NewMemoryRepository(), nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		repository, err = NewSQLiteRepository(ctx, strings.TrimPrefix(databaseURL, "sqlite://"))
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		repository, err = NewPostgresRepository(ctx, databaseURL)
	case strings.HasPrefix(databaseURL, "redis://"), strings.HasPrefix(databaseURL, "rediss://"):
		repository, err = NewRedisRepository(ctx, databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database url scheme: %s", databaseURL)
	}
	if err != nil {
		return nil, err
	}
	return repository, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

func validateScore(score *models.Score) error {
	if score == nil {
		return fmt.Errorf("score is nil")
	}
	if score.Name == "" {
		return fmt.Errorf("score has no player name")
	}
	return nil
}

// achievedAt defaults the record time to now.
func achievedAt(score *models.Score) time.Time {
	if score.AchievedAt.IsZero() {
		return time.Now().UTC()
	}
	return score.AchievedAt.UTC()
}
