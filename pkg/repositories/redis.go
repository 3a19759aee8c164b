package repositories

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/cbodonnell/simon/pkg/repositories/models"
	backend "github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "simon:"
	maxMillis      = 9_999_999_999_999
)

type RedisRepository struct {
	client *backend.Client
	prefix string
}

// NewRedisRepository connects using a redis:// or rediss:// url.
func NewRedisRepository(ctx context.Context, url string) (*RedisRepository, error) {
	opts, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %v", err)
	}
	client := backend.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}
	return NewRedisRepositoryFromClient(client), nil
}

// NewRedisRepositoryFromClient wraps an existing client.
func NewRedisRepositoryFromClient(client *backend.Client) *RedisRepository {
	return &RedisRepository{
		client: client,
		prefix: redisKeyPrefix,
	}
}

func (r *RedisRepository) seqKey() string {
	return r.prefix + "highscores:seq"
}

func (r *RedisRepository) topKey() string {
	return r.prefix + "highscores"
}

func (r *RedisRepository) playersKey() string {
	return r.prefix + "players"
}

func (r *RedisRepository) playerKey(name string) string {
	return r.prefix + "player:" + name
}

func (r *RedisRepository) scoreKey(id string) string {
	return r.prefix + "score:" + id
}

// member builds the sorted set member of a score. Equal scores are ordered by
// member, and ZREVRANGE reads members in descending order, so the time and id
// are inverted to rank the earliest achieved first.
func member(at time.Time, id int64) string {
	return fmt.Sprintf("%013d:%019d", maxMillis-at.UnixMilli(), math.MaxInt64-id)
}

func (r *RedisRepository) Close(ctx context.Context) error {
	return r.client.Close()
}

func (r *RedisRepository) AddScore(ctx context.Context, score *models.Score) error {
	if err := validateScore(score); err != nil {
		return err
	}
	at := achievedAt(score)

	id, err := r.client.Incr(ctx, r.seqKey()).Result()
	if err != nil {
		return storageError("allocate score id", err)
	}

	m := member(at, id)
	z := backend.Z{Score: float64(score.Score), Member: m}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, r.scoreKey(m), map[string]interface{}{
		"name":        score.Name,
		"score":       score.Score,
		"difficulty":  score.Difficulty,
		"session_id":  score.SessionID,
		"achieved_at": at.UnixMilli(),
	})
	pipe.SAdd(ctx, r.playersKey(), score.Name)
	pipe.ZAdd(ctx, r.topKey(), z)
	pipe.ZAdd(ctx, r.playerKey(score.Name), z)
	if _, err := pipe.Exec(ctx); err != nil {
		return storageError("save score", err)
	}

	return nil
}

func (r *RedisRepository) TopScores(ctx context.Context, limit int) ([]*models.Score, error) {
	return r.ranked(ctx, r.topKey(), limit)
}

func (r *RedisRepository) PlayerScores(ctx context.Context, name string, limit int) ([]*models.Score, error) {
	known, err := r.client.SIsMember(ctx, r.playersKey(), name).Result()
	if err != nil {
		return nil, storageError("lookup player", err)
	}
	if !known {
		return nil, &ErrNotFound{}
	}
	return r.ranked(ctx, r.playerKey(name), limit)
}

func (r *RedisRepository) ranked(ctx context.Context, key string, limit int) ([]*models.Score, error) {
	ids, err := r.client.ZRevRange(ctx, key, 0, int64(normalizeLimit(limit)-1)).Result()
	if err != nil {
		return nil, storageError("query scores", err)
	}

	pipe := r.client.Pipeline()
	cmds := make([]*backend.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, r.scoreKey(id))
	}
	if len(ids) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, storageError("load scores", err)
		}
	}

	scores := make([]*models.Score, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			return nil, storageError("load scores", fmt.Errorf("score %s has no record", ids[i]))
		}
		s, err := parseRedisScore(fields)
		if err != nil {
			return nil, storageError("parse score", err)
		}
		scores = append(scores, s)
	}
	return scores, nil
}

func parseRedisScore(fields map[string]string) (*models.Score, error) {
	score, err := strconv.Atoi(fields["score"])
	if err != nil {
		return nil, fmt.Errorf("invalid score %q: %v", fields["score"], err)
	}
	at, err := strconv.ParseInt(fields["achieved_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid achieved_at %q: %v", fields["achieved_at"], err)
	}
	return &models.Score{
		Name:       fields["name"],
		Score:      score,
		Difficulty: fields["difficulty"],
		SessionID:  fields["session_id"],
		AchievedAt: time.UnixMilli(at).UTC(),
	}, nil
}
