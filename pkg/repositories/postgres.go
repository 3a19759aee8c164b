package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/simon/pkg/log"
	"github.com/cbodonnell/simon/pkg/repositories/models"
	"github.com/jackc/pgx/v5"
)

type PostgresRepository struct {
	// pgx.Conn is not safe for concurrent use
	lock sync.Mutex
	conn *pgx.Conn
}

// NewPostgresRepository connects to the database and applies the migrations.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (*PostgresRepository, error) {
	conn, err := connectDb(ctx, connStr)
	if err != nil {
		return nil, err
	}

	err = migrate(ctx, "postgres", func(ctx context.Context, statement string) error {
		_, err := conn.Exec(ctx, statement)
		return err
	})
	if err != nil {
		conn.Close(ctx)
		return nil, err
	}

	return &PostgresRepository{
		conn: conn,
	}, nil
}

func connectDb(ctx context.Context, connStr string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	var username string
	var database string
	err = conn.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to query database: %v", err)
	}

	log.Info("Connected to %s as %s", database, username)

	return conn, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) AddScore(ctx context.Context, score *models.Score) error {
	if err := validateScore(score); err != nil {
		return err
	}
	at := achievedAt(score).UnixMilli()

	r.lock.Lock()
	defer r.lock.Unlock()

	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return storageError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	q := `
	INSERT INTO players (name, created_at) VALUES ($1, $2)
	ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
	RETURNING id;
	`
	var playerID int64
	if err := tx.QueryRow(ctx, q, score.Name, at).Scan(&playerID); err != nil {
		return storageError("upsert player", err)
	}

	q = `
	INSERT INTO highscores (player_id, score, difficulty, session_id, achieved_at)
	VALUES ($1, $2, $3, $4, $5);
	`
	if _, err := tx.Exec(ctx, q, playerID, score.Score, score.Difficulty, score.SessionID, at); err != nil {
		return storageError("insert score", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storageError("commit transaction", err)
	}

	return nil
}

func (r *PostgresRepository) TopScores(ctx context.Context, limit int) ([]*models.Score, error) {
	q := `
	SELECT p.name, h.score, h.difficulty, h.session_id, h.achieved_at
	FROM highscores h
	JOIN players p ON h.player_id = p.id
	ORDER BY h.score DESC, h.achieved_at ASC, h.id ASC
	LIMIT $1;
	`
	r.lock.Lock()
	defer r.lock.Unlock()

	rows, err := r.conn.Query(ctx, q, normalizeLimit(limit))
	if err != nil {
		return nil, storageError("query top scores", err)
	}
	return scanPgScores(rows)
}

func (r *PostgresRepository) PlayerScores(ctx context.Context, name string, limit int) ([]*models.Score, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	var playerID int64
	if err := r.conn.QueryRow(ctx, "SELECT id FROM players WHERE name = $1", name).Scan(&playerID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, storageError("select player", err)
	}

	q := `
	SELECT p.name, h.score, h.difficulty, h.session_id, h.achieved_at
	FROM highscores h
	JOIN players p ON h.player_id = p.id
	WHERE h.player_id = $1
	ORDER BY h.score DESC, h.achieved_at ASC, h.id ASC
	LIMIT $2;
	`
	rows, err := r.conn.Query(ctx, q, playerID, normalizeLimit(limit))
	if err != nil {
		return nil, storageError("query player scores", err)
	}
	return scanPgScores(rows)
}

func scanPgScores(rows pgx.Rows) ([]*models.Score, error) {
	defer rows.Close()

	scores := make([]*models.Score, 0)
	for rows.Next() {
		var s models.Score
		var at int64
		if err := rows.Scan(&s.Name, &s.Score, &s.Difficulty, &s.SessionID, &at); err != nil {
			return nil, storageError("scan score", err)
		}
		s.AchievedAt = time.UnixMilli(at).UTC()
		scores = append(scores, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate scores", err)
	}
	return scores, nil
}
