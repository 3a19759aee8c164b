package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cbodonnell/simon/pkg/repositories/models"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the database at path and applies the migrations.
func NewSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	err = migrate(ctx, "sqlite", func(ctx context.Context, statement string) error {
		_, err := db.ExecContext(ctx, statement)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) AddScore(ctx context.Context, score *models.Score) error {
	if err := validateScore(score); err != nil {
		return err
	}
	at := achievedAt(score).UnixMilli()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageError("begin transaction", err)
	}
	defer tx.Rollback()

	q := `
	INSERT INTO players (name, created_at) VALUES (?, ?)
	ON CONFLICT (name) DO NOTHING;
	`
	if _, err := tx.ExecContext(ctx, q, score.Name, at); err != nil {
		return storageError("insert player", err)
	}

	var playerID int64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM players WHERE name = ?", score.Name).Scan(&playerID); err != nil {
		return storageError("select player", err)
	}

	q = `
	INSERT INTO highscores (player_id, score, difficulty, session_id, achieved_at)
	VALUES (?, ?, ?, ?, ?);
	`
	if _, err := tx.ExecContext(ctx, q, playerID, score.Score, score.Difficulty, score.SessionID, at); err != nil {
		return storageError("insert score", err)
	}

	if err := tx.Commit(); err != nil {
		return storageError("commit transaction", err)
	}

	return nil
}

func (r *SQLiteRepository) TopScores(ctx context.Context, limit int) ([]*models.Score, error) {
	q := `
	SELECT p.name, h.score, h.difficulty, h.session_id, h.achieved_at
	FROM highscores h
	JOIN players p ON h.player_id = p.id
	ORDER BY h.score DESC, h.achieved_at ASC, h.id ASC
	LIMIT ?;
	`
	rows, err := r.db.QueryContext(ctx, q, normalizeLimit(limit))
	if err != nil {
		return nil, storageError("query top scores", err)
	}
	return scanSQLScores(rows)
}

func (r *SQLiteRepository) PlayerScores(ctx context.Context, name string, limit int) ([]*models.Score, error) {
	var playerID int64
	if err := r.db.QueryRowContext(ctx, "SELECT id FROM players WHERE name = ?", name).Scan(&playerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, storageError("select player", err)
	}

	q := `
	SELECT p.name, h.score, h.difficulty, h.session_id, h.achieved_at
	FROM highscores h
	JOIN players p ON h.player_id = p.id
	WHERE h.player_id = ?
	ORDER BY h.score DESC, h.achieved_at ASC, h.id ASC
	LIMIT ?;
	`
	rows, err := r.db.QueryContext(ctx, q, playerID, normalizeLimit(limit))
	if err != nil {
		return nil, storageError("query player scores", err)
	}
	return scanSQLScores(rows)
}

func scanSQLScores(rows *sql.Rows) ([]*models.Score, error) {
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
