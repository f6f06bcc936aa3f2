// Package sqlite stores training stats in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/stats"
	"github.com/lox/blackjack/internal/stats/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store is a stats.Store backed by SQLite
type Store struct {
	db *sql.DB
}

var _ stats.Store = (*Store)(nil)

// Open opens the database at path and applies pending migrations
func Open(ctx context.Context, path string, clock quartz.Clock) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite stats path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS, clock.Now()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context) (stats.Stats, error) {
	var (
		out       stats.Stats
		updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT total_attempts, correct_attempts, streak, best_streak, updated_at
FROM training_stats WHERE id = 1`).Scan(
		&out.TotalAttempts, &out.CorrectAttempts, &out.Streak, &out.BestStreak, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return stats.Stats{}, stats.ErrNotFound
	}
	if err != nil {
		return stats.Stats{}, fmt.Errorf("load training stats: %w", err)
	}
	if updatedAt > 0 {
		out.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	}

	rows, err := s.db.QueryContext(ctx, `SELECT hand_type, total, correct FROM training_categories`)
	if err != nil {
		return stats.Stats{}, fmt.Errorf("load training categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			handType string
			c        stats.CategoryStats
		)
		if err := rows.Scan(&handType, &c.Total, &c.Correct); err != nil {
			return stats.Stats{}, fmt.Errorf("scan training category: %w", err)
		}
		switch hand.Type(handType) {
		case hand.Hard:
			out.ByCategory.Hard = c
		case hand.Soft:
			out.ByCategory.Soft = c
		case hand.Pair:
			out.ByCategory.Pair = c
		}
	}
	if err := rows.Err(); err != nil {
		return stats.Stats{}, fmt.Errorf("iterate training categories: %w", err)
	}
	if !out.Valid() {
		return stats.Stats{}, fmt.Errorf("training stats row is inconsistent")
	}
	return out, nil
}

func (s *Store) Save(ctx context.Context, st stats.Stats) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var updatedAt int64
	if !st.UpdatedAt.IsZero() {
		updatedAt = st.UpdatedAt.UTC().UnixMilli()
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO training_stats (id, total_attempts, correct_attempts, streak, best_streak, updated_at)
VALUES (1, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	total_attempts = excluded.total_attempts,
	correct_attempts = excluded.correct_attempts,
	streak = excluded.streak,
	best_streak = excluded.best_streak,
	updated_at = excluded.updated_at`,
		st.TotalAttempts, st.CorrectAttempts, st.Streak, st.BestStreak, updatedAt,
	); err != nil {
		return fmt.Errorf("save training stats: %w", err)
	}

	for _, t := range hand.AllTypes {
		c := st.ByCategory.Get(t)
		if _, err := tx.ExecContext(ctx, `
INSERT INTO training_categories (hand_type, total, correct) VALUES (?, ?, ?)
ON CONFLICT(hand_type) DO UPDATE SET total = excluded.total, correct = excluded.correct`,
			string(t), c.Total, c.Correct,
		); err != nil {
			return fmt.Errorf("save %s category: %w", t, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit training stats: %w", err)
	}
	return nil
}
