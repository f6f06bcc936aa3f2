// Package stats tracks training accuracy and persists it between sessions.
package stats

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/lox/blackjack/internal/hand"
)

// ErrNotFound is returned by a Store that has nothing persisted yet
var ErrNotFound = errors.New("no stored training stats")

// CategoryStats counts answers for one hand type
type CategoryStats struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

// Rate is the rounded percentage of correct answers, 0 when empty
func (c CategoryStats) Rate() int {
	return percent(c.Correct, c.Total)
}

// Categories holds per hand type counters
type Categories struct {
	Hard CategoryStats `json:"hard"`
	Soft CategoryStats `json:"soft"`
	Pair CategoryStats `json:"pair"`
}

// Get returns the counters for a hand type
func (c Categories) Get(t hand.Type) CategoryStats {
	switch t {
	case hand.Soft:
		return c.Soft
	case hand.Pair:
		return c.Pair
	default:
		return c.Hard
	}
}

func (c *Categories) ptr(t hand.Type) *CategoryStats {
	switch t {
	case hand.Soft:
		return &c.Soft
	case hand.Pair:
		return &c.Pair
	default:
		return &c.Hard
	}
}

// Stats is the cumulative training record
type Stats struct {
	TotalAttempts   int        `json:"totalAttempts"`
	CorrectAttempts int        `json:"correctAttempts"`
	Streak          int        `json:"streak"`
	BestStreak      int        `json:"bestStreak"`
	ByCategory      Categories `json:"byCategory"`
	UpdatedAt       time.Time  `json:"updatedAt,omitzero"`
}

// Record returns the stats after one answer. A correct answer extends the
// streak and may raise the best streak; a wrong one resets the streak.
func (s Stats) Record(t hand.Type, correct bool, now time.Time) Stats {
	s.TotalAttempts++
	cat := s.ByCategory.ptr(t)
	cat.Total++
	if correct {
		s.CorrectAttempts++
		cat.Correct++
		s.Streak++
		s.BestStreak = max(s.BestStreak, s.Streak)
	} else {
		s.Streak = 0
	}
	s.UpdatedAt = now
	return s
}

// SuccessRate is the rounded overall percentage of correct answers
func (s Stats) SuccessRate() int {
	return percent(s.CorrectAttempts, s.TotalAttempts)
}

// Valid reports whether the counters are internally consistent. Stores use
// it to reject corrupt records.
func (s Stats) Valid() bool {
	if s.TotalAttempts < 0 || s.CorrectAttempts < 0 || s.Streak < 0 {
		return false
	}
	if s.CorrectAttempts > s.TotalAttempts || s.Streak > s.BestStreak || s.BestStreak > s.CorrectAttempts {
		return false
	}
	for _, t := range hand.AllTypes {
		c := s.ByCategory.Get(t)
		if c.Total < 0 || c.Correct < 0 || c.Correct > c.Total {
			return false
		}
	}
	return true
}

func percent(n, d int) int {
	if d == 0 {
		return 0
	}
	return int(math.Round(float64(n) * 100 / float64(d)))
}

// Store persists training stats
type Store interface {
	// Load returns ErrNotFound when nothing has been saved
	Load(ctx context.Context) (Stats, error)
	Save(ctx context.Context, s Stats) error
}
