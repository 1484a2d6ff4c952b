// Package progress keeps each learner's practice totals and daily streaks.
package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jusunglee/typetoreveal/internal/db"
	"github.com/jusunglee/typetoreveal/internal/metrics"
)

const maxVisitorIDLen = 128

var ErrInvalidVisitor = errors.New("visitor id must be 1-128 characters")

// Session is one finished practice run.
type Session struct {
	Duration time.Duration
	Words    int
	Correct  int
	At       time.Time
}

type Summary struct {
	VisitorID        string `json:"visitor_id"`
	TotalSeconds     int64  `json:"total_seconds"`
	TotalWords       int64  `json:"total_words"`
	Sessions         int64  `json:"sessions"`
	CurrentStreak    int    `json:"current_streak"`
	LongestStreak    int    `json:"longest_streak"`
	LastPracticeDate string `json:"last_practice_date,omitempty"`
}

type Service struct {
	repo db.Repository
	now  func() time.Time
	log  *slog.Logger
}

type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(repo db.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now, log: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func validateVisitor(visitorID string) (string, error) {
	id := strings.TrimSpace(visitorID)
	if id == "" || len(id) > maxVisitorIDLen {
		return "", ErrInvalidVisitor
	}
	return id, nil
}

// Get returns the learner's summary. A learner with no sessions gets a zero
// summary.
func (s *Service) Get(ctx context.Context, visitorID string) (Summary, error) {
	id, err := validateVisitor(visitorID)
	if err != nil {
		return Summary{}, err
	}

	p, err := s.repo.GetProgress(ctx, id)
	if db.IsNoRows(err) {
		return Summary{VisitorID: id}, nil
	}
	if err != nil {
		return Summary{}, fmt.Errorf("loading progress: %w", err)
	}
	return toSummary(p), nil
}

// Record adds a session to the learner's totals and streak. Sessions with a
// duration under one second are ignored; recorded reports whether anything
// was stored.
func (s *Service) Record(ctx context.Context, visitorID string, sess Session) (sum Summary, recorded bool, err error) {
	id, err := validateVisitor(visitorID)
	if err != nil {
		return Summary{}, false, err
	}

	seconds := int64(sess.Duration / time.Second)
	if seconds <= 0 {
		existing, err := s.Get(ctx, id)
		return existing, false, err
	}

	at := sess.At
	if at.IsZero() {
		at = s.now()
	}
	today := at.UTC().Format(time.DateOnly)

	err = s.repo.WithTx(ctx, func(tx db.Repository) error {
		p, err := tx.GetProgress(ctx, id)
		if err != nil && !db.IsNoRows(err) {
			return fmt.Errorf("loading progress: %w", err)
		}

		current, longest := NextStreak(int(p.CurrentStreak), int(p.LongestStreak), p.LastPracticeDate, today)
		lastDay := p.LastPracticeDate
		if today > lastDay {
			lastDay = today
		}

		updated, err := tx.UpsertProgress(ctx, db.UpsertProgressParams{
			VisitorID:        id,
			TotalSeconds:     p.TotalSeconds + seconds,
			TotalWords:       p.TotalWords + int64(max(sess.Words, 0)),
			Sessions:         p.Sessions + 1,
			CurrentStreak:    int32(current),
			LongestStreak:    int32(longest),
			LastPracticeDate: lastDay,
		})
		if err != nil {
			return fmt.Errorf("saving progress: %w", err)
		}

		if _, err := tx.CreatePracticeSession(ctx, db.CreatePracticeSessionParams{
			VisitorID:       id,
			DurationSeconds: seconds,
			WordsPracticed:  int32(max(sess.Words, 0)),
			WordsCorrect:    int32(max(sess.Correct, 0)),
			PracticedOn:     today,
		}); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}

		sum = toSummary(updated)
		return nil
	})
	if err != nil {
		return Summary{}, false, err
	}

	metrics.PracticeSessions.Inc()
	s.log.Debug("recorded practice session", "visitor", id, "seconds", seconds, "streak", sum.CurrentStreak)
	return sum, true, nil
}

// Recent lists the learner's latest sessions, newest first.
func (s *Service) Recent(ctx context.Context, visitorID string, limit int) ([]db.PracticeSession, error) {
	id, err := validateVisitor(visitorID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	sessions, err := s.repo.ListPracticeSessions(ctx, db.ListPracticeSessionsParams{VisitorID: id, Limit: int32(limit)})
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, nil
}

func toSummary(p db.Progress) Summary {
	return Summary{
		VisitorID:        p.VisitorID,
		TotalSeconds:     p.TotalSeconds,
		TotalWords:       p.TotalWords,
		Sessions:         p.Sessions,
		CurrentStreak:    int(p.CurrentStreak),
		LongestStreak:    int(p.LongestStreak),
		LastPracticeDate: p.LastPracticeDate,
	}
}
