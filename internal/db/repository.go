package db

import (
	"context"
	"time"
)

// Progress is a learner's running practice totals and streaks.
// LastPracticeDate is a YYYY-MM-DD date in UTC, empty before the first
// recorded session.
type Progress struct {
	VisitorID        string
	TotalSeconds     int64
	TotalWords       int64
	Sessions         int64
	CurrentStreak    int32
	LongestStreak    int32
	LastPracticeDate string
	UpdatedAt        time.Time
}

type PracticeSession struct {
	ID              int64
	VisitorID       string
	DurationSeconds int64
	WordsPracticed  int32
	WordsCorrect    int32
	PracticedOn     string
	CreatedAt       time.Time
}

// SpellingFeedback is a learner's suggestion of a spelling the generator
// should have accepted.
type SpellingFeedback struct {
	ID          int64
	Word        string
	Spelling    string
	Note        string
	Source      string
	SubmittedBy string
	CreatedAt   time.Time
}

// Gloss is a cached English meaning for a word outside the vocabulary.
type Gloss struct {
	Word      string
	Meaning   string
	Provider  string
	Model     string
	CreatedAt time.Time
}

// Parameter structs for repository methods

type UpsertProgressParams struct {
	VisitorID        string
	TotalSeconds     int64
	TotalWords       int64
	Sessions         int64
	CurrentStreak    int32
	LongestStreak    int32
	LastPracticeDate string
}

type CreatePracticeSessionParams struct {
	VisitorID       string
	DurationSeconds int64
	WordsPracticed  int32
	WordsCorrect    int32
	PracticedOn     string
}

type ListPracticeSessionsParams struct {
	VisitorID string
	Limit     int32
}

type CreateSpellingFeedbackParams struct {
	Word        string
	Spelling    string
	Note        string
	Source      string
	SubmittedBy string
}

type ListSpellingFeedbackParams struct {
	Word   string
	Limit  int32
	Offset int32
}

type UpsertGlossParams struct {
	Word     string
	Meaning  string
	Provider string
	Model    string
}

// Repository defines the interface for database operations
type Repository interface {
	// Progress
	GetProgress(ctx context.Context, visitorID string) (Progress, error)
	UpsertProgress(ctx context.Context, arg UpsertProgressParams) (Progress, error)

	// Practice sessions
	CreatePracticeSession(ctx context.Context, arg CreatePracticeSessionParams) (PracticeSession, error)
	ListPracticeSessions(ctx context.Context, arg ListPracticeSessionsParams) ([]PracticeSession, error)

	// Spelling feedback. An empty Word lists feedback for every word.
	CreateSpellingFeedback(ctx context.Context, arg CreateSpellingFeedbackParams) (SpellingFeedback, error)
	ListSpellingFeedback(ctx context.Context, arg ListSpellingFeedbackParams) ([]SpellingFeedback, error)
	CountSpellingFeedback(ctx context.Context) (int64, error)

	// Glosses
	GetGloss(ctx context.Context, word string) (Gloss, error)
	UpsertGloss(ctx context.Context, arg UpsertGlossParams) (Gloss, error)

	// Retention/Cleanup
	DeleteOldSessions(ctx context.Context, before time.Time) (int64, error)

	// Transaction support
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	// Lifecycle
	Close() error
}
