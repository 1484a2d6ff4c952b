package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jusunglee/typetoreveal/internal/db"
)

//go:embed schema.sql
var schemaSQL string

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements db.Repository using PostgreSQL via pgx
type Repository struct {
	pool *pgxpool.Pool
	q    querier
	inTx bool
}

// New creates a new PostgreSQL repository
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	pool, err := db.NewPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &Repository{pool: pool, q: pool}, nil
}

// Migrate applies the embedded schema. It is idempotent.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// Stat exposes pool statistics for metrics.
func (r *Repository) Stat() *pgxpool.Stat {
	return r.pool.Stat()
}

func (r *Repository) Close() error {
	if !r.inTx {
		r.pool.Close()
	}
	return nil
}

func (r *Repository) WithTx(ctx context.Context, fn func(repo db.Repository) error) error {
	if r.inTx {
		return fn(r)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	// If fn() panics, the normal err-check rollback below won't run.
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback(ctx)
			panic(p)
		}
	}()

	err = fn(&Repository{pool: r.pool, q: tx, inTx: true})
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func noRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return db.ErrNoRows
	}
	return err
}

// Progress methods

const progressColumns = `visitor_id, total_seconds, total_words, sessions, current_streak, longest_streak,
	last_practice_date, updated_at`

func (r *Repository) GetProgress(ctx context.Context, visitorID string) (db.Progress, error) {
	rows, err := r.q.Query(ctx, `SELECT `+progressColumns+` FROM progress WHERE visitor_id = $1`, visitorID)
	if err != nil {
		return db.Progress{}, err
	}
	p, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[db.Progress])
	return p, noRows(err)
}

func (r *Repository) UpsertProgress(ctx context.Context, arg db.UpsertProgressParams) (db.Progress, error) {
	rows, err := r.q.Query(ctx, `
		INSERT INTO progress (visitor_id, total_seconds, total_words, sessions, current_streak,
		                      longest_streak, last_practice_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (visitor_id) DO UPDATE SET
			total_seconds = EXCLUDED.total_seconds,
			total_words = EXCLUDED.total_words,
			sessions = EXCLUDED.sessions,
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			last_practice_date = EXCLUDED.last_practice_date,
			updated_at = NOW()
		RETURNING `+progressColumns,
		arg.VisitorID, arg.TotalSeconds, arg.TotalWords, arg.Sessions, arg.CurrentStreak,
		arg.LongestStreak, arg.LastPracticeDate)
	if err != nil {
		return db.Progress{}, err
	}
	p, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[db.Progress])
	return p, noRows(err)
}

// Practice session methods

const sessionColumns = `id, visitor_id, duration_seconds, words_practiced, words_correct, practiced_on, created_at`

func (r *Repository) CreatePracticeSession(ctx context.Context, arg db.CreatePracticeSessionParams) (db.PracticeSession, error) {
	rows, err := r.q.Query(ctx, `
		INSERT INTO practice_sessions (visitor_id, duration_seconds, words_practiced, words_correct, practiced_on)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+sessionColumns,
		arg.VisitorID, arg.DurationSeconds, arg.WordsPracticed, arg.WordsCorrect, arg.PracticedOn)
	if err != nil {
		return db.PracticeSession{}, err
	}
	s, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[db.PracticeSession])
	return s, noRows(err)
}

func (r *Repository) ListPracticeSessions(ctx context.Context, arg db.ListPracticeSessionsParams) ([]db.PracticeSession, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM practice_sessions
		WHERE visitor_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, arg.VisitorID, arg.Limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[db.PracticeSession])
}

func (r *Repository) DeleteOldSessions(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM practice_sessions WHERE created_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Spelling feedback methods

const feedbackColumns = `id, word, spelling, note, source, submitted_by, created_at`

func (r *Repository) CreateSpellingFeedback(ctx context.Context, arg db.CreateSpellingFeedbackParams) (db.SpellingFeedback, error) {
	rows, err := r.q.Query(ctx, `
		INSERT INTO spelling_feedback (word, spelling, note, source, submitted_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+feedbackColumns,
		arg.Word, arg.Spelling, arg.Note, arg.Source, arg.SubmittedBy)
	if err != nil {
		return db.SpellingFeedback{}, err
	}
	f, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[db.SpellingFeedback])
	return f, noRows(err)
}

func (r *Repository) ListSpellingFeedback(ctx context.Context, arg db.ListSpellingFeedbackParams) ([]db.SpellingFeedback, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+feedbackColumns+`
		FROM spelling_feedback
		WHERE $1 = '' OR word = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3
	`, arg.Word, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[db.SpellingFeedback])
}

func (r *Repository) CountSpellingFeedback(ctx context.Context) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM spelling_feedback`).Scan(&count)
	return count, err
}

// Gloss methods

const glossColumns = `word, meaning, provider, model, created_at`

func (r *Repository) GetGloss(ctx context.Context, word string) (db.Gloss, error) {
	rows, err := r.q.Query(ctx, `SELECT `+glossColumns+` FROM glosses WHERE word = $1`, word)
	if err != nil {
		return db.Gloss{}, err
	}
	g, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[db.Gloss])
	return g, noRows(err)
}

func (r *Repository) UpsertGloss(ctx context.Context, arg db.UpsertGlossParams) (db.Gloss, error) {
	rows, err := r.q.Query(ctx, `
		INSERT INTO glosses (word, meaning, provider, model)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (word) DO UPDATE SET
			meaning = EXCLUDED.meaning,
			provider = EXCLUDED.provider,
			model = EXCLUDED.model,
			created_at = NOW()
		RETURNING `+glossColumns,
		arg.Word, arg.Meaning, arg.Provider, arg.Model)
	if err != nil {
		return db.Gloss{}, err
	}
	g, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[db.Gloss])
	return g, noRows(err)
}
