package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jusunglee/typetoreveal/internal/db"
)

//go:embed schema.sql
var schemaSQL string

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository implements db.Repository using SQLite
type Repository struct {
	db   *sql.DB
	q    querier
	inTx bool
}

// New opens (creating if needed) the SQLite database at dbPath and applies
// the schema.
func New(ctx context.Context, dbPath string) (*Repository, error) {
	dbPath = strings.TrimPrefix(dbPath, "sqlite://")

	sqliteDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening SQLite database: %w", err)
	}

	// every connection to :memory: is a separate database
	if dbPath == ":memory:" {
		sqliteDB.SetMaxOpenConns(1)
	}

	if _, err := sqliteDB.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if _, err := sqliteDB.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := sqliteDB.ExecContext(ctx, schemaSQL); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	slog.Debug("opened SQLite database", "path", dbPath)

	return &Repository{db: sqliteDB, q: sqliteDB}, nil
}

func (r *Repository) Close() error {
	if r.inTx {
		return nil
	}
	return r.db.Close()
}

// WithTx runs fn inside a transaction. Calls made on a repository that is
// already inside a transaction join it.
func (r *Repository) WithTx(ctx context.Context, fn func(repo db.Repository) error) error {
	if r.inTx {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Repository{db: r.db, q: tx, inTx: true}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Progress methods

func (r *Repository) GetProgress(ctx context.Context, visitorID string) (db.Progress, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT visitor_id, total_seconds, total_words, sessions, current_streak, longest_streak,
		       last_practice_date, updated_at
		FROM progress
		WHERE visitor_id = ?
	`, visitorID)

	var p db.Progress
	err := row.Scan(&p.VisitorID, &p.TotalSeconds, &p.TotalWords, &p.Sessions,
		&p.CurrentStreak, &p.LongestStreak, &p.LastPracticeDate, &p.UpdatedAt)
	return p, err
}

func (r *Repository) UpsertProgress(ctx context.Context, arg db.UpsertProgressParams) (db.Progress, error) {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO progress (visitor_id, total_seconds, total_words, sessions, current_streak,
		                      longest_streak, last_practice_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (visitor_id) DO UPDATE SET
			total_seconds = excluded.total_seconds,
			total_words = excluded.total_words,
			sessions = excluded.sessions,
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			last_practice_date = excluded.last_practice_date,
			updated_at = CURRENT_TIMESTAMP
	`, arg.VisitorID, arg.TotalSeconds, arg.TotalWords, arg.Sessions, arg.CurrentStreak,
		arg.LongestStreak, arg.LastPracticeDate)
	if err != nil {
		return db.Progress{}, err
	}
	return r.GetProgress(ctx, arg.VisitorID)
}

// Practice session methods

func (r *Repository) CreatePracticeSession(ctx context.Context, arg db.CreatePracticeSessionParams) (db.PracticeSession, error) {
	result, err := r.q.ExecContext(ctx, `
		INSERT INTO practice_sessions (visitor_id, duration_seconds, words_practiced, words_correct, practiced_on)
		VALUES (?, ?, ?, ?, ?)
	`, arg.VisitorID, arg.DurationSeconds, arg.WordsPracticed, arg.WordsCorrect, arg.PracticedOn)
	if err != nil {
		return db.PracticeSession{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return db.PracticeSession{}, err
	}

	row := r.q.QueryRowContext(ctx, `
		SELECT id, visitor_id, duration_seconds, words_practiced, words_correct, practiced_on, created_at
		FROM practice_sessions
		WHERE id = ?
	`, id)
	return scanSession(row)
}

func (r *Repository) ListPracticeSessions(ctx context.Context, arg db.ListPracticeSessionsParams) ([]db.PracticeSession, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, visitor_id, duration_seconds, words_practiced, words_correct, practiced_on, created_at
		FROM practice_sessions
		WHERE visitor_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, arg.VisitorID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []db.PracticeSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *Repository) DeleteOldSessions(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.q.ExecContext(ctx, `
		DELETE FROM practice_sessions WHERE created_at < ?
	`, before.UTC().Format(time.DateTime))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Spelling feedback methods

func (r *Repository) CreateSpellingFeedback(ctx context.Context, arg db.CreateSpellingFeedbackParams) (db.SpellingFeedback, error) {
	result, err := r.q.ExecContext(ctx, `
		INSERT INTO spelling_feedback (word, spelling, note, source, submitted_by)
		VALUES (?, ?, ?, ?, ?)
	`, arg.Word, arg.Spelling, arg.Note, arg.Source, arg.SubmittedBy)
	if err != nil {
		return db.SpellingFeedback{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return db.SpellingFeedback{}, err
	}

	row := r.q.QueryRowContext(ctx, `
		SELECT id, word, spelling, note, source, submitted_by, created_at
		FROM spelling_feedback
		WHERE id = ?
	`, id)
	return scanFeedback(row)
}

func (r *Repository) ListSpellingFeedback(ctx context.Context, arg db.ListSpellingFeedbackParams) ([]db.SpellingFeedback, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, word, spelling, note, source, submitted_by, created_at
		FROM spelling_feedback
		WHERE ? = '' OR word = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, arg.Word, arg.Word, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []db.SpellingFeedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *Repository) CountSpellingFeedback(ctx context.Context) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM spelling_feedback`).Scan(&count)
	return count, err
}

// Gloss methods

func (r *Repository) GetGloss(ctx context.Context, word string) (db.Gloss, error) {
	var g db.Gloss
	err := r.q.QueryRowContext(ctx, `
		SELECT word, meaning, provider, model, created_at
		FROM glosses
		WHERE word = ?
	`, word).Scan(&g.Word, &g.Meaning, &g.Provider, &g.Model, &g.CreatedAt)
	return g, err
}

func (r *Repository) UpsertGloss(ctx context.Context, arg db.UpsertGlossParams) (db.Gloss, error) {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO glosses (word, meaning, provider, model)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (word) DO UPDATE SET
			meaning = excluded.meaning,
			provider = excluded.provider,
			model = excluded.model,
			created_at = CURRENT_TIMESTAMP
	`, arg.Word, arg.Meaning, arg.Provider, arg.Model)
	if err != nil {
		return db.Gloss{}, err
	}
	return r.GetGloss(ctx, arg.Word)
}

// Helper scan functions

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(s scanner) (db.PracticeSession, error) {
	var p db.PracticeSession
	err := s.Scan(&p.ID, &p.VisitorID, &p.DurationSeconds, &p.WordsPracticed, &p.WordsCorrect,
		&p.PracticedOn, &p.CreatedAt)
	return p, err
}

func scanFeedback(s scanner) (db.SpellingFeedback, error) {
	var f db.SpellingFeedback
	err := s.Scan(&f.ID, &f.Word, &f.Spelling, &f.Note, &f.Source, &f.SubmittedBy, &f.CreatedAt)
	return f, err
}
