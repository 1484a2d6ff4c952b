package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusunglee/typetoreveal/internal/db"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestProgressUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetProgress(ctx, "visitor-1")
	assert.True(t, db.IsNoRows(err))

	p, err := repo.UpsertProgress(ctx, db.UpsertProgressParams{
		VisitorID:        "visitor-1",
		TotalSeconds:     120,
		TotalWords:       10,
		Sessions:         1,
		CurrentStreak:    1,
		LongestStreak:    1,
		LastPracticeDate: "2026-10-15",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(120), p.TotalSeconds)
	assert.Equal(t, "2026-10-15", p.LastPracticeDate)

	p, err = repo.UpsertProgress(ctx, db.UpsertProgressParams{
		VisitorID:        "visitor-1",
		TotalSeconds:     300,
		TotalWords:       25,
		Sessions:         2,
		CurrentStreak:    2,
		LongestStreak:    2,
		LastPracticeDate: "2026-10-16",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(300), p.TotalSeconds)
	assert.Equal(t, int32(2), p.CurrentStreak)

	got, err := repo.GetProgress(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, p.Sessions, got.Sessions)
}

func TestPracticeSessions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := range 3 {
		s, err := repo.CreatePracticeSession(ctx, db.CreatePracticeSessionParams{
			VisitorID:       "visitor-1",
			DurationSeconds: int64(60 * (i + 1)),
			WordsPracticed:  int32(5 + i),
			WordsCorrect:    int32(i),
			PracticedOn:     "2026-10-16",
		})
		require.NoError(t, err)
		assert.NotZero(t, s.ID)
		assert.False(t, s.CreatedAt.IsZero())
	}
	_, err := repo.CreatePracticeSession(ctx, db.CreatePracticeSessionParams{
		VisitorID: "visitor-2", DurationSeconds: 30, PracticedOn: "2026-10-16",
	})
	require.NoError(t, err)

	sessions, err := repo.ListPracticeSessions(ctx, db.ListPracticeSessionsParams{VisitorID: "visitor-1", Limit: 2})
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, int64(180), sessions[0].DurationSeconds, "newest first")

	deleted, err := repo.DeleteOldSessions(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
}

func TestSpellingFeedback(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	f, err := repo.CreateSpellingFeedback(ctx, db.CreateSpellingFeedbackParams{
		Word: "खाना", Spelling: "khaanaa", Note: "common in chats", Source: "web",
	})
	require.NoError(t, err)
	assert.Equal(t, "khaanaa", f.Spelling)

	_, err = repo.CreateSpellingFeedback(ctx, db.CreateSpellingFeedbackParams{
		Word: "पानी", Spelling: "paanee", Source: "discord", SubmittedBy: "user-1",
	})
	require.NoError(t, err)

	count, err := repo.CountSpellingFeedback(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	all, err := repo.ListSpellingFeedback(ctx, db.ListSpellingFeedbackParams{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	forWord, err := repo.ListSpellingFeedback(ctx, db.ListSpellingFeedbackParams{Word: "पानी", Limit: 10})
	require.NoError(t, err)
	require.Len(t, forWord, 1)
	assert.Equal(t, "user-1", forWord[0].SubmittedBy)
}

func TestGlossUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetGloss(ctx, "दिल")
	assert.True(t, db.IsNoRows(err))

	g, err := repo.UpsertGloss(ctx, db.UpsertGlossParams{Word: "दिल", Meaning: "heart", Provider: "anthropic", Model: "m1"})
	require.NoError(t, err)
	assert.Equal(t, "heart", g.Meaning)

	g, err = repo.UpsertGloss(ctx, db.UpsertGlossParams{Word: "दिल", Meaning: "heart; mind", Provider: "google", Model: "m2"})
	require.NoError(t, err)
	assert.Equal(t, "heart; mind", g.Meaning)
	assert.Equal(t, "google", g.Provider)
}

func TestWithTxRollsBack(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := repo.WithTx(ctx, func(tx db.Repository) error {
		if _, err := tx.UpsertProgress(ctx, db.UpsertProgressParams{VisitorID: "visitor-1", Sessions: 1}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.GetProgress(ctx, "visitor-1")
	assert.True(t, db.IsNoRows(err))
}

func TestWithTxCommits(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.WithTx(ctx, func(tx db.Repository) error {
		if _, err := tx.UpsertProgress(ctx, db.UpsertProgressParams{VisitorID: "visitor-1", Sessions: 1}); err != nil {
			return err
		}
		// nested calls join the outer transaction
		return tx.WithTx(ctx, func(inner db.Repository) error {
			_, err := inner.CreatePracticeSession(ctx, db.CreatePracticeSessionParams{
				VisitorID: "visitor-1", DurationSeconds: 10, PracticedOn: "2026-10-16",
			})
			return err
		})
	})
	require.NoError(t, err)

	p, err := repo.GetProgress(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Sessions)
}
