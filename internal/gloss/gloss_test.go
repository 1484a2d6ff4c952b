package gloss

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jusunglee/typetoreveal/internal/anthropic"
	"github.com/jusunglee/typetoreveal/internal/db/sqlite"
	"github.com/jusunglee/typetoreveal/internal/llm"
	"github.com/jusunglee/typetoreveal/internal/vocab"
)

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) Complete(ctx context.Context, system, prompt string) (string, error) {
	args := m.Called(ctx, system, prompt)
	return args.String(0), args.Error(1)
}

func newStore(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newLexicon(t *testing.T) *vocab.Vocabulary {
	t.Helper()
	v, err := vocab.Load(strings.NewReader("source,hindi,transliteration,meaning\n1,खाना,khaana,food\n"))
	require.NoError(t, err)
	return v
}

func TestLookupPrefersVocabulary(t *testing.T) {
	client := &mockLLM{}
	svc := NewService(WithLLM(client, "anthropic", "m"), WithLexicon(newLexicon(t)))

	g, err := svc.Lookup(context.Background(), "खाना")
	require.NoError(t, err)
	assert.Equal(t, Gloss{Word: "खाना", Meaning: "food", Source: SourceVocabulary}, g)
	client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestLookupAsksOnceThenCaches(t *testing.T) {
	ctx := context.Background()
	client := &mockLLM{}
	client.On("Complete", mock.Anything, systemPrompt, "Word: दिल").
		Return("```json\n{\"word\": \"दिल\", \"meaning\": \"heart\"}\n```", nil).Once()

	svc := NewService(WithLLM(client, "anthropic", "m"), WithStore(newStore(t)))

	g, err := svc.Lookup(ctx, "दिल")
	require.NoError(t, err)
	assert.Equal(t, SourceLLM, g.Source)
	assert.Equal(t, "heart", g.Meaning)

	g, err = svc.Lookup(ctx, " दिल ")
	require.NoError(t, err)
	assert.Equal(t, SourceCache, g.Source)
	assert.Equal(t, "heart", g.Meaning)

	client.AssertExpectations(t)
}

func TestLookupErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewService().Lookup(ctx, "  ")
	assert.ErrorIs(t, err, ErrEmptyWord)

	_, err = NewService().Lookup(ctx, "दिल")
	assert.ErrorIs(t, err, ErrUnavailable)

	client := &mockLLM{}
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(`{"word": "xyz", "meaning": ""}`, nil).Once()
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("not json", nil).Once()
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("rate limited")).Once()

	svc := NewService(WithLLM(client, "google", "m"))
	_, err = svc.Lookup(ctx, "xyz")
	assert.ErrorIs(t, err, ErrNoMeaning)
	_, err = svc.Lookup(ctx, "abc")
	assert.ErrorContains(t, err, "failed to parse gloss response")
	_, err = svc.Lookup(ctx, "def")
	assert.ErrorContains(t, err, "rate limited")
}

func TestLookupMany(t *testing.T) {
	client := &mockLLM{}
	client.On("Complete", mock.Anything, mock.Anything, "Word: दिल").Return(`{"meaning": "heart"}`, nil)
	client.On("Complete", mock.Anything, mock.Anything, "Word: घर").Return(`{"meaning": "home"}`, nil)
	client.On("Complete", mock.Anything, mock.Anything, "Word: ???").Return(`{"meaning": ""}`, nil)

	svc := NewService(WithLLM(client, "anthropic", "m"), WithLexicon(newLexicon(t)), WithConcurrency(2))

	got, err := svc.LookupMany(context.Background(), []string{"दिल", "घर", "खाना", "दिल", "???", ""})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, "heart", got["दिल"].Meaning)
	assert.Equal(t, "home", got["घर"].Meaning)
	assert.Equal(t, SourceVocabulary, got["खाना"].Source)
	client.AssertNumberOfCalls(t, "Complete", 3)
}

func TestEnabled(t *testing.T) {
	assert.False(t, NewService().Enabled())
	assert.True(t, NewService(WithLLM(&mockLLM{}, "anthropic", "m")).Enabled())
}

func TestNewClientWithoutKeys(t *testing.T) {
	for _, provider := range []string{"", llm.ProviderAnthropic, llm.ProviderGoogle} {
		c, model, err := NewClient(context.Background(), ProviderConfig{Provider: provider})
		require.NoError(t, err, provider)
		assert.Nil(t, c, provider)
		assert.Empty(t, model, provider)
	}
}

func TestNewClientAnthropic(t *testing.T) {
	c, model, err := NewClient(context.Background(), ProviderConfig{Provider: llm.ProviderAnthropic, AnthropicAPIKey: "test-key"})
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, string(anthropic.DefaultModel), model)
}

func TestNewClientUnknownProvider(t *testing.T) {
	_, _, err := NewClient(context.Background(), ProviderConfig{Provider: "openai", AnthropicAPIKey: "k"})
	assert.ErrorContains(t, err, `unknown llm provider "openai"`)
}
