package bot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jusunglee/typetoreveal/internal/answer"
	"github.com/jusunglee/typetoreveal/internal/db"
	"github.com/jusunglee/typetoreveal/internal/gloss"
)

// Mock implementations

type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	m.Called(ctx, msg, args)
}

func (m *MockLogger) Info(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	m.Called(ctx, msg, args)
}

func (m *MockLogger) Warn(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	m.Called(ctx, msg, args)
}

func (m *MockLogger) Error(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) With(args ...any) Logger {
	ret := m.Called(args)
	return ret.Get(0).(Logger)
}

type MockDiscordSession struct {
	mock.Mock
}

func (m *MockDiscordSession) AddHandler(handler interface{}) func() {
	ret := m.Called(handler)
	return ret.Get(0).(func())
}

func (m *MockDiscordSession) Open() error {
	ret := m.Called()
	return ret.Error(0)
}

func (m *MockDiscordSession) Close() error {
	ret := m.Called()
	return ret.Error(0)
}

func (m *MockDiscordSession) ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	ret := m.Called(appID, guildID, commands, options)
	return ret.Get(0).([]*discordgo.ApplicationCommand), ret.Error(1)
}

func (m *MockDiscordSession) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	ret := m.Called(interaction, resp, options)
	return ret.Error(0)
}

func (m *MockDiscordSession) GetUserID() string {
	ret := m.Called()
	return ret.String(0)
}

type MockFeedbackStore struct {
	mock.Mock
}

func (m *MockFeedbackStore) CreateSpellingFeedback(ctx context.Context, arg db.CreateSpellingFeedbackParams) (db.SpellingFeedback, error) {
	ret := m.Called(ctx, arg)
	return ret.Get(0).(db.SpellingFeedback), ret.Error(1)
}

type staticVariants []string

func (s staticVariants) Generate(string) []string { return append([]string(nil), s...) }

type MockChecker struct {
	mock.Mock
}

func (m *MockChecker) Check(word, typed string) answer.Result {
	ret := m.Called(word, typed)
	return ret.Get(0).(answer.Result)
}

type mapMeanings map[string]string

func (m mapMeanings) Lookup(_ context.Context, word string) (gloss.Gloss, error) {
	meaning, ok := m[word]
	if !ok {
		return gloss.Gloss{}, gloss.ErrNoMeaning
	}
	return gloss.Gloss{Word: word, Meaning: meaning, Source: gloss.SourceVocabulary}, nil
}

type failingMeanings struct{ err error }

func (f failingMeanings) Lookup(context.Context, string) (gloss.Gloss, error) {
	return gloss.Gloss{}, f.err
}

// Helpers

func newTestBot(log Logger, session DiscordSession, variants VariantGenerator, checker AnswerChecker, feedback FeedbackStore) *Bot {
	return New(log, session, variants, checker, mapMeanings{"घर": "house"}, feedback, Config{})
}

func stringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func commandInteraction(userID, name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		ChannelID: "channel-1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: userID}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    name,
			Options: options,
		},
	}}
}

func modalInteraction(customID, spelling, note string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionModalSubmit,
		User: &discordgo.User{ID: "user-dm"},
		Data: discordgo.ModalSubmitInteractionData{
			CustomID: customID,
			Components: []discordgo.MessageComponent{
				&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: spellingInputID, Value: spelling},
				}},
				&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: noteInputID, Value: note},
				}},
			},
		},
	}}
}

func ephemeralWith(substr string) any {
	return mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
		return r.Type == discordgo.InteractionResponseChannelMessageWithSource &&
			r.Data.Flags == discordgo.MessageFlagsEphemeral &&
			strings.Contains(r.Data.Content, substr)
	})
}

// Tests

func TestHandleRomanize(t *testing.T) {
	t.Run("embed with variants, meaning and suggest button", func(t *testing.T) {
		b := newTestBot(new(MockLogger), new(MockDiscordSession),
			staticVariants{"ghar", "Ghar", "gh", "GhAr", "ghr", "gharr"}, new(MockChecker), new(MockFeedbackStore))

		result := b.handleRomanize(context.Background(), commandInteraction("u1", "romanize", stringOption("text", " घर ")))
		require.NoError(t, result.Err)
		require.Len(t, result.Response.Embeds, 1)

		embed := result.Response.Embeds[0]
		assert.Equal(t, "घर", embed.Title)
		assert.Equal(t, "*house*", embed.Description)
		require.Len(t, embed.Fields, 2)
		assert.Equal(t, "Spellings", embed.Fields[0].Name)
		assert.Equal(t, "`ghar`\n`Ghar`\n`gh`\n`GhAr`\n`ghr`", embed.Fields[0].Value)
		assert.Equal(t, "`gharr`", embed.Fields[1].Value)
		assert.Equal(t, "6 spellings", embed.Footer.Text)

		require.Len(t, result.Response.Components, 1)
		row := result.Response.Components[0].(discordgo.ActionsRow)
		assert.Equal(t, "suggest:घर", row.Components[0].(discordgo.Button).CustomID)
	})

	t.Run("empty text is a user error", func(t *testing.T) {
		b := newTestBot(new(MockLogger), new(MockDiscordSession), staticVariants{"x"}, new(MockChecker), nil)
		result := b.handleRomanize(context.Background(), commandInteraction("u1", "romanize", stringOption("text", "  ")))
		_, ok := errors.AsType[*userError](result.Err)
		assert.True(t, ok)
		assert.Equal(t, discordgo.MessageFlagsEphemeral, result.Response.Flags)
	})

	t.Run("no variants is a user error", func(t *testing.T) {
		b := newTestBot(new(MockLogger), new(MockDiscordSession), staticVariants{}, new(MockChecker), nil)
		result := b.handleRomanize(context.Background(), commandInteraction("u1", "romanize", stringOption("text", "???")))
		_, ok := errors.AsType[*userError](result.Err)
		assert.True(t, ok)
		assert.Contains(t, result.Response.Content, "couldn't romanize")
	})

	t.Run("long text gets no suggest button", func(t *testing.T) {
		b := newTestBot(new(MockLogger), new(MockDiscordSession), staticVariants{"x"}, new(MockChecker), new(MockFeedbackStore))
		result := b.handleRomanize(context.Background(), commandInteraction("u1", "romanize", stringOption("text", strings.Repeat("घर ", 20))))
		require.NoError(t, result.Err)
		assert.Empty(t, result.Response.Components)
	})

	t.Run("meaning lookup errors are logged and skipped", func(t *testing.T) {
		mockLogger := new(MockLogger)
		mockLogger.On("WarnContext", mock.Anything, "meaning lookup failed", mock.Anything).Return()
		b := New(mockLogger, new(MockDiscordSession), staticVariants{"ghar"}, new(MockChecker),
			failingMeanings{errors.New("provider timeout")}, nil, Config{})

		result := b.handleRomanize(context.Background(), commandInteraction("u1", "romanize", stringOption("text", "घर")))
		require.NoError(t, result.Err)
		assert.Empty(t, result.Response.Embeds[0].Description)
		mockLogger.AssertExpectations(t)
	})

	t.Run("missing meaning is not logged", func(t *testing.T) {
		b := New(new(MockLogger), new(MockDiscordSession), staticVariants{"ghar"}, new(MockChecker),
			failingMeanings{gloss.ErrUnavailable}, nil, Config{})

		result := b.handleRomanize(context.Background(), commandInteraction("u1", "romanize", stringOption("text", "घर")))
		require.NoError(t, result.Err)
		assert.Empty(t, result.Response.Embeds[0].Description)
	})

	t.Run("no feedback store gets no suggest button", func(t *testing.T) {
		b := newTestBot(new(MockLogger), new(MockDiscordSession), staticVariants{"x"}, new(MockChecker), nil)
		result := b.handleRomanize(context.Background(), commandInteraction("u1", "romanize", stringOption("text", "घर")))
		require.NoError(t, result.Err)
		assert.Empty(t, result.Response.Components)
	})
}

func TestFormatVerdict(t *testing.T) {
	tests := []struct {
		name string
		res  answer.Result
		want string
	}{
		{"correct", answer.Result{Word: "घर", Answer: "ghar", Verdict: answer.VerdictCorrect, Meaning: "house"},
			"✅ **ghar** is a good way to type **घर**.\nMeaning: house"},
		{"empty", answer.Result{Word: "घर", Verdict: answer.VerdictEmpty}, "✏️ Type your spelling of **घर** first."},
		{"near miss", answer.Result{Word: "घर", Answer: "gar", Verdict: answer.VerdictIncorrect, Expected: "ghar", NearMiss: true},
			"🟡 Close! **घर** is usually typed **ghar**."},
		{"wrong", answer.Result{Word: "घर", Answer: "xyz", Verdict: answer.VerdictIncorrect, Expected: "ghar"},
			"❌ Not quite. **घर** is usually typed **ghar**."},
		{"unknown", answer.Result{Word: "???", Answer: "x", Verdict: answer.VerdictIncorrect},
			"❌ I don't know how to spell **???**."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatVerdict(tt.res))
		})
	}
}

func TestHandleCommand(t *testing.T) {
	t.Run("check responds ephemerally", func(t *testing.T) {
		mockSession := new(MockDiscordSession)
		mockChecker := new(MockChecker)
		b := newTestBot(new(MockLogger), mockSession, staticVariants{"ghar"}, mockChecker, nil)

		mockChecker.On("Check", "घर", "ghar").
			Return(answer.Result{Word: "घर", Answer: "ghar", Verdict: answer.VerdictCorrect})
		mockSession.On("InteractionRespond", mock.Anything, ephemeralWith("✅"), mock.Anything).Return(nil)

		b.handleInteraction(commandInteraction("u1", "check", stringOption("word", "घर"), stringOption("answer", "ghar")))
		mockChecker.AssertExpectations(t)
		mockSession.AssertExpectations(t)
	})

	t.Run("user errors are logged as warnings", func(t *testing.T) {
		mockLogger := new(MockLogger)
		mockSession := new(MockDiscordSession)
		b := newTestBot(mockLogger, mockSession, staticVariants{}, new(MockChecker), nil)

		mockSession.On("InteractionRespond", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		mockLogger.On("WarnContext", mock.Anything, "user error", mock.Anything).Return()

		b.handleInteraction(commandInteraction("u1", "romanize", stringOption("text", "???")))
		mockLogger.AssertExpectations(t)
		mockLogger.AssertNotCalled(t, "ErrorContext", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rate limited after five commands", func(t *testing.T) {
		mockSession := new(MockDiscordSession)
		b := newTestBot(new(MockLogger), mockSession, staticVariants{"ghar"}, new(MockChecker), nil)

		mockSession.On("InteractionRespond", mock.Anything, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
			return len(r.Data.Embeds) == 1
		}), mock.Anything).Return(nil).Times(rateLimitMaxCommands)
		mockSession.On("InteractionRespond", mock.Anything, ephemeralWith("bit fast"), mock.Anything).Return(nil).Once()

		for range rateLimitMaxCommands + 1 {
			b.handleInteraction(commandInteraction("u1", "romanize", stringOption("text", "घर")))
		}
		mockSession.AssertExpectations(t)
	})

	t.Run("respond failure is logged", func(t *testing.T) {
		mockLogger := new(MockLogger)
		mockSession := new(MockDiscordSession)
		b := newTestBot(mockLogger, mockSession, staticVariants{"ghar"}, new(MockChecker), nil)

		mockSession.On("InteractionRespond", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("unknown interaction"))
		mockLogger.On("ErrorContext", mock.Anything, "failed to respond to interaction", mock.Anything).Return()

		b.handleInteraction(commandInteraction("u1", "romanize", stringOption("text", "घर")))
		mockLogger.AssertExpectations(t)
	})
}

func TestHandleComponentOpensModal(t *testing.T) {
	mockSession := new(MockDiscordSession)
	b := newTestBot(new(MockLogger), mockSession, staticVariants{"ghar"}, new(MockChecker), new(MockFeedbackStore))

	mockSession.On("InteractionRespond", mock.Anything, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
		return r.Type == discordgo.InteractionResponseModal &&
			r.Data.CustomID == "suggest_modal:घर" &&
			len(r.Data.Components) == 2
	}), mock.Anything).Return(nil)

	b.handleInteraction(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionMessageComponent,
		Data: discordgo.MessageComponentInteractionData{CustomID: "suggest:घर"},
	}})
	mockSession.AssertExpectations(t)
}

func TestHandleModalSubmit(t *testing.T) {
	t.Run("stores feedback", func(t *testing.T) {
		mockSession := new(MockDiscordSession)
		mockStore := new(MockFeedbackStore)
		b := newTestBot(new(MockLogger), mockSession, staticVariants{}, new(MockChecker), mockStore)

		mockStore.On("CreateSpellingFeedback", mock.Anything, db.CreateSpellingFeedbackParams{
			Word:        "घर",
			Spelling:    "gharr",
			Note:        "seen on signs",
			Source:      FeedbackSource,
			SubmittedBy: "user-dm",
		}).Return(db.SpellingFeedback{ID: 1}, nil)
		mockSession.On("InteractionRespond", mock.Anything, ephemeralWith("Thanks!"), mock.Anything).Return(nil)

		b.handleInteraction(modalInteraction("suggest_modal:घर", " gharr ", "seen on signs"))
		mockStore.AssertExpectations(t)
		mockSession.AssertExpectations(t)
	})

	t.Run("blank spelling is rejected", func(t *testing.T) {
		mockSession := new(MockDiscordSession)
		mockStore := new(MockFeedbackStore)
		b := newTestBot(new(MockLogger), mockSession, staticVariants{}, new(MockChecker), mockStore)

		mockSession.On("InteractionRespond", mock.Anything, ephemeralWith("required"), mock.Anything).Return(nil)

		b.handleInteraction(modalInteraction("suggest_modal:घर", "  ", ""))
		mockStore.AssertNotCalled(t, "CreateSpellingFeedback", mock.Anything, mock.Anything)
		mockSession.AssertExpectations(t)
	})

	t.Run("store error", func(t *testing.T) {
		mockLogger := new(MockLogger)
		mockSession := new(MockDiscordSession)
		mockStore := new(MockFeedbackStore)
		b := newTestBot(mockLogger, mockSession, staticVariants{}, new(MockChecker), mockStore)

		mockStore.On("CreateSpellingFeedback", mock.Anything, mock.Anything).Return(db.SpellingFeedback{}, errors.New("db down"))
		mockLogger.On("ErrorContext", mock.Anything, "failed to store spelling feedback", mock.Anything).Return()
		mockSession.On("InteractionRespond", mock.Anything, ephemeralWith("Couldn't save"), mock.Anything).Return(nil)

		b.handleInteraction(modalInteraction("suggest_modal:घर", "gharr", ""))
		mockLogger.AssertExpectations(t)
		mockSession.AssertExpectations(t)
	})

	t.Run("unrelated modal is ignored", func(t *testing.T) {
		mockSession := new(MockDiscordSession)
		mockStore := new(MockFeedbackStore)
		b := newTestBot(new(MockLogger), mockSession, staticVariants{}, new(MockChecker), mockStore)

		b.handleInteraction(modalInteraction("other:घर", "gharr", ""))
		mockSession.AssertNotCalled(t, "InteractionRespond", mock.Anything, mock.Anything, mock.Anything)
		mockStore.AssertNotCalled(t, "CreateSpellingFeedback", mock.Anything, mock.Anything)
	})
}

func TestRegisterCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("global", func(t *testing.T) {
		mockLogger := new(MockLogger)
		mockSession := new(MockDiscordSession)
		b := newTestBot(mockLogger, mockSession, staticVariants{}, new(MockChecker), nil)

		mockLogger.On("InfoContext", mock.Anything, mock.Anything, mock.Anything).Return()
		mockSession.On("GetUserID").Return("app-1")
		mockSession.On("ApplicationCommandBulkOverwrite", "app-1", "", commands, mock.Anything).Return(commands, nil)

		require.NoError(t, b.registerCommands(ctx))
		mockSession.AssertExpectations(t)
	})

	t.Run("guild clears global commands first", func(t *testing.T) {
		mockLogger := new(MockLogger)
		mockSession := new(MockDiscordSession)
		b := New(mockLogger, mockSession, staticVariants{}, new(MockChecker), nil, nil, Config{GuildID: "guild-1"})

		mockLogger.On("InfoContext", mock.Anything, mock.Anything, mock.Anything).Return()
		mockSession.On("GetUserID").Return("app-1")
		mockSession.On("ApplicationCommandBulkOverwrite", "app-1", "", []*discordgo.ApplicationCommand{}, mock.Anything).Return([]*discordgo.ApplicationCommand{}, nil).Once()
		mockSession.On("ApplicationCommandBulkOverwrite", "app-1", "guild-1", commands, mock.Anything).Return(commands, nil).Once()

		require.NoError(t, b.registerCommands(ctx))
		mockSession.AssertExpectations(t)
	})

	t.Run("overwrite error", func(t *testing.T) {
		mockLogger := new(MockLogger)
		mockSession := new(MockDiscordSession)
		b := newTestBot(mockLogger, mockSession, staticVariants{}, new(MockChecker), nil)

		mockLogger.On("InfoContext", mock.Anything, mock.Anything, mock.Anything).Return()
		mockSession.On("GetUserID").Return("app-1")
		mockSession.On("ApplicationCommandBulkOverwrite", "app-1", "", commands, mock.Anything).
			Return([]*discordgo.ApplicationCommand(nil), errors.New("401"))

		err := b.registerCommands(ctx)
		assert.ErrorContains(t, err, "bulk overwrite commands")
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	mockLogger := new(MockLogger)
	mockSession := new(MockDiscordSession)
	b := newTestBot(mockLogger, mockSession, staticVariants{}, new(MockChecker), nil)

	mockSession.On("AddHandler", mock.Anything).Return(func() {})
	mockSession.On("Open").Return(nil)
	mockSession.On("GetUserID").Return("app-1")
	registered := make(chan struct{})
	mockSession.On("ApplicationCommandBulkOverwrite", "app-1", "", commands, mock.Anything).
		Run(func(mock.Arguments) { close(registered) }).
		Return(commands, nil)
	mockSession.On("Close").Return(nil)
	mockLogger.On("InfoContext", mock.Anything, mock.Anything, mock.Anything).Return()
	mockLogger.On("Info", mock.Anything, mock.Anything).Return()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	select {
	case <-registered:
	case <-time.After(time.Second):
		t.Fatal("commands were not registered")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	mockSession.AssertCalled(t, "Close")
}

func TestRunOpenError(t *testing.T) {
	mockSession := new(MockDiscordSession)
	b := newTestBot(new(MockLogger), mockSession, staticVariants{}, new(MockChecker), nil)

	mockSession.On("AddHandler", mock.Anything).Return(func() {})
	mockSession.On("Open").Return(errors.New("bad token"))

	err := b.Run(context.Background())
	assert.ErrorContains(t, err, "opening Discord connection")
}

func TestWebsiteClient(t *testing.T) {
	var got websiteSubmission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/feedback", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":7,"word":"घर","spelling":"gharr","created_at":"2026-10-01T12:00:00Z"}`))
	}))
	defer srv.Close()

	c := NewWebsiteClient(srv.URL)
	fb, err := c.CreateSpellingFeedback(context.Background(), db.CreateSpellingFeedbackParams{
		Word: "घर", Spelling: "gharr", Source: FeedbackSource, SubmittedBy: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, websiteSubmission{Word: "घर", Spelling: "gharr"}, got)
	assert.Equal(t, int64(7), fb.ID)
	assert.Equal(t, FeedbackSource, fb.Source)
	assert.Equal(t, time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC), fb.CreatedAt)
}

func TestWebsiteClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"spelling is required"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewWebsiteClient(srv.URL).CreateSpellingFeedback(context.Background(), db.CreateSpellingFeedbackParams{Word: "घर"})
	assert.ErrorContains(t, err, "status 400")

	_, err = NewWebsiteClient("").CreateSpellingFeedback(context.Background(), db.CreateSpellingFeedbackParams{Word: "घर"})
	assert.Error(t, err)
}
