// Package bot serves romanizations and answer checks over Discord slash
// commands.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"

	"github.com/jusunglee/typetoreveal/internal/answer"
	"github.com/jusunglee/typetoreveal/internal/db"
	"github.com/jusunglee/typetoreveal/internal/gloss"
	"github.com/jusunglee/typetoreveal/internal/metrics"
)

const (
	FeedbackSource = "discord"

	maxTextLen         = 200
	variantsPerField   = 5
	suggestPrefix      = "suggest:"
	suggestModalPrefix = "suggest_modal:"
	spellingInputID    = "spelling"
	noteInputID        = "note"
	customIDLimit      = 100
	embedColor         = 0xFF9933
)

type Config struct {
	GuildID string
}

type Bot struct {
	log      Logger
	session  DiscordSession
	variants VariantGenerator
	checker  AnswerChecker
	meanings Meanings
	feedback FeedbackStore
	limiter  *RateLimiter
	config   Config
}

func New(
	log Logger,
	session DiscordSession,
	variants VariantGenerator,
	checker AnswerChecker,
	meanings Meanings,
	feedback FeedbackStore,
	config Config,
) *Bot {
	return &Bot{
		log:      log,
		session:  session,
		variants: variants,
		checker:  checker,
		meanings: meanings,
		feedback: feedback,
		limiter:  NewRateLimiter(),
		config:   config,
	}
}

func (b *Bot) Run(ctx context.Context) error {
	b.session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		b.handleInteraction(i)
	})
	b.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		b.log.InfoContext(ctx, "connected to Discord", "username", r.User.Username, "discriminator", r.User.Discriminator)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening Discord connection: %w", err)
	}

	if err := b.registerCommands(ctx); err != nil {
		b.session.Close()
		return fmt.Errorf("registering commands: %w", err)
	}

	b.log.InfoContext(ctx, "bot is running, press Ctrl+C to stop")

	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.limiter.Forget()
		case <-ctx.Done():
			b.log.Info("shutdown signal received")
			if err := b.session.Close(); err != nil {
				b.log.Warn("closing Discord session", "error", err)
			}
			b.log.Info("shut down complete")
			return nil
		}
	}
}

func (b *Bot) registerCommands(ctx context.Context) error {
	guildID := b.config.GuildID
	if guildID != "" {
		b.log.InfoContext(ctx, "registering commands to guild", "guild_id", guildID)
		_, err := b.session.ApplicationCommandBulkOverwrite(b.session.GetUserID(), "", []*discordgo.ApplicationCommand{})
		if err != nil {
			b.log.WarnContext(ctx, "failed to clear global commands", "error", err)
		} else {
			b.log.InfoContext(ctx, "cleared global commands")
		}
	} else {
		b.log.InfoContext(ctx, "registering commands globally (may take up to 1 hour to propagate)")
	}

	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.GetUserID(), guildID, commands)
	if err != nil {
		return fmt.Errorf("bulk overwrite commands: %w", err)
	}
	b.log.InfoContext(ctx, "registered commands", "count", len(commands))
	return nil
}

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "romanize",
		Description: "Show the ways a Hindi word or phrase is commonly typed in Roman letters",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "text",
				Description: "Devanagari text, e.g. नमस्ते",
				Required:    true,
				MaxLength:   maxTextLen,
			},
		},
	},
	{
		Name:        "check",
		Description: "Check your Roman spelling of a Hindi word",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "word",
				Description: "The Devanagari word",
				Required:    true,
				MaxLength:   maxTextLen,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "answer",
				Description: "How you would type it",
				Required:    true,
				MaxLength:   maxTextLen,
			},
		},
	},
}

type handlerResult struct {
	Response *discordgo.InteractionResponseData
	Err      error
}

type userError struct {
	Err error
}

func (e *userError) Error() string {
	return e.Err.Error()
}

func (e *userError) Unwrap() error {
	return e.Err
}

func newUserError(err error) *userError {
	return &userError{Err: err}
}

func (b *Bot) handleInteraction(i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(i)
	case discordgo.InteractionModalSubmit:
		b.handleModalSubmit(i)
	}
}

func (b *Bot) handleCommand(i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()
	cmd := i.ApplicationCommandData().Name

	if !b.limiter.Allow(interactionUserID(i)) {
		metrics.BotRateLimited.Inc()
		b.respond(ctx, i, ephemeral("⏳ You're going a bit fast. Try again in a minute."))
		return
	}

	var result handlerResult
	switch cmd {
	case "romanize":
		result = b.handleRomanize(ctx, i)
	case "check":
		result = b.handleCheck(i)
	default:
		result = handlerResult{
			Response: ephemeral("❌ Unknown command."),
			Err:      newUserError(fmt.Errorf("unknown command %q", cmd)),
		}
	}

	b.respond(ctx, i, result.Response)

	if result.Err == nil {
		metrics.BotCommands.WithLabelValues(cmd, "ok").Inc()
		return
	}

	if _, ok := errors.AsType[*userError](result.Err); ok {
		metrics.BotCommands.WithLabelValues(cmd, "user_error").Inc()
		b.log.WarnContext(ctx, "user error", "command", cmd, "error", result.Err, "channel_id", i.ChannelID)
	} else {
		metrics.BotCommands.WithLabelValues(cmd, "error").Inc()
		b.log.ErrorContext(ctx, "command failed", "command", cmd, "error", result.Err, "channel_id", i.ChannelID)
	}
}

func getOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func (b *Bot) handleRomanize(ctx context.Context, i *discordgo.InteractionCreate) handlerResult {
	text := strings.TrimSpace(getOption(i.ApplicationCommandData().Options, "text"))
	if text == "" {
		return handlerResult{
			Response: ephemeral("❌ Give me some Devanagari text, e.g. `/romanize text:नमस्ते`"),
			Err:      newUserError(errors.New("empty text")),
		}
	}

	variants := b.variants.Generate(text)
	if len(variants) == 0 {
		return handlerResult{
			Response: ephemeral(fmt.Sprintf("🤔 I couldn't romanize **%s**.", text)),
			Err:      newUserError(fmt.Errorf("no variants for %q", text)),
		}
	}

	var meaning string
	if b.meanings != nil {
		g, err := b.meanings.Lookup(ctx, text)
		switch {
		case err == nil:
			meaning = g.Meaning
		case !errors.Is(err, gloss.ErrUnavailable) && !errors.Is(err, gloss.ErrNoMeaning) && !errors.Is(err, gloss.ErrEmptyWord):
			b.log.WarnContext(ctx, "meaning lookup failed", "text", text, "error", err)
		}
	}

	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{formatVariantsEmbed(text, variants, meaning)},
	}
	if customID := suggestPrefix + text; len(suggestModalPrefix+text) <= customIDLimit && b.feedback != nil {
		data.Components = []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Suggest spelling",
						CustomID: customID,
						Style:    discordgo.SecondaryButton,
					},
				},
			},
		}
	}
	return handlerResult{Response: data}
}

func (b *Bot) handleCheck(i *discordgo.InteractionCreate) handlerResult {
	options := i.ApplicationCommandData().Options
	word := strings.TrimSpace(getOption(options, "word"))
	typed := getOption(options, "answer")
	if word == "" {
		return handlerResult{
			Response: ephemeral("❌ Tell me which word you're spelling."),
			Err:      newUserError(errors.New("empty word")),
		}
	}

	return handlerResult{Response: ephemeral(formatVerdict(b.checker.Check(word, typed)))}
}

func formatVerdict(res answer.Result) string {
	var sb strings.Builder
	switch res.Verdict {
	case answer.VerdictCorrect:
		fmt.Fprintf(&sb, "✅ **%s** is a good way to type **%s**.", res.Answer, res.Word)
	case answer.VerdictEmpty:
		fmt.Fprintf(&sb, "✏️ Type your spelling of **%s** first.", res.Word)
	default:
		if res.NearMiss {
			fmt.Fprintf(&sb, "🟡 Close! **%s** is usually typed **%s**.", res.Word, res.Expected)
		} else if res.Expected != "" {
			fmt.Fprintf(&sb, "❌ Not quite. **%s** is usually typed **%s**.", res.Word, res.Expected)
		} else {
			fmt.Fprintf(&sb, "❌ I don't know how to spell **%s**.", res.Word)
		}
	}
	if res.Meaning != "" {
		fmt.Fprintf(&sb, "\nMeaning: %s", res.Meaning)
	}
	return sb.String()
}

func formatVariantsEmbed(text string, variants []string, meaning string) *discordgo.MessageEmbed {
	chunks := lo.Chunk(variants, variantsPerField)
	fields := make([]*discordgo.MessageEmbedField, len(chunks))
	for n, chunk := range chunks {
		name := "\u200b"
		if n == 0 {
			name = "Spellings"
		}
		fields[n] = &discordgo.MessageEmbedField{
			Name:   name,
			Value:  strings.Join(lo.Map(chunk, func(v string, _ int) string { return "`" + v + "`" }), "\n"),
			Inline: true,
		}
	}

	embed := &discordgo.MessageEmbed{
		Title:  text,
		Color:  embedColor,
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%d spellings", len(variants))},
	}
	if meaning != "" {
		embed.Description = "*" + meaning + "*"
	}
	return embed
}

func (b *Bot) handleComponent(i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	word, ok := strings.CutPrefix(i.MessageComponentData().CustomID, suggestPrefix)
	if !ok {
		return
	}

	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: suggestModalPrefix + word,
			Title:    truncateRunes("Suggest a spelling for "+word, 45),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    spellingInputID,
							Label:       "How do you type it?",
							Style:       discordgo.TextInputShort,
							Placeholder: "e.g. zindagi",
							Required:    true,
							MaxLength:   64,
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  noteInputID,
							Label:     "Anything else? (optional)",
							Style:     discordgo.TextInputParagraph,
							Required:  false,
							MaxLength: 500,
						},
					},
				},
			},
		},
	})
	if err != nil {
		b.log.ErrorContext(ctx, "failed to open suggestion modal", "error", err, "word", word)
	}
}

func (b *Bot) handleModalSubmit(i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()
	data := i.ModalSubmitData()

	word, ok := strings.CutPrefix(data.CustomID, suggestModalPrefix)
	if !ok || word == "" || b.feedback == nil {
		return
	}

	var spelling, note string
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			input, ok := comp.(*discordgo.TextInput)
			if !ok {
				continue
			}
			switch input.CustomID {
			case spellingInputID:
				spelling = strings.TrimSpace(input.Value)
			case noteInputID:
				note = strings.TrimSpace(input.Value)
			}
		}
	}

	if spelling == "" {
		metrics.FeedbackSubmissions.WithLabelValues(FeedbackSource, "invalid").Inc()
		b.respond(ctx, i, ephemeral("❌ A spelling is required."))
		return
	}

	_, err := b.feedback.CreateSpellingFeedback(ctx, db.CreateSpellingFeedbackParams{
		Word:        word,
		Spelling:    spelling,
		Note:        note,
		Source:      FeedbackSource,
		SubmittedBy: interactionUserID(i),
	})
	if err != nil {
		metrics.FeedbackSubmissions.WithLabelValues(FeedbackSource, "error").Inc()
		b.log.ErrorContext(ctx, "failed to store spelling feedback", "error", err, "word", word)
		b.respond(ctx, i, ephemeral("❌ Couldn't save your suggestion. Please try again later."))
		return
	}
	metrics.FeedbackSubmissions.WithLabelValues(FeedbackSource, "success").Inc()

	b.respond(ctx, i, ephemeral(fmt.Sprintf("Thanks! **%s** → `%s` has been recorded.", word, spelling)))
}

func (b *Bot) respond(ctx context.Context, i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.log.ErrorContext(ctx, "failed to respond to interaction", "error", err)
	}
}

func ephemeral(content string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
