package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"golang.org/x/sync/errgroup"

	"github.com/jusunglee/typetoreveal/internal/answer"
	"github.com/jusunglee/typetoreveal/internal/bot"
	"github.com/jusunglee/typetoreveal/internal/db/sqlite"
	"github.com/jusunglee/typetoreveal/internal/envsetup"
	"github.com/jusunglee/typetoreveal/internal/gloss"
	"github.com/jusunglee/typetoreveal/internal/health"
	"github.com/jusunglee/typetoreveal/internal/logger"
	"github.com/jusunglee/typetoreveal/internal/transliteration"
	"github.com/jusunglee/typetoreveal/internal/vocab"
)

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
	slog.Info("exiting without error")
}

func mainE() error {
	if envsetup.NeedsSetup() {
		completed, err := envsetup.Run()
		if err != nil {
			return fmt.Errorf("running setup wizard: %w", err)
		}
		if !completed {
			return errors.New("setup cancelled")
		}
	}
	_ = godotenv.Load()

	fs := ff.NewFlagSet("typetoreveal-bot")

	var (
		discordToken  = fs.StringLong("discord-token", "", "Discord bot token")
		guildID       = fs.StringLong("discord-guild-id", "", "Register commands to this guild only (instant updates)")
		sqlitePath    = fs.StringLong("sqlite-path", "typetoreveal.db", "SQLite database for spelling suggestions")
		websiteURL    = fs.StringLong("website-url", "", "Forward spelling suggestions to this web API instead of SQLite")
		vocabPath     = fs.StringLong("vocab", "", "Vocabulary CSV (index,hindi,transliteration,meaning)")
		overridesPath = fs.StringLong("overrides", "", "YAML file replacing the built-in spelling overrides")
		cacheSize     = fs.IntLong("cache-size", 2000, "Number of inputs whose variants are cached")
		healthPort    = fs.IntLong("health-port", 8081, "Port for the health and metrics endpoints (0 disables it)")

		llmProvider     = fs.StringEnumLong("llm-provider", "LLM provider for word meanings", "anthropic", "google")
		llmModel        = fs.StringLong("llm-model", "", "LLM model name (provider default when empty)")
		anthropicAPIKey = fs.StringLong("anthropic-api-key", "", "Anthropic API key")
		googleAPIKey    = fs.StringLong("google-api-key", "", "Google API key")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	if *discordToken == "" {
		return errors.New("discord-token is required")
	}

	log := logger.New()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	genOpts := []transliteration.Option{transliteration.WithLogger(log)}
	if *overridesPath != "" {
		table, err := transliteration.LoadOverridesFile(*overridesPath)
		if err != nil {
			return err
		}
		genOpts = append(genOpts, transliteration.WithOverrides(table))
	}
	variants := transliteration.NewCached(transliteration.NewGenerator(genOpts...), *cacheSize)

	var vocabulary *vocab.Vocabulary
	if *vocabPath != "" {
		v, err := vocab.LoadFile(*vocabPath)
		if err != nil {
			return fmt.Errorf("loading vocabulary: %w", err)
		}
		vocabulary = v
		log.InfoContext(ctx, "loaded vocabulary", "path", *vocabPath, "words", v.Len())
	}

	repo, err := sqlite.New(ctx, *sqlitePath)
	if err != nil {
		return fmt.Errorf("opening SQLite database: %w", err)
	}
	defer repo.Close()
	log.InfoContext(ctx, "opened SQLite database", "path", *sqlitePath)

	var feedback bot.FeedbackStore = repo
	if website := bot.NewWebsiteClient(*websiteURL); website.Enabled() {
		feedback = website
		log.InfoContext(ctx, "forwarding spelling suggestions", "url", *websiteURL)
	}

	llmClient, model, err := gloss.NewClient(ctx, gloss.ProviderConfig{
		Provider:        *llmProvider,
		Model:           *llmModel,
		AnthropicAPIKey: *anthropicAPIKey,
		GoogleAPIKey:    *googleAPIKey,
	})
	if err != nil {
		return err
	}
	glossOpts := []gloss.Option{gloss.WithStore(repo), gloss.WithLexicon(vocabulary), gloss.WithLogger(log)}
	if llmClient != nil {
		glossOpts = append(glossOpts, gloss.WithLLM(llmClient, *llmProvider, model))
		log.InfoContext(ctx, "word meanings enabled", "provider", *llmProvider, "model", model)
	}

	dg, err := discordgo.New("Bot " + *discordToken)
	if err != nil {
		return fmt.Errorf("creating Discord session: %w", err)
	}

	b := bot.New(
		bot.NewLogger(log),
		bot.NewDiscordSession(dg),
		variants,
		answer.NewChecker(variants, vocabulary),
		gloss.NewService(glossOpts...),
		feedback,
		bot.Config{GuildID: *guildID},
	)

	g, ctx := errgroup.WithContext(ctx)

	if *healthPort > 0 {
		hs := health.New(*healthPort)
		g.Go(func() error {
			log.InfoContext(ctx, "starting health server", "port", *healthPort)
			return hs.Start()
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return hs.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		return b.Run(ctx)
	})

	return g.Wait()
}
