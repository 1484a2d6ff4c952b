package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"golang.org/x/sync/errgroup"

	"github.com/jusunglee/typetoreveal/internal/db"
	"github.com/jusunglee/typetoreveal/internal/db/postgres"
	"github.com/jusunglee/typetoreveal/internal/db/sqlite"
	"github.com/jusunglee/typetoreveal/internal/devanagari"
	"github.com/jusunglee/typetoreveal/internal/gloss"
	"github.com/jusunglee/typetoreveal/internal/logger"
	"github.com/jusunglee/typetoreveal/internal/metrics"
	"github.com/jusunglee/typetoreveal/internal/transliteration"
	"github.com/jusunglee/typetoreveal/internal/vocab"
	"github.com/jusunglee/typetoreveal/internal/web"
)

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
	slog.Info("exiting without error")
}

func mainE() error {
	_ = godotenv.Load()

	fs_ := ff.NewFlagSet("typetoreveal-web")

	var (
		port             = fs_.Int64Long("port", 5000, "HTTP server port")
		databaseURL      = fs_.StringLong("database-url", "", "PostgreSQL connection URL (SQLite is used when empty)")
		sqlitePath       = fs_.StringLong("sqlite-path", "typetoreveal.db", "SQLite database file")
		vocabPath        = fs_.StringLong("vocab", "", "Vocabulary CSV (index,hindi,transliteration,meaning)")
		overridesPath    = fs_.StringLong("overrides", "", "YAML file replacing the built-in spelling overrides")
		cacheSize        = fs_.IntLong("cache-size", 10000, "Number of inputs whose variants are cached")
		schemes          = fs_.StringLong("schemes", "itrans,hk,iast", "Comma-separated romanization schemes, in variant order")
		llmProvider      = fs_.StringEnumLong("llm-provider", "LLM provider for word meanings", "anthropic", "google")
		llmModel         = fs_.StringLong("llm-model", "", "LLM model name (provider default when empty)")
		anthropicAPIKey  = fs_.StringLong("anthropic-api-key", "", "Anthropic API key")
		googleAPIKey     = fs_.StringLong("google-api-key", "", "Google API key")
		glossConcurrency = fs_.IntLong("gloss-concurrency", 4, "Concurrent LLM lookups per batch gloss request")
		allowedOrigins   = fs_.StringLong("allowed-origins", "", "Comma-separated list of allowed CORS origins")
		adminPassword    = fs_.StringLong("admin-password", "", "Password for the admin feedback listing (disabled when empty)")
		sessionRetention = fs_.DurationLong("session-retention", 365*24*time.Hour, "How long practice sessions are kept")
	)

	if err := ff.Parse(fs_, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs_))
		return fmt.Errorf("parsing flags: %w", err)
	}

	log := logger.New()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	schemeList, err := parseSchemes(*schemes)
	if err != nil {
		return err
	}
	genOpts := []transliteration.Option{transliteration.WithLogger(log), transliteration.WithSchemes(schemeList...)}
	if *overridesPath != "" {
		table, err := transliteration.LoadOverridesFile(*overridesPath)
		if err != nil {
			return err
		}
		genOpts = append(genOpts, transliteration.WithOverrides(table))
		log.InfoContext(ctx, "loaded spelling overrides", "path", *overridesPath, "count", table.Len())
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

	g, ctx := errgroup.WithContext(ctx)

	var repo db.Repository
	if *databaseURL != "" {
		pg, err := postgres.New(ctx, *databaseURL)
		if err != nil {
			return fmt.Errorf("creating PostgreSQL connection: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return err
		}
		repo = pg
		log.InfoContext(ctx, "connected to PostgreSQL database")

		g.Go(func() error {
			exportPoolStats(ctx, pg)
			return nil
		})
	} else {
		lite, err := sqlite.New(ctx, *sqlitePath)
		if err != nil {
			return fmt.Errorf("opening SQLite database: %w", err)
		}
		repo = lite
		log.InfoContext(ctx, "opened SQLite database", "path", *sqlitePath)
	}
	defer repo.Close()

	llmClient, model, err := gloss.NewClient(ctx, gloss.ProviderConfig{
		Provider:        *llmProvider,
		Model:           *llmModel,
		AnthropicAPIKey: *anthropicAPIKey,
		GoogleAPIKey:    *googleAPIKey,
	})
	if err != nil {
		return err
	}
	glossOpts := []gloss.Option{gloss.WithStore(repo), gloss.WithLexicon(vocabulary), gloss.WithLogger(log), gloss.WithConcurrency(*glossConcurrency)}
	if llmClient != nil {
		glossOpts = append(glossOpts, gloss.WithLLM(llmClient, *llmProvider, model))
		log.InfoContext(ctx, "word meanings enabled", "provider", *llmProvider, "model", model)
	}

	var origins []string
	if *allowedOrigins != "" {
		for _, o := range strings.Split(*allowedOrigins, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	router := web.NewRouter(web.Deps{
		Repo:           repo,
		Variants:       variants,
		Vocabulary:     vocabulary,
		Gloss:          gloss.NewService(glossOpts...),
		AllowedOrigins: origins,
		AdminPassword:  *adminPassword,
		Log:            log,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", *port),
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g.Go(func() error {
		log.InfoContext(ctx, "starting web server", "port", *port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down gracefully", "cause", context.Cause(ctx))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		runRetention(ctx, log, repo, *sessionRetention)
		return nil
	})

	return g.Wait()
}

// exportPoolStats periodically publishes pgxpool stats as Prometheus gauges.
func exportPoolStats(ctx context.Context, repo *postgres.Repository) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s := repo.Stat()
			metrics.DBPoolTotalConns.Set(float64(s.TotalConns()))
			metrics.DBPoolIdleConns.Set(float64(s.IdleConns()))
			metrics.DBPoolAcquiredConns.Set(float64(s.AcquiredConns()))
			metrics.DBPoolMaxConns.Set(float64(s.MaxConns()))
		case <-ctx.Done():
			return
		}
	}
}

func runRetention(ctx context.Context, log *slog.Logger, repo db.Repository, retention time.Duration) {
	if retention <= 0 {
		return
	}
	log = log.With("subsystem", "retention")
	for ctx.Err() == nil {
		cleanupCtx, cancel := context.WithTimeout(ctx, time.Minute)
		n, err := repo.DeleteOldSessions(cleanupCtx, time.Now().Add(-retention))
		cancel()
		if err != nil && ctx.Err() == nil {
			log.Error("deleting old sessions", "error", err)
		} else if n > 0 {
			log.Info("deleted old sessions", "rows", n)
		}

		timer := time.NewTimer(time.Hour)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}
}

func parseSchemes(list string) ([]devanagari.Scheme, error) {
	var out []devanagari.Scheme
	for name := range strings.SplitSeq(list, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		s, err := devanagari.ParseScheme(name)
		if err != nil {
			return nil, fmt.Errorf("parsing --schemes: %w", err)
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, errors.New("--schemes names no scheme")
	}
	return out, nil
}
