package web

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jusunglee/typetoreveal/internal/answer"
	"github.com/jusunglee/typetoreveal/internal/db"
	"github.com/jusunglee/typetoreveal/internal/gloss"
	"github.com/jusunglee/typetoreveal/internal/health"
	"github.com/jusunglee/typetoreveal/internal/progress"
	"github.com/jusunglee/typetoreveal/internal/vocab"
	"github.com/jusunglee/typetoreveal/internal/web/handlers"
	"github.com/jusunglee/typetoreveal/internal/web/middleware"
)

const maxBodyBytes = 64 << 10

type Deps struct {
	Repo           db.Repository
	Variants       handlers.VariantGenerator
	Vocabulary     *vocab.Vocabulary
	Gloss          *gloss.Service
	AllowedOrigins []string
	AdminPassword  string
	Log            *slog.Logger
}

type Router struct {
	deps Deps
}

func NewRouter(deps Deps) *Router {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Router{deps: deps}
}

func (r *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	log := r.deps.Log

	transliterateHandler := handlers.NewTransliterateHandler(r.deps.Variants, log)
	checkHandler := handlers.NewCheckHandler(answer.NewChecker(r.deps.Variants, r.deps.Vocabulary), log)
	vocabularyHandler := handlers.NewVocabularyHandler(r.deps.Vocabulary, log)
	wordsHandler := handlers.NewWordsHandler(log)
	progressHandler := handlers.NewProgressHandler(progress.NewService(r.deps.Repo, progress.WithLogger(log)), log)
	feedbackHandler := handlers.NewFeedbackHandler(r.deps.Repo, log)

	rateLimiter := middleware.NewRateLimiter(60, 60)
	writeLimiter := middleware.NewRateLimiter(10, 60)

	// Method checks for these two live in the handlers so other methods get
	// a JSON 405.
	mux.Handle("/api/transliterate",
		middleware.Chain(
			http.HandlerFunc(transliterateHandler.Transliterate),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(log),
			middleware.RateLimit(rateLimiter),
			middleware.MaxBodyBytes(maxBodyBytes),
		),
	)

	mux.Handle("/api/health",
		middleware.Chain(
			http.HandlerFunc(health.Handler),
			middleware.PrometheusMetrics(),
		),
	)

	mux.Handle("POST /api/check",
		middleware.Chain(
			http.HandlerFunc(checkHandler.Check),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(log),
			middleware.RateLimit(rateLimiter),
			middleware.MaxBodyBytes(maxBodyBytes),
		),
	)

	mux.Handle("GET /api/vocabulary",
		middleware.Chain(
			http.HandlerFunc(vocabularyHandler.List),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(log),
			middleware.CacheControl("public, max-age=300"),
		),
	)

	mux.Handle("GET /api/vocabulary/{word}",
		middleware.Chain(
			http.HandlerFunc(vocabularyHandler.Get),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(log),
			middleware.CacheControl("public, max-age=300"),
		),
	)

	mux.Handle("POST /api/words",
		middleware.Chain(
			http.HandlerFunc(wordsHandler.Split),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(log),
			middleware.MaxBodyBytes(maxBodyBytes),
		),
	)

	mux.Handle("GET /api/progress",
		middleware.Chain(
			http.HandlerFunc(progressHandler.Get),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(log),
			middleware.CacheControl("no-store"),
		),
	)

	mux.Handle("POST /api/progress/sessions",
		middleware.Chain(
			http.HandlerFunc(progressHandler.RecordSession),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(log),
			middleware.RateLimit(writeLimiter),
			middleware.MaxBodyBytes(maxBodyBytes),
		),
	)

	mux.Handle("POST /api/feedback",
		middleware.Chain(
			http.HandlerFunc(feedbackHandler.Create),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(log),
			middleware.RateLimit(writeLimiter),
			middleware.MaxBodyBytes(maxBodyBytes),
		),
	)

	if r.deps.Gloss != nil && r.deps.Gloss.Enabled() {
		glossHandler := handlers.NewGlossHandler(r.deps.Gloss, log)
		mux.Handle("GET /api/gloss",
			middleware.Chain(
				http.HandlerFunc(glossHandler.Get),
				middleware.PrometheusMetrics(),
				middleware.RequestLogger(log),
				middleware.RateLimit(writeLimiter),
				middleware.CacheControl("public, max-age=86400"),
			),
		)
	}

	if r.deps.AdminPassword != "" {
		mux.Handle("GET /api/admin/feedback",
			middleware.Chain(
				http.HandlerFunc(feedbackHandler.List),
				middleware.PrometheusMetrics(),
				middleware.RequestLogger(log),
				middleware.BasicAuth(r.deps.AdminPassword),
			),
		)
	}

	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.CORS(r.deps.AllowedOrigins...)(mux)
}
