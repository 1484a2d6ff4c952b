package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Web server metrics.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ttr_http_requests_total",
		Help: "Total HTTP requests by route, method, and status code",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ttr_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"route", "method"})

	RateLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ttr_rate_limit_hits_total",
		Help: "Total rate limit rejections",
	})

	FeedbackSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ttr_feedback_submissions_total",
		Help: "Spelling feedback submissions by source and result",
	}, []string{"source", "result"})
)

// Variant generation metrics.
var (
	VariantsGenerated = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ttr_variants_generated",
		Help:    "Number of spellings returned per generation call",
		Buckets: []float64{0, 1, 2, 5, 10, 15, 20, 25},
	})

	EngineFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ttr_engine_failures_total",
		Help: "Transliteration engine failures by scheme",
	}, []string{"scheme"})

	VariantCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ttr_variant_cache_hits_total",
		Help: "Variant cache lookups served from memory",
	})

	VariantCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ttr_variant_cache_misses_total",
		Help: "Variant cache lookups that ran the generator",
	})
)

// Practice metrics.
var (
	AnswerChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ttr_answer_checks_total",
		Help: "Answer checks by verdict",
	}, []string{"verdict"})

	PracticeSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ttr_practice_sessions_total",
		Help: "Practice sessions recorded",
	})

	GlossLookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ttr_llm_gloss_duration_seconds",
		Help:    "LLM gloss call duration in seconds",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
	})

	GlossLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ttr_gloss_lookups_total",
		Help: "Gloss lookups by source (vocabulary, cache, llm, error)",
	}, []string{"source"})
)

// Database pool metrics (gauges updated periodically).
var (
	DBPoolTotalConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ttr_db_pool_total_conns",
		Help: "Total number of connections in the pool",
	})

	DBPoolIdleConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ttr_db_pool_idle_conns",
		Help: "Number of idle connections in the pool",
	})

	DBPoolAcquiredConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ttr_db_pool_acquired_conns",
		Help: "Number of acquired connections in the pool",
	})

	DBPoolMaxConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ttr_db_pool_max_conns",
		Help: "Max connections configured for the pool",
	})
)

// Discord bot metrics.
var (
	BotCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ttr_bot_commands_total",
		Help: "Discord commands handled by command and result",
	}, []string{"command", "result"})

	BotRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ttr_bot_rate_limited_total",
		Help: "Discord commands rejected by the per-user rate limit",
	})
)
