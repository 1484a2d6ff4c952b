// Package gloss finds short English meanings for Devanagari words, from the
// vocabulary first, then from cached or fresh language model answers.
package gloss

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/jusunglee/typetoreveal/internal/db"
	"github.com/jusunglee/typetoreveal/internal/llm"
	"github.com/jusunglee/typetoreveal/internal/metrics"
	"github.com/jusunglee/typetoreveal/internal/vocab"
)

const (
	SourceVocabulary = "vocabulary"
	SourceCache      = "cache"
	SourceLLM        = "llm"

	defaultConcurrency = 4
	maxWordLen         = 64
)

var (
	ErrEmptyWord   = errors.New("word is required")
	ErrUnavailable = errors.New("no meaning provider configured")
	ErrNoMeaning   = errors.New("no meaning found")
)

type Gloss struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
	Source  string `json:"source"`
}

type Lexicon interface {
	Lookup(hindi string) (vocab.Entry, bool)
}

// Store is the slice of db.Repository the service caches through.
type Store interface {
	GetGloss(ctx context.Context, word string) (db.Gloss, error)
	UpsertGloss(ctx context.Context, arg db.UpsertGlossParams) (db.Gloss, error)
}

type Service struct {
	llm         llm.Client
	store       Store
	lexicon     Lexicon
	provider    string
	model       string
	concurrency int
	log         *slog.Logger
}

type Option func(*Service)

// WithLLM enables model lookups for words outside the vocabulary and cache.
func WithLLM(client llm.Client, provider, model string) Option {
	return func(s *Service) {
		s.llm = client
		s.provider = provider
		s.model = model
	}
}

func WithStore(store Store) Option {
	return func(s *Service) { s.store = store }
}

func WithLexicon(lexicon Lexicon) Option {
	return func(s *Service) { s.lexicon = lexicon }
}

func WithConcurrency(n int) Option {
	return func(s *Service) { s.concurrency = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(opts ...Option) *Service {
	s := &Service{concurrency: defaultConcurrency, log: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Enabled reports whether words outside the vocabulary can be looked up.
func (s *Service) Enabled() bool {
	return s.llm != nil
}

const systemPrompt = `You give short English meanings for Hindi words written in Devanagari.

Respond ONLY with a JSON object, no other text. Example:
{"word": "दिल", "meaning": "heart"}

Keep the meaning under eight words. If the input is not a Hindi word, use an empty meaning.`

type llmAnswer struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
}

func (s *Service) Lookup(ctx context.Context, word string) (Gloss, error) {
	word = strings.TrimSpace(word)
	if word == "" || len([]rune(word)) > maxWordLen {
		return Gloss{}, ErrEmptyWord
	}

	if s.lexicon != nil {
		if e, ok := s.lexicon.Lookup(word); ok && e.Meaning != "" {
			metrics.GlossLookups.WithLabelValues(SourceVocabulary).Inc()
			return Gloss{Word: word, Meaning: e.Meaning, Source: SourceVocabulary}, nil
		}
	}

	if s.store != nil {
		cached, err := s.store.GetGloss(ctx, word)
		switch {
		case err == nil:
			metrics.GlossLookups.WithLabelValues(SourceCache).Inc()
			return Gloss{Word: word, Meaning: cached.Meaning, Source: SourceCache}, nil
		case !db.IsNoRows(err):
			s.log.Warn("gloss cache read failed", "word", word, "error", err)
		}
	}

	if s.llm == nil {
		return Gloss{}, ErrUnavailable
	}

	meaning, err := s.ask(ctx, word)
	if err != nil {
		metrics.GlossLookups.WithLabelValues("error").Inc()
		return Gloss{}, err
	}
	metrics.GlossLookups.WithLabelValues(SourceLLM).Inc()

	if s.store != nil {
		if _, err := s.store.UpsertGloss(ctx, db.UpsertGlossParams{
			Word:     word,
			Meaning:  meaning,
			Provider: s.provider,
			Model:    s.model,
		}); err != nil {
			s.log.Warn("gloss cache write failed", "word", word, "error", err)
		}
	}
	return Gloss{Word: word, Meaning: meaning, Source: SourceLLM}, nil
}

func (s *Service) ask(ctx context.Context, word string) (string, error) {
	start := time.Now()
	text, err := s.llm.Complete(ctx, systemPrompt, "Word: "+word)
	metrics.GlossLookupDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("asking %s for %q: %w", s.provider, word, err)
	}

	var answer llmAnswer
	text = llm.StripMarkdownCodeBlocks(text)
	if err := json.Unmarshal([]byte(text), &answer); err != nil {
		return "", fmt.Errorf("failed to parse gloss response: %w (response: %s)", err, text)
	}
	meaning := strings.TrimSpace(answer.Meaning)
	if meaning == "" {
		return "", fmt.Errorf("%w for %q", ErrNoMeaning, word)
	}
	return meaning, nil
}

// LookupMany looks up distinct words concurrently. Words that fail are left
// out of the result and logged; only cancellation of ctx is returned as an
// error.
func (s *Service) LookupMany(ctx context.Context, words []string) (map[string]Gloss, error) {
	words = lo.Uniq(lo.Filter(words, func(w string, _ int) bool { return strings.TrimSpace(w) != "" }))

	var mu sync.Mutex
	out := make(map[string]Gloss, len(words))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.concurrency, 1))
	for _, w := range words {
		g.Go(func() error {
			gl, err := s.Lookup(gctx, w)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.log.Debug("gloss lookup failed", "word", w, "error", err)
				return nil
			}
			mu.Lock()
			out[w] = gl
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}
