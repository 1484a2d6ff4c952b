// Package transliteration generates the Roman spellings a learner is likely
// to type for a Devanagari word or phrase.
//
// Every input is converted twice per scheme: once after nukta letters have
// been rewritten to their Latin equivalents and once as given. Each engine
// output is expanded into casual spellings, pooled in first-seen order and
// merged behind any forced override spellings.
package transliteration

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/jusunglee/typetoreveal/internal/devanagari"
	"github.com/jusunglee/typetoreveal/internal/metrics"
)

// Engine converts text into one romanization scheme.
type Engine interface {
	Transliterate(text string, scheme devanagari.Scheme) (string, error)
}

// Generator produces ranked spelling variants. It holds no per-call state
// and is safe for concurrent use.
type Generator struct {
	engine    Engine
	schemes   []devanagari.Scheme
	overrides *OverrideTable
	log       *slog.Logger
}

type Option func(*Generator)

func WithEngine(e Engine) Option {
	return func(g *Generator) { g.engine = e }
}

// WithSchemes sets the schemes tried for every input form, in order.
func WithSchemes(schemes ...devanagari.Scheme) Option {
	return func(g *Generator) { g.schemes = append([]devanagari.Scheme(nil), schemes...) }
}

func WithOverrides(t *OverrideTable) Option {
	return func(g *Generator) { g.overrides = t }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.log = l }
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		engine:    devanagari.New(),
		schemes:   devanagari.Schemes,
		overrides: DefaultOverrides(),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type inputForm struct {
	name string
	text string
}

// attempt is the outcome of one (input form, scheme) conversion.
type attempt struct {
	form   string
	scheme devanagari.Scheme
	result string
	err    error
}

// Generate returns at most MaxVariants distinct, non-blank spellings for
// text: override spellings first, then generated variants in the order they
// were first produced. Empty input yields an empty list. Engine failures for
// a form and scheme only remove that pair's variants.
func (g *Generator) Generate(text string) []string {
	if text == "" {
		return []string{}
	}

	priority := g.overrides.Lookup(text)
	forms := []inputForm{
		{name: "normalized", text: NormalizeNuktas(text)},
		{name: "original", text: text},
	}

	pool := newVariantSet(len(forms) * len(g.schemes) * 6)
	for _, a := range g.attemptAll(forms) {
		if a.err != nil {
			metrics.EngineFailures.WithLabelValues(a.scheme.String()).Inc()
			g.log.Warn("transliteration failed", "text", text, "form", a.form, "scheme", a.scheme, "error", a.err)
			continue
		}
		pool.add(Expand(a.result)...)
	}

	out := Finalize(priority, pool.list())
	metrics.VariantsGenerated.Observe(float64(len(out)))
	return out
}

// attemptAll runs every form through every scheme and records each outcome.
// A failing pair never stops the remaining ones.
func (g *Generator) attemptAll(forms []inputForm) []attempt {
	attempts := make([]attempt, 0, len(forms)*len(g.schemes))
	for _, f := range forms {
		for _, s := range g.schemes {
			attempts = append(attempts, g.try(f, s))
		}
	}
	return attempts
}

func (g *Generator) try(f inputForm, scheme devanagari.Scheme) (a attempt) {
	a = attempt{form: f.name, scheme: scheme}
	defer func() {
		if r := recover(); r != nil {
			a.result, a.err = "", fmt.Errorf("engine panic: %v", r)
		}
	}()
	a.result, a.err = g.engine.Transliterate(f.text, scheme)
	return a
}

var defaultGenerator = sync.OnceValue(func() *Generator {
	return NewGenerator()
})

// Variants generates spellings for text with the built-in engine and
// overrides.
func Variants(text string) []string {
	return defaultGenerator().Generate(text)
}
