// Package answer decides whether a learner's typed spelling of a Devanagari
// word is acceptable.
package answer

import (
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/jusunglee/typetoreveal/internal/metrics"
	"github.com/jusunglee/typetoreveal/internal/vocab"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.85
)

type Verdict string

const (
	VerdictEmpty     Verdict = "empty"
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
)

const (
	SourceVocabulary = "vocabulary"
	SourceVariants   = "variants"
)

// Result describes one checked answer. Expected is the spelling the answer
// matched when correct, or the spelling to show the learner when not.
type Result struct {
	Word     string  `json:"word"`
	Answer   string  `json:"answer"`
	Verdict  Verdict `json:"verdict"`
	Expected string  `json:"expected,omitempty"`
	Meaning  string  `json:"meaning,omitempty"`
	Source   string  `json:"source,omitempty"`
	NearMiss bool    `json:"near_miss"`
}

type VariantGenerator interface {
	Generate(text string) []string
}

type Lexicon interface {
	Lookup(hindi string) (vocab.Entry, bool)
}

type Option func(*Checker)

// WithPhoneticThreshold sets the Jaro-Winkler score a phonetically similar
// answer needs to count as a near miss.
func WithPhoneticThreshold(threshold float64) Option {
	return func(c *Checker) { c.phoneticThreshold = threshold }
}

// WithFuzzyThreshold sets the Jaro-Winkler score needed for a near miss
// without phonetic overlap.
func WithFuzzyThreshold(threshold float64) Option {
	return func(c *Checker) { c.fuzzyThreshold = threshold }
}

// Checker is read-only after construction and safe for concurrent use.
type Checker struct {
	variants          VariantGenerator
	lexicon           Lexicon
	phoneticThreshold float64
	fuzzyThreshold    float64
}

// NewChecker builds a Checker. lexicon may be nil when no vocabulary is
// loaded.
func NewChecker(variants VariantGenerator, lexicon Lexicon, opts ...Option) *Checker {
	c := &Checker{
		variants:          variants,
		lexicon:           lexicon,
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Check compares answer with the vocabulary's spelling of word, then with
// the generated variants. An incorrect result carries the vocabulary
// spelling, or the first variant when the word is not in the vocabulary.
func (c *Checker) Check(word, answer string) Result {
	res := c.check(strings.TrimSpace(word), answer)
	metrics.AnswerChecks.WithLabelValues(string(res.Verdict)).Inc()
	return res
}

func (c *Checker) check(word, answer string) Result {
	res := Result{Word: word, Answer: answer}
	if strings.TrimSpace(answer) == "" {
		res.Verdict = VerdictEmpty
		return res
	}
	typed := Normalize(answer)
	if typed == "" {
		res.Verdict = VerdictEmpty
		return res
	}

	var entry vocab.Entry
	var known bool
	if c.lexicon != nil {
		entry, known = c.lexicon.Lookup(word)
	}
	if known {
		res.Meaning = entry.Meaning
		if typed == Normalize(entry.Transliteration) {
			res.Verdict, res.Expected, res.Source = VerdictCorrect, entry.Transliteration, SourceVocabulary
			return res
		}
	}

	variants := c.variants.Generate(word)
	for _, v := range variants {
		if typed == Normalize(v) {
			res.Verdict, res.Expected, res.Source = VerdictCorrect, v, SourceVariants
			return res
		}
	}

	res.Verdict = VerdictIncorrect
	candidates := variants
	switch {
	case known:
		res.Expected, res.Source = entry.Transliteration, SourceVocabulary
		candidates = append([]string{entry.Transliteration}, variants...)
	case len(variants) > 0:
		res.Expected, res.Source = variants[0], SourceVariants
	}
	res.NearMiss = c.nearMiss(typed, candidates)
	return res
}

// Reveal returns the spelling shown when the learner gives up on word: the
// vocabulary spelling when known, else the first variant.
func (c *Checker) Reveal(word string) Result {
	word = strings.TrimSpace(word)
	res := Result{Word: word, Verdict: VerdictIncorrect}
	if c.lexicon != nil {
		if e, ok := c.lexicon.Lookup(word); ok {
			res.Expected, res.Meaning, res.Source = e.Transliteration, e.Meaning, SourceVocabulary
			return res
		}
	}
	if variants := c.variants.Generate(word); len(variants) > 0 {
		res.Expected, res.Source = variants[0], SourceVariants
	}
	return res
}

// nearMiss reports whether typed sounds like or nearly spells any candidate.
func (c *Checker) nearMiss(typed string, candidates []string) bool {
	if typed == "" {
		return false
	}
	typedCodes := codes(typed)
	for _, cand := range candidates {
		spelled := Normalize(cand)
		if spelled == "" {
			continue
		}
		score := matchr.JaroWinkler(typed, spelled, false)
		if score >= c.fuzzyThreshold {
			return true
		}
		if score >= c.phoneticThreshold && overlap(typedCodes, codes(spelled)) {
			return true
		}
	}
	return false
}

func codes(s string) map[string]struct{} {
	out := make(map[string]struct{}, 2)
	p, sec := matchr.DoubleMetaphone(s)
	if p != "" {
		out[p] = struct{}{}
	}
	if sec != "" {
		out[sec] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}
