// Package devanagari converts Devanagari text into the ITRANS, Harvard-Kyoto
// and IAST romanization schemes.
//
// Consonants carry the inherent vowel "a" unless followed by a vowel sign or
// a virama. Vowel signs that do not follow a consonant emit their vowel, so
// text that is already partly romanized (for example after nukta rewriting)
// still converts cleanly. Runes outside the tables pass through unchanged.
package devanagari

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Engine is a table-driven converter. It is read-only after construction and
// safe for concurrent use.
type Engine struct {
	tables map[Scheme]*table
}

func New() *Engine {
	e := &Engine{tables: make(map[Scheme]*table, len(Schemes))}
	for _, s := range Schemes {
		col, _ := s.index()
		e.tables[s] = buildTable(col)
	}
	return e
}

var std = New()

// Transliterate converts text with the package's shared Engine.
func Transliterate(text string, scheme Scheme) (string, error) {
	return std.Transliterate(text, scheme)
}

// Transliterate converts text to scheme. It fails with ErrUnknownScheme for
// an unrecognised scheme and with ErrUnsupported for invalid UTF-8, a nukta
// mark with no consonant before it, or a nukta consonant the scheme cannot
// express.
func (e *Engine) Transliterate(text string, scheme Scheme) (string, error) {
	t, ok := e.tables[scheme]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
	if !utf8.ValidString(text) {
		return "", fmt.Errorf("%w: invalid UTF-8", ErrUnsupported)
	}

	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		base, hasNukta := r, false
		if bc, ok := precomposed[r]; ok {
			base, hasNukta = bc, true
		}

		if cons, ok := t.consonants[base]; ok {
			if !hasNukta && i+1 < len(runes) && runes[i+1] == nuktaSign {
				hasNukta = true
				i++
			}
			if hasNukta {
				form, ok := t.nuktas[base]
				if !ok {
					return "", fmt.Errorf("%w: %s has no form for %c with nukta", ErrUnsupported, scheme, base)
				}
				cons = form
			}
			b.WriteString(cons)

			if i+1 < len(runes) {
				next := runes[i+1]
				if next == virama {
					i++
					continue
				}
				if m, ok := t.marks[next]; ok {
					b.WriteString(m)
					i++
					continue
				}
			}
			b.WriteString(inherent)
			continue
		}

		switch r {
		case nuktaSign:
			return "", fmt.Errorf("%w: nukta at position %d does not follow a consonant", ErrUnsupported, i)
		case virama:
			continue
		}

		if v, ok := t.vowels[r]; ok {
			b.WriteString(v)
			continue
		}
		if m, ok := t.marks[r]; ok {
			b.WriteString(m)
			continue
		}
		if s, ok := t.symbols[r]; ok {
			b.WriteString(s)
			continue
		}
		b.WriteRune(r)
	}

	return b.String(), nil
}
