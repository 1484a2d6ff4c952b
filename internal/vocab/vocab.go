// Package vocab loads the practice vocabulary: Devanagari words with their
// canonical transliteration and English meaning.
package vocab

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var ErrEmptyFile = errors.New("vocabulary file has no rows")

type Entry struct {
	Index           string `json:"index"`
	Hindi           string `json:"hindi"`
	Transliteration string `json:"transliteration"`
	Meaning         string `json:"meaning"`
}

// Vocabulary is read-only after Load and safe for concurrent use. A nil
// Vocabulary is empty.
type Vocabulary struct {
	entries []Entry
	byHindi map[string]int
}

// Load parses a CSV with a header row followed by index, hindi,
// transliteration and meaning columns. Rows missing hindi or transliteration
// are skipped. When a word repeats, the later row wins lookups.
func Load(r io.Reader) (*Vocabulary, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	v := &Vocabulary{byHindi: make(map[string]int)}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading vocabulary: %w", err)
		}

		e := Entry{
			Index:           field(rec, 0),
			Hindi:           field(rec, 1),
			Transliteration: field(rec, 2),
			Meaning:         field(rec, 3),
		}
		if e.Hindi == "" || e.Transliteration == "" {
			continue
		}
		v.byHindi[key(e.Hindi)] = len(v.entries)
		v.entries = append(v.entries, e)
	}
	return v, nil
}

func LoadFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening vocabulary: %w", err)
	}
	defer f.Close()

	v, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// key makes lookups insensitive to the nukta form used.
func key(hindi string) string {
	return norm.NFD.String(strings.TrimSpace(hindi))
}

func (v *Vocabulary) Lookup(hindi string) (Entry, bool) {
	if v == nil {
		return Entry{}, false
	}
	i, ok := v.byHindi[key(hindi)]
	if !ok {
		return Entry{}, false
	}
	return v.entries[i], true
}

// Entries returns every entry in file order.
func (v *Vocabulary) Entries() []Entry {
	if v == nil {
		return nil
	}
	return append([]Entry(nil), v.entries...)
}

func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.entries)
}

// Page returns the 1-based page of at most limit entries and the total entry
// count. Out-of-range pages are empty.
func (v *Vocabulary) Page(page, limit int) ([]Entry, int) {
	total := v.Len()
	if page < 1 || limit < 1 || total == 0 || page-1 > (total-1)/limit {
		return []Entry{}, total
	}
	start := (page - 1) * limit
	if start >= total {
		return []Entry{}, total
	}
	end := min(start+limit, total)
	return append([]Entry(nil), v.entries[start:end]...), total
}
