package transliteration

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed overrides.yaml
var defaultOverridesYAML []byte

// Override pairs a Devanagari trigger with spellings that are always offered
// first when the trigger occurs in the input.
type Override struct {
	Trigger   string   `yaml:"trigger"`
	Spellings []string `yaml:"spellings"`
}

type overrideFile struct {
	Overrides []Override `yaml:"overrides"`
}

// OverrideTable is an ordered list of overrides. Triggers are matched as
// substrings after canonical decomposition, so pre-composed and decomposed
// nukta letters match each other. A nil table matches nothing.
type OverrideTable struct {
	entries []Override
}

// NewOverrideTable validates entries and returns a table that matches them
// in order.
func NewOverrideTable(entries []Override) (*OverrideTable, error) {
	var errs []error
	compiled := make([]Override, 0, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Trigger) == "" {
			errs = append(errs, fmt.Errorf("overrides[%d]: trigger is required", i))
			continue
		}
		if len(e.Spellings) == 0 {
			errs = append(errs, fmt.Errorf("overrides[%d] (%s): at least one spelling is required", i, e.Trigger))
			continue
		}
		for j, s := range e.Spellings {
			if strings.TrimSpace(s) == "" {
				errs = append(errs, fmt.Errorf("overrides[%d] (%s): spellings[%d] is blank", i, e.Trigger, j))
			}
		}
		compiled = append(compiled, Override{
			Trigger:   norm.NFD.String(e.Trigger),
			Spellings: append([]string(nil), e.Spellings...),
		})
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid overrides: %w", err)
	}
	return &OverrideTable{entries: compiled}, nil
}

// LoadOverrides decodes a YAML override document. Unknown fields are
// rejected.
func LoadOverrides(r io.Reader) (*OverrideTable, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f overrideFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &OverrideTable{}, nil
		}
		return nil, fmt.Errorf("decoding overrides: %w", err)
	}
	return NewOverrideTable(f.Overrides)
}

// LoadOverridesFile reads overrides from a YAML file on disk.
func LoadOverridesFile(path string) (*OverrideTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening overrides: %w", err)
	}
	defer f.Close()
	return LoadOverrides(f)
}

// DefaultOverrides returns the built-in table.
var DefaultOverrides = sync.OnceValue(func() *OverrideTable {
	t, err := LoadOverrides(bytes.NewReader(defaultOverridesYAML))
	if err != nil {
		panic(fmt.Sprintf("built-in overrides: %v", err))
	}
	return t
})

// Lookup returns the spellings of every override whose trigger occurs in
// text, in table order. Duplicates across entries are kept.
func (t *OverrideTable) Lookup(text string) []string {
	if t == nil || len(t.entries) == 0 || text == "" {
		return nil
	}
	canon := norm.NFD.String(text)
	var out []string
	for _, e := range t.entries {
		if strings.Contains(canon, e.Trigger) {
			out = append(out, e.Spellings...)
		}
	}
	return out
}

// Len reports the number of overrides.
func (t *OverrideTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
