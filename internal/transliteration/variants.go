package transliteration

import (
	"strings"

	"github.com/samber/lo"
)

// MaxVariants caps the number of spellings returned for one input.
const MaxVariants = 25

// variantSet keeps the first occurrence of each string in insertion order.
// Empty strings are legal members.
type variantSet struct {
	seen  map[string]struct{}
	items []string
}

func newVariantSet(capacity int) *variantSet {
	return &variantSet{
		seen:  make(map[string]struct{}, capacity),
		items: make([]string, 0, capacity),
	}
}

func (s *variantSet) add(vs ...string) {
	for _, v := range vs {
		if _, ok := s.seen[v]; ok {
			continue
		}
		s.seen[v] = struct{}{}
		s.items = append(s.items, v)
	}
}

func (s *variantSet) list() []string {
	return s.items
}

// Finalize concatenates priority and pooled spellings, drops blank strings
// and later duplicates, and truncates to MaxVariants. It never returns nil.
func Finalize(priority, pooled []string) []string {
	all := make([]string, 0, len(priority)+len(pooled))
	all = append(all, priority...)
	all = append(all, pooled...)

	kept := lo.Uniq(lo.Filter(all, func(v string, _ int) bool {
		return strings.TrimSpace(v) != ""
	}))
	if len(kept) > MaxVariants {
		kept = kept[:MaxVariants]
	}
	if kept == nil {
		return []string{}
	}
	return kept
}
