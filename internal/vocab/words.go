package vocab

import (
	"strings"

	"github.com/samber/lo"
)

// Words splits pasted practice text on any whitespace, line breaks included.
func Words(text string) []string {
	return strings.Fields(text)
}

// UniqueWords is Words with repeats removed, keeping first occurrences.
func UniqueWords(text string) []string {
	return lo.Uniq(Words(text))
}
