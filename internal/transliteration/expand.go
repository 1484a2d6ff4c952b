package transliteration

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// readableReplacements are applied in order, each over the whole string.
var readableReplacements = []struct{ old, new string }{
	{"aa", "a"},
	{"ee", "i"},
	{"oo", "u"},
	{"v", "w"},
	{"sh", "s"},
}

// Readable simplifies scheme spellings toward casual English typing.
func Readable(s string) string {
	for _, r := range readableReplacements {
		s = strings.ReplaceAll(s, r.old, r.new)
	}
	return s
}

// Expand derives the spellings a learner might type from one engine output:
// the base, the base without a trailing "a", its lower-case form, its form
// with the first letter capitalized, the readable form and the readable form
// without a trailing "a". The result may contain duplicates and empty
// strings; callers collapse them.
func Expand(base string) []string {
	out := make([]string, 0, 6)
	out = append(out, base)
	if strings.HasSuffix(base, "a") {
		out = append(out, strings.TrimSuffix(base, "a"))
	}
	out = append(out, strings.ToLower(base))
	if base != "" {
		out = append(out, capitalizeFirst(base))
	}

	readable := Readable(base)
	out = append(out, readable)
	if strings.HasSuffix(readable, "a") {
		out = append(out, strings.TrimSuffix(readable, "a"))
	}
	return out
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
