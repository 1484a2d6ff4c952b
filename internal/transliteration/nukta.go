package transliteration

import "strings"

type nuktaRule struct {
	pattern     string
	replacement string
}

// nuktaRules rewrites nukta consonants into the Latin letters learners use
// for them. Pre-composed letters come first, then base consonant + U+093C.
// Unicode has no pre-composed झ with nukta, so only its decomposed form is listed.
var nuktaRules = []nuktaRule{
	{"\u0958", "q"},  // qa
	{"\u0959", "kh"}, // khha
	{"\u095A", "g"},  // ghha
	{"\u095B", "z"},  // za
	{"\u095C", "r"},  // dddha
	{"\u095D", "rh"}, // rha
	{"\u095E", "f"},  // fa

	{"\u0915\u093C", "q"},
	{"\u0916\u093C", "kh"},
	{"\u0917\u093C", "g"},
	{"\u091C\u093C", "z"},
	{"\u091D\u093C", "zh"},
	{"\u0921\u093C", "r"},
	{"\u0922\u093C", "rh"},
	{"\u092B\u093C", "f"},
}

var nuktaReplacer = func() *strings.Replacer {
	pairs := make([]string, 0, len(nuktaRules)*2)
	for _, r := range nuktaRules {
		pairs = append(pairs, r.pattern, r.replacement)
	}
	return strings.NewReplacer(pairs...)
}()

// NormalizeNuktas replaces every nukta consonant in text, in either Unicode
// form, with its plain Latin letter. Text without nuktas is returned as is.
func NormalizeNuktas(text string) string {
	return nuktaReplacer.Replace(text)
}
