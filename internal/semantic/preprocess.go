// Package semantic provides the latent semantic index: TF-IDF weighting,
// truncated SVD, and cosine-similarity queries over quote text.
package semantic

import (
	"strings"
	"unicode"
)

var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "above": {}, "after": {}, "again": {}, "all": {},
	"an": {}, "and": {}, "any": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"because": {}, "been": {}, "before": {}, "being": {}, "below": {},
	"between": {}, "both": {}, "but": {}, "by": {}, "can": {}, "did": {},
	"do": {}, "does": {}, "down": {}, "during": {}, "each": {}, "few": {},
	"for": {}, "from": {}, "further": {}, "had": {}, "has": {}, "have": {},
	"he": {}, "her": {}, "here": {}, "him": {}, "his": {}, "how": {},
	"into": {}, "its": {}, "itself": {}, "just": {}, "more": {}, "most": {},
	"not": {}, "now": {}, "off": {}, "once": {}, "only": {}, "other": {},
	"our": {}, "out": {}, "over": {}, "own": {}, "same": {}, "she": {},
	"should": {}, "some": {}, "such": {}, "than": {}, "that": {}, "the": {},
	"their": {}, "them": {}, "then": {}, "there": {}, "these": {}, "they": {},
	"this": {}, "those": {}, "through": {}, "too": {}, "under": {}, "until": {},
	"very": {}, "was": {}, "were": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "while": {}, "who": {}, "whom": {}, "why": {}, "will": {},
	"with": {}, "you": {}, "your": {},
}

// Preprocess lowercases text, strips punctuation and digits, and drops
// stopwords and tokens of two characters or fewer. Query text must pass
// through the same pipeline as build-time text so both land in the same
// vector space.
func Preprocess(text string) []string {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) <= 2 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}
