// Package lexical provides tokenization and the inverted index over quote
// text, authors, and tags.
package lexical

import (
	"strings"
	"unicode"
)

// Tokenize lowercases text and splits it on any non-letter, non-digit rune.
// Punctuation is stripped by the split; empty tokens are discarded.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
