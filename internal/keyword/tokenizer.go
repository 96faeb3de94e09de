// Package keyword provides tokenization and literal/approximate term matching.
package keyword

import (
	"strings"
	"unicode"
)

// IsWordRune reports whether r is part of a word: a letter, digit, combining mark or underscore.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// Tokenize lower-cases text, treats every non-word rune as a separator and
// returns the remaining words in order. The result never contains empty tokens.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !IsWordRune(r)
	})
}

// JoinTokens rejoins tokens with single spaces, forming the phrase form of a query.
func JoinTokens(tokens []string) string {
	return strings.Join(tokens, " ")
}
