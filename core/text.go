package core

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes text for indexing and querying.
// It lower-cases the text and drops every rune that is not a letter, mark,
// number, underscore or whitespace. Whitespace is kept untouched so token
// boundaries survive.
//
// Corpus build and query paths must both go through this function.
func Normalize(text string) string {
	return strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, strings.ToLower(text))
}

// isWordRune reports whether r can be part of a token.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsNumber(r)
}

// Tokens splits normalized text into tokens of at least two word runes.
// Shorter runs are dropped, matching the lexical features the vectorizer
// learns.
func Tokens(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !isWordRune(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
