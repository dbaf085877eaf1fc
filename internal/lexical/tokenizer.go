package lexical

import (
	"strings"
	"unicode"
)

// minTokenLength drops short stop-ish tokens; documents and queries are
// tokenized identically so scores stay comparable.
const minTokenLength = 3

// Tokenize lowercases, strips punctuation, and returns alphanumeric tokens
// longer than two characters.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= minTokenLength {
			tokens = append(tokens, f)
		}
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}
