// Package stylometry measures writing style: lexical statistics and the
// semantic drift between consecutive sentence chunks.
package stylometry

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/sentences"
	"github.com/clipperhouse/uax29/v2/words"
)

// Words splits text into UAX #29 word tokens. Whitespace segments are
// dropped; punctuation marks come back as their own tokens.
func Words(text string) []string {
	var out []string
	iter := words.FromString(text)
	for iter.Next() {
		tok := iter.Value()
		if strings.TrimSpace(tok) == "" {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Sentences splits text into UAX #29 sentences with surrounding
// whitespace trimmed. Blank segments are dropped.
func Sentences(text string) []string {
	var out []string
	iter := sentences.FromString(text)
	for iter.Next() {
		s := strings.TrimSpace(iter.Value())
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// isAlpha reports whether tok is non-empty and made only of letters.
func isAlpha(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// isPunct reports whether tok is exactly one punctuation character.
func isPunct(tok string) bool {
	r, size := utf8.DecodeRuneInString(tok)
	return size == len(tok) && r != utf8.RuneError && unicode.IsPunct(r)
}
