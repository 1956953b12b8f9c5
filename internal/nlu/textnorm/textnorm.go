// Package textnorm holds the text normalization shared by the vectorizer
// and the entity extractor.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonWord = regexp.MustCompile(`[^\w\s]+`)

// Fold strips diacritics so "stäke" and "stake" share a token.
func Fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}

// Tokenize lowercases, drops non-word characters and splits on whitespace.
// Empty tokens are never returned.
func Tokenize(text string) []string {
	clean := nonWord.ReplaceAllString(strings.ToLower(Fold(text)), "")
	return strings.Fields(clean)
}
