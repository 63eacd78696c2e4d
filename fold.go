package main

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldLetter turns typed input into a grid letter: accents are stripped and the
// result uppercased, so "é" becomes "E". Anything that is not a single A–Z
// letter after folding yields "".
func FoldLetter(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return ""
	}
	folded = strings.ToUpper(folded)
	if utf8.RuneCountInString(folded) != 1 || folded[0] < 'A' || folded[0] > 'Z' {
		return ""
	}
	return folded
}

// foldCompare normalises a letter or solution for answer comparison.
func foldCompare(s string) string {
	s = strings.TrimSpace(s)
	if f := FoldLetter(s); f != "" {
		return f
	}
	return strings.ToUpper(s)
}
