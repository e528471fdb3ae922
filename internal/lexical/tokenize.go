package lexical

import (
	"strings"
	"unicode"
)

// MinTokenRunes is the shortest token kept by the analyzer.
const MinTokenRunes = 2

// MaxNGram is the longest word n-gram produced by Terms.
const MaxNGram = 2

// Tokens lowercases s and splits it into maximal runs of word runes
// (Unicode letters, numbers and '_'), dropping runs shorter than MinTokenRunes.
func Tokens(s string) []string {
	s = strings.ToLower(s)

	var (
		tokens []string
		start  = -1
		runes  int
	)
	flush := func(end int) {
		if start >= 0 && runes >= MinTokenRunes {
			tokens = append(tokens, s[start:end])
		}
		start, runes = -1, 0
	}

	for i, r := range s {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			runes++
			continue
		}
		flush(i)
	}
	flush(len(s))

	return tokens
}

// Terms returns the unigrams followed by the word n-grams up to MaxNGram of s.
// N-gram parts are joined by a single space.
func Terms(s string) []string {
	tokens := Tokens(s)
	if len(tokens) == 0 {
		return nil
	}

	terms := make([]string, 0, len(tokens)*MaxNGram)
	terms = append(terms, tokens...)
	for n := 2; n <= MaxNGram; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
