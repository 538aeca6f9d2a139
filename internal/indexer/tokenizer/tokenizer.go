// Package tokenizer turns free text into the positional token stream consumed
// by the indexer. Text is lower-cased and split into runs of ASCII letters and
// digits; every run consumes a position, and stop-words are then dropped, so
// positions of surviving tokens keep the gaps left by removed words.
package tokenizer

import (
	"strings"

	snowballeng "github.com/kljensen/snowball/english"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "not": {}, "is": {},
	"are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"to": {}, "of": {}, "in": {}, "on": {}, "at": {}, "for": {}, "from": {},
	"with": {}, "by": {}, "as": {}, "it": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "we": {}, "you": {}, "your": {}, "our": {},
	"his": {}, "her": {}, "their": {}, "i": {}, "he": {}, "she": {},
	"they": {}, "them": {}, "me": {}, "my": {}, "mine": {}, "ours": {},
	"yours": {}, "its": {}, "into": {}, "about": {}, "over": {}, "under": {},
	"up": {}, "down": {}, "out": {}, "more": {}, "most": {}, "less": {},
	"few": {}, "many": {}, "any": {}, "each": {}, "every": {},
}

// Token represents a single normalised term and its position in the
// original text.
type Token struct {
	Term     string
	Position int
}

// Options selects optional normalisation steps.
type Options struct {
	// Stem applies the snowball English stemmer to every surviving token.
	Stem bool
}

// Tokenize breaks text into lower-cased Tokens with stop-words removed.
func Tokenize(text string) []Token {
	return TokenizeWith(text, Options{})
}

// TokenizeWith is Tokenize with explicit options.
func TokenizeWith(text string, opts Options) []Token {
	words := Words(text)
	tokens := make([]Token, 0, len(words))
	for pos, word := range words {
		if IsStopWord(word) {
			continue
		}
		if word = Normalize(word, opts); word == "" {
			continue
		}
		tokens = append(tokens, Token{Term: word, Position: pos})
	}
	return tokens
}

// Terms returns the surviving terms of text in order, without positions.
// Query-side callers use it for ranked queries.
func Terms(text string, opts Options) []string {
	tokens := TokenizeWith(text, opts)
	terms := make([]string, len(tokens))
	for i, tok := range tokens {
		terms[i] = tok.Term
	}
	return terms
}

// Normalize applies the optional steps of opts to an already lower-cased
// word. Query-side callers use it so that words match indexed terms.
func Normalize(word string, opts Options) string {
	if opts.Stem {
		return snowballeng.Stem(word, false)
	}
	return word
}

// Words lower-cases text and returns every run of [a-z0-9], stop-words
// included.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordByte(r)
	})
}

// IsStopWord reports whether the lower-cased word is on the stop list.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

// DropStopWords returns words without stop-words, preserving order.
func DropStopWords(words []string) []string {
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" || IsStopWord(w) {
			continue
		}
		kept = append(kept, w)
	}
	return kept
}

func isWordByte(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
