package parser

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/tokenizer"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokPhrase
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

func (k tokenKind) String() string {
	switch k {
	case tokWord:
		return "word"
	case tokPhrase:
		return "phrase"
	case tokAnd:
		return "AND"
	case tokOr:
		return "OR"
	case tokNot:
		return "NOT"
	case tokLParen:
		return "'('"
	default:
		return "')'"
	}
}

type token struct {
	kind  tokenKind
	text  string
	words []string
	pos   int
}

// lex splits query into tokens. Quoted text becomes a single phrase token;
// word runs are [A-Za-z0-9] and everything else separates them, matching the
// tokenizer used at index time.
func lex(query string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(query) {
		c := query[i]
		switch {
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case c == '"':
			end := strings.IndexByte(query[i+1:], '"')
			if end < 0 {
				return nil, &SyntaxError{Query: query, Pos: i, Msg: "unterminated quote"}
			}
			body := query[i+1 : i+1+end]
			tokens = append(tokens, token{
				kind:  tokPhrase,
				text:  query[i : i+end+2],
				words: tokenizer.Words(body),
				pos:   i,
			})
			i += end + 2
		case isWordChar(c):
			start := i
			for i < len(query) && isWordChar(query[i]) {
				i++
			}
			text := query[start:i]
			tokens = append(tokens, wordToken(text, start))
		default:
			i++
		}
	}
	return tokens, nil
}

func wordToken(text string, pos int) token {
	switch strings.ToUpper(text) {
	case "AND":
		return token{kind: tokAnd, text: text, pos: pos}
	case "OR":
		return token{kind: tokOr, text: text, pos: pos}
	case "NOT":
		return token{kind: tokNot, text: text, pos: pos}
	}
	return token{kind: tokWord, text: strings.ToLower(text), pos: pos}
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
