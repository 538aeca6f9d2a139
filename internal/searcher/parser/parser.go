// Package parser turns boolean query strings into a Node tree.
//
//	expr   := term (OR term)*
//	term   := factor (AND factor)*
//	factor := '(' expr ')' | NOT factor | "phrase" | WORD
//
// Keywords are case-insensitive. NOT binds tighter than AND, AND tighter
// than OR, and both binary operators associate to the left.
package parser

import (
	"fmt"

	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/errors"
)

// SyntaxError reports a malformed query. It unwraps to apperrors.ErrSyntax.
type SyntaxError struct {
	Query string
	Pos   int
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error in %q at offset %d: %s", e.Query, e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return apperrors.ErrSyntax
}

type parser struct {
	query  string
	tokens []token
	pos    int
}

// Parse parses query into a Node. Malformed input returns a *SyntaxError.
func Parse(query string) (Node, error) {
	tokens, err := lex(query)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, &SyntaxError{Query: query, Pos: 0, Msg: "empty query"}
	}
	p := &parser{query: query, tokens: tokens}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		if tok.kind == tokRParen {
			return nil, p.errorAt(tok, "unbalanced parentheses: unexpected ')'")
		}
		return nil, p.errorAt(tok, fmt.Sprintf("unexpected %s %q, expected AND or OR", tok.kind, tok.text))
	}
	return n, nil
}

func (p *parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.accept(tokOr) {
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.accept(tokAnd) {
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = And{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseFactor() (Node, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, &SyntaxError{Query: p.query, Pos: len(p.query), Msg: p.endMessage()}
	}
	switch tok.kind {
	case tokLParen:
		p.pos++
		n, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.accept(tokRParen) {
			return nil, &SyntaxError{Query: p.query, Pos: tok.pos, Msg: "unbalanced parentheses: '(' is never closed"}
		}
		return n, nil
	case tokNot:
		p.pos++
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return Not{Operand: operand}, nil
	case tokPhrase:
		p.pos++
		return Phrase{Words: tok.words}, nil
	case tokWord:
		p.pos++
		return Term{Word: tok.text}, nil
	case tokRParen:
		return nil, p.errorAt(tok, "unexpected ')'")
	default:
		return nil, p.errorAt(tok, fmt.Sprintf("dangling operator %s", tok.kind))
	}
}

// endMessage explains why input ran out where an operand was required.
func (p *parser) endMessage() string {
	if p.pos > 0 {
		last := p.tokens[p.pos-1]
		switch last.kind {
		case tokAnd, tokOr, tokNot:
			return fmt.Sprintf("dangling operator %s at end of query", last.kind)
		case tokLParen:
			return "unbalanced parentheses: '(' is never closed"
		}
	}
	return "unexpected end of query"
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) accept(kind tokenKind) bool {
	if tok, ok := p.peek(); ok && tok.kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *parser) errorAt(tok token, msg string) error {
	return &SyntaxError{Query: p.query, Pos: tok.pos, Msg: msg}
}
