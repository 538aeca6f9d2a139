package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/errors"
)

// Document is one extracted record before tokenization.
type Document struct {
	DocID string `json:"doc_id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Tokenized converts a document into its token record. Only the body text
// is tokenized.
func Tokenized(doc Document, opts tokenizer.Options) index.TokenRecord {
	toks := tokenizer.TokenizeWith(doc.Text, opts)
	rec := index.TokenRecord{DocID: doc.DocID, Tokens: make([]index.Occurrence, len(toks))}
	for i, tok := range toks {
		rec.Tokens[i] = index.Occurrence{Term: tok.Term, Position: tok.Position}
	}
	return rec
}

// Documents calls fn for every document in a JSONL file. Documents without
// a doc_id are rejected.
func Documents(ctx context.Context, path string, fn func(Document) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening documents: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var doc Document
		if err := json.Unmarshal([]byte(text), &doc); err != nil {
			return apperrors.Newf(apperrors.ErrInvalidInput, 0, "%s line %d: %v", path, line, err)
		}
		if doc.DocID == "" {
			return apperrors.Newf(apperrors.ErrInvalidInput, 0, "%s line %d: missing doc_id", path, line)
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading documents: %w", err)
	}
	return nil
}
