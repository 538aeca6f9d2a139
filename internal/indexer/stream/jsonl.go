// Package stream reads and writes the token stream as JSON Lines, one
// {"doc_id": ..., "tokens": [[term, position], ...]} object per line.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/errors"
)

const maxLineSize = 16 * 1024 * 1024

type Reader struct {
	sc   *bufio.Scanner
	line int
}

func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{sc: sc}
}

// Next returns the next record, skipping blank lines. It returns io.EOF at
// the end of the stream.
func (r *Reader) Next() (index.TokenRecord, error) {
	for r.sc.Scan() {
		r.line++
		text := strings.TrimSpace(r.sc.Text())
		if text == "" {
			continue
		}
		var rec index.TokenRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return index.TokenRecord{}, apperrors.Newf(apperrors.ErrInvalidInput, 0, "line %d: %v", r.line, err)
		}
		return rec, nil
	}
	if err := r.sc.Err(); err != nil {
		return index.TokenRecord{}, fmt.Errorf("reading token stream: %w", err)
	}
	return index.TokenRecord{}, io.EOF
}

type Writer struct {
	bw  *bufio.Writer
	enc *json.Encoder
}

func NewWriter(w io.Writer) *Writer {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &Writer{bw: bw, enc: enc}
}

func (w *Writer) Write(rec index.TokenRecord) error {
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("encoding token record %q: %w", rec.DocID, err)
	}
	return nil
}

func (w *Writer) Flush() error {
	return w.bw.Flush()
}

// FileSource feeds records from a JSONL file.
type FileSource struct {
	Path string
}

// Records calls fn for every record in the file, stopping at the first error
// or when ctx is cancelled.
func (s FileSource) Records(ctx context.Context, fn func(index.TokenRecord) error) error {
	f, err := os.Open(s.Path)
	if err != nil {
		return fmt.Errorf("opening token stream: %w", err)
	}
	defer f.Close()

	r := NewReader(f)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", s.Path, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

func (s FileSource) String() string {
	return "file:" + s.Path
}
