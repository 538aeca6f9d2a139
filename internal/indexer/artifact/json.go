// Package artifact persists an Index as whole-file artifacts: lexicon.json
// and postings.json, plus an optional SQLite export of the same data.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/index"
)

const (
	LexiconFile  = "lexicon.json"
	PostingsFile = "postings.json"
)

// Writer writes index artifacts into one directory.
type Writer struct {
	dataDir string
}

func NewWriter(dataDir string) *Writer {
	return &Writer{dataDir: dataDir}
}

// Write stores the lexicon and postings maps as indented JSON. Each file is
// written to a .tmp sibling first and renamed on success.
func (w *Writer) Write(idx *index.Index) error {
	if err := os.MkdirAll(w.dataDir, 0755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}
	postings := make(map[string]index.PostingList, idx.Len())
	for _, term := range idx.Terms() {
		postings[term] = idx.Postings(term)
	}
	if err := writeJSON(filepath.Join(w.dataDir, LexiconFile), idx.Lexicon()); err != nil {
		return fmt.Errorf("writing lexicon: %w", err)
	}
	if err := writeJSON(filepath.Join(w.dataDir, PostingsFile), postings); err != nil {
		return fmt.Errorf("writing postings: %w", err)
	}
	return nil
}

// Dir returns the artifact directory.
func (w *Writer) Dir() string {
	return w.dataDir
}

func writeJSON(path string, v any) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	f.Close()
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Load reads lexicon.json and postings.json from dataDir and rebuilds the
// Index, validating its invariants.
func Load(dataDir string) (*index.Index, error) {
	var lexicon map[string]index.LexiconEntry
	if err := readJSON(filepath.Join(dataDir, LexiconFile), &lexicon); err != nil {
		return nil, fmt.Errorf("reading lexicon: %w", err)
	}
	var postings map[string]index.PostingList
	if err := readJSON(filepath.Join(dataDir, PostingsFile), &postings); err != nil {
		return nil, fmt.Errorf("reading postings: %w", err)
	}
	return index.FromArtifacts(lexicon, postings)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}
