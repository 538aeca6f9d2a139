// Package index holds the inverted index data model: postings, posting lists,
// lexicon entries, the Builder that accumulates a token stream, and the
// immutable Index it freezes into.
package index

import (
	"fmt"
	"log/slog"
	"sort"

	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/errors"
)

// Index maps terms to posting lists and lexicon entries. It is read-only once
// constructed and safe for concurrent readers.
type Index struct {
	postings map[string]PostingList
	lexicon  map[string]LexiconEntry
	terms    []string
	docIDs   []string
}

func newIndex(lexicon map[string]LexiconEntry, postings map[string]PostingList) *Index {
	terms := make([]string, 0, len(postings))
	docs := make(map[string]struct{})
	for term, pl := range postings {
		terms = append(terms, term)
		for _, p := range pl {
			docs[p.DocID] = struct{}{}
		}
	}
	sort.Strings(terms)
	docIDs := make([]string, 0, len(docs))
	for id := range docs {
		docIDs = append(docIDs, id)
	}
	sort.Strings(docIDs)
	return &Index{
		postings: postings,
		lexicon:  lexicon,
		terms:    terms,
		docIDs:   docIDs,
	}
}

// FromArtifacts rebuilds an Index from a persisted lexicon and postings map.
// Sort-order and lexicon mismatches fail with ErrInvariant. Skip pointers that
// are out of range or point backwards are dropped with a warning.
func FromArtifacts(lexicon map[string]LexiconEntry, postings map[string]PostingList) (*Index, error) {
	logger := slog.Default().With("component", "index")
	if len(lexicon) != len(postings) {
		return nil, apperrors.Newf(apperrors.ErrInvariant, 0,
			"lexicon has %d terms, postings has %d", len(lexicon), len(postings))
	}
	dropped := 0
	for term, pl := range postings {
		entry, ok := lexicon[term]
		if !ok {
			return nil, apperrors.Newf(apperrors.ErrInvariant, 0, "term %q missing from lexicon", term)
		}
		if entry.DocFreq != len(pl) {
			return nil, apperrors.Newf(apperrors.ErrInvariant, 0,
				"term %q: df %d does not match posting list length %d", term, entry.DocFreq, len(pl))
		}
		for i := range pl {
			if pl[i].Skip == nil {
				continue
			}
			if _, ok := pl.SkipTarget(i); !ok {
				pl[i].Skip = nil
				dropped++
			}
		}
	}
	if dropped > 0 {
		logger.Warn("dropped invalid skip pointers", "count", dropped)
	}

	idx := newIndex(lexicon, postings)
	if err := idx.Validate(); err != nil {
		return nil, fmt.Errorf("loading index artifacts: %w", err)
	}
	return idx, nil
}

// Validate checks the structural invariants every merge relies on: doc_ids
// strictly increasing, positions ascending, tf at least 1, and every skip
// pointer moving forward within bounds to a doc_id not smaller than its origin.
func (ix *Index) Validate() error {
	for _, term := range ix.terms {
		pl := ix.postings[term]
		if len(pl) == 0 {
			return apperrors.Newf(apperrors.ErrInvariant, 0, "term %q has an empty posting list", term)
		}
		for i, p := range pl {
			if p.Frequency < 1 {
				return apperrors.Newf(apperrors.ErrInvariant, 0,
					"term %q doc %q: tf %d < 1", term, p.DocID, p.Frequency)
			}
			if i > 0 && pl[i-1].DocID >= p.DocID {
				return apperrors.Newf(apperrors.ErrInvariant, 0,
					"term %q: doc_id %q does not follow %q", term, p.DocID, pl[i-1].DocID)
			}
			if !sort.IntsAreSorted(p.Positions) {
				return apperrors.Newf(apperrors.ErrInvariant, 0,
					"term %q doc %q: positions not ascending", term, p.DocID)
			}
			if p.Skip != nil {
				if _, ok := pl.SkipTarget(i); !ok {
					return apperrors.Newf(apperrors.ErrInvariant, 0,
						"term %q: invalid skip pointer %d -> %d", term, i, *p.Skip)
				}
			}
		}
	}
	return nil
}

// Postings returns the posting list of term, or nil when unknown. The slice
// is shared and must not be modified.
func (ix *Index) Postings(term string) PostingList {
	return ix.postings[term]
}

func (ix *Index) Entry(term string) (LexiconEntry, bool) {
	e, ok := ix.lexicon[term]
	return e, ok
}

func (ix *Index) Has(term string) bool {
	_, ok := ix.postings[term]
	return ok
}

// Terms returns the vocabulary in ascending order. The slice is shared.
func (ix *Index) Terms() []string {
	return ix.terms
}

// DocIDs returns every doc_id appearing in any posting list, ascending. This
// is the universe NOT complements against. The slice is shared.
func (ix *Index) DocIDs() []string {
	return ix.docIDs
}

// Len returns the vocabulary size.
func (ix *Index) Len() int {
	return len(ix.terms)
}

// DocCount returns the number of distinct documents.
func (ix *Index) DocCount() int {
	return len(ix.docIDs)
}

// SkipPointers counts skip pointers across all lists.
func (ix *Index) SkipPointers() int {
	n := 0
	for _, pl := range ix.postings {
		n += pl.SkipCount()
	}
	return n
}

// Lexicon returns the term -> entry map. It is shared and must not be
// modified.
func (ix *Index) Lexicon() map[string]LexiconEntry {
	return ix.lexicon
}

// Snapshot returns every term with its entry and postings, sorted by term.
func (ix *Index) Snapshot() []TermEntry {
	entries := make([]TermEntry, 0, len(ix.terms))
	for _, term := range ix.terms {
		entries = append(entries, TermEntry{
			Term:     term,
			Entry:    ix.lexicon[term],
			Postings: ix.postings[term],
		})
	}
	return entries
}
