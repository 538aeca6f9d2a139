package index

import (
	"fmt"
	"log/slog"
	"sort"

	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/errors"
)

// Augmenter adds skip pointers to a frozen posting list in place and returns
// the interval it used. skiplist.Strategy implements it.
type Augmenter interface {
	Augment(pl PostingList) int
	Name() string
}

type accumulator struct {
	frequency int
	positions []int
}

// Builder accumulates token records into a term -> doc -> accumulator map.
// It is single-writer; Freeze turns it into an immutable Index.
type Builder struct {
	terms   map[string]map[string]*accumulator
	records int
	logger  *slog.Logger
}

func NewBuilder() *Builder {
	return &Builder{
		terms:  make(map[string]map[string]*accumulator),
		logger: slog.Default().With("component", "index-builder"),
	}
}

// Add folds one document's occurrences into the builder. Records for the same
// doc_id may arrive more than once; their occurrences are merged.
func (b *Builder) Add(rec TokenRecord) error {
	if rec.DocID == "" {
		return apperrors.New(apperrors.ErrInvalidInput, 0, "token record has empty doc_id")
	}
	for _, occ := range rec.Tokens {
		if occ.Term == "" {
			continue
		}
		docs, ok := b.terms[occ.Term]
		if !ok {
			docs = make(map[string]*accumulator)
			b.terms[occ.Term] = docs
		}
		acc, ok := docs[rec.DocID]
		if !ok {
			acc = &accumulator{positions: make([]int, 0, 4)}
			docs[rec.DocID] = acc
		}
		acc.frequency++
		acc.positions = append(acc.positions, occ.Position)
	}
	b.records++
	b.logger.Debug("record added", "doc_id", rec.DocID, "tokens", len(rec.Tokens))
	return nil
}

// Records returns how many records Add accepted.
func (b *Builder) Records() int {
	return b.records
}

// Freeze sorts every posting list by doc_id and every position list
// ascending, applies aug to each list, and returns the resulting Index. A nil
// aug leaves the lists without skip pointers. The builder must not be used
// afterwards.
func (b *Builder) Freeze(aug Augmenter) (*Index, error) {
	strategy := "none"
	if aug != nil {
		strategy = aug.Name()
	}

	postings := make(map[string]PostingList, len(b.terms))
	lexicon := make(map[string]LexiconEntry, len(b.terms))
	for term, docs := range b.terms {
		pl := make(PostingList, 0, len(docs))
		for docID, acc := range docs {
			positions := acc.positions
			sort.Ints(positions)
			pl = append(pl, Posting{
				DocID:     docID,
				Frequency: acc.frequency,
				Positions: positions,
			})
		}
		sort.Slice(pl, func(i, j int) bool {
			return pl[i].DocID < pl[j].DocID
		})

		interval := 0
		if aug != nil {
			interval = aug.Augment(pl)
		}
		postings[term] = pl
		lexicon[term] = LexiconEntry{
			DocFreq:      len(pl),
			SkipInterval: interval,
			SkipStrategy: strategy,
			Length:       len(pl),
		}
	}
	b.terms = nil

	idx := newIndex(lexicon, postings)
	if err := idx.Validate(); err != nil {
		return nil, fmt.Errorf("freezing index: %w", err)
	}
	b.logger.Info("index frozen",
		"terms", idx.Len(),
		"documents", idx.DocCount(),
		"skip_strategy", strategy,
		"skip_pointers", idx.SkipPointers(),
	)
	return idx, nil
}
