// Package executor evaluates parsed boolean queries against an immutable
// index. Leaves resolve to roaring bitmaps over dense doc ordinals; AND of two
// plain terms can instead run the skip-pointer merge over posting lists.
package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/RoaringBitmap/roaring"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/dictionary"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/metrics"
)

// Dictionary is a term existence check consulted before postings are read.
// *dictionary.Membership implements it.
type Dictionary interface {
	Contains(term string) bool
}

type Config struct {
	// UseSkips routes AND of two plain terms through IntersectWithSkips.
	UseSkips bool
	// Workers bounds SearchAll parallelism.
	Workers int
	// Stem must match the setting the index was built with.
	Stem bool
}

type Executor struct {
	idx       *index.Index
	dict      Dictionary
	docs      *docSpace
	cfg       Config
	modeLabel string
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New builds an executor over idx. dict and m may be nil.
func New(idx *index.Index, dict Dictionary, cfg Config, m *metrics.Metrics) *Executor {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	label := string(dictionary.ModeRaw)
	if md, ok := dict.(interface{ Mode() dictionary.Mode }); ok {
		label = string(md.Mode())
	}
	return &Executor{
		idx:       idx,
		dict:      dict,
		docs:      newDocSpace(idx.DocIDs()),
		cfg:       cfg,
		modeLabel: label,
		metrics:   m,
		logger:    slog.Default().With("component", "boolean-executor"),
	}
}

// Search parses and evaluates query, returning matching doc_ids ascending.
// Only a malformed query is an error.
func (e *Executor) Search(ctx context.Context, query string) ([]string, error) {
	start := time.Now()
	node, err := parser.Parse(query)
	if err != nil {
		e.observe("syntax_error", start)
		return nil, err
	}
	ids := e.Evaluate(node)
	outcome := "hit"
	if len(ids) == 0 {
		outcome = "zero_result"
	}
	e.observe(outcome, start)
	e.logger.Debug("boolean query evaluated",
		"query", query,
		"results", len(ids),
		"duration", time.Since(start),
	)
	return ids, nil
}

// Evaluate returns the doc_ids matching node, ascending.
func (e *Executor) Evaluate(node parser.Node) []string {
	return e.docs.toIDs(e.eval(node))
}

func (e *Executor) eval(node parser.Node) *roaring.Bitmap {
	switch n := node.(type) {
	case parser.Term:
		return e.docs.fromPostings(e.postings(e.normalize(n.Word)))
	case parser.Phrase:
		return e.phrase(n.Words)
	case parser.And:
		if e.cfg.UseSkips {
			lt, lok := n.Left.(parser.Term)
			rt, rok := n.Right.(parser.Term)
			if lok && rok {
				a := e.postings(e.normalize(lt.Word))
				b := e.postings(e.normalize(rt.Word))
				return e.docs.fromIDs(IntersectWithSkips(a, b))
			}
		}
		return roaring.And(e.eval(n.Left), e.eval(n.Right))
	case parser.Or:
		return roaring.Or(e.eval(n.Left), e.eval(n.Right))
	case parser.Not:
		return e.docs.complement(e.eval(n.Operand))
	default:
		return roaring.New()
	}
}

func (e *Executor) phrase(words []string) *roaring.Bitmap {
	terms := tokenizer.DropStopWords(words)
	if len(terms) == 0 {
		return roaring.New()
	}
	lists := make([]index.PostingList, len(terms))
	for i, w := range terms {
		lists[i] = e.postings(e.normalize(w))
	}
	if len(lists) == 1 {
		return e.docs.fromPostings(lists[0])
	}
	return e.docs.fromIDs(phraseMatch(lists))
}

// postings resolves term, short-circuiting to nil when the dictionary says
// it does not exist.
func (e *Executor) postings(term string) index.PostingList {
	if e.dict != nil && !e.dict.Contains(term) {
		return nil
	}
	return e.idx.Postings(term)
}

func (e *Executor) normalize(word string) string {
	return tokenizer.Normalize(word, tokenizer.Options{Stem: e.cfg.Stem})
}

func (e *Executor) observe(outcome string, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.QueriesTotal.WithLabelValues("boolean", outcome).Inc()
	e.metrics.QueryLatency.WithLabelValues("boolean", e.modeLabel).Observe(time.Since(start).Seconds())
}

// SearchAll evaluates independent queries on up to cfg.Workers goroutines and
// returns results in input order. The first syntax error cancels the rest and
// is returned.
func (e *Executor) SearchAll(ctx context.Context, queries []string) ([][]string, error) {
	results := make([][]string, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, q := range queries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ids, err := e.Search(gctx, q)
			if err != nil {
				return err
			}
			results[i] = ids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// DictionaryMode is the dictionary mode label used in metrics.
func (e *Executor) DictionaryMode() string {
	return e.modeLabel
}
