// Package ranker scores documents against free-text queries with the vector
// space model: sublinear TF-IDF weights and cosine similarity.
//
//	idf(t)    = ln((N+1) / (df(t)+1))
//	w(t, d)   = (1 + ln tf(t, d)) * idf(t)
//	score(d)  = sum_t w(t, d) * w(t, q) / (|d| * |q|)
package ranker

import (
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/tokenizer"
)

// DefaultTopK is the result count when the caller passes no limit.
const DefaultTopK = 10

type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// Model holds the corpus statistics precomputed once per index. It is
// read-only after NewModel and safe for concurrent use.
type Model struct {
	idx   *index.Index
	n     int
	idf   map[string]float64
	norms map[string]float64
	opts  tokenizer.Options
}

// NewModel computes N, per-term idf and per-document vector norms. opts
// must match the tokenizer options the index was built with.
func NewModel(idx *index.Index, opts tokenizer.Options) *Model {
	m := &Model{
		idx:   idx,
		n:     idx.DocCount(),
		idf:   make(map[string]float64, idx.Len()),
		norms: make(map[string]float64, idx.DocCount()),
		opts:  opts,
	}
	sq := make(map[string]float64, idx.DocCount())
	for _, term := range idx.Terms() {
		pl := idx.Postings(term)
		idf := math.Log(float64(m.n+1) / float64(len(pl)+1))
		m.idf[term] = idf
		for _, p := range pl {
			w := weight(p.Frequency, idf)
			sq[p.DocID] += w * w
		}
	}
	for doc, s := range sq {
		m.norms[doc] = math.Sqrt(s)
	}
	return m
}

// Rank tokenizes query, drops stop-words and returns the top limit documents
// by cosine similarity. limit <= 0 means DefaultTopK.
func (m *Model) Rank(query string, limit int) []ScoredDoc {
	return m.RankTerms(tokenizer.Terms(query, m.opts), limit)
}

// RankTerms scores an already tokenized query. Only the posting lists of
// query terms are visited. Documents with a zero norm are skipped, and a
// query whose vector has zero norm returns no results.
func (m *Model) RankTerms(terms []string, limit int) []ScoredDoc {
	if limit <= 0 {
		limit = DefaultTopK
	}
	if len(terms) == 0 {
		return []ScoredDoc{}
	}
	tf := make(map[string]int, len(terms))
	for _, t := range terms {
		tf[t]++
	}
	// Sum in a fixed term order so repeated queries give bit-identical scores.
	uniq := make([]string, 0, len(tf))
	for t := range tf {
		uniq = append(uniq, t)
	}
	sort.Strings(uniq)

	wq := make([]float64, len(uniq))
	var qnorm2 float64
	for i, t := range uniq {
		w := weight(tf[t], m.idf[t])
		wq[i] = w
		qnorm2 += w * w
	}
	if qnorm2 == 0 {
		return []ScoredDoc{}
	}
	qnorm := math.Sqrt(qnorm2)

	dot := make(map[string]float64)
	for i, t := range uniq {
		idf, w := m.idf[t], wq[i]
		if idf == 0 {
			continue
		}
		for _, p := range m.idx.Postings(t) {
			dot[p.DocID] += weight(p.Frequency, idf) * w
		}
	}

	top := newTopK(limit)
	for doc, num := range dot {
		dnorm := m.norms[doc]
		if dnorm == 0 {
			continue
		}
		top.offer(ScoredDoc{DocID: doc, Score: num / (dnorm * qnorm)})
	}
	return top.sorted()
}

// IDF returns the inverse document frequency of term, 0 when unknown.
func (m *Model) IDF(term string) float64 {
	return m.idf[term]
}

// Norm returns the precomputed vector norm of a document.
func (m *Model) Norm(docID string) float64 {
	return m.norms[docID]
}

// DocCount returns N.
func (m *Model) DocCount() int {
	return m.n
}

func weight(tf int, idf float64) float64 {
	if tf <= 0 {
		return 0
	}
	return (1 + math.Log(float64(tf))) * idf
}
