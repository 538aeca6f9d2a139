package ranker

import "container/heap"

// topK keeps the best k documents seen so far in a min-heap whose root is the
// weakest kept result. Ordering is score descending, then doc_id ascending.
type topK struct {
	k int
	h scoredDocHeap
}

func newTopK(k int) *topK {
	return &topK{k: k, h: make(scoredDocHeap, 0, k+1)}
}

func (t *topK) offer(doc ScoredDoc) {
	if len(t.h) < t.k {
		heap.Push(&t.h, doc)
		return
	}
	if worse(doc, t.h[0]) {
		return
	}
	t.h[0] = doc
	heap.Fix(&t.h, 0)
}

// sorted drains the heap, best first.
func (t *topK) sorted() []ScoredDoc {
	out := make([]ScoredDoc, len(t.h))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&t.h).(ScoredDoc)
	}
	return out
}

// worse reports whether a ranks below b.
func worse(a, b ScoredDoc) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.DocID > b.DocID
}

type scoredDocHeap []ScoredDoc

func (h scoredDocHeap) Len() int           { return len(h) }
func (h scoredDocHeap) Less(i, j int) bool { return worse(h[i], h[j]) }
func (h scoredDocHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *scoredDocHeap) Push(x any) {
	*h = append(*h, x.(ScoredDoc))
}

func (h *scoredDocHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
