package executor

import (
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/index"
)

// IntersectWithSkips returns the doc_ids common to a and b. The shorter list
// drives the merge. On a mismatch the lagging side follows its skip pointer
// when the target doc_id does not pass the other side's current doc_id, and
// steps by one otherwise. Invalid skip pointers are ignored.
func IntersectWithSkips(a, b index.PostingList) []string {
	ids, _ := intersectWithSkips(a, b)
	return ids
}

func intersectWithSkips(a, b index.PostingList) ([]string, int) {
	if len(b) < len(a) {
		a, b = b, a
	}
	out := make([]string, 0, min(len(a), len(b)))
	skips := 0
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		da, db := a[i].DocID, b[j].DocID
		switch {
		case da == db:
			out = append(out, da)
			i++
			j++
		case da < db:
			if t, ok := a.SkipTarget(i); ok && a[t].DocID <= db {
				i = t
				skips++
			} else {
				i++
			}
		default:
			if t, ok := b.SkipTarget(j); ok && b[t].DocID <= da {
				j = t
				skips++
			} else {
				j++
			}
		}
	}
	return out, skips
}

// Intersect is the plain two-pointer merge of a and b.
func Intersect(a, b index.PostingList) []string {
	out := make([]string, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].DocID == b[j].DocID:
			out = append(out, a[i].DocID)
			i++
			j++
		case a[i].DocID < b[j].DocID:
			i++
		default:
			j++
		}
	}
	return out
}
