package executor

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/index"
)

// phraseMatch returns the doc_ids, ascending, where the terms behind lists
// occur at consecutive positions: some p in positions(lists[0]) with p+i in
// positions(lists[i]) for every i.
func phraseMatch(lists []index.PostingList) []string {
	if len(lists) == 0 {
		return nil
	}
	shortest := 0
	for i, pl := range lists {
		if len(pl) == 0 {
			return nil
		}
		if len(pl) < len(lists[shortest]) {
			shortest = i
		}
	}

	var out []string
	postings := make([]index.Posting, len(lists))
candidates:
	for _, cand := range lists[shortest] {
		for i, pl := range lists {
			p, ok := pl.Find(cand.DocID)
			if !ok {
				continue candidates
			}
			postings[i] = p
		}
		if adjacent(postings) {
			out = append(out, cand.DocID)
		}
	}
	return out
}

func adjacent(postings []index.Posting) bool {
	for _, p := range postings[0].Positions {
		match := true
		for i := 1; i < len(postings); i++ {
			if !containsInt(postings[i].Positions, p+i) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func containsInt(sorted []int, v int) bool {
	i := sort.SearchInts(sorted, v)
	return i < len(sorted) && sorted[i] == v
}
