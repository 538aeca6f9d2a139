package index

import "sort"

// Posting records one term's occurrences in one document. Skip, when set, is
// an index into the owning PostingList.
type Posting struct {
	DocID     string `json:"doc_id"`
	Frequency int    `json:"tf"`
	Positions []int  `json:"pos"`
	Skip      *int   `json:"skip,omitempty"`
}

// PostingList is ordered by strictly increasing DocID.
type PostingList []Posting

// LexiconEntry is the per-term dictionary record persisted in lexicon.json.
type LexiconEntry struct {
	DocFreq      int    `json:"df"`
	SkipInterval int    `json:"skip_interval"`
	SkipStrategy string `json:"skip_strategy"`
	Length       int    `json:"length"`
}

// TermEntry pairs a term with its postings, in the order Snapshot returns.
type TermEntry struct {
	Term     string
	Entry    LexiconEntry
	Postings PostingList
}

// TokenRecord is one document of the upstream token stream.
type TokenRecord struct {
	DocID  string       `json:"doc_id"`
	Tokens []Occurrence `json:"tokens"`
}

// Occurrence is a (term, position) pair. It is encoded as a two-element JSON
// array, matching the tokenizer's output.
type Occurrence struct {
	Term     string
	Position int
}

// SkipTarget returns the skip target of posting i when it is present and safe
// to follow: strictly forward, in bounds, and not moving to a smaller DocID.
func (pl PostingList) SkipTarget(i int) (int, bool) {
	if i < 0 || i >= len(pl) || pl[i].Skip == nil {
		return 0, false
	}
	j := *pl[i].Skip
	if j <= i || j >= len(pl) || pl[j].DocID < pl[i].DocID {
		return 0, false
	}
	return j, true
}

// Find returns the posting for docID using binary search.
func (pl PostingList) Find(docID string) (Posting, bool) {
	i := sort.Search(len(pl), func(i int) bool { return pl[i].DocID >= docID })
	if i < len(pl) && pl[i].DocID == docID {
		return pl[i], true
	}
	return Posting{}, false
}

// DocIDs returns the document identifiers of the list in order.
func (pl PostingList) DocIDs() []string {
	ids := make([]string, len(pl))
	for i, p := range pl {
		ids[i] = p.DocID
	}
	return ids
}

// SkipCount returns how many postings carry a skip pointer.
func (pl PostingList) SkipCount() int {
	n := 0
	for _, p := range pl {
		if p.Skip != nil {
			n++
		}
	}
	return n
}
