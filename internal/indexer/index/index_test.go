package index_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/skiplist"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/errors"
)

func occ(pairs ...any) []index.Occurrence {
	out := make([]index.Occurrence, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, index.Occurrence{Term: pairs[i].(string), Position: pairs[i+1].(int)})
	}
	return out
}

func TestFreeze_ThreePostingScenario(t *testing.T) {
	b := index.NewBuilder()
	records := []index.TokenRecord{
		{DocID: "7", Tokens: occ("t", 9, "t", 1, "t", 4)},
		{DocID: "1", Tokens: occ("t", 5, "t", 0)},
		{DocID: "3", Tokens: occ("t", 2)},
	}
	for _, r := range records {
		if err := b.Add(r); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	idx, err := b.Freeze(skiplist.MustParse("sqrt"))
	if err != nil {
		t.Fatalf("Freeze() error = %v", err)
	}

	want := index.PostingList{
		{DocID: "1", Frequency: 2, Positions: []int{0, 5}},
		{DocID: "3", Frequency: 1, Positions: []int{2}},
		{DocID: "7", Frequency: 3, Positions: []int{1, 4, 9}},
	}
	if got := idx.Postings("t"); !reflect.DeepEqual(got, want) {
		t.Errorf("Postings(t) = %+v, want %+v", got, want)
	}
	entry, ok := idx.Entry("t")
	if !ok {
		t.Fatal("Entry(t) missing")
	}
	wantEntry := index.LexiconEntry{DocFreq: 3, SkipInterval: 1, SkipStrategy: "sqrt", Length: 3}
	if entry != wantEntry {
		t.Errorf("Entry(t) = %+v, want %+v", entry, wantEntry)
	}
	if n := idx.SkipPointers(); n != 0 {
		t.Errorf("SkipPointers() = %d, want 0", n)
	}
}

func TestFreeze_Deterministic(t *testing.T) {
	build := func(records []index.TokenRecord) *index.Index {
		b := index.NewBuilder()
		for _, r := range records {
			if err := b.Add(r); err != nil {
				t.Fatalf("Add() error = %v", err)
			}
		}
		idx, err := b.Freeze(skiplist.MustParse("k:2"))
		if err != nil {
			t.Fatalf("Freeze() error = %v", err)
		}
		return idx
	}
	a := build([]index.TokenRecord{
		{DocID: "b", Tokens: occ("x", 3, "y", 1, "x", 0)},
		{DocID: "a", Tokens: occ("y", 2, "x", 7)},
		{DocID: "c", Tokens: occ("x", 1)},
	})
	b := build([]index.TokenRecord{
		{DocID: "c", Tokens: occ("x", 1)},
		{DocID: "a", Tokens: occ("x", 7, "y", 2)},
		{DocID: "b", Tokens: occ("x", 0, "x", 3, "y", 1)},
	})
	if !reflect.DeepEqual(a.Snapshot(), b.Snapshot()) {
		t.Errorf("snapshots differ:\n%+v\n%+v", a.Snapshot(), b.Snapshot())
	}
	if got := a.DocIDs(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("DocIDs() = %v", got)
	}
	if got := a.Terms(); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("Terms() = %v", got)
	}
}

func TestFreeze_SortedPostingsAndSafeSkips(t *testing.T) {
	b := index.NewBuilder()
	for i := 0; i < 200; i++ {
		id := string(rune('A'+i%26)) + string(rune('a'+i/26))
		if err := b.Add(index.TokenRecord{DocID: id, Tokens: occ("common", i%5, "rare", 0)}); err != nil {
			t.Fatal(err)
		}
	}
	idx, err := b.Freeze(skiplist.MustParse("sqrt"))
	if err != nil {
		t.Fatalf("Freeze() error = %v", err)
	}
	for _, term := range idx.Terms() {
		pl := idx.Postings(term)
		for i := 1; i < len(pl); i++ {
			if pl[i-1].DocID >= pl[i].DocID {
				t.Fatalf("term %q not strictly increasing at %d", term, i)
			}
		}
		for i, p := range pl {
			if p.Skip == nil {
				continue
			}
			if _, ok := pl.SkipTarget(i); !ok {
				t.Fatalf("term %q: unsafe skip at %d", term, i)
			}
		}
	}
	if idx.SkipPointers() == 0 {
		t.Error("expected skip pointers on 200-long lists")
	}
}

func TestAdd_RejectsEmptyDocID(t *testing.T) {
	err := index.NewBuilder().Add(index.TokenRecord{Tokens: occ("x", 0)})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("Add() error = %v, want ErrInvalidInput", err)
	}
}

func TestFromArtifacts_RejectsUnsorted(t *testing.T) {
	postings := map[string]index.PostingList{
		"t": {
			{DocID: "2", Frequency: 1, Positions: []int{0}},
			{DocID: "1", Frequency: 1, Positions: []int{0}},
		},
	}
	lexicon := map[string]index.LexiconEntry{"t": {DocFreq: 2, Length: 2}}
	_, err := index.FromArtifacts(lexicon, postings)
	if !errors.Is(err, apperrors.ErrInvariant) {
		t.Errorf("FromArtifacts() error = %v, want ErrInvariant", err)
	}
}

func TestFromArtifacts_DropsBadSkips(t *testing.T) {
	back, out := 0, 9
	postings := map[string]index.PostingList{
		"t": {
			{DocID: "1", Frequency: 1, Positions: []int{0}, Skip: &out},
			{DocID: "2", Frequency: 1, Positions: []int{0}, Skip: &back},
			{DocID: "3", Frequency: 1, Positions: []int{0}},
		},
	}
	lexicon := map[string]index.LexiconEntry{"t": {DocFreq: 3, Length: 3}}
	idx, err := index.FromArtifacts(lexicon, postings)
	if err != nil {
		t.Fatalf("FromArtifacts() error = %v", err)
	}
	if n := idx.SkipPointers(); n != 0 {
		t.Errorf("SkipPointers() = %d, want 0", n)
	}
}

func TestFromArtifacts_DocFreqMismatch(t *testing.T) {
	postings := map[string]index.PostingList{
		"t": {{DocID: "1", Frequency: 1, Positions: []int{0}}},
	}
	lexicon := map[string]index.LexiconEntry{"t": {DocFreq: 4, Length: 4}}
	if _, err := index.FromArtifacts(lexicon, postings); !errors.Is(err, apperrors.ErrInvariant) {
		t.Errorf("FromArtifacts() error = %v, want ErrInvariant", err)
	}
}

func TestPostingList_Find(t *testing.T) {
	pl := index.PostingList{{DocID: "a"}, {DocID: "c"}, {DocID: "e"}}
	if p, ok := pl.Find("c"); !ok || p.DocID != "c" {
		t.Errorf("Find(c) = %+v, %v", p, ok)
	}
	if _, ok := pl.Find("d"); ok {
		t.Error("Find(d) should miss")
	}
}

func TestTokenRecord_JSON(t *testing.T) {
	data := []byte(`{"doc_id":"42","tokens":[["data",1],["science",3]]}`)
	var rec index.TokenRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := index.TokenRecord{DocID: "42", Tokens: occ("data", 1, "science", 3)}
	if !reflect.DeepEqual(rec, want) {
		t.Errorf("decoded %+v, want %+v", rec, want)
	}
	if err := json.Unmarshal([]byte(`{"doc_id":"1","tokens":[["x"]]}`), &rec); err == nil {
		t.Error("expected error for one-element occurrence")
	}
}
