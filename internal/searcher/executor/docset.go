package executor

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/index"
)

// docSpace maps doc_ids to dense ordinals assigned in ascending doc_id order,
// so iterating a bitmap yields doc_ids already sorted.
type docSpace struct {
	ids      []string
	ordinals map[string]uint32
	universe *roaring.Bitmap
}

func newDocSpace(ids []string) *docSpace {
	ds := &docSpace{
		ids:      ids,
		ordinals: make(map[string]uint32, len(ids)),
		universe: roaring.New(),
	}
	for i, id := range ids {
		ds.ordinals[id] = uint32(i)
	}
	if len(ids) > 0 {
		ds.universe.AddRange(0, uint64(len(ids)))
	}
	return ds
}

func (ds *docSpace) fromPostings(pl index.PostingList) *roaring.Bitmap {
	bm := roaring.New()
	for _, p := range pl {
		if ord, ok := ds.ordinals[p.DocID]; ok {
			bm.Add(ord)
		}
	}
	return bm
}

func (ds *docSpace) fromIDs(ids []string) *roaring.Bitmap {
	bm := roaring.New()
	for _, id := range ids {
		if ord, ok := ds.ordinals[id]; ok {
			bm.Add(ord)
		}
	}
	return bm
}

func (ds *docSpace) complement(bm *roaring.Bitmap) *roaring.Bitmap {
	return roaring.AndNot(ds.universe, bm)
}

func (ds *docSpace) toIDs(bm *roaring.Bitmap) []string {
	out := make([]string, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, ds.ids[it.Next()])
	}
	return out
}
