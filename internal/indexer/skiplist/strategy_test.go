package skiplist

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/errors"
)

func list(n int) index.PostingList {
	pl := make(index.PostingList, n)
	for i := range pl {
		pl[i] = index.Posting{DocID: fmt.Sprintf("d%04d", i), Frequency: 1, Positions: []int{0}}
	}
	return pl
}

func skips(pl index.PostingList) map[int]int {
	out := make(map[int]int)
	for i, p := range pl {
		if p.Skip != nil {
			out[i] = *p.Skip
		}
	}
	return out
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "sqrt"},
		{"sqrt", "sqrt"},
		{"SQRT", "sqrt"},
		{"none", "none"},
		{"0", "none"},
		{"k:8", "k:8"},
		{"k:-3", "k:0"},
		{"alpha:0.1", "alpha:0.1"},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q) error = %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("Parse(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"cbrt", "k:", "k:x", "alpha:0", "alpha:1", "alpha:1.5", "alpha:abc"} {
		_, err := Parse(in)
		if err == nil {
			t.Errorf("Parse(%q) expected error", in)
			continue
		}
		if !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidInput", in, err)
		}
	}
}

func TestInterval(t *testing.T) {
	tests := []struct {
		tag  string
		n    int
		want int
	}{
		{"sqrt", 3, 1},
		{"sqrt", 16, 4},
		{"sqrt", 17, 4},
		{"none", 100, 0},
		{"k:5", 100, 5},
		{"alpha:0.1", 100, 10},
		{"alpha:0.1", 9, 0},
	}
	for _, tt := range tests {
		if got := MustParse(tt.tag).Interval(tt.n); got != tt.want {
			t.Errorf("%s.Interval(%d) = %d, want %d", tt.tag, tt.n, got, tt.want)
		}
	}
}

func TestAugment_StrictBoundary(t *testing.T) {
	// n=16, I=4: pointers at 0,4,8 only; 12+4 == 16 is not < 16.
	pl := list(16)
	if got := MustParse("sqrt").Augment(pl); got != 4 {
		t.Fatalf("Augment() interval = %d, want 4", got)
	}
	want := map[int]int{0: 4, 4: 8, 8: 12}
	got := skips(pl)
	if len(got) != len(want) {
		t.Fatalf("skips = %v, want %v", got, want)
	}
	for i, j := range want {
		if got[i] != j {
			t.Errorf("skip[%d] = %d, want %d", i, got[i], j)
		}
	}
}

func TestAugment_NoOpCases(t *testing.T) {
	tests := []struct {
		tag string
		n   int
	}{
		{"sqrt", 0},
		{"sqrt", 1},
		{"sqrt", 3},
		{"none", 50},
		{"k:1", 50},
		{"k:10", 10},
		{"k:20", 10},
	}
	for _, tt := range tests {
		pl := list(tt.n)
		MustParse(tt.tag).Augment(pl)
		if n := pl.SkipCount(); n != 0 {
			t.Errorf("%s on n=%d added %d pointers, want 0", tt.tag, tt.n, n)
		}
	}
}

func TestAugment_PointersAreSafe(t *testing.T) {
	for _, tag := range []string{"sqrt", "k:2", "k:3", "k:7", "alpha:0.2", "alpha:0.5"} {
		for n := 0; n < 60; n++ {
			pl := list(n)
			MustParse(tag).Augment(pl)
			for i, p := range pl {
				if p.Skip == nil {
					continue
				}
				if _, ok := pl.SkipTarget(i); !ok {
					t.Fatalf("%s n=%d: unsafe skip %d -> %d", tag, n, i, *p.Skip)
				}
			}
		}
	}
}
