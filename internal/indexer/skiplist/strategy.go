// Package skiplist adds single-level, evenly spaced skip pointers to posting
// lists. The interval is chosen by a Strategy parsed from a short tag:
//
//	none | 0        no pointers
//	sqrt            floor(sqrt(n)), the default
//	k:<int>         fixed interval
//	alpha:<float>   floor(alpha*n), 0 < alpha < 1
package skiplist

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/errors"
)

type Kind int

const (
	None Kind = iota
	Sqrt
	Fixed
	Alpha
)

// Strategy computes a skip interval from a posting list length.
type Strategy struct {
	Kind  Kind
	K     int
	Alpha float64
}

// Parse reads a strategy tag. The empty string means sqrt.
func Parse(s string) (Strategy, error) {
	tag := strings.ToLower(strings.TrimSpace(s))
	switch {
	case tag == "" || tag == "sqrt":
		return Strategy{Kind: Sqrt}, nil
	case tag == "none" || tag == "0":
		return Strategy{Kind: None}, nil
	case strings.HasPrefix(tag, "k:"):
		k, err := strconv.Atoi(tag[2:])
		if err != nil {
			return Strategy{}, apperrors.Newf(apperrors.ErrInvalidInput, 0, "skip strategy %q: bad interval", s)
		}
		return Strategy{Kind: Fixed, K: max(0, k)}, nil
	case strings.HasPrefix(tag, "alpha:"):
		a, err := strconv.ParseFloat(tag[6:], 64)
		if err != nil {
			return Strategy{}, apperrors.Newf(apperrors.ErrInvalidInput, 0, "skip strategy %q: bad alpha", s)
		}
		if !(a > 0 && a < 1) {
			return Strategy{}, apperrors.Newf(apperrors.ErrInvalidInput, 0, "skip strategy %q: alpha must be in (0, 1)", s)
		}
		return Strategy{Kind: Alpha, Alpha: a}, nil
	default:
		return Strategy{}, apperrors.Newf(apperrors.ErrInvalidInput, 0, "unknown skip strategy %q", s)
	}
}

// MustParse is Parse for constant tags.
func MustParse(s string) Strategy {
	st, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return st
}

// String returns the canonical tag, which is also what the lexicon records.
func (s Strategy) String() string {
	switch s.Kind {
	case Sqrt:
		return "sqrt"
	case Fixed:
		return fmt.Sprintf("k:%d", s.K)
	case Alpha:
		return "alpha:" + strconv.FormatFloat(s.Alpha, 'g', -1, 64)
	default:
		return "none"
	}
}

// Name implements index.Augmenter.
func (s Strategy) Name() string {
	return s.String()
}

// Interval returns the skip interval for a list of length n.
func (s Strategy) Interval(n int) int {
	switch s.Kind {
	case Sqrt:
		return int(math.Floor(math.Sqrt(float64(n))))
	case Fixed:
		return max(0, s.K)
	case Alpha:
		return int(math.Floor(s.Alpha * float64(n)))
	default:
		return 0
	}
}

// Augment places a pointer from every multiple i of the interval to i+I while
// i+I < n. Lists with n <= 1, I <= 1 or n <= I are left untouched. The
// interval is returned either way.
func (s Strategy) Augment(pl index.PostingList) int {
	n := len(pl)
	interval := s.Interval(n)
	if n <= 1 || interval <= 1 || n <= interval {
		return interval
	}
	for i := 0; i+interval < n; i += interval {
		target := i + interval
		pl[i].Skip = &target
	}
	return interval
}
