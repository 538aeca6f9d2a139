package dictionary

import (
	"fmt"
	"log/slog"
	"sync"

	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/metrics"
)

type Mode string

const (
	ModeRaw   Mode = "raw"
	ModeBlock Mode = "block"
	ModeFront Mode = "front"
)

// ParseMode accepts raw, block or front.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeRaw, ModeBlock, ModeFront:
		return Mode(s), nil
	case "":
		return ModeRaw, nil
	default:
		return "", apperrors.Newf(apperrors.ErrInvalidInput, 0, "unknown dictionary mode %q", s)
	}
}

// Vocabulary is the uncompressed membership check. *index.Index satisfies it.
type Vocabulary interface {
	Has(term string) bool
}

// Membership is the term existence check consulted before postings are
// touched. When the requested compressed form cannot be loaded it degrades
// to the raw vocabulary and says so through Degraded and Reason.
type Membership struct {
	requested Mode
	mode      Mode
	reason    error
	vocab     Vocabulary
	block     *BlockDictionary
	front     *FrontDictionary
	metrics   *metrics.Metrics
	logger    *slog.Logger

	// mu guards the lookup state against Close.
	mu sync.RWMutex
}

// Open builds the membership check for mode from the artifacts in dir. It
// never fails: load errors switch the result to raw mode. m may be nil.
func Open(mode Mode, dir string, vocab Vocabulary, m *metrics.Metrics) *Membership {
	ms := &Membership{
		requested: mode,
		mode:      ModeRaw,
		vocab:     vocab,
		metrics:   m,
		logger:    slog.Default().With("component", "dictionary"),
	}
	var err error
	switch mode {
	case ModeBlock:
		ms.block, err = OpenBlock(dir)
	case ModeFront:
		ms.front, err = OpenFront(dir)
	case ModeRaw:
	default:
		err = apperrors.Newf(apperrors.ErrMalformedDictionary, 0, "unknown dictionary mode %q", mode)
	}
	if err != nil {
		ms.reason = fmt.Errorf("loading %s dictionary: %w", mode, err)
		ms.logger.Warn("dictionary degraded to raw mode", "requested", mode, "error", err)
		if m != nil {
			m.DictionaryFallbacks.WithLabelValues(string(mode)).Inc()
		}
	} else {
		ms.mode = mode
	}
	if m != nil {
		m.SetDictionaryMode(string(ms.mode))
	}
	return ms
}

// Contains reports whether term exists. A block read error answers from the
// raw vocabulary for that call, as does every call after Close.
func (ms *Membership) Contains(term string) bool {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	switch ms.mode {
	case ModeBlock:
		ok, err := ms.block.Lookup(term)
		if err != nil {
			ms.logger.Warn("block lookup failed, answering from raw vocabulary", "term", term, "error", err)
			if ms.metrics != nil {
				ms.metrics.DictionaryFallbacks.WithLabelValues(string(ModeBlock)).Inc()
			}
			return ms.vocab.Has(term)
		}
		return ok
	case ModeFront:
		return ms.front.Lookup(term)
	default:
		return ms.vocab.Has(term)
	}
}

// Mode is the mode actually serving lookups.
func (ms *Membership) Mode() Mode {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.mode
}

func (ms *Membership) Requested() Mode {
	return ms.requested
}

// Degraded is true when the requested compressed form could not be used.
func (ms *Membership) Degraded() bool {
	return ms.reason != nil
}

// Reason returns the load error behind a degraded mode, or nil.
func (ms *Membership) Reason() error {
	return ms.reason
}

// Close releases the block blob handle, if any, once in-flight lookups have
// finished. Later lookups answer from the raw vocabulary.
func (ms *Membership) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.mode = ModeRaw
	ms.front = nil
	if ms.block == nil {
		return nil
	}
	err := ms.block.Close()
	ms.block = nil
	return err
}
