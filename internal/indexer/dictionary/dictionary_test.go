package dictionary

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/metrics"
)

type setVocab map[string]struct{}

func (s setVocab) Has(term string) bool {
	_, ok := s[term]
	return ok
}

func randomTerms(r *rand.Rand, n int) []string {
	prefixes := []string{"data", "datab", "search", "sea", "info", "index", "x"}
	seen := make(map[string]struct{})
	for len(seen) < n {
		var sb strings.Builder
		sb.WriteString(prefixes[r.Intn(len(prefixes))])
		for j := r.Intn(5); j > 0; j-- {
			sb.WriteByte(byte('a' + r.Intn(26)))
		}
		seen[sb.String()] = struct{}{}
	}
	terms := make([]string, 0, n)
	for t := range seen {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

func TestEncodeBlock_Format(t *testing.T) {
	blob, idx, err := EncodeBlock([]string{"apple", "apply", "banana"}, 2)
	if err != nil {
		t.Fatalf("EncodeBlock() error = %v", err)
	}
	if got := string(blob); got != "apple\napply\nbanana\n" {
		t.Errorf("blob = %q", got)
	}
	if got := string(idx); got != "k=2\n0\tapple\n12\tbanana\n" {
		t.Errorf("idx = %q", got)
	}
}

func TestEncodeFront_Format(t *testing.T) {
	data, err := EncodeFront([]string{"automata", "automate", "automatic", "banana"}, 3)
	if err != nil {
		t.Fatalf("EncodeFront() error = %v", err)
	}
	want := "k=3\n+automata\n7|e\n7|ic\n+banana\n"
	if string(data) != want {
		t.Errorf("EncodeFront() = %q, want %q", data, want)
	}
}

func TestEncode_RejectsBadInput(t *testing.T) {
	cases := [][]string{
		{"b", "a"},
		{"a", "a"},
		{"a\nb"},
		{""},
	}
	for _, terms := range cases {
		if _, _, err := EncodeBlock(terms, 4); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("EncodeBlock(%q) error = %v, want ErrInvalidInput", terms, err)
		}
		if _, err := EncodeFront(terms, 4); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("EncodeFront(%q) error = %v, want ErrInvalidInput", terms, err)
		}
	}
	if _, _, err := EncodeBlock([]string{"a"}, 0); err == nil {
		t.Error("EncodeBlock(k=0) expected error")
	}
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for _, k := range []int{1, 2, 3, 8, 16} {
		for _, n := range []int{0, 1, 7, 8, 9, 100} {
			terms := randomTerms(r, n)
			dir := t.TempDir()
			if err := WriteBlock(dir, terms, k); err != nil {
				t.Fatalf("WriteBlock() error = %v", err)
			}
			if err := WriteFront(dir, terms, k); err != nil {
				t.Fatalf("WriteFront() error = %v", err)
			}

			bd, err := OpenBlock(dir)
			if err != nil {
				t.Fatalf("OpenBlock() error = %v", err)
			}
			got, err := bd.Terms()
			bd.Close()
			if err != nil {
				t.Fatalf("Terms() error = %v", err)
			}
			if !reflect.DeepEqual(got, nilIfEmpty(terms)) {
				t.Errorf("k=%d n=%d: block round-trip mismatch", k, n)
			}

			fd, err := OpenFront(dir)
			if err != nil {
				t.Fatalf("OpenFront() error = %v", err)
			}
			if got := fd.Terms(); !reflect.DeepEqual(got, nilIfEmpty(terms)) {
				t.Errorf("k=%d n=%d: front round-trip mismatch", k, n)
			}
		}
	}
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestLookup_AgreesWithRawMembership(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	terms := randomTerms(r, 300)
	vocab := make(setVocab, len(terms))
	for _, term := range terms {
		vocab[term] = struct{}{}
	}
	dir := t.TempDir()
	if err := WriteBlock(dir, terms, DefaultBlockSize); err != nil {
		t.Fatal(err)
	}
	if err := WriteFront(dir, terms, DefaultBlockSize); err != nil {
		t.Fatal(err)
	}
	bd, err := OpenBlock(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer bd.Close()
	fd, err := OpenFront(dir)
	if err != nil {
		t.Fatal(err)
	}

	lookups := append([]string{}, terms...)
	lookups = append(lookups, "", "a", "zzzz", "dat", "data", "search", "sea", "indexzzzzzz", "0")
	for i := 0; i < 200; i++ {
		lookups = append(lookups, fmt.Sprintf("%s%d", terms[r.Intn(len(terms))], i))
	}
	for _, p := range lookups {
		want := vocab.Has(p)
		got, err := bd.Lookup(p)
		if err != nil {
			t.Fatalf("block Lookup(%q) error = %v", p, err)
		}
		if got != want {
			t.Errorf("block Lookup(%q) = %v, want %v", p, got, want)
		}
		if got := fd.Lookup(p); got != want {
			t.Errorf("front Lookup(%q) = %v, want %v", p, got, want)
		}
	}
}

func TestDecodeFront_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"no header":      "+apple\n",
		"zero k":         "k=0\n+apple\n",
		"orphan entry":   "k=4\n3|le\n",
		"missing bar":    "k=4\n+apple\n3le\n",
		"prefix too big": "k=4\n+app\n9|x\n",
		"block too long": "k=2\n+apple\n4|y\n4|z\n",
		"out of order":   "k=2\n+b\n+a\n",
	}
	for name, data := range cases {
		if _, err := DecodeFront([]byte(data)); !errors.Is(err, apperrors.ErrMalformedDictionary) {
			t.Errorf("%s: error = %v, want ErrMalformedDictionary", name, err)
		}
	}
}

func TestOpenBlock_Malformed(t *testing.T) {
	dir := t.TempDir()
	if _, err := OpenBlock(dir); !errors.Is(err, apperrors.ErrMalformedDictionary) {
		t.Errorf("missing files: error = %v, want ErrMalformedDictionary", err)
	}
	os.WriteFile(filepath.Join(dir, BlockDictFile), []byte("a\nb\n"), 0644)
	os.WriteFile(filepath.Join(dir, BlockIndexFile), []byte("blocksize=2\n0\ta\n"), 0644)
	if _, err := OpenBlock(dir); !errors.Is(err, apperrors.ErrMalformedDictionary) {
		t.Errorf("bad header: error = %v, want ErrMalformedDictionary", err)
	}
	os.WriteFile(filepath.Join(dir, BlockIndexFile), []byte("k=2\n40\ta\n"), 0644)
	if _, err := OpenBlock(dir); !errors.Is(err, apperrors.ErrMalformedDictionary) {
		t.Errorf("offset past blob: error = %v, want ErrMalformedDictionary", err)
	}
}

func TestOpen_DegradesToRaw(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	vocab := setVocab{"python": {}}

	ms := Open(ModeFront, t.TempDir(), vocab, m)
	defer ms.Close()
	if ms.Mode() != ModeRaw || !ms.Degraded() {
		t.Fatalf("Mode() = %s, Degraded() = %v; want raw, true", ms.Mode(), ms.Degraded())
	}
	if !errors.Is(ms.Reason(), apperrors.ErrMalformedDictionary) {
		t.Errorf("Reason() = %v, want ErrMalformedDictionary", ms.Reason())
	}
	if !ms.Contains("python") || ms.Contains("java") {
		t.Error("raw fallback membership is wrong")
	}
	if got := testutil.ToFloat64(m.DictionaryFallbacks.WithLabelValues("front")); got != 1 {
		t.Errorf("DictionaryFallbacks[front] = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DictionaryMode.WithLabelValues("raw")); got != 1 {
		t.Errorf("DictionaryMode[raw] = %v, want 1", got)
	}
}

func TestOpen_UsesRequestedMode(t *testing.T) {
	terms := []string{"data", "python", "science"}
	vocab := setVocab{"data": {}, "python": {}, "science": {}}
	dir := t.TempDir()
	if err := WriteBlock(dir, terms, 2); err != nil {
		t.Fatal(err)
	}
	if err := WriteFront(dir, terms, 2); err != nil {
		t.Fatal(err)
	}
	for _, mode := range []Mode{ModeRaw, ModeBlock, ModeFront} {
		ms := Open(mode, dir, vocab, nil)
		if ms.Mode() != mode || ms.Degraded() {
			t.Errorf("Open(%s): Mode() = %s, Degraded() = %v", mode, ms.Mode(), ms.Degraded())
		}
		for _, term := range []string{"data", "python", "science", "java"} {
			if got := ms.Contains(term); got != vocab.Has(term) {
				t.Errorf("%s Contains(%q) = %v", mode, term, got)
			}
		}
		if err := ms.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}
}

func TestMembership_ContainsAfterClose(t *testing.T) {
	terms := []string{"data", "python", "science"}
	vocab := setVocab{"data": {}, "python": {}, "science": {}}
	dir := t.TempDir()
	if err := WriteBlock(dir, terms, 2); err != nil {
		t.Fatal(err)
	}
	if err := WriteFront(dir, terms, 2); err != nil {
		t.Fatal(err)
	}
	for _, mode := range []Mode{ModeBlock, ModeFront} {
		ms := Open(mode, dir, vocab, nil)
		if err := ms.Close(); err != nil {
			t.Fatalf("Close(%s) error = %v", mode, err)
		}
		if err := ms.Close(); err != nil {
			t.Errorf("second Close(%s) error = %v", mode, err)
		}
		if ms.Mode() != ModeRaw {
			t.Errorf("%s Mode() after Close = %s, want raw", mode, ms.Mode())
		}
		for _, term := range []string{"data", "python", "java"} {
			if got := ms.Contains(term); got != vocab.Has(term) {
				t.Errorf("%s Contains(%q) after Close = %v", mode, term, got)
			}
		}
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModeRaw {
		t.Errorf("ParseMode(\"\") = %s, %v", m, err)
	}
	if _, err := ParseMode("gzip"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("ParseMode(gzip) error = %v", err)
	}
}

func TestMeasureSizes(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "lexicon.json"), make([]byte, 1000), 0644)
	os.WriteFile(filepath.Join(dir, "postings.json"), make([]byte, 3000), 0644)
	os.WriteFile(filepath.Join(dir, BlockDictFile), make([]byte, 300), 0644)
	os.WriteFile(filepath.Join(dir, BlockIndexFile), make([]byte, 33), 0644)
	os.WriteFile(filepath.Join(dir, FrontDictFile), make([]byte, 250), 0644)

	r := MeasureSizes(dir, "lexicon.json", "postings.json")
	if r.BlockTotal != 333 || r.FrontTotal != 250 {
		t.Errorf("totals = %d, %d", r.BlockTotal, r.FrontTotal)
	}
	if r.BlockSavingBytes != 667 || r.BlockSavingPct != 66.7 {
		t.Errorf("block saving = %d (%v%%)", r.BlockSavingBytes, r.BlockSavingPct)
	}
	if r.FrontSavingPct != 75 {
		t.Errorf("front saving pct = %v, want 75", r.FrontSavingPct)
	}
	if r.OriginalIndexSize != 4000 || r.BlockIndexSaving != 667 {
		t.Errorf("index sizes = %d, %d", r.OriginalIndexSize, r.BlockIndexSaving)
	}
	if r.BlockIndexPct != 16.675 {
		t.Errorf("block index pct = %v, want 16.675", r.BlockIndexPct)
	}
}
