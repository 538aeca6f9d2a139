package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/skiplist"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/errors"
)

func TestManifest_RoundTrip(t *testing.T) {
	idx := buildIndex(t)
	dir := t.TempDir()
	if err := NewWriter(dir).Write(idx); err != nil {
		t.Fatal(err)
	}
	built := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	written, err := WriteManifest(dir, Manifest{
		Stemming:     true,
		SkipStrategy: "sqrt",
		BlockSize:    8,
		Terms:        idx.Len(),
		Documents:    idx.DocCount(),
		BuiltAt:      built,
	})
	if err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}
	if len(written.Fingerprint) != 16 {
		t.Errorf("Fingerprint = %q, want 16 hex chars", written.Fingerprint)
	}

	got, err := LoadManifest(dir)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if got != written {
		t.Errorf("LoadManifest() = %+v, want %+v", got, written)
	}
	if _, err := os.Stat(filepath.Join(dir, ManifestFile+".tmp")); !os.IsNotExist(err) {
		t.Error("manifest.json.tmp left behind")
	}
}

func TestLoadManifest_Missing(t *testing.T) {
	_, err := LoadManifest(t.TempDir())
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("LoadManifest() error = %v, want ErrNotFound", err)
	}
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	if _, err := Fingerprint(dir); err == nil {
		t.Fatal("Fingerprint() of empty dir succeeded")
	}

	idx := buildIndex(t)
	if err := NewWriter(dir).Write(idx); err != nil {
		t.Fatal(err)
	}
	first, err := Fingerprint(dir)
	if err != nil {
		t.Fatal(err)
	}
	if again, _ := Fingerprint(dir); again != first {
		t.Errorf("Fingerprint() unstable: %q vs %q", first, again)
	}

	// Rebuild with the same two terms but an extra document.
	b := index.NewBuilder()
	for _, doc := range []string{"d01", "d02", "d03"} {
		if err := b.Add(index.TokenRecord{DocID: doc, Tokens: []index.Occurrence{
			{Term: "common", Position: 0},
			{Term: "even", Position: 1},
		}}); err != nil {
			t.Fatal(err)
		}
	}
	rebuilt, err := b.Freeze(skiplist.MustParse("sqrt"))
	if err != nil {
		t.Fatal(err)
	}
	if rebuilt.Len() != idx.Len() {
		t.Fatalf("vocabulary sizes differ: %d vs %d", rebuilt.Len(), idx.Len())
	}
	if err := NewWriter(dir).Write(rebuilt); err != nil {
		t.Fatal(err)
	}
	second, err := Fingerprint(dir)
	if err != nil {
		t.Fatal(err)
	}
	if second == first {
		t.Errorf("Fingerprint() = %q after rebuild, unchanged", second)
	}
}
