package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/errors"
)

const ManifestFile = "manifest.json"

// Manifest records how the artifacts in a directory were built so a reader
// can check its own settings against them.
type Manifest struct {
	Stemming     bool      `json:"stemming"`
	SkipStrategy string    `json:"skip_strategy"`
	BlockSize    int       `json:"block_size"`
	Terms        int       `json:"terms"`
	Documents    int       `json:"documents"`
	Fingerprint  string    `json:"fingerprint"`
	BuiltAt      time.Time `json:"built_at"`
}

// WriteManifest stamps m with the fingerprint of the lexicon and postings
// already in dataDir and stores it next to them.
func WriteManifest(dataDir string, m Manifest) (Manifest, error) {
	fp, err := Fingerprint(dataDir)
	if err != nil {
		return m, err
	}
	m.Fingerprint = fp
	if err := writeJSON(filepath.Join(dataDir, ManifestFile), m); err != nil {
		return m, fmt.Errorf("writing manifest: %w", err)
	}
	return m, nil
}

// LoadManifest reads manifest.json. A missing file is ErrNotFound.
func LoadManifest(dataDir string) (Manifest, error) {
	var m Manifest
	err := readJSON(filepath.Join(dataDir, ManifestFile), &m)
	if errors.Is(err, fs.ErrNotExist) {
		return m, apperrors.Newf(apperrors.ErrNotFound, 0, "no %s in %s", ManifestFile, dataDir)
	}
	if err != nil {
		return m, fmt.Errorf("reading manifest: %w", err)
	}
	return m, nil
}

// Fingerprint hashes the lexicon and postings bytes in dataDir. Any rebuild
// that changes either file changes the result.
func Fingerprint(dataDir string) (string, error) {
	h := sha256.New()
	for _, name := range []string{LexiconFile, PostingsFile} {
		f, err := os.Open(filepath.Join(dataDir, name))
		if err != nil {
			return "", fmt.Errorf("fingerprinting %s: %w", name, err)
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("fingerprinting %s: %w", name, err)
		}
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}
