// Package dictionary derives compact encodings of the term vocabulary. Both
// forms partition the sorted terms into blocks of k and keep a sparse index of
// block-leading terms, so lookups cost a binary search plus a scan of at most
// one block.
package dictionary

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/errors"
)

const (
	BlockDictFile  = "lexicon.block.dict"
	BlockIndexFile = "lexicon.block.idx"
	FrontDictFile  = "lexicon.front.dict"

	DefaultBlockSize = 8
)

type blockRef struct {
	offset int64
	first  string
}

// EncodeBlock returns the newline-terminated term blob and its side index:
// a "k=<k>" line followed by "<offset>\t<first term>" per block.
func EncodeBlock(terms []string, k int) (blob []byte, idx []byte, err error) {
	if err := checkTerms(terms, k); err != nil {
		return nil, nil, err
	}
	var dict, side bytes.Buffer
	fmt.Fprintf(&side, "k=%d\n", k)
	for i, term := range terms {
		if i%k == 0 {
			fmt.Fprintf(&side, "%d\t%s\n", dict.Len(), term)
		}
		dict.WriteString(term)
		dict.WriteByte('\n')
	}
	return dict.Bytes(), side.Bytes(), nil
}

// WriteBlock encodes terms and writes both block files into dir.
func WriteBlock(dir string, terms []string, k int) error {
	blob, idx, err := EncodeBlock(terms, k)
	if err != nil {
		return err
	}
	if err := writeAtomic(filepath.Join(dir, BlockDictFile), blob); err != nil {
		return fmt.Errorf("writing block dictionary: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, BlockIndexFile), idx); err != nil {
		return fmt.Errorf("writing block index: %w", err)
	}
	return nil
}

// BlockDictionary answers membership by reading one block of the blob file
// per lookup. It keeps the blob open until Close.
type BlockDictionary struct {
	file   *os.File
	size   int64
	k      int
	blocks []blockRef
}

// OpenBlock loads the side index from dir and opens the blob. Any structural
// problem is reported as ErrMalformedDictionary.
func OpenBlock(dir string) (*BlockDictionary, error) {
	idxPath := filepath.Join(dir, BlockIndexFile)
	data, err := os.ReadFile(idxPath)
	if err != nil {
		return nil, malformed("reading %s: %v", idxPath, err)
	}
	k, blocks, err := parseBlockIndex(data)
	if err != nil {
		return nil, err
	}

	dictPath := filepath.Join(dir, BlockDictFile)
	f, err := os.Open(dictPath)
	if err != nil {
		return nil, malformed("opening %s: %v", dictPath, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, malformed("stat %s: %v", dictPath, err)
	}
	for i, b := range blocks {
		if b.offset >= info.Size() {
			f.Close()
			return nil, malformed("block %d offset %d beyond blob size %d", i, b.offset, info.Size())
		}
	}
	return &BlockDictionary{file: f, size: info.Size(), k: k, blocks: blocks}, nil
}

func parseBlockIndex(data []byte) (int, []blockRef, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !sc.Scan() {
		return 0, nil, malformed("block index is empty")
	}
	k, err := parseHeader(sc.Text())
	if err != nil {
		return 0, nil, err
	}
	var blocks []blockRef
	line := 1
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" {
			continue
		}
		offStr, term, ok := strings.Cut(text, "\t")
		if !ok {
			return 0, nil, malformed("block index line %d: missing tab", line)
		}
		off, err := strconv.ParseInt(offStr, 10, 64)
		if err != nil || off < 0 {
			return 0, nil, malformed("block index line %d: bad offset %q", line, offStr)
		}
		if n := len(blocks); n > 0 && (off <= blocks[n-1].offset || term <= blocks[n-1].first) {
			return 0, nil, malformed("block index line %d: entries out of order", line)
		}
		blocks = append(blocks, blockRef{offset: off, first: term})
	}
	if err := sc.Err(); err != nil {
		return 0, nil, malformed("scanning block index: %v", err)
	}
	return k, blocks, nil
}

// Lookup reports whether term is in the vocabulary.
func (d *BlockDictionary) Lookup(term string) (bool, error) {
	bi := sort.Search(len(d.blocks), func(i int) bool { return d.blocks[i].first > term }) - 1
	if bi < 0 {
		return false, nil
	}
	start := d.blocks[bi].offset
	end := d.size
	if bi+1 < len(d.blocks) {
		end = d.blocks[bi+1].offset
	}
	buf := make([]byte, end-start)
	if _, err := d.file.ReadAt(buf, start); err != nil && err != io.EOF {
		return false, fmt.Errorf("reading block %d: %w", bi, err)
	}
	for scanned := 0; scanned < d.k && len(buf) > 0; scanned++ {
		entry, rest, _ := bytes.Cut(buf, []byte{'\n'})
		if string(entry) == term {
			return true, nil
		}
		buf = rest
	}
	return false, nil
}

// Terms decodes the whole blob back into the sorted vocabulary.
func (d *BlockDictionary) Terms() ([]string, error) {
	buf := make([]byte, d.size)
	if _, err := d.file.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading block dictionary: %w", err)
	}
	return splitLines(buf), nil
}

// BlockSize returns k as recorded in the side index.
func (d *BlockDictionary) BlockSize() int {
	return d.k
}

func (d *BlockDictionary) Close() error {
	return d.file.Close()
}

func parseHeader(line string) (int, error) {
	v, ok := strings.CutPrefix(line, "k=")
	if !ok {
		return 0, malformed("header %q: want k=<blocksize>", line)
	}
	k, err := strconv.Atoi(v)
	if err != nil || k < 1 {
		return 0, malformed("header %q: bad block size", line)
	}
	return k, nil
}

func checkTerms(terms []string, k int) error {
	if k < 1 {
		return apperrors.Newf(apperrors.ErrInvalidInput, 0, "block size %d < 1", k)
	}
	for i, t := range terms {
		if t == "" || strings.ContainsAny(t, "\n\r") {
			return apperrors.Newf(apperrors.ErrInvalidInput, 0, "term %q cannot be encoded", t)
		}
		if i > 0 && terms[i-1] >= t {
			return apperrors.Newf(apperrors.ErrInvalidInput, 0, "terms not strictly sorted at %q", t)
		}
	}
	return nil
}

func splitLines(buf []byte) []string {
	var out []string
	for len(buf) > 0 {
		line, rest, _ := bytes.Cut(buf, []byte{'\n'})
		out = append(out, string(line))
		buf = rest
	}
	return out
}

func malformed(format string, args ...any) error {
	return apperrors.Newf(apperrors.ErrMalformedDictionary, 0, format, args...)
}

// writeAtomic writes to a .tmp sibling and renames it into place.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
