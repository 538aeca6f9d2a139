package dictionary

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

type frontEntry struct {
	cpl    int
	suffix string
}

type frontBlock struct {
	first   string
	entries []frontEntry
}

// EncodeFront front-codes terms: "k=<k>", then per block a "+<first>" line
// and one "<cpl>|<suffix>" line for each remaining term, where cpl is the
// common prefix length with the block's first term.
func EncodeFront(terms []string, k int) ([]byte, error) {
	if err := checkTerms(terms, k); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "k=%d\n", k)
	var first string
	for i, term := range terms {
		if i%k == 0 {
			first = term
			buf.WriteByte('+')
			buf.WriteString(term)
			buf.WriteByte('\n')
			continue
		}
		cpl := commonPrefixLen(first, term)
		buf.WriteString(strconv.Itoa(cpl))
		buf.WriteByte('|')
		buf.WriteString(term[cpl:])
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// WriteFront encodes terms into dir/lexicon.front.dict.
func WriteFront(dir string, terms []string, k int) error {
	data, err := EncodeFront(terms, k)
	if err != nil {
		return err
	}
	if err := writeAtomic(filepath.Join(dir, FrontDictFile), data); err != nil {
		return fmt.Errorf("writing front-coded dictionary: %w", err)
	}
	return nil
}

// FrontDictionary is a parsed front-coded dictionary held in memory.
type FrontDictionary struct {
	k      int
	blocks []frontBlock
}

// OpenFront reads and parses dir/lexicon.front.dict.
func OpenFront(dir string) (*FrontDictionary, error) {
	path := filepath.Join(dir, FrontDictFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, malformed("reading %s: %v", path, err)
	}
	return DecodeFront(data)
}

// DecodeFront parses a front-coded dictionary. Entries before the first
// block, prefix lengths longer than the block's first term, and blocks with
// more than k terms fail with ErrMalformedDictionary.
func DecodeFront(data []byte) (*FrontDictionary, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !sc.Scan() {
		return nil, malformed("front-coded dictionary is empty")
	}
	k, err := parseHeader(sc.Text())
	if err != nil {
		return nil, err
	}
	d := &FrontDictionary{k: k}
	line := 1
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" {
			continue
		}
		if first, ok := strings.CutPrefix(text, "+"); ok {
			if n := len(d.blocks); n > 0 && first <= d.blocks[n-1].first {
				return nil, malformed("line %d: block %q out of order", line, first)
			}
			d.blocks = append(d.blocks, frontBlock{first: first})
			continue
		}
		if len(d.blocks) == 0 {
			return nil, malformed("line %d: entry before first block", line)
		}
		cplStr, suffix, ok := strings.Cut(text, "|")
		if !ok {
			return nil, malformed("line %d: missing '|'", line)
		}
		cpl, err := strconv.Atoi(cplStr)
		b := &d.blocks[len(d.blocks)-1]
		if err != nil || cpl < 0 || cpl > len(b.first) {
			return nil, malformed("line %d: bad prefix length %q", line, cplStr)
		}
		if len(b.entries)+1 >= k {
			return nil, malformed("line %d: block %q exceeds %d terms", line, b.first, k)
		}
		b.entries = append(b.entries, frontEntry{cpl: cpl, suffix: suffix})
	}
	if err := sc.Err(); err != nil {
		return nil, malformed("scanning front-coded dictionary: %v", err)
	}
	return d, nil
}

// Lookup reports whether term is in the vocabulary, reconstructing at most
// k-1 candidates of the one block that could hold it.
func (d *FrontDictionary) Lookup(term string) bool {
	bi := sort.Search(len(d.blocks), func(i int) bool { return d.blocks[i].first > term }) - 1
	if bi < 0 {
		return false
	}
	b := d.blocks[bi]
	if b.first == term {
		return true
	}
	for i := 0; i < len(b.entries) && i < d.k-1; i++ {
		e := b.entries[i]
		if len(term) != e.cpl+len(e.suffix) {
			continue
		}
		if b.first[:e.cpl]+e.suffix == term {
			return true
		}
	}
	return false
}

// Terms reconstructs the full sorted vocabulary.
func (d *FrontDictionary) Terms() []string {
	var out []string
	for _, b := range d.blocks {
		out = append(out, b.first)
		for _, e := range b.entries {
			out = append(out, b.first[:e.cpl]+e.suffix)
		}
	}
	return out
}

func (d *FrontDictionary) BlockSize() int {
	return d.k
}

func commonPrefixLen(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
