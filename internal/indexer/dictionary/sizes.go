package dictionary

import (
	"math"
	"os"
	"path/filepath"
)

// SizeReport compares the compressed dictionary files with lexicon.json and
// with the whole index (lexicon plus postings). Field names follow the
// dict_compression_sizes.json report.
type SizeReport struct {
	OriginalLexicon int64 `json:"original_lexicon.json"`
	BlockDict       int64 `json:"lexicon.block.dict"`
	BlockIndex      int64 `json:"lexicon.block.idx"`
	FrontDict       int64 `json:"lexicon.front.dict"`

	BlockTotal        int64   `json:"block_total"`
	FrontTotal        int64   `json:"front_total"`
	BlockSavingBytes  int64   `json:"block_saving_bytes"`
	FrontSavingBytes  int64   `json:"front_saving_bytes"`
	BlockSavingPct    float64 `json:"block_saving_pct"`
	FrontSavingPct    float64 `json:"front_saving_pct"`
	OriginalIndexSize int64   `json:"original_index_total_bytes"`
	BlockIndexSize    int64   `json:"block_index_total_bytes"`
	FrontIndexSize    int64   `json:"front_index_total_bytes"`
	BlockIndexSaving  int64   `json:"block_index_saving_bytes"`
	FrontIndexSaving  int64   `json:"front_index_saving_bytes"`
	BlockIndexPct     float64 `json:"block_index_saving_pct"`
	FrontIndexPct     float64 `json:"front_index_saving_pct"`
}

// MeasureSizes stats the artifacts in dir. Missing files count as zero bytes.
// lexiconFile and postingsFile are the JSON artifact names.
func MeasureSizes(dir, lexiconFile, postingsFile string) SizeReport {
	r := SizeReport{
		OriginalLexicon: sizeOf(filepath.Join(dir, lexiconFile)),
		BlockDict:       sizeOf(filepath.Join(dir, BlockDictFile)),
		BlockIndex:      sizeOf(filepath.Join(dir, BlockIndexFile)),
		FrontDict:       sizeOf(filepath.Join(dir, FrontDictFile)),
	}
	postings := sizeOf(filepath.Join(dir, postingsFile))

	r.BlockTotal = r.BlockDict + r.BlockIndex
	r.FrontTotal = r.FrontDict
	r.BlockSavingBytes = max(0, r.OriginalLexicon-r.BlockTotal)
	r.FrontSavingBytes = max(0, r.OriginalLexicon-r.FrontTotal)
	r.BlockSavingPct = round(pct(r.BlockSavingBytes, r.OriginalLexicon), 2)
	r.FrontSavingPct = round(pct(r.FrontSavingBytes, r.OriginalLexicon), 2)

	r.OriginalIndexSize = r.OriginalLexicon + postings
	r.BlockIndexSize = r.BlockTotal + postings
	r.FrontIndexSize = r.FrontTotal + postings
	r.BlockIndexSaving = r.OriginalIndexSize - r.BlockIndexSize
	r.FrontIndexSaving = r.OriginalIndexSize - r.FrontIndexSize
	r.BlockIndexPct = round(pct(r.BlockIndexSaving, r.OriginalIndexSize), 3)
	r.FrontIndexPct = round(pct(r.FrontIndexSaving, r.OriginalIndexSize), 3)
	return r
}

func sizeOf(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func pct(saved, base int64) float64 {
	if base <= 0 {
		return 0
	}
	return float64(saved) / float64(base) * 100
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
