package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/tokenizer"
)

var sampleTexts = map[string]string{
	"short": "The quick brown fox jumps over the lazy dog",
	"medium": `A boolean query engine evaluates AND, OR and NOT over posting lists, and a
        quoted phrase matches only documents where the words occur at consecutive
        positions. The ranked engine scores documents by cosine similarity between
        TF-IDF vectors and keeps the best results in a bounded heap.`,
	"long": strings.Repeat(`Information retrieval systems form the backbone of modern search
        infrastructure. Tokenization lower-cases text, splits it into runs of letters
        and digits and removes stop words. The inverted index maps each term to the
        documents containing it, along with positional information for phrase
        queries. Skip pointers let intersections jump over long stretches of a
        posting list, and front coding shrinks the sorted dictionary by sharing
        prefixes between neighbouring terms. Ranked retrieval weights terms by
        sublinear term frequency and inverse document frequency. `, 20),
}

func BenchmarkTokenize(b *testing.B) {
	for _, name := range []string{"short", "medium", "long"} {
		text := sampleTexts[name]
		for _, stem := range []bool{false, true} {
			opts := tokenizer.Options{Stem: stem}
			b.Run(fmt.Sprintf("%s/stem=%t", name, stem), func(b *testing.B) {
				b.ReportAllocs()
				b.SetBytes(int64(len(text)))
				for i := 0; i < b.N; i++ {
					_ = tokenizer.TokenizeWith(text, opts)
				}
			})
		}
	}
}

func BenchmarkQueryTerms(b *testing.B) {
	queries := []string{
		"python data science",
		"machine learning for beginners",
		"the history of the inverted index",
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = tokenizer.Terms(queries[i%len(queries)], tokenizer.Options{})
	}
}

func BenchmarkTokenizeParallel(b *testing.B) {
	text := sampleTexts["long"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = tokenizer.Tokenize(text)
		}
	})
}

func BenchmarkTokenizeVaryingSize(b *testing.B) {
	base := "posting lists and skip pointers for boolean retrieval "
	for _, size := range []int{64, 512, 4096, 32768} {
		text := strings.Repeat(base, size/len(base)+1)[:size]
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				_ = tokenizer.Tokenize(text)
			}
		})
	}
}
