package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/textpipeline"
)

var sampleTexts = map[string]string{
	"short": "The quick brown fox jumps over the lazy dog",
	"medium": `Near-duplicate detection systems compute a compact fingerprint for every
        document and compare fingerprints instead of raw text. Shingling breaks a
        token stream into overlapping windows, and a simhash of those windows
        collapses the set into a fixed-width signature that tolerates small edits
        without losing the ability to recognize substantial overlap between two
        otherwise unrelated documents.`,
	"long": strings.Repeat(`Plagiarism detection pipelines normalize text before tokenizing it so that
        case, punctuation, and whitespace differences do not mask genuine overlap. `, 40),
}

func BenchmarkNormalize(b *testing.B) {
	for name, text := range sampleTexts {
		data := []byte(text)
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			for i := 0; i < b.N; i++ {
				textpipeline.Normalize(data)
			}
		})
	}
}

func BenchmarkTokenize(b *testing.B) {
	for name, text := range sampleTexts {
		norm := textpipeline.Normalize([]byte(text))
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(norm)))
			for i := 0; i < b.N; i++ {
				textpipeline.Tokenize(norm)
			}
		})
	}
}

func BenchmarkSimHash128(b *testing.B) {
	for name, text := range sampleTexts {
		norm := textpipeline.Normalize([]byte(text))
		spans := textpipeline.Tokenize(norm)
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				textpipeline.SimHash128(norm, spans)
			}
		})
	}
}

func BenchmarkHashShingle(b *testing.B) {
	norm := textpipeline.Normalize([]byte(sampleTexts["medium"]))
	spans := textpipeline.Tokenize(norm)
	windows := len(spans) - textpipeline.K + 1
	if windows < 1 {
		b.Fatal("sample text too short for a single shingle window")
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		textpipeline.HashShingle(norm, spans, i%windows)
	}
}

func BenchmarkTokenizeVaryingSize(b *testing.B) {
	sizes := []int{10, 100, 500, 1000, 5000}
	baseWord := "plagiarism detection shingle fingerprint overlap "
	for _, size := range sizes {
		text := strings.Repeat(baseWord, size/len(baseWord)+1)[:size]
		norm := textpipeline.Normalize([]byte(text))
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(norm)))
			for i := 0; i < b.N; i++ {
				textpipeline.Tokenize(norm)
			}
		})
	}
}
