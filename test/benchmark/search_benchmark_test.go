package benchmark

import (
	"bufio"
	"fmt"
	"strings"
	"testing"

	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/indexbuilder"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/searchcore"
)

func buildBenchIndex(b *testing.B, n, wordsPerDoc int) *searchcore.Engine {
	b.Helper()
	corpus := corpusJSONL(n, wordsPerDoc)
	res, err := indexbuilder.BuildFromReader(bufio.NewReader(strings.NewReader(corpus)))
	if err != nil {
		b.Fatal(err)
	}
	indexbuilder.SortPostings(res.Postings)
	dir := b.TempDir()
	if err := indexbuilder.WriteIndex(dir, res); err != nil {
		b.Fatal(err)
	}
	engine := searchcore.New()
	if err := engine.Load(dir); err != nil {
		b.Fatal(err)
	}
	return engine
}

// BenchmarkSearch measures query latency against corpora of increasing size.
func BenchmarkSearch(b *testing.B) {
	sizes := []int{100, 1000, 5000}
	query := strings.Join(strings.Fields(strings.Repeat("plagiarism detection shingle fingerprint overlap corpus simhash index ", 25)), " ")
	for _, n := range sizes {
		engine := buildBenchIndex(b, n, 200)
		b.Run(fmt.Sprintf("docs_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				hits, err := engine.Search(query, 10)
				if err != nil {
					b.Fatal(err)
				}
				_ = hits
			}
		})
	}
}

// BenchmarkSearchTopN measures how result-set truncation affects latency at
// a fixed corpus size.
func BenchmarkSearchTopN(b *testing.B) {
	engine := buildBenchIndex(b, 2000, 200)
	query := strings.Join(strings.Fields(strings.Repeat("plagiarism detection shingle fingerprint overlap corpus simhash index ", 25)), " ")
	tops := []int{1, 10, 50, 100}
	for _, top := range tops {
		b.Run(fmt.Sprintf("top_%d", top), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				hits, err := engine.Search(query, top)
				if err != nil {
					b.Fatal(err)
				}
				_ = hits
			}
		})
	}
}

// BenchmarkSearchParallel measures concurrent query throughput against a
// single loaded index, exercising the atomic-pointer read path under
// contention.
func BenchmarkSearchParallel(b *testing.B) {
	engine := buildBenchIndex(b, 2000, 200)
	query := strings.Join(strings.Fields(strings.Repeat("plagiarism detection shingle fingerprint overlap corpus simhash index ", 25)), " ")
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			hits, err := engine.Search(query, 10)
			if err != nil {
				b.Fatal(err)
			}
			_ = hits
		}
	})
}
