package searchcore

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/textpipeline"
	pkgerrors "github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/errors"
)

// Hit is one scored search result.
type Hit struct {
	DocID    string
	Score    float64
	J9       float64
	C9       float64
	J13      float64
	C13      float64
	CandHits int
}

// Engine is the long-lived search runtime. The zero value is Fresh: usable,
// but any Search call fails until a Load succeeds. A single Engine may be
// shared by any number of concurrent callers; Load and Search coordinate
// through an atomic pointer swap rather than a mutex, so a search never
// blocks on a concurrent load and never observes a torn index.
type Engine struct {
	current atomic.Pointer[loadedIndex]
}

// New returns a fresh, unloaded Engine.
func New() *Engine {
	return &Engine{}
}

// Load reads the index directory at dir and, on success, atomically
// replaces the engine's active index. On failure the previously loaded
// index, if any, remains in place and an error is returned.
func (e *Engine) Load(dir string) error {
	next, err := loadIndexDir(dir)
	if err != nil {
		return err
	}
	prev := e.current.Swap(next)
	if prev != nil {
		_ = prev.close()
	}
	return nil
}

// Loaded reports whether the engine currently holds a usable index.
func (e *Engine) Loaded() bool {
	return e.current.Load() != nil
}

// Search tokenizes query through the same pipeline used by the builder,
// hashes its shingles, accumulates candidate hits, and returns up to top
// hits ordered by descending score. An empty or sub-K-token query yields
// an empty, error-free result, per the PreconditionNotMet rule for empty
// queries. Calling Search before any successful Load returns ErrNotLoaded.
func (e *Engine) Search(query string, top int) ([]Hit, error) {
	li := e.current.Load()
	if li == nil {
		return nil, pkgerrors.ErrNotLoaded
	}
	if top <= 0 {
		top = 10
	}

	norm := textpipeline.Normalize([]byte(query))
	spans := textpipeline.Tokenize(norm)
	if len(spans) < textpipeline.K {
		return []Hit{}, nil
	}

	shingleCount := len(spans) - textpipeline.K + 1
	candHits := make(map[uint32]int, 64)
	queryShingles := 0
	for pos := 0; pos < shingleCount; pos++ {
		h := textpipeline.HashShingle(norm, spans, pos)
		queryShingles++
		lo, hi := li.postingRange(h)
		for _, p := range li.postings[lo:hi] {
			candHits[p.DocIdx]++
		}
	}

	type scored struct {
		docIdx uint32
		hit    Hit
	}
	results := make([]scored, 0, len(candHits))
	q := float64(queryShingles)
	for docIdx, hits := range candHits {
		d := float64(li.docs[docIdx].TokLen) - float64(textpipeline.K) + 1
		if d < 1 {
			d = 1
		}
		c := float64(hits)
		j9 := c / (q + d - c)
		minQD := q
		if d < minQD {
			minQD = d
		}
		c9 := c / minQD
		results = append(results, scored{
			docIdx: docIdx,
			hit: Hit{
				DocID:    li.docIDs[docIdx],
				Score:    j9,
				J9:       j9,
				C9:       c9,
				J13:      0,
				C13:      0,
				CandHits: hits,
			},
		})
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.hit.Score != b.hit.Score {
			return a.hit.Score > b.hit.Score
		}
		if a.hit.CandHits != b.hit.CandHits {
			return a.hit.CandHits > b.hit.CandHits
		}
		return a.docIdx < b.docIdx
	})

	if len(results) > top {
		results = results[:top]
	}
	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = r.hit
	}
	return hits, nil
}

// Close releases the resources held by the currently loaded index, if any.
func (e *Engine) Close() error {
	li := e.current.Swap(nil)
	if li == nil {
		return nil
	}
	return li.close()
}

func (e *Engine) String() string {
	li := e.current.Load()
	if li == nil {
		return "searchcore.Engine{state=Fresh}"
	}
	return fmt.Sprintf("searchcore.Engine{state=Loaded dir=%s docs=%d post9=%d}", li.dir, li.nDocs, li.nPost9)
}
