package indexbuilder

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	pkgerrors "github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/errors"

	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/textpipeline"
)

const (
	// MaxTokensPerDoc truncates documents longer than this many tokens.
	// SimHash is computed over the truncated stream.
	MaxTokensPerDoc = 100000
	// MaxShinglesPerDoc caps the number of postings emitted for a single
	// document, regardless of how many shingle windows it has.
	MaxShinglesPerDoc = 50000
	// ShingleStride is the step between consecutive shingle start
	// positions.
	ShingleStride = 1
)

// docRecord is the JSON shape of one corpus line. Unknown fields are
// ignored by encoding/json's default decode behavior.
type docRecord struct {
	DocID  string `json:"doc_id"`
	Text   string `json:"text"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// DocInfo carries the external identity and optional metadata of one
// accepted document, aligned by position with Docs.
type DocInfo struct {
	DocID  string
	Title  string
	Author string
}

// Stats summarizes one builder run, mirroring the CLI's one-line summary.
type Stats struct {
	NDocs          uint32
	NPost9         uint64
	SkippedBadJSON uint64
	SkippedBadDoc  uint64
}

// Result is the in-memory product of a build, ready to be written to disk
// or consumed directly by a test.
type Result struct {
	Docs     []DocMeta
	Infos    []DocInfo
	Postings []Posting
	Stats    Stats
}

// BuildFromReader drives the full per-line pipeline described in spec.md
// §4.2 over r, a JSON-lines corpus. It returns a Result ready for
// WriteIndex, or an error if r itself could not be read.
func BuildFromReader(r *bufio.Reader) (*Result, error) {
	res := &Result{
		Docs:     make([]DocMeta, 0, 1024),
		Infos:    make([]DocInfo, 0, 1024),
		Postings: make([]Posting, 0, 1024*64),
	}

	for {
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if len(line) == 0 && err != nil {
			break
		}
		trimmed := trimNewline(line)
		if len(trimmed) != 0 {
			processLine(trimmed, res)
		}
		if err != nil {
			break
		}
	}

	res.Stats.NDocs = uint32(len(res.Docs))
	res.Stats.NPost9 = uint64(len(res.Postings))
	return res, nil
}

func trimNewline(line string) string {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}

func processLine(line string, res *Result) {
	var rec docRecord
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		res.Stats.SkippedBadJSON++
		return
	}
	if rec.DocID == "" || rec.Text == "" {
		res.Stats.SkippedBadJSON++
		return
	}

	norm := textpipeline.Normalize([]byte(rec.Text))
	spans := textpipeline.Tokenize(norm)
	if len(spans) == 0 {
		res.Stats.SkippedBadDoc++
		return
	}
	if len(spans) > MaxTokensPerDoc {
		spans = spans[:MaxTokensPerDoc]
	}
	if len(spans) < textpipeline.K {
		res.Stats.SkippedBadDoc++
		return
	}

	n := len(spans)
	shingleCount := n - textpipeline.K + 1
	if shingleCount <= 0 {
		res.Stats.SkippedBadDoc++
		return
	}

	hi, lo := textpipeline.SimHash128(norm, spans)

	docIdx := uint32(len(res.Docs))
	res.Docs = append(res.Docs, DocMeta{
		TokLen:    uint32(len(spans)),
		SimHashHi: hi,
		SimHashLo: lo,
	})
	res.Infos = append(res.Infos, DocInfo{
		DocID:  rec.DocID,
		Title:  rec.Title,
		Author: rec.Author,
	})

	maxShingles := MaxShinglesPerDoc
	if maxShingles <= 0 || maxShingles > shingleCount {
		maxShingles = shingleCount
	}
	produced := 0
	for pos := 0; pos < shingleCount && produced < maxShingles; pos += ShingleStride {
		h := textpipeline.HashShingle(norm, spans, pos)
		res.Postings = append(res.Postings, Posting{ShingleHash: h, DocIdx: docIdx})
		produced++
	}
}

// SortPostings sorts postings ascending by (shingle_hash, doc_idx),
// in place. Duplicates of the same pair are permitted and preserved.
func SortPostings(postings []Posting) {
	sort.Slice(postings, func(i, j int) bool {
		if postings[i].ShingleHash != postings[j].ShingleHash {
			return postings[i].ShingleHash < postings[j].ShingleHash
		}
		return postings[i].DocIdx < postings[j].DocIdx
	})
}

// Build runs BuildFromReader over the file at corpusPath, sorts the
// resulting postings, and returns the Result. It does not write anything
// to disk; pair it with WriteIndex for the full builder CLI contract.
func Build(corpusPath string) (*Result, error) {
	f, err := os.Open(corpusPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening corpus %s: %v", pkgerrors.ErrIOFailure, corpusPath, err)
	}
	defer f.Close()

	res, err := BuildFromReader(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%w: reading corpus %s: %v", pkgerrors.ErrIOFailure, corpusPath, err)
	}
	if res.Stats.NDocs == 0 {
		return nil, fmt.Errorf("%w: no valid documents (skipped_bad_json=%d skipped_bad_doc=%d)",
			pkgerrors.ErrInvalidInput, res.Stats.SkippedBadJSON, res.Stats.SkippedBadDoc)
	}

	SortPostings(res.Postings)
	return res, nil
}
