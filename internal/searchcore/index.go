// Package searchcore holds the long-lived, in-process query engine: it
// loads an index directory produced by internal/indexbuilder and answers
// text queries against it.
package searchcore

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/exp/mmap"

	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/indexbuilder"
	pkgerrors "github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/errors"
)

const (
	docIDsName = "index_native_docids.json"
)

// loadedIndex is the immutable in-memory mirror of one index directory.
// A *loadedIndex is never mutated after construction; Engine swaps the
// pointer to it atomically on each successful Load.
type loadedIndex struct {
	dir      string
	reader   *mmap.ReaderAt
	nDocs    uint32
	nPost9   uint64
	docs     []indexbuilder.DocMeta
	postings []indexbuilder.Posting
	docIDs   []string
}

func (li *loadedIndex) close() error {
	if li.reader != nil {
		return li.reader.Close()
	}
	return nil
}

// loadIndexDir memory-maps index_native.bin, validates the header, decodes
// the DocMeta and Posting arrays into plain slices, and parses the doc-ids
// sidecar. It never mutates the previous state; on error the caller keeps
// whatever it had.
func loadIndexDir(dir string) (*loadedIndex, error) {
	binPath := filepath.Join(dir, "index_native.bin")
	reader, err := mmap.Open(binPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", pkgerrors.ErrIOFailure, binPath, err)
	}

	li, err := decodeFromMmap(dir, reader)
	if err != nil {
		_ = reader.Close()
		return nil, err
	}
	return li, nil
}

func decodeFromMmap(dir string, reader *mmap.ReaderAt) (*loadedIndex, error) {
	header := make([]byte, indexbuilder.HeaderSize)
	if _, err := reader.ReadAt(header, 0); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", pkgerrors.ErrFormatMismatch, err)
	}
	if header[0] != indexbuilder.MagicByte0 || header[1] != indexbuilder.MagicByte1 ||
		header[2] != indexbuilder.MagicByte2 || header[3] != indexbuilder.MagicByte3 {
		return nil, fmt.Errorf("%w: bad magic bytes %v", pkgerrors.ErrFormatMismatch, header[0:4])
	}
	version := binary.LittleEndian.Uint32(header[4:8])
	if version != indexbuilder.FormatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", pkgerrors.ErrFormatMismatch, version)
	}
	nDocs := binary.LittleEndian.Uint32(header[8:12])
	nPost9 := binary.LittleEndian.Uint64(header[12:20])
	nPost13 := binary.LittleEndian.Uint64(header[20:28])
	if nPost13 != 0 {
		return nil, fmt.Errorf("%w: non-zero N_post13 (%d) not supported", pkgerrors.ErrInvariantViolation, nPost13)
	}

	docs, err := decodeDocMetas(reader, indexbuilder.HeaderSize, nDocs)
	if err != nil {
		return nil, err
	}

	postingsOffset := int64(indexbuilder.HeaderSize) + int64(nDocs)*int64(indexbuilder.DocMetaSize)
	postings, err := decodePostings(reader, postingsOffset, nPost9)
	if err != nil {
		return nil, err
	}
	for _, p := range postings {
		if p.DocIdx >= nDocs {
			return nil, fmt.Errorf("%w: posting doc_idx %d out of range [0,%d)", pkgerrors.ErrInvariantViolation, p.DocIdx, nDocs)
		}
	}

	docIDs, err := loadDocIDs(dir, nDocs)
	if err != nil {
		return nil, err
	}

	return &loadedIndex{
		dir:      dir,
		reader:   reader,
		nDocs:    nDocs,
		nPost9:   nPost9,
		docs:     docs,
		postings: postings,
		docIDs:   docIDs,
	}, nil
}

func decodeDocMetas(reader *mmap.ReaderAt, offset int64, n uint32) ([]indexbuilder.DocMeta, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, int64(n)*int64(indexbuilder.DocMetaSize))
	if _, err := reader.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("%w: reading doc meta table: %v", pkgerrors.ErrFormatMismatch, err)
	}
	docs := make([]indexbuilder.DocMeta, n)
	for i := uint32(0); i < n; i++ {
		rec := buf[int(i)*indexbuilder.DocMetaSize:]
		docs[i] = indexbuilder.DocMeta{
			TokLen:    binary.LittleEndian.Uint32(rec[0:4]),
			SimHashHi: binary.LittleEndian.Uint64(rec[4:12]),
			SimHashLo: binary.LittleEndian.Uint64(rec[12:20]),
		}
	}
	return docs, nil
}

func decodePostings(reader *mmap.ReaderAt, offset int64, n uint64) ([]indexbuilder.Posting, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, int64(n)*int64(indexbuilder.PostingSize))
	if _, err := reader.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("%w: reading posting table: %v", pkgerrors.ErrFormatMismatch, err)
	}
	postings := make([]indexbuilder.Posting, n)
	for i := uint64(0); i < n; i++ {
		rec := buf[int(i)*indexbuilder.PostingSize:]
		postings[i] = indexbuilder.Posting{
			ShingleHash: binary.LittleEndian.Uint64(rec[0:8]),
			DocIdx:      binary.LittleEndian.Uint32(rec[8:12]),
		}
	}
	return postings, nil
}

func loadDocIDs(dir string, nDocs uint32) ([]string, error) {
	path := filepath.Join(dir, docIDsName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", pkgerrors.ErrIOFailure, path, err)
	}
	var docIDs []string
	if err := json.Unmarshal(data, &docIDs); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", pkgerrors.ErrFormatMismatch, path, err)
	}
	if uint32(len(docIDs)) != nDocs {
		return nil, fmt.Errorf("%w: doc-ids length %d != N_docs %d", pkgerrors.ErrInvariantViolation, len(docIDs), nDocs)
	}
	return docIDs, nil
}

// postingRange returns the half-open range [lo, hi) of li.postings whose
// ShingleHash equals h. Postings are sorted ascending by (hash, doc_idx),
// so a pair of binary searches suffices.
func (li *loadedIndex) postingRange(h uint64) (lo, hi int) {
	lo = sort.Search(len(li.postings), func(i int) bool {
		return li.postings[i].ShingleHash >= h
	})
	hi = sort.Search(len(li.postings), func(i int) bool {
		return li.postings[i].ShingleHash > h
	})
	return lo, hi
}
