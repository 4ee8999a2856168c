package indexbuilder

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	pkgerrors "github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/errors"
)

const (
	binName     = "index_native.bin"
	docIDsName  = "index_native_docids.json"
	metaName    = "index_native_meta.json"
	// PlagiarismThreshold and PartialThreshold are the scoring cutoffs
	// carried into the config.thresholds block of index_native_meta.json
	// for readers of the index. The search engine in this module does not
	// classify hits against them.
	PlagiarismThreshold = 0.7
	PartialThreshold    = 0.3
)

// metaThresholds mirrors the config.thresholds block of index_native_meta.json.
type metaThresholds struct {
	PlagThreshold    float64 `json:"plag_thr"`
	PartialThreshold float64 `json:"partial_thr"`
}

// metaConfig mirrors the config block of index_native_meta.json.
type metaConfig struct {
	Thresholds metaThresholds `json:"thresholds"`
}

// metaStats mirrors the stats block of index_native_meta.json.
type metaStats struct {
	Docs uint32 `json:"docs"`
	K9   uint64 `json:"k9"`
	K13  uint64 `json:"k13"`
}

// metaFile is the full shape of index_native_meta.json.
type metaFile struct {
	Version  uint32                 `json:"version"`
	Config   metaConfig             `json:"config"`
	Stats    metaStats              `json:"stats"`
	DocsMeta map[string]docMetaInfo `json:"docs_meta"`
}

// docMetaInfo is one value of the docs_meta object, keyed by external
// doc_id.
type docMetaInfo struct {
	TokLen    uint32 `json:"tok_len"`
	SimHashHi uint64 `json:"simhash_hi"`
	SimHashLo uint64 `json:"simhash_lo"`
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
}

// WriteIndex serialises res into the three files an index directory must
// contain: index_native.bin, index_native_docids.json, and
// index_native_meta.json. It writes to *.tmp siblings first and renames
// into place, so a reader never observes a partially written file.
func WriteIndex(dir string, res *Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: creating index dir %s: %v", pkgerrors.ErrIOFailure, dir, err)
	}
	if err := writeBin(filepath.Join(dir, binName), res); err != nil {
		return err
	}
	if err := writeDocIDs(filepath.Join(dir, docIDsName), res); err != nil {
		return err
	}
	if err := writeMeta(filepath.Join(dir, metaName), res); err != nil {
		return err
	}
	return nil
}

func writeBin(finalPath string, res *Result) error {
	tmpPath := finalPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", pkgerrors.ErrIOFailure, tmpPath, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)

	header := make([]byte, HeaderSize)
	header[0] = MagicByte0
	header[1] = MagicByte1
	header[2] = MagicByte2
	header[3] = MagicByte3
	binary.LittleEndian.PutUint32(header[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(header[8:12], res.Stats.NDocs)
	binary.LittleEndian.PutUint64(header[12:20], res.Stats.NPost9)
	binary.LittleEndian.PutUint64(header[20:28], 0) // N_post13 always 0 in v1
	if _, err := bw.Write(header); err != nil {
		return fmt.Errorf("%w: writing header to %s: %v", pkgerrors.ErrIOFailure, tmpPath, err)
	}

	var rec [DocMetaSize]byte
	for _, d := range res.Docs {
		binary.LittleEndian.PutUint32(rec[0:4], d.TokLen)
		binary.LittleEndian.PutUint64(rec[4:12], d.SimHashHi)
		binary.LittleEndian.PutUint64(rec[12:20], d.SimHashLo)
		if _, err := bw.Write(rec[:]); err != nil {
			return fmt.Errorf("%w: writing doc meta to %s: %v", pkgerrors.ErrIOFailure, tmpPath, err)
		}
	}

	var post [PostingSize]byte
	for _, p := range res.Postings {
		binary.LittleEndian.PutUint64(post[0:8], p.ShingleHash)
		binary.LittleEndian.PutUint32(post[8:12], p.DocIdx)
		if _, err := bw.Write(post[:]); err != nil {
			return fmt.Errorf("%w: writing posting to %s: %v", pkgerrors.ErrIOFailure, tmpPath, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: flushing %s: %v", pkgerrors.ErrIOFailure, tmpPath, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: syncing %s: %v", pkgerrors.ErrIOFailure, tmpPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %v", pkgerrors.ErrIOFailure, tmpPath, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("%w: renaming %s to %s: %v", pkgerrors.ErrIOFailure, tmpPath, finalPath, err)
	}
	return nil
}

func writeDocIDs(finalPath string, res *Result) error {
	ids := make([]string, len(res.Infos))
	for i, info := range res.Infos {
		ids[i] = info.DocID
	}
	return writeJSONAtomic(finalPath, ids)
}

func writeMeta(finalPath string, res *Result) error {
	docsMeta := make(map[string]docMetaInfo, len(res.Infos))
	for i, info := range res.Infos {
		d := res.Docs[i]
		docsMeta[info.DocID] = docMetaInfo{
			TokLen:    d.TokLen,
			SimHashHi: d.SimHashHi,
			SimHashLo: d.SimHashLo,
			Title:     info.Title,
			Author:    info.Author,
		}
	}
	m := metaFile{
		Version: FormatVersion,
		Config: metaConfig{
			Thresholds: metaThresholds{
				PlagThreshold:    PlagiarismThreshold,
				PartialThreshold: PartialThreshold,
			},
		},
		Stats: metaStats{
			Docs: res.Stats.NDocs,
			K9:   res.Stats.NPost9,
			K13:  0,
		},
		DocsMeta: docsMeta,
	}
	return writeJSONAtomic(finalPath, m)
}

func writeJSONAtomic(finalPath string, v any) error {
	tmpPath := finalPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", pkgerrors.ErrIOFailure, tmpPath, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("%w: encoding %s: %v", pkgerrors.ErrIOFailure, tmpPath, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("%w: syncing %s: %v", pkgerrors.ErrIOFailure, tmpPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %v", pkgerrors.ErrIOFailure, tmpPath, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("%w: renaming %s to %s: %v", pkgerrors.ErrIOFailure, tmpPath, finalPath, err)
	}
	return nil
}
