// Command indexbuilder reads a JSON-lines corpus and writes a complete
// on-disk search index: index_native.bin, index_native_docids.json, and
// index_native_meta.json.
//
// Usage:
//
//	indexbuilder <corpus_jsonl_path> <out_dir>
//
// Exit code 0 on success, 1 on any failure. On success it prints a single
// human-readable summary line to stdout.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/indexbuilder"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <corpus_jsonl_path> <out_dir>\n", os.Args[0])
		os.Exit(1)
	}
	corpusPath := os.Args[1]
	outDir := os.Args[2]

	start := time.Now()
	res, err := indexbuilder.Build(corpusPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		os.Exit(1)
	}
	indexbuilder.SortPostings(res.Postings)

	if err := indexbuilder.WriteIndex(outDir, res); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("docs=%d postings9=%d skipped_bad_json=%d skipped_bad_doc=%d elapsed=%s out=%s\n",
		res.Stats.NDocs, res.Stats.NPost9, res.Stats.SkippedBadJSON, res.Stats.SkippedBadDoc,
		time.Since(start).Round(time.Millisecond), outDir)
}
