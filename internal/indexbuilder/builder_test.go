package indexbuilder

import (
	"bufio"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/textpipeline"
)

func jsonl(lines ...map[string]string) string {
	var sb strings.Builder
	for _, l := range lines {
		b, _ := json.Marshal(l)
		sb.Write(b)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func longDoc(words int) string {
	var sb strings.Builder
	for i := 0; i < words; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString("w")
	}
	return sb.String()
}

func TestBuildFromReaderAcceptsValidDoc(t *testing.T) {
	src := jsonl(map[string]string{
		"doc_id": "d1",
		"text":   "the quick brown fox jumps over the lazy dog again",
		"title":  "t1",
		"author": "a1",
	})
	res, err := BuildFromReader(bufio.NewReader(strings.NewReader(src)))
	if err != nil {
		t.Fatalf("BuildFromReader: %v", err)
	}
	if res.Stats.NDocs != 1 {
		t.Fatalf("NDocs = %d, want 1", res.Stats.NDocs)
	}
	if res.Infos[0].DocID != "d1" {
		t.Errorf("DocID = %q, want d1", res.Infos[0].DocID)
	}
	if res.Stats.NPost9 == 0 {
		t.Errorf("expected at least one posting")
	}
}

func TestBuildFromReaderSkipsBadJSON(t *testing.T) {
	src := "not json\n" + jsonl(map[string]string{
		"doc_id": "d1",
		"text":   "alpha beta gamma delta epsilon zeta eta theta iota",
	})
	res, err := BuildFromReader(bufio.NewReader(strings.NewReader(src)))
	if err != nil {
		t.Fatalf("BuildFromReader: %v", err)
	}
	if res.Stats.SkippedBadJSON != 1 {
		t.Errorf("SkippedBadJSON = %d, want 1", res.Stats.SkippedBadJSON)
	}
	if res.Stats.NDocs != 1 {
		t.Errorf("NDocs = %d, want 1", res.Stats.NDocs)
	}
}

func TestBuildFromReaderSkipsMissingFields(t *testing.T) {
	src := jsonl(map[string]string{"doc_id": "", "text": "something"}) +
		jsonl(map[string]string{"doc_id": "d2", "text": ""})
	res, err := BuildFromReader(bufio.NewReader(strings.NewReader(src)))
	if err != nil {
		t.Fatalf("BuildFromReader: %v", err)
	}
	if res.Stats.SkippedBadJSON != 2 {
		t.Errorf("SkippedBadJSON = %d, want 2", res.Stats.SkippedBadJSON)
	}
	if res.Stats.NDocs != 0 {
		t.Errorf("NDocs = %d, want 0", res.Stats.NDocs)
	}
}

func TestBuildFromReaderSkipsDocumentTooShort(t *testing.T) {
	src := jsonl(map[string]string{"doc_id": "d1", "text": "too short doc"})
	res, err := BuildFromReader(bufio.NewReader(strings.NewReader(src)))
	if err != nil {
		t.Fatalf("BuildFromReader: %v", err)
	}
	if res.Stats.SkippedBadDoc != 1 {
		t.Errorf("SkippedBadDoc = %d, want 1", res.Stats.SkippedBadDoc)
	}
	if res.Stats.NDocs != 0 {
		t.Errorf("NDocs = %d, want 0", res.Stats.NDocs)
	}
}

func TestBuildFromReaderTruncatesLongDocument(t *testing.T) {
	src := jsonl(map[string]string{"doc_id": "d1", "text": longDoc(120000)})
	res, err := BuildFromReader(bufio.NewReader(strings.NewReader(src)))
	if err != nil {
		t.Fatalf("BuildFromReader: %v", err)
	}
	if res.Stats.NDocs != 1 {
		t.Fatalf("NDocs = %d, want 1", res.Stats.NDocs)
	}
	if res.Docs[0].TokLen != MaxTokensPerDoc {
		t.Errorf("TokLen = %d, want %d", res.Docs[0].TokLen, MaxTokensPerDoc)
	}
	wantShingles := MaxTokensPerDoc - textpipeline.K + 1
	if wantShingles > MaxShinglesPerDoc {
		wantShingles = MaxShinglesPerDoc
	}
	got := 0
	for _, p := range res.Postings {
		if p.DocIdx == 0 {
			got++
		}
	}
	if got != wantShingles {
		t.Errorf("postings for truncated doc = %d, want %d", got, wantShingles)
	}
}

func TestBuildFromReaderAssignsDenseDocIdx(t *testing.T) {
	src := jsonl(
		map[string]string{"doc_id": "first", "text": "alpha beta gamma delta epsilon zeta eta theta iota"},
		map[string]string{"doc_id": "", "text": "dropped because doc_id is empty here too"},
		map[string]string{"doc_id": "second", "text": "able baker charlie delta echo foxtrot golf hotel india"},
	)
	res, err := BuildFromReader(bufio.NewReader(strings.NewReader(src)))
	if err != nil {
		t.Fatalf("BuildFromReader: %v", err)
	}
	if res.Stats.NDocs != 2 {
		t.Fatalf("NDocs = %d, want 2", res.Stats.NDocs)
	}
	if res.Infos[0].DocID != "first" || res.Infos[1].DocID != "second" {
		t.Errorf("doc_idx assignment out of order: %+v", res.Infos)
	}
	for _, p := range res.Postings {
		if p.DocIdx > 1 {
			t.Errorf("posting references doc_idx %d, only 0 and 1 exist", p.DocIdx)
		}
	}
}

func TestSortPostingsOrdering(t *testing.T) {
	postings := []Posting{
		{ShingleHash: 5, DocIdx: 2},
		{ShingleHash: 1, DocIdx: 9},
		{ShingleHash: 5, DocIdx: 0},
		{ShingleHash: 1, DocIdx: 1},
	}
	SortPostings(postings)
	for i := 1; i < len(postings); i++ {
		prev, cur := postings[i-1], postings[i]
		if cur.ShingleHash < prev.ShingleHash ||
			(cur.ShingleHash == prev.ShingleHash && cur.DocIdx < prev.DocIdx) {
			t.Fatalf("postings not sorted at index %d: %+v then %+v", i, prev, cur)
		}
	}
}

func TestBuildFromReaderDeterministic(t *testing.T) {
	src := jsonl(
		map[string]string{"doc_id": "d1", "text": "the quick brown fox jumps over the lazy dog once more"},
		map[string]string{"doc_id": "d2", "text": "a completely different sentence about something else entirely"},
	)
	res1, err := BuildFromReader(bufio.NewReader(strings.NewReader(src)))
	if err != nil {
		t.Fatalf("BuildFromReader: %v", err)
	}
	SortPostings(res1.Postings)
	res2, err := BuildFromReader(bufio.NewReader(strings.NewReader(src)))
	if err != nil {
		t.Fatalf("BuildFromReader: %v", err)
	}
	SortPostings(res2.Postings)

	if len(res1.Postings) != len(res2.Postings) {
		t.Fatalf("posting count differs between runs: %d vs %d", len(res1.Postings), len(res2.Postings))
	}
	for i := range res1.Postings {
		if res1.Postings[i] != res2.Postings[i] {
			t.Fatalf("posting %d differs between runs: %+v vs %+v", i, res1.Postings[i], res2.Postings[i])
		}
	}
	for i := range res1.Docs {
		if res1.Docs[i] != res2.Docs[i] {
			t.Fatalf("doc meta %d differs between runs", i)
		}
	}
}

func TestBuildRejectsMissingCorpus(t *testing.T) {
	_, err := Build("/nonexistent/path/to/corpus.jsonl")
	if err == nil {
		t.Fatal("expected error for nonexistent corpus path")
	}
}
