package searchcore

import (
	"bufio"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/indexbuilder"
)

func buildIndexDir(t *testing.T, docs ...map[string]string) string {
	t.Helper()
	var sb strings.Builder
	for _, d := range docs {
		b, err := json.Marshal(d)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		sb.Write(b)
		sb.WriteByte('\n')
	}
	res, err := indexbuilder.BuildFromReader(bufio.NewReader(strings.NewReader(sb.String())))
	if err != nil {
		t.Fatalf("BuildFromReader: %v", err)
	}
	indexbuilder.SortPostings(res.Postings)
	dir := t.TempDir()
	if err := indexbuilder.WriteIndex(dir, res); err != nil {
		t.Fatalf("WriteIndex: %v", err)
	}
	return dir
}

const almostEqual = 1e-9

func closeTo(a, b float64) bool {
	return math.Abs(a-b) < almostEqual
}

func TestEngineSearchBeforeLoadFails(t *testing.T) {
	e := New()
	if _, err := e.Search("anything here at all for sure", 10); err == nil {
		t.Fatal("expected error searching before Load")
	}
}

func TestEngineScenario1PartialOverlap(t *testing.T) {
	dir := buildIndexDir(t, map[string]string{
		"doc_id": "A",
		"text":   "alpha beta gamma delta epsilon zeta eta theta iota kappa",
	})
	e := New()
	if err := e.Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	hits, err := e.Search("alpha beta gamma delta epsilon zeta eta theta iota", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("len(hits) = %d, want 1", len(hits))
	}
	h := hits[0]
	if h.DocID != "A" {
		t.Errorf("DocID = %q, want A", h.DocID)
	}
	if h.CandHits != 1 {
		t.Errorf("CandHits = %d, want 1", h.CandHits)
	}
	if !closeTo(h.J9, 0.5) {
		t.Errorf("J9 = %v, want 0.5", h.J9)
	}
	if !closeTo(h.C9, 1.0) {
		t.Errorf("C9 = %v, want 1.0", h.C9)
	}
}

func TestEngineScenario2FullMatch(t *testing.T) {
	dir := buildIndexDir(t, map[string]string{
		"doc_id": "A",
		"text":   "alpha beta gamma delta epsilon zeta eta theta iota kappa",
	})
	e := New()
	if err := e.Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	hits, err := e.Search("alpha beta gamma delta epsilon zeta eta theta iota kappa", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("len(hits) = %d, want 1", len(hits))
	}
	h := hits[0]
	if h.CandHits != 2 {
		t.Errorf("CandHits = %d, want 2", h.CandHits)
	}
	if !closeTo(h.J9, 1.0) {
		t.Errorf("J9 = %v, want 1.0", h.J9)
	}
	if !closeTo(h.C9, 1.0) {
		t.Errorf("C9 = %v, want 1.0", h.C9)
	}
}

func TestEngineScenario3TieBreakByDocIdx(t *testing.T) {
	same := "alpha beta gamma delta epsilon zeta eta theta iota kappa"
	dir := buildIndexDir(t,
		map[string]string{"doc_id": "first", "text": same},
		map[string]string{"doc_id": "second", "text": same},
	)
	e := New()
	if err := e.Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	hits, err := e.Search(same, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("len(hits) = %d, want 2", len(hits))
	}
	if hits[0].J9 != hits[1].J9 {
		t.Fatalf("expected tie on J9, got %v and %v", hits[0].J9, hits[1].J9)
	}
	if hits[0].DocID != "first" {
		t.Errorf("tie-break winner = %q, want %q (lower doc_idx)", hits[0].DocID, "first")
	}
}

func TestEngineSelfRecall(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog while the sun sets slowly tonight"
	dir := buildIndexDir(t, map[string]string{"doc_id": "self", "text": text})
	e := New()
	if err := e.Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	hits, err := e.Search(text, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected at least one hit")
	}
	if hits[0].DocID != "self" {
		t.Errorf("top hit = %q, want self", hits[0].DocID)
	}
	if !closeTo(hits[0].J9, 1.0) {
		t.Errorf("J9 = %v, want 1.0", hits[0].J9)
	}
}

func TestEngineQueryShorterThanKReturnsEmpty(t *testing.T) {
	dir := buildIndexDir(t, map[string]string{
		"doc_id": "A",
		"text":   "alpha beta gamma delta epsilon zeta eta theta iota kappa",
	})
	e := New()
	if err := e.Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	hits, err := e.Search("too few words", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("len(hits) = %d, want 0", len(hits))
	}
}

func TestEngineUnrelatedQueryYieldsNoHits(t *testing.T) {
	dir := buildIndexDir(t, map[string]string{
		"doc_id": "A",
		"text":   "alpha beta gamma delta epsilon zeta eta theta iota kappa",
	})
	e := New()
	if err := e.Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	hits, err := e.Search("zulu yankee xray whiskey victor uniform tango sierra romeo", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("len(hits) = %d, want 0 for disjoint vocabulary", len(hits))
	}
}

func TestEngineTopLimitsResultCount(t *testing.T) {
	same := "alpha beta gamma delta epsilon zeta eta theta iota kappa"
	dir := buildIndexDir(t,
		map[string]string{"doc_id": "d1", "text": same},
		map[string]string{"doc_id": "d2", "text": same},
		map[string]string{"doc_id": "d3", "text": same},
	)
	e := New()
	if err := e.Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	hits, err := e.Search(same, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("len(hits) = %d, want 2", len(hits))
	}
}

func TestEngineReloadReplacesIndex(t *testing.T) {
	dir1 := buildIndexDir(t, map[string]string{
		"doc_id": "only-in-one",
		"text":   "alpha beta gamma delta epsilon zeta eta theta iota kappa",
	})
	dir2 := buildIndexDir(t, map[string]string{
		"doc_id": "only-in-two",
		"text":   "alpha beta gamma delta epsilon zeta eta theta iota kappa",
	})
	e := New()
	if err := e.Load(dir1); err != nil {
		t.Fatalf("Load dir1: %v", err)
	}
	if err := e.Load(dir2); err != nil {
		t.Fatalf("Load dir2: %v", err)
	}
	hits, err := e.Search("alpha beta gamma delta epsilon zeta eta theta iota kappa", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].DocID != "only-in-two" {
		t.Fatalf("expected reload to replace the index entirely, got %+v", hits)
	}
}

func TestEngineLoadFailureKeepsPriorIndex(t *testing.T) {
	dir := buildIndexDir(t, map[string]string{
		"doc_id": "kept",
		"text":   "alpha beta gamma delta epsilon zeta eta theta iota kappa",
	})
	e := New()
	if err := e.Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := e.Load(t.TempDir()); err == nil {
		t.Fatal("expected error loading an empty directory")
	}
	hits, err := e.Search("alpha beta gamma delta epsilon zeta eta theta iota kappa", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].DocID != "kept" {
		t.Fatalf("expected prior index to survive a failed reload, got %+v", hits)
	}
}

func TestEngineAsCapability(t *testing.T) {
	dir := buildIndexDir(t, map[string]string{
		"doc_id": "A",
		"text":   "alpha beta gamma delta epsilon zeta eta theta iota kappa",
	})
	var capEngine SearchCapability = New().AsCapability()
	if err := capEngine.LoadIndex(dir); err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	hits, err := capEngine.SearchText("alpha beta gamma delta epsilon zeta eta theta iota kappa", 10)
	if err != nil {
		t.Fatalf("SearchText: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("len(hits) = %d, want 1", len(hits))
	}
}
