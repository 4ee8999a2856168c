package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/config"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/postgres"
)

func skipIfNoPostgres(t *testing.T) *postgres.Client {
	t.Helper()
	cfg := config.PostgresConfig{
		Host:            envOrDefault("TEST_POSTGRES_HOST", "localhost"),
		Port:            envOrDefaultInt("TEST_POSTGRES_PORT", 5432),
		Database:        envOrDefault("TEST_POSTGRES_DB", "plagiarism_test"),
		User:            envOrDefault("TEST_POSTGRES_USER", "plagiarism"),
		Password:        envOrDefault("TEST_POSTGRES_PASSWORD", "localdev"),
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	}
	db, err := postgres.New(cfg)
	if err != nil {
		t.Skipf("skipping: postgres unavailable: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func TestUpsertDocumentRejectsEmptyFields(t *testing.T) {
	c := New(nil, nil)
	if err := c.UpsertDocument(context.Background(), Document{DocID: "", Text: "x"}); err == nil {
		t.Error("expected error for empty doc_id")
	}
	if err := c.UpsertDocument(context.Background(), Document{DocID: "x", Text: ""}); err == nil {
		t.Error("expected error for empty text")
	}
}

func TestUpsertAndBuildCorpusRoundTrip(t *testing.T) {
	db := skipIfNoPostgres(t)
	c := New(db, nil)
	ctx := context.Background()

	doc := Document{DocID: "cat-test-1", Title: "T", Author: "A", Text: "alpha beta gamma delta epsilon"}
	if err := c.UpsertDocument(ctx, doc); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}

	var buf bytes.Buffer
	n, err := c.BuildCorpus(ctx, &buf)
	if err != nil {
		t.Fatalf("BuildCorpus: %v", err)
	}
	if n == 0 {
		t.Fatal("expected at least one corpus line")
	}

	found := false
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec CorpusLine
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("Unmarshal corpus line: %v", err)
		}
		if rec.DocID == doc.DocID {
			found = true
			if rec.Text != doc.Text {
				t.Errorf("Text = %q, want %q", rec.Text, doc.Text)
			}
		}
	}
	if !found {
		t.Errorf("corpus output did not contain doc_id %q", doc.DocID)
	}
}

func TestIndexVersionAndCurrentPointerRoundTrip(t *testing.T) {
	db := skipIfNoPostgres(t)
	c := New(db, nil)
	ctx := context.Background()

	v := IndexVersion{Version: "v-test-1", IndexDir: "/tmp/idx/v-test-1", CorpusPath: "/tmp/corpus.jsonl", Status: "built"}
	if err := c.RecordIndexBuild(ctx, v); err != nil {
		t.Fatalf("RecordIndexBuild: %v", err)
	}

	if err := c.SetCurrentIndexDir(ctx, v.Version, v.IndexDir); err != nil {
		t.Fatalf("SetCurrentIndexDir: %v", err)
	}

	got, err := c.GetCurrentIndexDir(ctx)
	if err != nil {
		t.Fatalf("GetCurrentIndexDir: %v", err)
	}
	if got != v.IndexDir {
		t.Errorf("GetCurrentIndexDir() = %q, want %q", got, v.IndexDir)
	}
}
