// Package catalog is the relational collaborator that tracks raw documents,
// corpus builds, and the current index-directory pointer. It owns
// core_documents, core_index_versions, and core_runtime_state, grounded in
// the upsert/build-corpus/set-current flow of the original HTTP façade.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/metrics"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/postgres"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/resilience"
)

const breakerName = "catalog-postgres"

// Catalog wraps a Postgres connection with the document/index-version
// bookkeeping operations the builder and search daemon depend on. Every
// write runs behind a circuit breaker so a stuck Postgres instance fails
// fast instead of piling up blocked goroutines; the reads (BuildCorpus,
// GetCurrentIndexDir) go to the database directly.
type Catalog struct {
	db      *postgres.Client
	breaker *resilience.CircuitBreaker
}

// New wraps db as a Catalog. If m is non-nil, the catalog's circuit breaker
// reports its state to m.CircuitBreakerState on every transition.
func New(db *postgres.Client, m *metrics.Metrics) *Catalog {
	cfg := resilience.CircuitBreakerConfig{}
	if m != nil {
		cfg.OnStateChange = func(s resilience.State) {
			m.CircuitBreakerState.WithLabelValues(breakerName).Set(float64(s))
		}
	}
	return &Catalog{
		db:      db,
		breaker: resilience.NewCircuitBreaker(breakerName, cfg),
	}
}

// Document is one row of core_documents.
type Document struct {
	DocID  string
	Title  string
	Author string
	Text   string
	Meta   json.RawMessage
	Status string
}

// UpsertDocument inserts or replaces the document identified by doc.DocID,
// always leaving it in status "stored". doc_id, title, author, and meta
// collectively mirror db_upsert_doc's ON CONFLICT clause.
func (c *Catalog) UpsertDocument(ctx context.Context, doc Document) error {
	if doc.DocID == "" {
		return fmt.Errorf("doc_id is required")
	}
	if doc.Text == "" {
		return fmt.Errorf("text is required")
	}
	meta := doc.Meta
	if meta == nil {
		meta = json.RawMessage("{}")
	}
	err := c.breaker.Execute(func() error {
		_, err := c.db.DB.ExecContext(ctx,
			`INSERT INTO core_documents (doc_id, title, author, text_content, meta_json, status)
			 VALUES ($1, $2, $3, $4, $5::jsonb, 'stored')
			 ON CONFLICT (doc_id) DO UPDATE SET
			   title = EXCLUDED.title,
			   author = EXCLUDED.author,
			   text_content = EXCLUDED.text_content,
			   meta_json = EXCLUDED.meta_json,
			   status = 'stored'`,
			doc.DocID, doc.Title, doc.Author, doc.Text, string(meta))
		return err
	})
	if err != nil {
		return fmt.Errorf("upserting document %s: %w", doc.DocID, err)
	}
	return nil
}

// MarkIndexed flips a document's status to "indexed" after it has been
// carried through a successful builder run.
func (c *Catalog) MarkIndexed(ctx context.Context, docID string) error {
	err := c.breaker.Execute(func() error {
		_, err := c.db.DB.ExecContext(ctx,
			`UPDATE core_documents SET status = 'indexed' WHERE doc_id = $1`, docID)
		return err
	})
	if err != nil {
		return fmt.Errorf("marking document %s indexed: %w", docID, err)
	}
	return nil
}

// CorpusLine is the JSON shape written per line of a builder corpus file,
// matching spec.md's doc_id/text/title/author contract exactly.
type CorpusLine struct {
	DocID  string `json:"doc_id"`
	Text   string `json:"text"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// BuildCorpus streams every stored or indexed document, ordered by
// insertion, into w as JSON-lines, and returns how many lines were written.
// Documents with an empty doc_id or text are skipped defensively, though
// UpsertDocument never persists one.
func (c *Catalog) BuildCorpus(ctx context.Context, w io.Writer) (int, error) {
	rows, err := c.db.DB.QueryContext(ctx,
		`SELECT doc_id, COALESCE(title, ''), COALESCE(author, ''), text_content
		 FROM core_documents
		 WHERE status IN ('stored', 'indexed')
		 ORDER BY id`)
	if err != nil {
		return 0, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	written := 0
	for rows.Next() {
		var line CorpusLine
		if err := rows.Scan(&line.DocID, &line.Title, &line.Author, &line.Text); err != nil {
			return written, fmt.Errorf("scanning document row: %w", err)
		}
		if line.DocID == "" || line.Text == "" {
			continue
		}
		b, err := json.Marshal(line)
		if err != nil {
			return written, fmt.Errorf("marshaling corpus line for %s: %w", line.DocID, err)
		}
		b = append(b, '\n')
		if _, err := w.Write(b); err != nil {
			return written, fmt.Errorf("writing corpus line for %s: %w", line.DocID, err)
		}
		written++
	}
	if err := rows.Err(); err != nil {
		return written, fmt.Errorf("iterating document rows: %w", err)
	}
	return written, nil
}

// IndexVersion is one row of core_index_versions.
type IndexVersion struct {
	Version    string
	IndexDir   string
	CorpusPath string
	Status     string
	Stats      json.RawMessage
}

// RecordIndexBuild upserts a core_index_versions row for one builder run.
func (c *Catalog) RecordIndexBuild(ctx context.Context, v IndexVersion) error {
	stats := v.Stats
	if stats == nil {
		stats = json.RawMessage("{}")
	}
	err := c.breaker.Execute(func() error {
		_, err := c.db.DB.ExecContext(ctx,
			`INSERT INTO core_index_versions (version, index_dir, corpus_path, status, stats_json)
			 VALUES ($1, $2, $3, $4, $5::jsonb)
			 ON CONFLICT (version) DO UPDATE SET
			   index_dir = EXCLUDED.index_dir,
			   corpus_path = EXCLUDED.corpus_path,
			   status = EXCLUDED.status,
			   stats_json = EXCLUDED.stats_json`,
			v.Version, v.IndexDir, v.CorpusPath, v.Status, string(stats))
		return err
	})
	if err != nil {
		return fmt.Errorf("recording index build %s: %w", v.Version, err)
	}
	return nil
}

// GetCurrentIndexDir returns the index directory the search daemon should
// have loaded, per the single-row core_runtime_state pointer table. It
// returns ("", nil) if no pointer has been set yet.
func (c *Catalog) GetCurrentIndexDir(ctx context.Context) (string, error) {
	var dir sql.NullString
	err := c.db.DB.QueryRowContext(ctx,
		`SELECT current_index_dir FROM core_runtime_state WHERE id = 1`).Scan(&dir)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading current index dir: %w", err)
	}
	return dir.String, nil
}

// SetCurrentIndexDir atomically moves the core_runtime_state pointer to
// (version, indexDir) so the next search-daemon load picks it up.
func (c *Catalog) SetCurrentIndexDir(ctx context.Context, version, indexDir string) error {
	err := c.breaker.Execute(func() error {
		_, err := c.db.DB.ExecContext(ctx,
			`UPDATE core_runtime_state SET current_version = $1, current_index_dir = $2 WHERE id = 1`,
			version, indexDir)
		return err
	})
	if err != nil {
		return fmt.Errorf("setting current index dir: %w", err)
	}
	return nil
}
