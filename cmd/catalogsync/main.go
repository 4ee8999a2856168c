// Command catalogsync rebuilds the search index from the current contents
// of the relational catalog: it streams every stored document into a fresh
// corpus file, runs the index builder over it, records the build in
// core_index_versions, and moves the core_runtime_state pointer to it.
//
// This mirrors the rebuild flow of the original HTTP façade's
// /v1/index/rebuild route, run here as a one-shot batch job rather than an
// HTTP endpoint.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/catalog"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/indexbuilder"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/config"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/logger"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/metrics"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/postgres"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	m := metrics.New()
	cat := catalog.New(db, m)

	ctx, span := tracing.StartSpan(context.Background(), "catalogsync.rebuild", fmt.Sprintf("sync-%d", time.Now().UnixNano()))
	defer span.End()
	defer span.Log()

	version := time.Now().UTC().Format("20060102T150405Z")
	indexDir := filepath.Join(cfg.Catalog.IndexRoot, version)

	if err := runRebuild(ctx, cat, cfg.Catalog.CorpusPath, indexDir, version, m); err != nil {
		m.BuildRunsTotal.WithLabelValues("failed").Inc()
		slog.Error("rebuild failed", "error", err)
		os.Exit(1)
	}
	m.BuildRunsTotal.WithLabelValues("ok").Inc()
	slog.Info("rebuild complete", "version", version, "index_dir", indexDir)
}

func runRebuild(ctx context.Context, cat *catalog.Catalog, corpusPath, indexDir, version string, m *metrics.Metrics) error {
	buildStart := time.Now()

	corpusCtx, corpusSpan := tracing.StartChildSpan(ctx, "catalogsync.build_corpus")
	if err := os.MkdirAll(filepath.Dir(corpusPath), 0o755); err != nil {
		corpusSpan.End()
		return fmt.Errorf("creating corpus directory: %w", err)
	}
	f, err := os.Create(corpusPath)
	if err != nil {
		corpusSpan.End()
		return fmt.Errorf("creating corpus file: %w", err)
	}
	n, err := cat.BuildCorpus(corpusCtx, f)
	closeErr := f.Close()
	corpusSpan.SetAttr("lines_written", n)
	corpusSpan.End()
	if err != nil {
		return fmt.Errorf("building corpus: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("closing corpus file: %w", closeErr)
	}
	if n == 0 {
		return fmt.Errorf("catalog has no stored documents, nothing to index")
	}

	_, buildSpan := tracing.StartChildSpan(ctx, "catalogsync.index_build")
	res, err := indexbuilder.Build(corpusPath)
	if err != nil {
		buildSpan.End()
		return fmt.Errorf("building index: %w", err)
	}
	indexbuilder.SortPostings(res.Postings)
	if err := indexbuilder.WriteIndex(indexDir, res); err != nil {
		buildSpan.End()
		return fmt.Errorf("writing index: %w", err)
	}
	buildSpan.SetAttr("docs", res.Stats.NDocs)
	buildSpan.SetAttr("postings9", res.Stats.NPost9)
	buildSpan.End()
	m.BuildDuration.Observe(time.Since(buildStart).Seconds())
	m.DocsAcceptedTotal.Add(float64(res.Stats.NDocs))
	m.DocsSkippedTotal.WithLabelValues("bad_json").Add(float64(res.Stats.SkippedBadJSON))
	m.DocsSkippedTotal.WithLabelValues("too_short").Add(float64(res.Stats.SkippedBadDoc))

	stats, err := json.Marshal(res.Stats)
	if err != nil {
		return fmt.Errorf("marshaling build stats: %w", err)
	}
	if err := cat.RecordIndexBuild(ctx, catalog.IndexVersion{
		Version:    version,
		IndexDir:   indexDir,
		CorpusPath: corpusPath,
		Status:     "built",
		Stats:      stats,
	}); err != nil {
		return fmt.Errorf("recording index version: %w", err)
	}
	if err := cat.SetCurrentIndexDir(ctx, version, indexDir); err != nil {
		return fmt.Errorf("moving current index pointer: %w", err)
	}
	return nil
}
