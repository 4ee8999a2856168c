// Command ingestd consumes document-ingest events from Kafka and upserts
// them into the catalog, decoupling the HTTP ingestion path (cmd/ingestion)
// from catalog writes the way the original design's ingestion queue intends.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/catalog"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/ingestion"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/config"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/kafka"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/logger"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/metrics"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/postgres"
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

	handler := handleIngestEvent(cat)
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest, handler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("ingestd ready, consuming from kafka",
		"topic", cfg.Kafka.Topics.DocumentIngest,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := consumer.Start(ctx); err != nil {
		slog.Error("consumer error", "error", err)
		os.Exit(1)
	}
	slog.Info("ingestd stopped")
}

func handleIngestEvent(cat *catalog.Catalog) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.IngestEvent](value)
		if err != nil {
			return err
		}
		doc := catalog.Document{
			DocID:  event.DocID,
			Title:  event.Title,
			Author: event.Author,
			Text:   event.Text,
		}
		if err := cat.UpsertDocument(ctx, doc); err != nil {
			return fmt.Errorf("upserting document %s from event: %w", event.DocID, err)
		}
		return nil
	}
}
