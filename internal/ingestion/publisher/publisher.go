// Package publisher persists documents to the catalog and publishes
// ingest events to Kafka so a corpus rebuild can pick them up.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/catalog"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/ingestion"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/kafka"
)

// Publisher coordinates catalog persistence and Kafka event production.
type Publisher struct {
	catalog  *catalog.Catalog
	producer *kafka.Producer
	logger   *slog.Logger
}

// New creates a Publisher over the given catalog and Kafka producer.
func New(cat *catalog.Catalog, producer *kafka.Producer) *Publisher {
	return &Publisher{
		catalog:  cat,
		producer: producer,
		logger:   slog.Default().With("component", "ingestion-publisher"),
	}
}

// Ingest upserts the document into the catalog under the caller-supplied
// doc_id and publishes an IngestEvent to Kafka. A Kafka publish failure is
// logged but does not fail the request: the document is already durable in
// the catalog and will be picked up by the next corpus rebuild regardless.
func (p *Publisher) Ingest(ctx context.Context, req *ingestion.IngestRequest) (*ingestion.IngestResponse, error) {
	doc := catalog.Document{
		DocID:  req.DocID,
		Title:  req.Title,
		Author: req.Author,
		Text:   req.Text,
	}
	if err := p.catalog.UpsertDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("upserting document: %w", err)
	}

	event := kafka.Event{
		Key: req.DocID,
		Value: ingestion.IngestEvent{
			DocID:      req.DocID,
			Text:       req.Text,
			Title:      req.Title,
			Author:     req.Author,
			IngestedAt: time.Now().UTC(),
		},
	}
	if err := p.producer.Publish(ctx, event); err != nil {
		p.logger.Error("failed to publish ingest event, document stored but not queued",
			"doc_id", req.DocID,
			"error", err,
		)
	}

	return &ingestion.IngestResponse{
		DocID:  req.DocID,
		Status: "stored",
	}, nil
}
