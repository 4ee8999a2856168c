// Package ingestion defines the request/response types and Kafka event
// schema for the document ingestion pipeline that feeds the catalog.
package ingestion

import "time"

// IngestRequest is the JSON body accepted by the ingestion HTTP endpoint.
// It mirrors the document record contract consumed by the builder: doc_id
// and text are required; title and author are optional.
type IngestRequest struct {
	DocID  string `json:"doc_id"`
	Text   string `json:"text"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// IngestResponse is returned to the caller after a document is accepted.
type IngestResponse struct {
	DocID  string `json:"doc_id"`
	Status string `json:"status"`
}

// IngestEvent is the Kafka message payload produced after a document is
// persisted to the catalog and ready for the next corpus rebuild.
type IngestEvent struct {
	DocID      string    `json:"doc_id"`
	Text       string    `json:"text"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	IngestedAt time.Time `json:"ingested_at"`
}
