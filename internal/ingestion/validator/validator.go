// Package validator provides input validation for ingestion requests. It
// enforces the non-empty doc_id/text contract and length constraints,
// returning per-field error details.
package validator

import (
	"fmt"
	"strings"

	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/ingestion"
)

const (
	maxDocIDLength = 255
	maxTitleLength = 1024
	maxTextLength  = 1048576
	minTextLength  = 1
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// ValidateIngestRequest checks that doc_id and text are present and within
// their length limits, per the corpus-line contract the builder relies on.
// A record with empty doc_id or empty text would otherwise be silently
// skipped by the builder as skipped_bad_json; rejecting it here surfaces
// the problem to the caller instead.
func ValidateIngestRequest(req *ingestion.IngestRequest) error {
	errs := make(map[string]string)

	docID := strings.TrimSpace(req.DocID)
	if docID == "" {
		errs["doc_id"] = "doc_id is required"
	} else if len(docID) > maxDocIDLength {
		errs["doc_id"] = fmt.Sprintf("doc_id must be at most %d characters", maxDocIDLength)
	}

	text := strings.TrimSpace(req.Text)
	if len(text) < minTextLength {
		errs["text"] = "text is required and must not be empty"
	} else if len(text) > maxTextLength {
		errs["text"] = fmt.Sprintf("text must be at most %d characters", maxTextLength)
	}

	if len(req.Title) > maxTitleLength {
		errs["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
