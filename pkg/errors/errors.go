package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")

	// ErrInputMalformed marks a corpus line that failed to parse or was
	// missing a required field. Per-record; the build proceeds.
	ErrInputMalformed = errors.New("input malformed")
	// ErrDocumentTooShort marks a document with fewer than K tokens after
	// normalization and truncation. Per-record; the build proceeds.
	ErrDocumentTooShort = errors.New("document too short")
	// ErrIOFailure marks an inability to open/read/write a required file.
	// Fatal for the operation in progress.
	ErrIOFailure = errors.New("io failure")
	// ErrFormatMismatch marks an index file with the wrong magic, version,
	// or a truncated table. Fatal for load.
	ErrFormatMismatch = errors.New("index format mismatch")
	// ErrInvariantViolation marks a loaded index whose postings or doc-id
	// table violate the documented invariants. Fatal for load.
	ErrInvariantViolation = errors.New("index invariant violation")
	// ErrNotLoaded marks a search attempted before any index was loaded.
	ErrNotLoaded = errors.New("search core not loaded")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrInputMalformed), errors.Is(err, ErrDocumentTooShort):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotLoaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrFormatMismatch), errors.Is(err, ErrInvariantViolation), errors.Is(err, ErrIOFailure):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}

}
