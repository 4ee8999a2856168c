package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/logger"
)

type requestIDKey struct{}

// RequestIDHeader is the header name used to propagate a request ID to and
// from the client.
const RequestIDHeader = "X-Request-ID"

// RequestID wraps next so that every request carries a request ID, either
// taken from the incoming X-Request-ID header (after sanitization) or
// freshly generated. The ID is echoed back in the response header and
// attached to the request context for downstream loggers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := sanitizeRequestID(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = generateRequestID()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		ctx = logger.WithRequestID(ctx, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext extracts the request ID attached by RequestID, or ""
// if none is present.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func generateRequestID() string {
	now := time.Now().UnixNano()
	return fmt.Sprintf("%d-%08x", now/1000000, now%0xffffffff)
}

func sanitizeRequestID(id string) string {
	if len(id) > 64 {
		id = id[:64]
	}
	var b strings.Builder
	b.Grow(len(id))
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
			b.WriteRune(c)
		}
	}
	return b.String()
}
