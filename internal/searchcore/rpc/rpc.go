// Package rpc exposes searchcore.SearchCapability over the platform's
// JSON-over-TCP RPC transport (pkg/grpc), so the engine can run out of
// process from its host and still be called through the same capability
// interface used in-process.
package rpc

// LoadIndexRequest is the wire payload for the LoadIndex RPC.
type LoadIndexRequest struct {
	DirPath string `json:"dir_path"`
}

// LoadIndexResponse carries the result code described in spec §6.6:
// 0 on success, non-zero on failure, with a message for diagnostics.
type LoadIndexResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// SearchTextRequest is the wire payload for the SearchText RPC.
type SearchTextRequest struct {
	Query string `json:"query"`
	Top   int    `json:"top"`
}

// HitRecord mirrors the hit record shape of spec §6.6's search_text
// operation, with DocID in place of the raw internal doc_id_int since the
// RPC boundary resolves it server-side.
type HitRecord struct {
	DocID    string  `json:"doc_id"`
	Score    float64 `json:"score"`
	J9       float64 `json:"j9"`
	C9       float64 `json:"c9"`
	J13      float64 `json:"j13"`
	C13      float64 `json:"c13"`
	CandHits int     `json:"cand_hits"`
}

// SearchTextResponse is the wire payload returned by the SearchText RPC.
type SearchTextResponse struct {
	Hits []HitRecord `json:"hits"`
}

const (
	// MethodLoadIndex and MethodSearchText are the RPC method names
	// registered on the server and dialed by the client, following the
	// transport's "Service.Method" convention.
	MethodLoadIndex  = "SearchCapability.LoadIndex"
	MethodSearchText = "SearchCapability.SearchText"
)
