package rpc

import (
	"context"
	"encoding/json"

	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/searchcore"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/grpc"
)

// Server wraps a searchcore.SearchCapability behind the platform's
// JSON-over-TCP RPC transport, for hosts that want engine isolation
// (the "(b) IPC/subprocess boundary" option the plugin-loading design note
// describes) instead of an in-process call.
type Server struct {
	rpc *grpc.Server
	cap searchcore.SearchCapability
}

// NewServer registers LoadIndex and SearchText handlers over cap.
func NewServer(cap searchcore.SearchCapability) *Server {
	s := &Server{rpc: grpc.NewServer(), cap: cap}
	s.rpc.Register(MethodLoadIndex, s.handleLoadIndex)
	s.rpc.Register(MethodSearchText, s.handleSearchText)
	return s
}

// Serve blocks, accepting connections on addr, until Stop is called.
func (s *Server) Serve(addr string) error {
	return s.rpc.Serve(addr)
}

// Stop gracefully shuts down the underlying RPC server.
func (s *Server) Stop() {
	s.rpc.Stop()
}

func (s *Server) handleLoadIndex(_ context.Context, raw json.RawMessage) (any, error) {
	var req LoadIndexRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return LoadIndexResponse{Code: 1, Message: err.Error()}, nil
	}
	if err := s.cap.LoadIndex(req.DirPath); err != nil {
		return LoadIndexResponse{Code: 1, Message: err.Error()}, nil
	}
	return LoadIndexResponse{Code: 0}, nil
}

func (s *Server) handleSearchText(_ context.Context, raw json.RawMessage) (any, error) {
	var req SearchTextRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	hits, err := s.cap.SearchText(req.Query, req.Top)
	if err != nil {
		return nil, err
	}
	records := make([]HitRecord, len(hits))
	for i, h := range hits {
		records[i] = HitRecord{
			DocID:    h.DocID,
			Score:    h.Score,
			J9:       h.J9,
			C9:       h.C9,
			J13:      h.J13,
			C13:      h.C13,
			CandHits: h.CandHits,
		}
	}
	return SearchTextResponse{Hits: records}, nil
}
