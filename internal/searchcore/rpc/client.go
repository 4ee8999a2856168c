package rpc

import (
	"fmt"

	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/searchcore"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/grpc"
)

// Client satisfies searchcore.SearchCapability by dialing a remote Server,
// letting a host call the engine without linking against it directly.
type Client struct {
	rpc *grpc.Client
}

// Dial connects to a Server listening at addr.
func Dial(addr string) (*Client, error) {
	c, err := grpc.Dial(addr)
	if err != nil {
		return nil, err
	}
	return &Client{rpc: c}, nil
}

// LoadIndex implements searchcore.SearchCapability.
func (c *Client) LoadIndex(dirPath string) error {
	var resp LoadIndexResponse
	if err := c.rpc.Call(MethodLoadIndex, LoadIndexRequest{DirPath: dirPath}, &resp); err != nil {
		return err
	}
	if resp.Code != 0 {
		return fmt.Errorf("load_index failed: %s", resp.Message)
	}
	return nil
}

// SearchText implements searchcore.SearchCapability.
func (c *Client) SearchText(query string, top int) ([]searchcore.Hit, error) {
	var resp SearchTextResponse
	if err := c.rpc.Call(MethodSearchText, SearchTextRequest{Query: query, Top: top}, &resp); err != nil {
		return nil, err
	}
	hits := make([]searchcore.Hit, len(resp.Hits))
	for i, r := range resp.Hits {
		hits[i] = searchcore.Hit{
			DocID:    r.DocID,
			Score:    r.Score,
			J9:       r.J9,
			C9:       r.C9,
			J13:      r.J13,
			C13:      r.C13,
			CandHits: r.CandHits,
		}
	}
	return hits, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.rpc.Close()
}

var _ searchcore.SearchCapability = (*Client)(nil)
