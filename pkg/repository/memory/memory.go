package memory

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/agentic-store/concierge/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = goerr.New("not found")

// Client is an in-memory implementation of interfaces.Repository, used for
// tests and local development.
type Client struct {
	issue  *issueRepository
	memory *memoryRepository
}

var _ interfaces.Repository = (*Client)(nil)

// New creates a new in-memory repository
func New() *Client {
	return &Client{
		issue:  newIssueRepository(),
		memory: newMemoryRepository(),
	}
}

// Issue returns the issue repository
func (x *Client) Issue() interfaces.IssueRepository {
	return x.issue
}

// Memory returns the memory repository
func (x *Client) Memory() interfaces.MemoryRepository {
	return x.memory
}

// Close releases resources (no-op for in-memory)
func (x *Client) Close() error {
	return nil
}
