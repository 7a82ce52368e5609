package transport

import (
	"context"
	"fmt"
	"sync"
)

// MockClient records sent messages and simulates outcomes. Used in tests.
type MockClient struct {
	mu sync.Mutex

	// Sent holds every accepted message in call order.
	Sent []Message
	// FailIDs maps recipient IDs to a transport-level failure.
	FailIDs map[string]bool
	// APIErrors maps recipient IDs to an API-level error payload.
	APIErrors map[string]*APIError
	// Block, when non-nil, is closed by the test to release Send calls.
	Block chan struct{}
}

// NewMockClient creates an empty MockClient.
func NewMockClient() *MockClient {
	return &MockClient{
		FailIDs:   make(map[string]bool),
		APIErrors: make(map[string]*APIError),
	}
}

// Send records the message or returns the configured failure.
func (m *MockClient) Send(ctx context.Context, msg Message) (Receipt, error) {
	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[msg.RecipientID] {
		return Receipt{}, fmt.Errorf("send failed")
	}
	if apiErr := m.APIErrors[msg.RecipientID]; apiErr != nil {
		return Receipt{Error: apiErr}, nil
	}
	m.Sent = append(m.Sent, msg)
	return Receipt{}, nil
}

// SentIDs returns the recipient IDs of accepted messages in call order.
func (m *MockClient) SentIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, len(m.Sent))
	for i, msg := range m.Sent {
		ids[i] = msg.RecipientID
	}
	return ids
}
