// Package sendlog persists a per-send audit trail. Records are write-only
// from the engine's point of view; they exist for operators and the report
// API, never for replaying a session.
package sendlog

import (
	"context"
	"time"
)

// Record captures the outcome of one send attempt.
type Record struct {
	Timestamp   time.Time `json:"timestamp"`
	RecipientID string    `json:"recipient_id"`
	Label       string    `json:"label"`
	Nonce       int64     `json:"nonce"`
	Delivered   bool      `json:"delivered"`
	Reason      string    `json:"reason,omitempty"`
	LatencyMS   int64     `json:"latency_ms"`
}

// Query defines filters for retrieving records.
type Query struct {
	Start       time.Time
	End         time.Time
	RecipientID string
	OnlyFailed  bool
}

// Matches reports whether the record passes the query filters.
func (q Query) Matches(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.RecipientID != "" && r.RecipientID != q.RecipientID {
		return false
	}
	if q.OnlyFailed && r.Delivered {
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
