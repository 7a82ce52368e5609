package events

import (
	"time"

	"github.com/vkblast/vkblast/core/model"
)

// StateEvent is published on every contact state transition. UI layers use
// it to refresh row affordances without polling the session.
type StateEvent struct {
	RecipientID string
	Label       string
	From        model.State
	To          model.State
	Reason      string
}

// SendEvent is published after each transport call settles.
type SendEvent struct {
	RecipientID string
	Nonce       int64
	Delivered   bool
	Err         error
	Latency     time.Duration
}

// BulkEvent is published when a bulk run starts ("start") and when it
// completes ("done").
type BulkEvent struct {
	Action  string
	Total   int
	Sent    int
	Failed  int
	Skipped int
}
