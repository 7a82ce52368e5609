// Package transport defines the single-message send contract the dispatch
// engine talks through. Any backend able to deliver one personalized message
// to one numeric recipient ID and report the outcome can implement it.
package transport

import "context"

// Message is one outgoing personalized message.
type Message struct {
	// RecipientID is the numeric platform ID of the recipient.
	RecipientID string
	// Text is the fully rendered message body.
	Text string
	// Nonce is a fresh random value letting the remote API deduplicate
	// retried sends (random_id on the VK wire).
	Nonce int64
	// Token is the opaque access token authorizing the call.
	Token string
}

// APIError is an error payload returned by the remote API inside an
// otherwise successful transport exchange.
type APIError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

// Receipt is the outcome of a transport call that completed at the wire
// level. A nil Error means the message was accepted.
type Receipt struct {
	Error *APIError
}

// Client sends exactly one message per call. Implementations must honor
// context cancellation; the caller bounds every call with a fixed timeout.
type Client interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}
