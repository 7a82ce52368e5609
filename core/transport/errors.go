package transport

import "errors"

// ErrTimeout is returned when a send did not complete within the fixed
// per-call timeout.
var ErrTimeout = errors.New("transport: send timed out")
