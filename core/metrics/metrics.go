package metrics

import "time"

// SendResult represents one per-recipient send outcome to be recorded.
type SendResult struct {
	RecipientID string
	Delivered   bool
	// Reason carries the failure category ("timeout", "transport", "api",
	// "render") or is empty on success.
	Reason   string
	Latency  time.Duration
	SendTime time.Time
}

// MetricsSink records send results for observability purposes.
type MetricsSink interface {
	RecordSendResult(results []SendResult) error
}

// SendLatency represents the time one transport call took to settle.
type SendLatency struct {
	RecipientID string
	Delivered   bool
	Latency     time.Duration
}

// LatencyRecorder is implemented by sinks able to record send latency.
type LatencyRecorder interface {
	RecordSendLatency(latencies []SendLatency) error
}

// BulkSizeRecorder records the number of contacts in a bulk run snapshot.
type BulkSizeRecorder interface {
	RecordBulkSize(size int) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordSendResult([]SendResult) error   { return nil }
func (NopSink) RecordSendLatency([]SendLatency) error { return nil }
func (NopSink) RecordBulkSize(int) error              { return nil }
