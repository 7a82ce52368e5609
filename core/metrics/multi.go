package metrics

// MultiSink fans send results out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSendResult forwards the results to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordSendResult(res []SendResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordSendResult(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordSendLatency forwards latency records to sinks that support them.
func (m *MultiSink) RecordSendLatency(lat []SendLatency) error {
	for _, s := range m.Sinks {
		if lr, ok := s.(LatencyRecorder); ok {
			if err := lr.RecordSendLatency(lat); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordBulkSize forwards the snapshot size to sinks that support it.
func (m *MultiSink) RecordBulkSize(size int) error {
	for _, s := range m.Sinks {
		if br, ok := s.(BulkSizeRecorder); ok {
			if err := br.RecordBulkSize(size); err != nil {
				return err
			}
		}
	}
	return nil
}
