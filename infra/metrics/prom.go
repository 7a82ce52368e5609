// Package metrics provides the concrete metrics sinks: Prometheus and
// InfluxDB, both created through the sink factory in core/metrics.
package metrics

import (
	"strconv"

	coremetrics "github.com/vkblast/vkblast/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records send outcomes in Prometheus metrics.
type PromSink struct {
	sends   *prometheus.CounterVec
	latency *prometheus.HistogramVec
	bulk    prometheus.Gauge
}

// NewPromSink registers send metrics on the default Prometheus registerer.
// The /metrics server is started separately with StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	sends := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "message_sends_total",
		Help: "Total number of message send attempts",
	}, []string{"delivered", "reason"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "message_send_latency_seconds",
		Help:    "Time between send and settled outcome",
		Buckets: prometheus.DefBuckets,
	}, []string{"delivered"})
	bulk := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bulk_run_contacts_total",
		Help: "Number of contacts in the last bulk run snapshot",
	})

	if err := reg.Register(sends); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			sends = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(bulk); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			bulk = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{sends: sends, latency: latency, bulk: bulk}, nil
}

// RecordSendResult increments the counter for each settled send.
func (s *PromSink) RecordSendResult(res []coremetrics.SendResult) error {
	for _, r := range res {
		s.sends.WithLabelValues(strconv.FormatBool(r.Delivered), r.Reason).Inc()
	}
	return nil
}

// RecordSendLatency feeds the latency histogram.
func (s *PromSink) RecordSendLatency(recs []coremetrics.SendLatency) error {
	for _, r := range recs {
		s.latency.WithLabelValues(strconv.FormatBool(r.Delivered)).Observe(r.Latency.Seconds())
	}
	return nil
}

// RecordBulkSize sets the gauge to the last bulk snapshot size.
func (s *PromSink) RecordBulkSize(size int) error {
	if s.bulk != nil {
		s.bulk.Set(float64(size))
	}
	return nil
}
