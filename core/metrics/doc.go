// Package metrics defines the sink interfaces the dispatch engine records
// send outcomes through. Implementations (Prometheus, InfluxDB) live under
// infra/metrics and register themselves with the factory; multiple
// configured sinks are combined into a MultiSink automatically.
package metrics
