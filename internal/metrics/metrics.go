// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the data-mapping layer.
//
// The package is intentionally minimal:
//
//   - It exposes a narrow interface (Backend) focused on counters and
//     duration observations.
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so instrumentation is always safe to call even when
//     no real backend is configured.
//   - Concrete metric systems live in subpackages (prompush, datadog);
//     the rest of the module depends only on this interface.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a value in a latency/duration style metric.
	ObserveDuration(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it
	// (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)      {}
func (nopBackend) ObserveDuration(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                              { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing
// backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordOp is the common pattern for every database operation: one
// counter increment plus a duration observation, labelled by operation,
// table and success/failure.
func RecordOp(op, table string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"op":     op,
		"table":  table,
		"status": status,
	}

	backend.IncCounter("sprattus_ops_total", 1, lbls)
	backend.ObserveDuration("sprattus_op_duration_seconds", d.Seconds(), lbls)
}

// RecordRows counts rows flowing through batch operations, labelled by
// operation kind (created, updated, deleted, queried).
func RecordRows(op string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("sprattus_rows_total", float64(delta), Labels{"op": op})
}
