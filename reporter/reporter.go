// Package reporter defines the sink contract for step-indexed metrics and
// the combinators that compose sinks: fan-out to multiple backends,
// step-gated throttling, buffering, and key/value rewriting.
//
// All reporters are synchronous and single-threaded; calls block until the
// underlying backend has accepted the record. Sharing a reporter across
// goroutines requires external synchronization.
package reporter

import "github.com/tracelab/measure"

// Reporter is the contract every backend and combinator satisfies: it
// accepts a step number and a mapping of metric name to value, and persists
// it somewhere. Close releases any buffered state; after Close, behavior of
// further Report calls is undefined.
type Reporter interface {
	Report(step int, m measure.Metrics) error
	Close() error
}

// ReportValue reports a single key/value pair through r.
func ReportValue(r Reporter, step int, key string, value measure.Value) error {
	return r.Report(step, measure.Metrics{key: value})
}

type nopReporter struct{}

func (nopReporter) Report(int, measure.Metrics) error { return nil }
func (nopReporter) Close() error                      { return nil }

// Nop returns a reporter that discards everything. Useful for tests and for
// disabling reporting without changing the wiring.
func Nop() Reporter {
	return nopReporter{}
}

// Func is a reporter that defers to the supplied functions. Either may be
// nil, in which case the corresponding call is a no-op.
type Func struct {
	ReportFn func(step int, m measure.Metrics) error
	CloseFn  func() error
}

// Report calls ReportFn if set.
func (f Func) Report(step int, m measure.Metrics) error {
	if f.ReportFn == nil {
		return nil
	}
	return f.ReportFn(step, m)
}

// Close calls CloseFn if set.
func (f Func) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}
