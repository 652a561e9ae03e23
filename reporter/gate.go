package reporter

import "github.com/tracelab/measure"

type filterReporter struct {
	base Reporter
	pred func(step int) bool
}

// EachN wraps a reporter so that only steps that are multiples of n are
// forwarded. All other calls are silently dropped, not buffered or queued.
func EachN(base Reporter, n int) (Reporter, error) {
	if n <= 0 {
		return nil, measure.IntervalError(n)
	}
	return Filter(base, func(step int) bool { return step%n == 0 }), nil
}

// Filter wraps a reporter so that a call is forwarded only when pred returns
// true for its step.
func Filter(base Reporter, pred func(step int) bool) Reporter {
	return &filterReporter{base: base, pred: pred}
}

func (f *filterReporter) Report(step int, m measure.Metrics) error {
	if !f.pred(step) {
		return nil
	}
	return f.base.Report(step, m)
}

func (f *filterReporter) Close() error {
	return f.base.Close()
}
