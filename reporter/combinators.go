package reporter

import "github.com/tracelab/measure"

type prefixReporter struct {
	base   Reporter
	prefix string
}

// WithPrefix wraps a reporter so that every metric key is prefixed with
// prefix followed by a dot before being forwarded. Useful for multiplexing
// several measurement groups into one backend.
func WithPrefix(base Reporter, prefix string) Reporter {
	return &prefixReporter{base: base, prefix: prefix}
}

// AttachPrefix joins a prefix and a key into a single metric key.
func AttachPrefix(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func (p *prefixReporter) Report(step int, m measure.Metrics) error {
	prefixed := make(measure.Metrics, len(m))
	for k, v := range m {
		prefixed[AttachPrefix(p.prefix, k)] = v
	}
	return p.base.Report(step, prefixed)
}

func (p *prefixReporter) Close() error {
	return p.base.Close()
}

type mapValuesReporter struct {
	base Reporter
	fn   func(step int, v measure.Value) measure.Value
}

// MapValues wraps a reporter so that every value is rewritten by fn before
// being forwarded. fn sees the step the value was measured at.
func MapValues(base Reporter, fn func(step int, v measure.Value) measure.Value) Reporter {
	return &mapValuesReporter{base: base, fn: fn}
}

func (r *mapValuesReporter) Report(step int, m measure.Metrics) error {
	mapped := make(measure.Metrics, len(m))
	for k, v := range m {
		mapped[k] = r.fn(step, v)
	}
	return r.base.Report(step, mapped)
}

func (r *mapValuesReporter) Close() error {
	return r.base.Close()
}
