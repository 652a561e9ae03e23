// Package measure provides the core types for scheduling measurements in a
// training loop and reporting the resulting metrics to pluggable sinks.
package measure

// Value is a single reportable metric value. Backends expect numeric
// scalars, strings, or array-like numeric objects; any conversion beyond
// that is the backend adapter's concern.
type Value = any

// Metrics maps metric names to the values measured at one step.
type Metrics map[string]Value

// Record is the unit of reporting: the metrics measured at a single step.
type Record struct {
	Step    int
	Metrics Metrics
}

// Sample is one point of a per-key metric series, as returned by readable
// backends.
type Sample struct {
	Step  int
	Value Value
}

// State holds the named inputs that measurement functions compute over.
type State map[string]Value

// MergeState combines static and dynamic state into the state visible to
// measurement functions. Entries from dynamic take precedence on key
// collision. Neither input is mutated; the result is a fresh map built on
// every call.
func MergeState(static, dynamic State) State {
	merged := make(State, len(static)+len(dynamic))
	for k, v := range static {
		merged[k] = v
	}
	for k, v := range dynamic {
		merged[k] = v
	}
	return merged
}

// Clone returns a copy of the state. The values themselves are not copied.
func (s State) Clone() State {
	c := make(State, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Clone returns a copy of the metrics map.
func (m Metrics) Clone() Metrics {
	c := make(Metrics, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
