package reporter

import (
	"errors"

	"github.com/tracelab/measure"
	"github.com/tracelab/measure/logging"
)

// ErrRunClosed is returned when reporting through a run that was already
// closed.
var ErrRunClosed = errors.New("run is closed")

// Run is an explicitly scoped handle around a reporter for the duration of
// one experiment. It replaces any notion of a process-global "active
// reporter": the handle is a value threaded through the training loop, and
// closing it is the single point that guarantees buffered records are
// flushed.
//
//	run := reporter.StartRun(sink)
//	defer run.Close()
type Run struct {
	sink   Reporter
	logger logging.Logger
	closed bool
}

// RunOption configures a Run.
type RunOption func(*Run)

// WithRunLogger sets the logger used to record sink failures.
func WithRunLogger(logger logging.Logger) RunOption {
	return func(r *Run) { r.logger = logger }
}

// StartRun returns a run handle that reports through sink.
func StartRun(sink Reporter, opts ...RunOption) *Run {
	r := &Run{sink: sink}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.New("run")
	}
	return r
}

// Report forwards the record to the sink. Sink failures are logged and
// returned; they do not invalidate the run.
func (r *Run) Report(step int, m measure.Metrics) error {
	if r.closed {
		return ErrRunClosed
	}
	if len(m) == 0 {
		return nil
	}
	if err := r.sink.Report(step, m); err != nil {
		r.logger.Errorf("step %d: report failed: %v", step, err)
		return err
	}
	return nil
}

// ReportValue reports a single key/value pair.
func (r *Run) ReportValue(step int, key string, value measure.Value) error {
	return r.Report(step, measure.Metrics{key: value})
}

// Close flushes and closes the sink. Only the first call has an effect.
func (r *Run) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.sink.Close()
}
