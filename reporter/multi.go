package reporter

import (
	"fmt"

	"github.com/tracelab/measure"
	"go.uber.org/multierr"
)

type multiReporter struct {
	reporters []Reporter
}

// Multi returns a reporter that fans every call out to all the given
// reporters in argument order. A failing sub-reporter does not stop the
// fan-out: the remaining reporters still receive the call, and all failures
// are combined into the returned error so that one broken backend cannot
// silently suppress metrics to the others.
func Multi(reporters ...Reporter) Reporter {
	if len(reporters) == 1 {
		return reporters[0]
	}
	return &multiReporter{reporters: reporters}
}

func (m *multiReporter) Report(step int, metrics measure.Metrics) (err error) {
	for i, r := range m.reporters {
		if rerr := r.Report(step, metrics); rerr != nil {
			err = multierr.Append(err, fmt.Errorf("reporter %d: %w", i, rerr))
		}
	}
	return err
}

func (m *multiReporter) Close() (err error) {
	for i, r := range m.reporters {
		if cerr := r.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("reporter %d: %w", i, cerr))
		}
	}
	return err
}
