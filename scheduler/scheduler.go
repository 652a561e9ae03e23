// Package scheduler decides which registered measurements run at each
// training step, runs them against the merged state, and collects their
// results for reporting.
package scheduler

import (
	"fmt"

	"github.com/tracelab/measure"
	"github.com/tracelab/measure/logging"
)

// Func computes one metric value from the merged state.
type Func func(state measure.State) (measure.Value, error)

// Spec describes one registered measurement.
type Spec struct {
	Name    string
	Trigger measure.Trigger
	Fn      Func
}

// Scheduler evaluates which measurements are due at each step and computes
// them. Apart from the registry contents, it keeps no state between calls:
// triggers are pure functions of the step number, so repeated or
// non-monotonic steps are well-defined.
type Scheduler struct {
	static measure.State
	specs  map[string]Spec
	order  []string
	logger logging.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used to record measurement failures.
func WithLogger(logger logging.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// New returns a scheduler whose measurement functions see the given static
// state on every call. The state is copied; it is never mutated afterwards.
func New(static measure.State, opts ...Option) *Scheduler {
	s := &Scheduler{
		static: static.Clone(),
		specs:  make(map[string]Spec),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.New("scheduler")
	}
	return s
}

// Register adds a measurement. The name must be unused and the trigger must
// be valid; registration fails rather than overwriting an existing
// measurement.
func (s *Scheduler) Register(name string, trigger measure.Trigger, fn Func) error {
	if err := trigger.Validate(); err != nil {
		return fmt.Errorf("measurement %q: %w", name, err)
	}
	if fn == nil {
		return fmt.Errorf("measurement %q: nil function", name)
	}
	if _, ok := s.specs[name]; ok {
		return measure.DuplicateError(name)
	}
	s.specs[name] = Spec{Name: name, Trigger: trigger, Fn: fn}
	s.order = append(s.order, name)
	return nil
}

// RegisterEvery adds a measurement due every n steps.
func (s *Scheduler) RegisterEvery(name string, n int, fn Func) error {
	return s.Register(name, measure.Every(n), fn)
}

// Get returns the spec registered under name.
func (s *Scheduler) Get(name string) (Spec, error) {
	spec, ok := s.specs[name]
	if !ok {
		return Spec{}, measure.UnknownError(name)
	}
	return spec, nil
}

// Names returns the registered measurement names in registration order.
func (s *Scheduler) Names() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Specs returns all registered specs in registration order.
func (s *Scheduler) Specs() []Spec {
	specs := make([]Spec, len(s.order))
	for i, name := range s.order {
		specs[i] = s.specs[name]
	}
	return specs
}

// Due returns the names of the measurements whose trigger fires at the
// given step, in registration order.
func (s *Scheduler) Due(step int) []string {
	var due []string
	for _, name := range s.order {
		if s.specs[name].Trigger.Due(step) {
			due = append(due, name)
		}
	}
	return due
}

// Measure runs the measurements selected for the given step against the
// merged state and returns their results.
//
// With no override, every measurement whose trigger fires at step runs;
// the rest are skipped entirely. With an override, exactly the named
// measurements run, regardless of their triggers. All override names are
// validated before anything is computed: an unknown name fails the whole
// call with no partial results.
//
// A measurement function that returns an error or panics does not abort the
// step: the failure is wrapped in a ComputationError, recorded on
// Result.Errors and excluded from Result.Values, and the remaining selected
// measurements still run.
func (s *Scheduler) Measure(step int, dynamic measure.State, override ...string) (Result, error) {
	var selected []string
	if len(override) == 0 {
		selected = s.Due(step)
	} else {
		for _, name := range override {
			if _, ok := s.specs[name]; !ok {
				return Result{}, measure.UnknownError(name)
			}
		}
		selected = s.inOrder(override)
	}

	result := Result{Step: step}
	if len(selected) == 0 {
		return result, nil
	}

	state := measure.MergeState(s.static, dynamic)
	result.Values = make(measure.Metrics, len(selected))
	for _, name := range selected {
		value, err := s.compute(s.specs[name], state)
		if err != nil {
			cerr := &measure.ComputationError{Name: name, Err: err}
			s.logger.Errorf("step %d: %v", step, cerr)
			result.Errors = append(result.Errors, cerr)
			continue
		}
		result.Values[name] = value
	}
	return result, nil
}

func (s *Scheduler) compute(spec Spec, state measure.State) (value measure.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return spec.Fn(state)
}

// inOrder sorts the override names into registration order so that results
// are computed deterministically.
func (s *Scheduler) inOrder(names []string) []string {
	want := make(map[string]bool, len(names))
	for _, name := range names {
		want[name] = true
	}
	ordered := make([]string, 0, len(want))
	for _, name := range s.order {
		if want[name] {
			ordered = append(ordered, name)
		}
	}
	return ordered
}

// Result holds the metrics computed at one step, along with the errors of
// any measurements that failed.
type Result struct {
	Step   int
	Values measure.Metrics
	Errors []error
}

// Empty reports whether no measurement produced a value. Callers should
// check this before reporting, since reporting an empty record is a
// pointless call on backends with per-report overhead.
func (r Result) Empty() bool {
	return len(r.Values) == 0
}
