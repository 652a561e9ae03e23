package measure

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateMeasurement is returned when registering a measurement
	// under a name that is already taken. Registration never overwrites an
	// existing measurement.
	ErrDuplicateMeasurement = errors.New("measurement already registered")

	// ErrUnknownMeasurement is returned when an override list or a lookup
	// names a measurement that was never registered.
	ErrUnknownMeasurement = errors.New("unknown measurement")

	// ErrInvalidInterval is returned when a non-positive interval is given
	// to an interval trigger or a step-gated reporter.
	ErrInvalidInterval = errors.New("interval must be positive")
)

// DuplicateError wraps ErrDuplicateMeasurement with the offending name.
func DuplicateError(name string) error {
	return fmt.Errorf("%w: %q", ErrDuplicateMeasurement, name)
}

// UnknownError wraps ErrUnknownMeasurement with the offending name.
func UnknownError(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownMeasurement, name)
}

// IntervalError wraps ErrInvalidInterval with the offending value.
func IntervalError(n int) error {
	return fmt.Errorf("%w: got %d", ErrInvalidInterval, n)
}

// ComputationError wraps an error raised while computing a single
// measurement. It is recorded on the step's result and never aborts the
// other measurements due at the same step.
type ComputationError struct {
	Name string
	Err  error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("measurement %q failed: %v", e.Name, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }
