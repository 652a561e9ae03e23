package measure

// A Trigger decides whether a measurement is due at a given step. Triggers
// are pure functions of the step number; the scheduler never remembers
// previous steps.
//
// There are two variants: a fixed interval created with Every, and an
// arbitrary predicate created with When. The zero Trigger is invalid and is
// rejected at registration time.
type Trigger struct {
	interval int
	pred     func(step int) bool
}

// Every returns a trigger that fires when step is a multiple of n.
// n must be positive; the value is validated when the trigger is registered.
func Every(n int) Trigger {
	return Trigger{interval: n}
}

// When returns a trigger that fires when pred returns true for the step.
func When(pred func(step int) bool) Trigger {
	return Trigger{pred: pred}
}

// Due reports whether the trigger fires at the given step.
func (t Trigger) Due(step int) bool {
	if t.pred != nil {
		return t.pred(step)
	}
	return t.interval > 0 && step%t.interval == 0
}

// Validate checks that the trigger is one of the legal variants.
func (t Trigger) Validate() error {
	if t.pred != nil {
		return nil
	}
	if t.interval <= 0 {
		return IntervalError(t.interval)
	}
	return nil
}
