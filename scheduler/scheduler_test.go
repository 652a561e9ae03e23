package scheduler_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/tracelab/measure"
	"github.com/tracelab/measure/logging"
	"github.com/tracelab/measure/scheduler"
)

func stateValue(key string) scheduler.Func {
	return func(state measure.State) (measure.Value, error) {
		v, ok := state[key]
		if !ok {
			return nil, errors.New("missing key " + key)
		}
		return v, nil
	}
}

func newScheduler(t *testing.T, static measure.State) *scheduler.Scheduler {
	t.Helper()
	return scheduler.New(static, scheduler.WithLogger(logging.Nop()))
}

func TestRegisterDuplicateFails(t *testing.T) {
	s := newScheduler(t, nil)
	if err := s.RegisterEvery("acc", 2, stateValue("acc")); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	err := s.RegisterEvery("acc", 5, stateValue("acc"))
	if !errors.Is(err, measure.ErrDuplicateMeasurement) {
		t.Fatalf("duplicate registration: got %v, want ErrDuplicateMeasurement", err)
	}
}

func TestRegisterInvalidInterval(t *testing.T) {
	s := newScheduler(t, nil)
	for _, n := range []int{0, -2} {
		err := s.RegisterEvery("m", n, stateValue("m"))
		if !errors.Is(err, measure.ErrInvalidInterval) {
			t.Errorf("interval %d: got %v, want ErrInvalidInterval", n, err)
		}
	}
}

func TestGetUnknown(t *testing.T) {
	s := newScheduler(t, nil)
	_, err := s.Get("nope")
	if !errors.Is(err, measure.ErrUnknownMeasurement) {
		t.Fatalf("got %v, want ErrUnknownMeasurement", err)
	}
}

func TestNamesInRegistrationOrder(t *testing.T) {
	s := newScheduler(t, nil)
	for _, name := range []string{"c", "a", "b"} {
		if err := s.RegisterEvery(name, 1, stateValue(name)); err != nil {
			t.Fatal(err)
		}
	}
	want := []string{"c", "a", "b"}
	if got := s.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i, spec := range s.Specs() {
		if spec.Name != want[i] {
			t.Fatalf("Specs()[%d].Name = %q, want %q", i, spec.Name, want[i])
		}
	}
}

// Scenario from the interval contract: a measurement with interval 2 runs at
// steps 0 and 2 but not at step 1.
func TestMeasureInterval(t *testing.T) {
	s := newScheduler(t, measure.State{})
	if err := s.RegisterEvery("acc", 2, stateValue("acc")); err != nil {
		t.Fatal(err)
	}

	steps := []struct {
		step  int
		acc   float64
		empty bool
	}{
		{0, 0.1, false},
		{1, 0.2, true},
		{2, 0.3, false},
	}
	for _, tc := range steps {
		result, err := s.Measure(tc.step, measure.State{"acc": tc.acc})
		if err != nil {
			t.Fatalf("Measure(%d) failed: %v", tc.step, err)
		}
		if result.Empty() != tc.empty {
			t.Fatalf("Measure(%d).Empty() = %v, want %v", tc.step, result.Empty(), tc.empty)
		}
		if !tc.empty && result.Values["acc"] != tc.acc {
			t.Fatalf("Measure(%d) = %v, want acc=%v", tc.step, result.Values, tc.acc)
		}
	}
}

func TestMeasureUsesMergedState(t *testing.T) {
	s := newScheduler(t, measure.State{"base": 10.0, "lr": 0.1})
	if err := s.RegisterEvery("lr", 1, stateValue("lr")); err != nil {
		t.Fatal(err)
	}
	if err := s.RegisterEvery("base", 1, stateValue("base")); err != nil {
		t.Fatal(err)
	}

	result, err := s.Measure(0, measure.State{"lr": 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if result.Values["lr"] != 0.5 {
		t.Errorf("dynamic state did not take precedence: %v", result.Values)
	}
	if result.Values["base"] != 10.0 {
		t.Errorf("static state not visible: %v", result.Values)
	}
}

func TestMeasureIdempotent(t *testing.T) {
	s := newScheduler(t, measure.State{"w": 2.0})
	if err := s.RegisterEvery("w", 1, stateValue("w")); err != nil {
		t.Fatal(err)
	}

	dynamic := measure.State{"b": 1.0}
	first, err := s.Measure(4, dynamic)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Measure(4, dynamic)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Values, second.Values) {
		t.Fatalf("repeated Measure differs: %v vs %v", first.Values, second.Values)
	}
}

func TestMeasureOverride(t *testing.T) {
	s := newScheduler(t, nil)
	if err := s.RegisterEvery("m1", 100, stateValue("x")); err != nil {
		t.Fatal(err)
	}
	if err := s.RegisterEvery("m2", 1, stateValue("x")); err != nil {
		t.Fatal(err)
	}

	// m1's interval has not elapsed at step 3 and m2 is due, yet only m1
	// must be computed.
	result, err := s.Measure(3, measure.State{"x": 1.5}, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Values) != 1 || result.Values["m1"] != 1.5 {
		t.Fatalf("override computed %v, want exactly m1", result.Values)
	}
}

func TestMeasureOverrideUnknown(t *testing.T) {
	computed := false
	s := newScheduler(t, nil)
	err := s.RegisterEvery("m1", 1, func(measure.State) (measure.Value, error) {
		computed = true
		return 1, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.Measure(0, nil, "m1", "nope")
	if !errors.Is(err, measure.ErrUnknownMeasurement) {
		t.Fatalf("got %v, want ErrUnknownMeasurement", err)
	}
	if computed {
		t.Fatal("a measurement ran before override validation failed")
	}
}

func TestMeasureFailureIsolation(t *testing.T) {
	s := newScheduler(t, nil)
	if err := s.RegisterEvery("bad", 1, stateValue("missing")); err != nil {
		t.Fatal(err)
	}
	if err := s.RegisterEvery("panics", 1, func(measure.State) (measure.Value, error) {
		panic("boom")
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.RegisterEvery("good", 1, stateValue("x")); err != nil {
		t.Fatal(err)
	}

	result, err := s.Measure(0, measure.State{"x": 7})
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	if result.Values["good"] != 7 {
		t.Errorf("healthy measurement did not run: %v", result.Values)
	}
	if len(result.Values) != 1 {
		t.Errorf("failed measurements leaked into values: %v", result.Values)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(result.Errors), result.Errors)
	}
	var cerr *measure.ComputationError
	if !errors.As(result.Errors[0], &cerr) {
		t.Fatalf("error is not a ComputationError: %v", result.Errors[0])
	}
}

// Scenario from the scheduling contract: measurements "a" (interval 1) and
// "b" (interval 5) over steps 0..5 produce six values for "a" and two for
// "b" (steps 0 and 5).
func TestMeasureTwoIntervals(t *testing.T) {
	s := newScheduler(t, nil)
	if err := s.RegisterEvery("a", 1, stateValue("x")); err != nil {
		t.Fatal(err)
	}
	if err := s.RegisterEvery("b", 5, stateValue("x")); err != nil {
		t.Fatal(err)
	}

	counts := map[string]int{}
	for step := 0; step <= 5; step++ {
		result, err := s.Measure(step, measure.State{"x": step})
		if err != nil {
			t.Fatal(err)
		}
		for name := range result.Values {
			counts[name]++
		}
	}
	if counts["a"] != 6 || counts["b"] != 2 {
		t.Fatalf("counts = %v, want a:6 b:2", counts)
	}
}

func TestStaticStateNotMutatedByCaller(t *testing.T) {
	static := measure.State{"x": 1}
	s := newScheduler(t, static)
	if err := s.RegisterEvery("x", 1, stateValue("x")); err != nil {
		t.Fatal(err)
	}

	// Mutating the caller's map after construction must not affect the
	// scheduler's copy.
	static["x"] = 99
	result, err := s.Measure(0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Values["x"] != 1 {
		t.Fatalf("scheduler does not own its static state: %v", result.Values)
	}
}
