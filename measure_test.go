package measure_test

import (
	"errors"
	"testing"

	"github.com/tracelab/measure"
)

func TestMergeStateDisjoint(t *testing.T) {
	static := measure.State{"data": "xs"}
	dynamic := measure.State{"params": 42}

	merged := measure.MergeState(static, dynamic)

	if len(merged) != 2 {
		t.Fatalf("merged state has %d entries, want 2", len(merged))
	}
	if merged["data"] != "xs" || merged["params"] != 42 {
		t.Fatalf("merged state missing entries: %v", merged)
	}
}

func TestMergeStateDynamicWins(t *testing.T) {
	static := measure.State{"lr": 0.1, "data": "xs"}
	dynamic := measure.State{"lr": 0.01}

	merged := measure.MergeState(static, dynamic)

	if merged["lr"] != 0.01 {
		t.Fatalf("merged[lr] = %v, want dynamic value 0.01", merged["lr"])
	}
	if merged["data"] != "xs" {
		t.Fatalf("merged[data] = %v, want static value to pass through", merged["data"])
	}
}

func TestMergeStateDoesNotMutateInputs(t *testing.T) {
	static := measure.State{"k": 1}
	dynamic := measure.State{"k": 2}

	merged := measure.MergeState(static, dynamic)
	merged["k"] = 3
	merged["new"] = 4

	if static["k"] != 1 {
		t.Fatalf("static state was mutated: %v", static)
	}
	if dynamic["k"] != 2 || len(dynamic) != 1 {
		t.Fatalf("dynamic state was mutated: %v", dynamic)
	}
}

func TestEveryTrigger(t *testing.T) {
	tr := measure.Every(3)
	for step := 0; step < 12; step++ {
		want := step%3 == 0
		if got := tr.Due(step); got != want {
			t.Errorf("Every(3).Due(%d) = %v, want %v", step, got, want)
		}
	}
}

func TestWhenTrigger(t *testing.T) {
	tr := measure.When(func(step int) bool { return step > 5 })
	if tr.Due(5) {
		t.Error("trigger fired at step 5")
	}
	if !tr.Due(6) {
		t.Error("trigger did not fire at step 6")
	}
}

func TestTriggerValidate(t *testing.T) {
	if err := measure.Every(1).Validate(); err != nil {
		t.Errorf("Every(1) is invalid: %v", err)
	}
	if err := measure.When(func(int) bool { return true }).Validate(); err != nil {
		t.Errorf("When trigger is invalid: %v", err)
	}
	for _, n := range []int{0, -1} {
		err := measure.Every(n).Validate()
		if !errors.Is(err, measure.ErrInvalidInterval) {
			t.Errorf("Every(%d).Validate() = %v, want ErrInvalidInterval", n, err)
		}
	}
}

func TestComputationErrorUnwrap(t *testing.T) {
	inner := errors.New("missing key")
	err := &measure.ComputationError{Name: "acc", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("ComputationError does not unwrap to the inner error")
	}
}
