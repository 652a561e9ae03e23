package reader_test

import (
	"reflect"
	"testing"

	"github.com/tracelab/measure"
	"github.com/tracelab/measure/reader"
	"github.com/tracelab/measure/reporter"
)

func TestReadAllMissingKeys(t *testing.T) {
	mem := reporter.Memory()
	if err := mem.Report(0, measure.Metrics{"a": 1}); err != nil {
		t.Fatal(err)
	}

	got, err := reader.ReadAll(mem.Reader(), []string{"a", "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got["a"]) != 1 {
		t.Fatalf("read %d samples for a, want 1", len(got["a"]))
	}
	if samples, ok := got["missing"]; !ok || len(samples) != 0 {
		t.Fatalf("missing key must map to an empty series, got %v", got)
	}
}

func TestEmptyReader(t *testing.T) {
	rd := reader.Empty()
	keys, err := rd.Keys()
	if err != nil || len(keys) != 0 {
		t.Fatalf("Keys() = %v, %v", keys, err)
	}
	samples, err := rd.Read("anything")
	if err != nil || len(samples) != 0 {
		t.Fatalf("Read() = %v, %v", samples, err)
	}
}

func TestPrefixedReaderKeysReadBack(t *testing.T) {
	mem := reporter.Memory()
	prefixed := reporter.WithPrefix(mem, "eval")
	if err := prefixed.Report(0, measure.Metrics{"acc": 0.5}); err != nil {
		t.Fatal(err)
	}
	// A key outside the prefix namespace must not be listed.
	if err := mem.Report(0, measure.Metrics{"train.loss": 1.5}); err != nil {
		t.Fatal(err)
	}

	rd := reader.WithPrefix(mem.Reader(), "eval")
	keys, err := rd.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(keys, []string{"acc"}) {
		t.Fatalf("keys = %v, want [acc]", keys)
	}
	// Every key returned by Keys must read back through the same reader.
	for _, k := range keys {
		samples, err := rd.Read(k)
		if err != nil {
			t.Fatal(err)
		}
		if len(samples) != 1 {
			t.Fatalf("Read(%q) returned %d samples, want 1", k, len(samples))
		}
	}
}

func TestPrefixedReader(t *testing.T) {
	mem := reporter.Memory()
	prefixed := reporter.WithPrefix(mem, "eval")
	if err := prefixed.Report(2, measure.Metrics{"acc": 0.9}); err != nil {
		t.Fatal(err)
	}

	rd := reader.WithPrefix(mem.Reader(), "eval")
	samples, err := rd.Read("acc")
	if err != nil {
		t.Fatal(err)
	}
	want := []measure.Sample{{Step: 2, Value: 0.9}}
	if !reflect.DeepEqual(samples, want) {
		t.Fatalf("samples = %v, want %v", samples, want)
	}
}
