package datalog_test

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/tracelab/measure"
	"github.com/tracelab/measure/datalog"
)

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer // in-memory log

	w := datalog.NewWriter(&buf)
	records := []measure.Record{
		{Step: 0, Metrics: measure.Metrics{"loss": 2.5, "acc": 0.1}},
		{Step: 10, Metrics: measure.Metrics{"loss": 1.25}},
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	got, err := datalog.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !reflect.DeepEqual(got, records) {
		t.Fatalf("round trip mismatch:\ngot  %v\nwant %v", got, records)
	}
}

func TestWriteNonSerializableValue(t *testing.T) {
	var buf bytes.Buffer
	w := datalog.NewWriter(&buf)

	err := w.Write(measure.Record{Step: 0, Metrics: measure.Metrics{"ch": make(chan int)}})
	if err == nil {
		t.Fatal("expected an error for a non-serializable value")
	}
}

func TestJSONStream(t *testing.T) {
	var buf bytes.Buffer

	w, err := datalog.NewJSONWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	sink := datalog.NewJSONReporter(w)
	if err := sink.Report(0, measure.Metrics{"acc": 0.5}); err != nil {
		t.Fatal(err)
	}
	if err := sink.Report(5, measure.Metrics{"acc": 0.75}); err != nil {
		t.Fatal(err)
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "[") || !strings.HasSuffix(out, "]") {
		t.Fatalf("output is not a JSON array: %q", out)
	}

	records, err := datalog.ReadJSON(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if len(records) != 2 || records[1].Step != 5 {
		t.Fatalf("unexpected records: %v", records)
	}
	if records[1].Metrics["acc"] != 0.75 {
		t.Fatalf("unexpected metrics: %v", records[1].Metrics)
	}
}

type closableBuffer struct {
	bytes.Buffer
	closed bool
}

func (b *closableBuffer) Close() error {
	b.closed = true
	return nil
}

func TestJSONWriterClosesDest(t *testing.T) {
	var buf closableBuffer

	w, err := datalog.NewJSONWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(measure.Record{Step: 0, Metrics: measure.Metrics{"acc": 0.5}}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if !buf.closed {
		t.Fatal("Close did not close the dest writer")
	}
	if !strings.HasSuffix(buf.String(), "]") {
		t.Fatalf("array not terminated before close: %q", buf.String())
	}
}

func TestSeriesReader(t *testing.T) {
	records := []measure.Record{
		{Step: 0, Metrics: measure.Metrics{"a": 1.0, "b": 2.0}},
		{Step: 5, Metrics: measure.Metrics{"a": 3.0}},
	}

	rd := datalog.SeriesReader(records)
	keys, err := rd.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(keys, []string{"a", "b"}) {
		t.Fatalf("keys = %v", keys)
	}

	samples, err := rd.Read("a")
	if err != nil {
		t.Fatal(err)
	}
	want := []measure.Sample{{Step: 0, Value: 1.0}, {Step: 5, Value: 3.0}}
	if !reflect.DeepEqual(samples, want) {
		t.Fatalf("samples = %v, want %v", samples, want)
	}
}
