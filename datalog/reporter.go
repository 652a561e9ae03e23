package datalog

import (
	"sort"

	"github.com/tracelab/measure"
	"github.com/tracelab/measure/reader"
	"github.com/tracelab/measure/reporter"
)

// recordWriter is satisfied by both Writer and JSONWriter.
type recordWriter interface {
	Write(measure.Record) error
	Close() error
}

type logReporter struct {
	w recordWriter
}

// NewReporter returns a reporter that appends each report call as one
// record to the binary log written to w.
func NewReporter(w *Writer) reporter.Reporter {
	return &logReporter{w: w}
}

// NewJSONReporter returns a reporter that appends each report call as one
// record to the JSON array stream written by w.
func NewJSONReporter(w *JSONWriter) reporter.Reporter {
	return &logReporter{w: w}
}

func (r *logReporter) Report(step int, m measure.Metrics) error {
	return r.w.Write(measure.Record{Step: step, Metrics: m})
}

func (r *logReporter) Close() error {
	return r.w.Close()
}

// SeriesReader turns a flat record list into a reader over per-key series.
// Records are assumed to be in step order, as produced by a training loop.
func SeriesReader(records []measure.Record) reader.Reader {
	series := make(map[string][]measure.Sample)
	for _, rec := range records {
		for k, v := range rec.Metrics {
			series[k] = append(series[k], measure.Sample{Step: rec.Step, Value: v})
		}
	}
	return &seriesReader{series: series}
}

type seriesReader struct {
	series map[string][]measure.Sample
}

func (r *seriesReader) Keys() ([]string, error) {
	keys := make([]string, 0, len(r.series))
	for k := range r.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *seriesReader) Read(key string) ([]measure.Sample, error) {
	return r.series[key], nil
}

func (r *seriesReader) Close() error { return nil }
