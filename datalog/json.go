package datalog

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tracelab/measure"
)

// JSONWriter writes report records as a single JSON array, one object per
// record. The array is opened on construction and must be terminated by
// calling Close, so writers should be used with a deferred Close.
type JSONWriter struct {
	wr    io.Writer
	first bool
}

type jsonRecord struct {
	Step    int             `json:"step"`
	Metrics measure.Metrics `json:"metrics"`
}

// NewJSONWriter returns a writer that streams records to wr as a JSON array.
func NewJSONWriter(wr io.Writer) (*JSONWriter, error) {
	if _, err := io.WriteString(wr, "[\n"); err != nil {
		return nil, fmt.Errorf("failed to write start of JSON array: %w", err)
	}
	return &JSONWriter{wr: wr, first: true}, nil
}

// Write appends one record to the array.
func (w *JSONWriter) Write(rec measure.Record) error {
	if w.first {
		w.first = false
	} else {
		// comma and newline separate the records
		if _, err := io.WriteString(w.wr, ",\n"); err != nil {
			return err
		}
	}

	b, err := json.Marshal(jsonRecord{Step: rec.Step, Metrics: rec.Metrics})
	if err != nil {
		return fmt.Errorf("failed to marshal record to JSON: %w", err)
	}
	_, err = w.wr.Write(b)
	return err
}

// Close terminates the JSON array. If the dest writer implements io.Closer,
// it will be closed.
func (w *JSONWriter) Close() error {
	if _, err := io.WriteString(w.wr, "\n]"); err != nil {
		return err
	}
	if closer, ok := w.wr.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// ReadJSON parses a JSON array written by JSONWriter back into records.
func ReadJSON(rd io.Reader) ([]measure.Record, error) {
	decoder := json.NewDecoder(rd)

	t, err := decoder.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read first JSON token: %w", err)
	}
	if d, ok := t.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("expected first JSON token to be the start of an array")
	}

	var records []measure.Record
	for decoder.More() {
		var jr jsonRecord
		if err := decoder.Decode(&jr); err != nil {
			return records, err
		}
		records = append(records, measure.Record{Step: jr.Step, Metrics: jr.Metrics})
	}

	t, err = decoder.Token()
	if err != nil {
		return records, fmt.Errorf("failed to read last JSON token: %w", err)
	}
	if d, ok := t.(json.Delim); !ok || d != ']' {
		return records, fmt.Errorf("expected last JSON token to be the end of an array")
	}
	return records, nil
}
