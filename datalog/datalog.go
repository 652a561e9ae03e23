// Package datalog persists report records to an append-only log stream.
//
// Two encodings are provided: a length-delimited binary protobuf log for
// compact storage, and a JSON array stream for logs that should stay
// readable by other tools (plotting, jq). Records are encoded as protobuf
// Struct messages, so no generated code is required.
package datalog

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tracelab/measure"
)

const maxMessageSize = 1 << 31 // 2 GiB

// Writer writes report records to a length-delimited binary log.
type Writer struct {
	dest      io.Writer
	marshaler proto.MarshalOptions
}

// NewWriter returns a new Writer that appends records to dest.
// The dest is closed by Writer.Close if it implements io.Closer.
func NewWriter(dest io.Writer) *Writer {
	return &Writer{dest: dest}
}

// Write appends one record to the log.
func (w *Writer) Write(rec measure.Record) error {
	msg, err := toStruct(rec)
	if err != nil {
		return err
	}

	buf, err := w.marshaler.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	var msgLen [4]byte
	binary.LittleEndian.PutUint32(msgLen[:], uint32(len(buf)))

	if _, err := w.dest.Write(msgLen[:]); err != nil {
		return fmt.Errorf("failed to write record length to log: %w", err)
	}
	if _, err := w.dest.Write(buf); err != nil {
		return fmt.Errorf("failed to write record to log: %w", err)
	}
	return nil
}

// Close closes the Writer. If the dest writer implements io.Closer, it will
// be closed.
func (w *Writer) Close() error {
	if closer, ok := w.dest.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Reader reads report records back from a length-delimited binary log.
type Reader struct {
	src         io.Reader
	unmarshaler proto.UnmarshalOptions
}

// NewReader returns a new Reader that reads the log from src.
// The src is closed by Reader.Close if it implements io.Closer.
func NewReader(src io.Reader) *Reader {
	return &Reader{src: src}
}

// Read reads the next record from the log. It returns io.EOF at the end of
// the log.
func (r *Reader) Read() (measure.Record, error) {
	var msgLenBuf [4]byte
	if _, err := io.ReadFull(r.src, msgLenBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return measure.Record{}, io.EOF
		}
		return measure.Record{}, fmt.Errorf("failed to read record length: %w", err)
	}

	msgLen := binary.LittleEndian.Uint32(msgLenBuf[:])
	if msgLen > maxMessageSize {
		return measure.Record{}, errors.New("record length is greater than 2 GiB")
	}

	buf := make([]byte, msgLen)
	if _, err := io.ReadFull(r.src, buf); err != nil {
		return measure.Record{}, fmt.Errorf("failed to read record: %w", err)
	}

	msg := &structpb.Struct{}
	if err := r.unmarshaler.Unmarshal(buf, msg); err != nil {
		return measure.Record{}, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return fromStruct(msg)
}

// ReadAll reads records until the end of the log.
func (r *Reader) ReadAll() ([]measure.Record, error) {
	var records []measure.Record
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

// Close closes the Reader. If the src reader implements io.Closer, it will
// be closed.
func (r *Reader) Close() error {
	if closer, ok := r.src.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func toStruct(rec measure.Record) (*structpb.Struct, error) {
	metrics := make(map[string]any, len(rec.Metrics))
	for k, v := range rec.Metrics {
		metrics[k] = v
	}
	msg, err := structpb.NewStruct(map[string]any{
		"step":    rec.Step,
		"metrics": metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("record is not serializable: %w", err)
	}
	return msg, nil
}

func fromStruct(msg *structpb.Struct) (measure.Record, error) {
	fields := msg.AsMap()
	step, ok := fields["step"].(float64)
	if !ok {
		return measure.Record{}, errors.New("record has no step field")
	}
	if step != math.Trunc(step) {
		return measure.Record{}, fmt.Errorf("step %v is not an integer", step)
	}

	rec := measure.Record{Step: int(step), Metrics: measure.Metrics{}}
	if metrics, ok := fields["metrics"].(map[string]any); ok {
		for k, v := range metrics {
			rec.Metrics[k] = v
		}
	}
	return rec, nil
}
