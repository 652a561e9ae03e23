package reporter

import (
	"github.com/eapache/queue"
	"github.com/tracelab/measure"
)

type bufferedReporter struct {
	base Reporter
	buf  *queue.Queue
	max  int
}

// Buffered wraps a reporter so that records are queued and written to the
// underlying backend in batches, trading write amplification for throughput
// on backends with per-call overhead. The queue holds at most max records;
// an automatic flush happens when it fills up, and Close always flushes
// before closing the underlying reporter. max must be positive and has no
// hidden default.
func Buffered(base Reporter, max int) (Reporter, error) {
	if max <= 0 {
		return nil, measure.IntervalError(max)
	}
	return &bufferedReporter{base: base, buf: queue.New(), max: max}, nil
}

func (b *bufferedReporter) Report(step int, m measure.Metrics) error {
	// Copy: the record may sit in the queue long after the caller has
	// reused its map.
	b.buf.Add(measure.Record{Step: step, Metrics: m.Clone()})
	if b.buf.Length() >= b.max {
		return b.Flush()
	}
	return nil
}

// Flush drains the queue into the underlying reporter in arrival order.
// On failure the flush stops and the undelivered records stay queued.
func (b *bufferedReporter) Flush() error {
	for b.buf.Length() > 0 {
		rec := b.buf.Peek().(measure.Record)
		if err := b.base.Report(rec.Step, rec.Metrics); err != nil {
			return err
		}
		b.buf.Remove()
	}
	return nil
}

func (b *bufferedReporter) Close() error {
	if err := b.Flush(); err != nil {
		// Close anyway so the underlying reporter is not leaked.
		_ = b.base.Close()
		return err
	}
	return b.base.Close()
}
