package reporter

import (
	"sort"

	"github.com/tracelab/measure"
	"github.com/tracelab/measure/reader"
)

// MemoryReporter stores metrics in memory, keeping the full series of
// samples per metric key. It is the reference backend for tests and small
// experiments; Reader exposes the recorded data.
type MemoryReporter struct {
	series map[string][]measure.Sample
}

// Memory returns an empty in-memory reporter.
func Memory() *MemoryReporter {
	return &MemoryReporter{series: make(map[string][]measure.Sample)}
}

// Report appends every metric to its series.
func (m *MemoryReporter) Report(step int, metrics measure.Metrics) error {
	for k, v := range metrics {
		m.series[k] = append(m.series[k], measure.Sample{Step: step, Value: v})
	}
	return nil
}

// Close is a no-op; memory needs no flushing.
func (m *MemoryReporter) Close() error { return nil }

// Clear erases all recorded series.
func (m *MemoryReporter) Clear() {
	m.series = make(map[string][]measure.Sample)
}

// Len returns the number of samples recorded for the key.
func (m *MemoryReporter) Len(key string) int {
	return len(m.series[key])
}

// Reader returns a reader over the recorded data. The reader observes
// records reported after its creation as well.
func (m *MemoryReporter) Reader() reader.Reader {
	return &memoryReader{series: m.series}
}

type memoryReader struct {
	series map[string][]measure.Sample
}

func (r *memoryReader) Keys() ([]string, error) {
	keys := make([]string, 0, len(r.series))
	for k := range r.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *memoryReader) Read(key string) ([]measure.Sample, error) {
	samples := make([]measure.Sample, len(r.series[key]))
	copy(samples, r.series[key])
	return samples, nil
}

func (r *memoryReader) Close() error { return nil }
