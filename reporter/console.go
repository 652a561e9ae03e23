package reporter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tracelab/measure"
)

type consoleReporter struct {
	w      io.Writer
	digits int
}

// Console returns a reporter that writes one human-readable line per report
// call, e.g.
//
//	Step 3: acc = 0.812, loss = 1.204
//
// Numeric values are printed with the given number of digits after the
// decimal point. Keys are sorted for stable output.
func Console(w io.Writer, digits int) Reporter {
	return &consoleReporter{w: w, digits: digits}
}

func (c *consoleReporter) Report(step int, m measure.Metrics) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s = %s", k, c.format(m[k]))
	}
	_, err := fmt.Fprintf(c.w, "Step %d: %s\n", step, strings.Join(parts, ", "))
	return err
}

func (c *consoleReporter) format(v measure.Value) string {
	switch n := v.(type) {
	case float64:
		return fmt.Sprintf("%.*f", c.digits, n)
	case float32:
		return fmt.Sprintf("%.*f", c.digits, n)
	default:
		return fmt.Sprint(v)
	}
}

func (c *consoleReporter) Close() error { return nil }
