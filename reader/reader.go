// Package reader defines the read-side contract for metric stores: any
// backend that can return the series of values recorded for a metric key.
package reader

import (
	"strings"

	"github.com/tracelab/measure"
)

// Reader returns recorded metric series, keyed by metric name. A key that
// was never written maps to an empty series, not an error.
type Reader interface {
	// Keys returns every metric key the store has a record for.
	Keys() ([]string, error)
	// Read returns all samples recorded for the key, in step order.
	Read(key string) ([]measure.Sample, error)
	Close() error
}

// ReadAll reads every given key. The returned map has an entry for each
// requested key; missing keys map to empty slices.
func ReadAll(rd Reader, keys []string) (map[string][]measure.Sample, error) {
	out := make(map[string][]measure.Sample, len(keys))
	for _, k := range keys {
		samples, err := rd.Read(k)
		if err != nil {
			return nil, err
		}
		out[k] = samples
	}
	return out, nil
}

type emptyReader struct{}

func (emptyReader) Keys() ([]string, error)               { return nil, nil }
func (emptyReader) Read(string) ([]measure.Sample, error) { return nil, nil }
func (emptyReader) Close() error                          { return nil }

// Empty returns a reader with no records.
func Empty() Reader {
	return emptyReader{}
}

type prefixReader struct {
	base   Reader
	prefix string
}

// WithPrefix returns a reader that prepends prefix and a dot to every key
// before querying the base reader. It is the read-side counterpart of a
// prefixed reporter: Keys returns only the base keys under the prefix, with
// the prefix stripped, so every key it returns reads back through Read.
func WithPrefix(base Reader, prefix string) Reader {
	return &prefixReader{base: base, prefix: prefix}
}

func (p *prefixReader) Keys() ([]string, error) {
	keys, err := p.base.Keys()
	if err != nil {
		return nil, err
	}
	var stripped []string
	for _, k := range keys {
		if strings.HasPrefix(k, p.prefix+".") {
			stripped = append(stripped, strings.TrimPrefix(k, p.prefix+"."))
		}
	}
	return stripped, nil
}

func (p *prefixReader) Read(key string) ([]measure.Sample, error) {
	return p.base.Read(p.prefix + "." + key)
}

func (p *prefixReader) Close() error {
	return p.base.Close()
}
