// Package tracking reports metrics to an MLflow-compatible experiment
// tracking server over its REST API. Only the log-batch surface is used;
// run creation and experiment management stay with the server's own tools.
package tracking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tracelab/measure"
)

const logBatchPath = "/api/2.0/mlflow/runs/log-batch"

// Client reports metrics for one tracking-server run.
type Client struct {
	base  string
	runID string
	http  *http.Client
	now   func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client that logs against the run with the given id on the
// tracking server at baseURL.
func New(baseURL, runID string, opts ...Option) *Client {
	c := &Client{
		base:  strings.TrimRight(baseURL, "/"),
		runID: runID,
		http:  http.DefaultClient,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type metricEntry struct {
	Key       string  `json:"key"`
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"`
	Step      int     `json:"step"`
}

type paramEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type logBatchRequest struct {
	RunID   string        `json:"run_id"`
	Metrics []metricEntry `json:"metrics,omitempty"`
	Params  []paramEntry  `json:"params,omitempty"`
}

// Report logs one batch of metrics at the given step. All values must be
// numeric; the tracking wire format has no other value type.
func (c *Client) Report(step int, m measure.Metrics) error {
	ts := c.now().UnixMilli()
	metrics := make([]metricEntry, 0, len(m))
	for k, v := range m {
		f, ok := toFloat(v)
		if !ok {
			return fmt.Errorf("metric %q: value %v (%T) is not numeric", k, v, v)
		}
		metrics = append(metrics, metricEntry{Key: k, Value: f, Timestamp: ts, Step: step})
	}
	if len(metrics) == 0 {
		return nil
	}
	return c.post(logBatchRequest{RunID: c.runID, Metrics: metrics})
}

// ReportParams logs run parameters; parameters are written once per run and
// are not step-indexed.
func (c *Client) ReportParams(params map[string]string) error {
	entries := make([]paramEntry, 0, len(params))
	for k, v := range params {
		entries = append(entries, paramEntry{Key: k, Value: v})
	}
	if len(entries) == 0 {
		return nil
	}
	return c.post(logBatchRequest{RunID: c.runID, Params: entries})
}

// Close is a no-op; the client holds no buffered state.
func (c *Client) Close() error { return nil }

func (c *Client) post(req logBatchRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	resp, err := c.http.Post(c.base+logBatchPath, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("tracking server unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("tracking server returned %s: %s", resp.Status, msg)
	}
	return nil
}

func toFloat(v measure.Value) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
