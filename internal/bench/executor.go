// Package bench issues timed CRUD request batches and aggregates their
// latency statistics.
package bench

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// maxErrorBody bounds how much of a failure response is kept as error text.
const maxErrorBody = 512

// millis converts a duration to whole milliseconds, rounding to nearest
// rather than truncating.
func millis(d time.Duration) int64 {
	return int64(math.Round(float64(d) / float64(time.Millisecond)))
}

// Outcome records one timed request. Failures are data, never errors: the
// executor does not raise past this boundary.
type Outcome struct {
	Status     int
	DurationMS int64
	OK         bool
	Err        string
}

// Executor issues single timed HTTP operations against the API under test.
type Executor struct {
	base   string
	httpc  *http.Client
	logger *zap.Logger
}

// NewExecutor builds an executor with a fixed per-request timeout.
func NewExecutor(baseURL string, timeout time.Duration, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		base:   baseURL,
		httpc:  &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Do executes one HTTP operation and measures wall-clock duration from
// issuance to completion, including failures. Success is any 2xx status;
// transport failures record status 0 and the error text.
func (e *Executor) Do(ctx context.Context, method, requestURL string, body any) Outcome {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return Outcome{Err: fmt.Sprintf("encode body: %v", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return Outcome{Err: fmt.Sprintf("build request: %v", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := e.httpc.Do(req)
	durationMS := millis(time.Since(start))
	if err != nil {
		return Outcome{Status: 0, DurationMS: durationMS, OK: false, Err: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	var errText string
	if !ok {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		errText = string(data)
		e.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("url", requestURL),
			zap.Int("status", resp.StatusCode))
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	return Outcome{Status: resp.StatusCode, DurationMS: durationMS, OK: ok, Err: errText}
}

func (e *Executor) collectionURL(entity string) string {
	return e.base + "/" + entity + "/"
}

func (e *Executor) resourceURL(entity, id string) string {
	return e.base + "/" + entity + "/" + url.PathEscape(id) + "/"
}

func (e *Executor) attributeURL(entity, id, attr string) string {
	return e.base + "/" + entity + "/" + url.PathEscape(id) + "/" + attr
}

// Create issues a timed POST with a synthesized body.
func (e *Executor) Create(ctx context.Context, entity string, body any) Outcome {
	return e.Do(ctx, http.MethodPost, e.collectionURL(entity), body)
}

// Read issues a timed GET against one resource.
func (e *Executor) Read(ctx context.Context, entity, id string) Outcome {
	return e.Do(ctx, http.MethodGet, e.resourceURL(entity, id), nil)
}

// Update issues a timed PUT against one attribute of one resource.
func (e *Executor) Update(ctx context.Context, entity, id, attr string, body any) Outcome {
	return e.Do(ctx, http.MethodPut, e.attributeURL(entity, id, attr), body)
}

// Delete issues a timed DELETE against one resource.
func (e *Executor) Delete(ctx context.Context, entity, id string) Outcome {
	return e.Do(ctx, http.MethodDelete, e.resourceURL(entity, id), nil)
}

// CreateResource provisions one resource outside the timed path and returns
// the identifier the API reports for it.
func (e *Executor) CreateResource(ctx context.Context, entity string, body any) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.collectionURL(entity), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", entity, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("create %s: status %d", entity, resp.StatusCode)
	}
	var created struct {
		URI string `json:"uri"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode create response: %w", err)
	}
	if created.URI == "" {
		return "", fmt.Errorf("create %s: response carries no uri", entity)
	}
	return created.URI, nil
}

// ReadResource fetches one resource document outside the timed path, for
// instance verification.
func (e *Executor) ReadResource(ctx context.Context, entity, id string) (map[string]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.resourceURL(entity, id), nil)
	if err != nil {
		return nil, fmt.Errorf("build read request: %w", err)
	}
	resp, err := e.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entity, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("read %s: status %d", entity, resp.StatusCode)
	}
	var doc map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode resource: %w", err)
	}
	return doc, nil
}
