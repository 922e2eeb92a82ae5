// Package predictor talks to the external reflow prediction backend.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reflow_predictor/internal/models"
)

const (
	DefaultBaseURL = "http://127.0.0.1:5000"
	DefaultTimeout = 15 * time.Second

	predictPath  = "/predict"
	maxBodyBytes = 1 << 20 // 1 MB
	maxErrSnip   = 256
)

// NetworkError means the call did not complete or the backend answered non-2xx.
type NetworkError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("predictor %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("predictor %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError means the backend answered 2xx with a body that is not a result record.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "predictor decode: " + e.Err.Error() }

func (e *DecodeError) Unwrap() error { return e.Err }

var errNoMetrics = errors.New("response has none of the predicted metrics")

// Client is an HTTP predictor client. One attempt per call, no retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient builds a client for baseURL ("" means DefaultBaseURL).
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Predict sends the request to POST /predict and decodes the four metrics.
func (c *Client) Predict(ctx context.Context, req models.PredictionRequest) (models.PredictionResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return models.PredictionResult{}, fmt.Errorf("encode prediction request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, bytes.NewReader(body))
	if err != nil {
		return models.PredictionResult{}, &NetworkError{Op: "build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return models.PredictionResult{}, &NetworkError{Op: "post", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return models.PredictionResult{}, &NetworkError{Op: "read body", StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.PredictionResult{}, &NetworkError{
			Op:         "post",
			StatusCode: resp.StatusCode,
			Err:        errors.New(snippet(data)),
		}
	}

	return decodeResult(data)
}

// decodeResult accepts a JSON object carrying at least one metric as a number.
func decodeResult(data []byte) (models.PredictionResult, error) {
	var out models.PredictionResult
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&out); err != nil {
		return models.PredictionResult{}, &DecodeError{Err: err}
	}
	if dec.More() {
		return models.PredictionResult{}, &DecodeError{Err: errors.New("trailing data after result object")}
	}
	if !out.HasAnyMetric() {
		return models.PredictionResult{}, &DecodeError{Err: errNoMetrics}
	}
	// the backend does not own the paste type; it is carried from the board record
	out.SolderPasteType = ""
	return out, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "empty response body"
	}
	if len(s) > maxErrSnip {
		s = s[:maxErrSnip] + "..."
	}
	return s
}
