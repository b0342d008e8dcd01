// Package bland is a client for the Bland.ai voice-call API: placing
// outbound calls, checking their status, and running post-call analysis.
package bland

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/outreach-cli/internal/resilience"
)

const defaultBaseURL = "https://api.bland.ai/v1"

// Client defines the Bland API operations used by the pipeline. Each method
// is exactly one network round trip.
type Client interface {
	PlaceCall(ctx context.Context, req CallRequest) (*CallResponse, error)
	GetCall(ctx context.Context, callID string) (*CallDetails, error)
	// Analyze returns the raw response body. Bland's answers payload is
	// produced by a language model, so the caller runs it through the same
	// repair/extraction pipeline as direct completions.
	Analyze(ctx context.Context, callID string, req AnalyzeRequest) (string, error)
}

// CallRequest is the body for POST /calls.
type CallRequest struct {
	PhoneNumber   string            `json:"phone_number"`
	Task          string            `json:"task"`
	Voice         string            `json:"voice,omitempty"`
	Language      string            `json:"language,omitempty"`
	RequestData   map[string]string `json:"request_data,omitempty"`
	Record        bool              `json:"record"`
	ReduceLatency bool              `json:"reduce_latency"`
	AMD           bool              `json:"amd"`
}

// CallResponse is the response from POST /calls.
type CallResponse struct {
	Status string `json:"status"`
	CallID string `json:"call_id"`
}

// CallDetails is the response from GET /calls/{id}.
type CallDetails struct {
	CallID       string  `json:"call_id"`
	Status       string  `json:"status"`
	Completed    bool    `json:"completed"`
	CallLength   float64 `json:"call_length"`
	ErrorMessage string  `json:"error_message"`
}

// Finished reports whether the call has reached a final state on Bland's
// side, successfully or not.
func (d *CallDetails) Finished() bool {
	if d.Completed {
		return true
	}
	switch d.Status {
	case "completed", "failed", "no-answer", "busy", "error", "voicemail":
		return true
	}
	return false
}

// Failed reports whether a finished call ended without a conversation.
func (d *CallDetails) Failed() bool {
	switch d.Status {
	case "failed", "no-answer", "busy", "error":
		return true
	}
	return false
}

// AnalyzeRequest is the body for POST /calls/{id}/analyze. Questions is an
// ordered list of (question text, expected answer type) pairs; answers come
// back in the same order.
type AnalyzeRequest struct {
	Goal      string      `json:"goal"`
	Questions [][2]string `json:"questions"`
}

// APIError is returned when Bland responds with a non-2xx status. The body
// is retained for diagnostics.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bland: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps call placement at rps requests per second, burst 1.
// Status checks and analysis are not limited.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Bland API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) PlaceCall(ctx context.Context, req CallRequest) (*CallResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "bland: rate limit")
		}
	}

	body, err := c.post(ctx, "/calls", req)
	if err != nil {
		return nil, err
	}

	var result CallResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "bland: unmarshal call response")
	}
	return &result, nil
}

func (c *httpClient) GetCall(ctx context.Context, callID string) (*CallDetails, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/calls/"+callID, nil)
	if err != nil {
		return nil, eris.Wrap(err, "bland: create request")
	}
	httpReq.Header.Set("authorization", c.apiKey)

	body, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var result CallDetails
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "bland: unmarshal call details")
	}
	if result.CallID == "" {
		result.CallID = callID
	}
	return &result, nil
}

func (c *httpClient) Analyze(ctx context.Context, callID string, req AnalyzeRequest) (string, error) {
	body, err := c.post(ctx, "/calls/"+callID+"/analyze", req)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *httpClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "bland: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "bland: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("authorization", c.apiKey)

	return c.do(httpReq)
}

func (c *httpClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "bland: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "bland: read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(apiErr, resp.StatusCode)
		}
		return nil, apiErr
	}
	return body, nil
}
