// Package edge invokes hosted serverless functions by name with JSON bodies.
// Calls are fire-and-handle-response: no retry or backoff policy is applied
// here; callers decide what a failure means (usually a non-fatal warning).
package edge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Function names used by the registration module.
const (
	FnSyncRegistrationToEdudash    = "sync-registration-to-edudash"
	FnSyncRegistrationsFromEdusite = "sync-registrations-from-edusite"
	FnPaymentCreation              = "payment-creation"
)

// InvokeError is returned when a function responds with a non-2xx status.
type InvokeError struct {
	Function string
	Status   int
	Body     string
}

func (e *InvokeError) Error() string {
	return fmt.Sprintf("edge function %s: status %d: %s", e.Function, e.Status, e.Body)
}

// Client calls functions at POST {base}/functions/v1/{name}.
type Client struct {
	baseURL string
	hc      *http.Client
	log     zerolog.Logger
}

// New creates a Client with the given base URL and per-call timeout.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "edge_client").Logger(),
	}
}

// Invoke calls the named function with a JSON body and decodes the JSON
// response into out (skipped when out is nil).
func (c *Client) Invoke(ctx context.Context, name string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", name, err)
	}

	url := fmt.Sprintf("%s/functions/v1/%s", c.baseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("invoke %s: %w", name, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("function", name).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("Edge function invoked")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &InvokeError{Function: name, Status: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", name, err)
	}
	return nil
}
