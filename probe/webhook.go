// CLAUDE:SUMMARY HTTP adapter probing selectors through a remote browser collaborator, with bounded retry.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Webhook is a Probe that POSTs each check to an out-of-process prober
// (the browser automation collaborator) and decodes its Result. Transient
// transport failures are retried with exponential backoff; a non-2xx or
// undecodable answer is an error the caller decides about.
type Webhook struct {
	url        string
	client     *http.Client
	maxRetries int
	logger     *slog.Logger
}

// WebhookOption configures a Webhook probe.
type WebhookOption func(*Webhook)

// WithRetries sets the maximum number of retries. Default: 2.
func WithRetries(n int) WebhookOption {
	return func(w *Webhook) { w.maxRetries = n }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) WebhookOption {
	return func(w *Webhook) { w.logger = l }
}

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(w *Webhook) { w.client = c }
}

// NewWebhook creates a Webhook probe targeting the given URL.
func NewWebhook(url string, opts ...WebhookOption) *Webhook {
	w := &Webhook{
		url:        url,
		client:     &http.Client{Timeout: 10 * time.Second},
		maxRetries: 2,
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

type checkRequest struct {
	Selector  string `json:"selector"`
	URL       string `json:"url,omitempty"`
	TimeoutMS int64  `json:"timeoutMs,omitempty"`
}

// Check implements Probe.
func (w *Webhook) Check(ctx context.Context, selector string, opts Options) (Result, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(checkRequest{
		Selector:  selector,
		URL:       opts.URL,
		TimeoutMS: opts.Timeout.Milliseconds(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("probe: marshal: %w", err)
	}

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * 250 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return Result{}, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			return Result{}, fmt.Errorf("probe: new request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			lastErr = err
			w.logger.Warn("probe: request failed", "attempt", attempt+1, "error", err)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			lastErr = fmt.Errorf("probe: status %d", resp.StatusCode)
			w.logger.Warn("probe: bad status", "attempt", attempt+1, "status", resp.StatusCode)
			continue
		}

		var res Result
		err = json.NewDecoder(resp.Body).Decode(&res)
		resp.Body.Close()
		if err != nil {
			return Result{}, fmt.Errorf("probe: decode: %w", err)
		}
		res.Selector = selector
		if res.CheckTime == 0 {
			res.CheckTime = time.Since(start)
		}
		return res, nil
	}
	return Result{}, fmt.Errorf("probe: %s unreachable after %d attempts: %w", w.url, w.maxRetries+1, lastErr)
}
