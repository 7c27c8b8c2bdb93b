// Package client delivers validated customer batches to the external
// bulk-create endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aurumcrm/customer-import/internal/importer"
)

// Submitter sends batches to the bulk-create endpoint with retry and
// exponential backoff. The batch ID is carried as an idempotency key on
// every attempt, so a retried submission after an ambiguous network
// failure cannot duplicate records on a conforming upstream.
type Submitter struct {
	client     *http.Client
	endpoint   string
	maxRetries int
	backoff    time.Duration
	backoffMax time.Duration
	authHeader string
}

// Options configures a Submitter.
type Options struct {
	Endpoint   string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	BackoffMax time.Duration
	BasicUser  string
	BasicPass  string
}

// NewSubmitter creates a submitter for the given endpoint.
func NewSubmitter(opts Options) *Submitter {
	authHeader := ""
	if opts.BasicUser != "" && opts.BasicPass != "" {
		credentials := opts.BasicUser + ":" + opts.BasicPass
		authHeader = "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
	}

	return &Submitter{
		client:     &http.Client{Timeout: opts.Timeout},
		endpoint:   opts.Endpoint,
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
		backoffMax: opts.BackoffMax,
		authHeader: authHeader,
	}
}

// bulkCreateRequest is the wire format of one submission.
type bulkCreateRequest struct {
	BatchID  string              `json:"batch_id"`
	FileName string              `json:"file_name,omitempty"`
	Records  []importer.Customer `json:"records"`
}

// bulkCreateResponse is the upstream reply. Imported may be omitted by
// upstreams that only signal success via the status code.
type bulkCreateResponse struct {
	Imported int    `json:"imported"`
	Message  string `json:"message"`
}

// Submit delivers the full ordered record list as a single call and returns
// the number of customers imported. The batch must be submittable; callers
// enforce the all-or-nothing gate before handing it over.
//
// A 409 reply is treated as success: it means the upstream already accepted
// a batch with this idempotency key.
func (s *Submitter) Submit(ctx context.Context, batch *importer.Batch) (int, error) {
	start := time.Now()
	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			submitRetries.Inc()

			backoff := s.backoff * time.Duration(1<<uint(attempt-1))
			if backoff > s.backoffMax {
				backoff = s.backoffMax
			}
			if httpErr, ok := lastErr.(*HTTPError); ok && httpErr.RetryAfter > 0 {
				backoff = httpErr.RetryAfter
			}

			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(backoff):
			}
		}

		imported, err := s.submitOnce(ctx, batch)
		if err == nil {
			batchesSubmitted.WithLabelValues("success").Inc()
			submitDuration.Observe(time.Since(start).Seconds())
			return imported, nil
		}

		lastErr = err
		if !isRetryable(err) {
			batchesSubmitted.WithLabelValues("failure").Inc()
			return 0, err
		}
	}

	batchesSubmitted.WithLabelValues("failure").Inc()
	return 0, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// submitOnce performs a single POST of the batch.
func (s *Submitter) submitOnce(ctx context.Context, batch *importer.Batch) (int, error) {
	payload, err := json.Marshal(bulkCreateRequest{
		BatchID:  batch.ID.String(),
		FileName: batch.FileName,
		Records:  batch.Records,
	})
	if err != nil {
		return 0, fmt.Errorf("marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Import-Batch-Id", batch.ID.String())
	req.Header.Set("X-Import-Rows-Count", strconv.Itoa(len(batch.Records)))
	if s.authHeader != "" {
		req.Header.Set("Authorization", s.authHeader)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("bulk create request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var result bulkCreateResponse
		if err := json.Unmarshal(body, &result); err == nil && result.Imported > 0 {
			return result.Imported, nil
		}
		return len(batch.Records), nil

	case resp.StatusCode == http.StatusConflict:
		// Idempotency replay: the upstream already has this batch.
		return len(batch.Records), nil

	default:
		return 0, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(body),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
}

// upstreamMessage extracts a human-readable failure message from the
// response body, which is surfaced verbatim to the user.
func upstreamMessage(body []byte) string {
	var reply struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &reply); err == nil {
		if reply.Message != "" {
			return reply.Message
		}
		if reply.Error != "" {
			return reply.Error
		}
	}
	return string(bytes.TrimSpace(body))
}

// isRetryable reports whether the submission may be attempted again.
// Network errors, 429, and 5xx are retryable; other 4xx are not.
func isRetryable(err error) bool {
	httpErr, ok := err.(*HTTPError)
	if !ok {
		return true
	}
	if httpErr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return httpErr.StatusCode >= 500
}

// parseRetryAfter parses a Retry-After header given in seconds.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return 0
}

// HTTPError is a non-2xx reply from the bulk-create endpoint.
type HTTPError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("bulk create failed with HTTP %d", e.StatusCode)
}
