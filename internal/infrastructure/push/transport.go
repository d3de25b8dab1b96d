package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hisworks-api/internal/config"
	"github.com/hisworks-api/internal/domain"
	"github.com/sony/gobreaker/v2"
)

// Transport submits one chunk of messages and returns one ticket per message, in order.
type Transport interface {
	Send(ctx context.Context, messages []domain.PushMessage) ([]domain.Ticket, error)
}

// TransportError is returned when the push endpoint answers with a non-2xx status.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("push endpoint returned %d: %s", e.StatusCode, e.Body)
}

type sendResponse struct {
	Data   []domain.Ticket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// HTTPTransport posts message arrays to the push service. Calls go through a circuit breaker
// and are retried on 429/5xx, honouring Retry-After.
type HTTPTransport struct {
	client      *http.Client
	breaker     *gobreaker.CircuitBreaker[[]byte]
	endpoint    string
	accessToken string
	maxRetries  int
	minWait     time.Duration
	maxWait     time.Duration
	sleep       func(context.Context, time.Duration) error
}

// TransportOption customises an HTTPTransport.
type TransportOption func(*HTTPTransport)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *HTTPTransport) { t.client = c }
}

// WithSleep overrides the wait between retries. Intended for tests.
func WithSleep(fn func(context.Context, time.Duration) error) TransportOption {
	return func(t *HTTPTransport) { t.sleep = fn }
}

func NewHTTPTransport(cfg config.Push, opts ...TransportOption) *HTTPTransport {
	t := &HTTPTransport{
		client:      &http.Client{Timeout: cfg.Timeout},
		endpoint:    cfg.EndpointURL,
		accessToken: cfg.AccessToken,
		maxRetries:  cfg.MaxRetries,
		minWait:     500 * time.Millisecond,
		maxWait:     10 * time.Second,
		sleep:       sleepCtx,
	}
	t.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "push",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			// Client errors are the caller's fault, not an unhealthy upstream.
			var te *TransportError
			return err == nil || (errors.As(err, &te) && te.StatusCode < 500 && te.StatusCode != http.StatusTooManyRequests)
		},
	})
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send posts one chunk. The response must carry exactly one ticket per message.
func (t *HTTPTransport) Send(ctx context.Context, messages []domain.PushMessage) ([]domain.Ticket, error) {
	payload, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("marshal push messages: %w", err)
	}

	var body []byte
	for attempt := 0; ; attempt++ {
		body, err = t.breaker.Execute(func() ([]byte, error) {
			return t.post(ctx, payload)
		})
		if err == nil || attempt >= t.maxRetries || !retryable(err) {
			break
		}
		if sErr := t.sleep(ctx, t.backoff(attempt, err)); sErr != nil {
			return nil, sErr
		}
	}
	if err != nil {
		return nil, fmt.Errorf("send push chunk: %w", err)
	}

	var resp sendResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode push response: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("push request rejected: %s: %s", resp.Errors[0].Code, resp.Errors[0].Message)
	}
	if len(resp.Data) != len(messages) {
		return nil, fmt.Errorf("push response has %d tickets for %d messages", len(resp.Data), len(messages))
	}
	return resp.Data, nil
}

func (t *HTTPTransport) post(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if t.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.accessToken)
	}

	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read push response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &retryAfterError{
			TransportError: &TransportError{StatusCode: res.StatusCode, Body: excerpt(body)},
			after:          parseRetryAfter(res.Header.Get("Retry-After")),
		}
	}
	return body, nil
}

// retryAfterError carries the server's Retry-After hint alongside the status.
type retryAfterError struct {
	*TransportError
	after time.Duration
}

func (e *retryAfterError) Unwrap() error { return e.TransportError }

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode >= 500 || te.StatusCode == http.StatusTooManyRequests
	}
	// Network-level failures.
	return true
}

func (t *HTTPTransport) backoff(attempt int, err error) time.Duration {
	var ra *retryAfterError
	if errors.As(err, &ra) && ra.after > 0 {
		return min(ra.after, t.maxWait)
	}
	return min(t.minWait<<attempt, t.maxWait)
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		return time.Until(at)
	}
	return 0
}

func excerpt(b []byte) string {
	const limit = 256
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
