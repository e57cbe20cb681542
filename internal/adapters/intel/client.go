// Package intel contains the adapters that turn each external
// security-intelligence API's wire format into the uniform result
// types in core/domain. Every adapter issues exactly one request per
// query, with a fixed total timeout and no retries; all failures come
// back as tagged result values, never as raised errors.
package intel

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/lcalzada-xor/trustrecon/internal/core/domain"
	"github.com/lcalzada-xor/trustrecon/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout bounds a single upstream request end to end.
const DefaultTimeout = 60 * time.Second

// Client is the shared HTTP base used by every provider adapter. It
// owns the timeout and the status-to-kind mapping; adapters own the
// provider-specific wording and body parsing.
type Client struct {
	http *http.Client
}

// NewClient creates a client with the default request timeout.
func NewClient() *Client {
	return NewClientWithTimeout(DefaultTimeout)
}

// NewClientWithTimeout creates a client with a custom timeout.
func NewClientWithTimeout(timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// callError describes a failed upstream exchange before the adapter
// applies provider-specific wording.
type callError struct {
	Kind   domain.ErrorKind
	Status int    // HTTP status for upstream-mapped kinds, 0 otherwise
	Body   string // raw response body or transport error text
}

// statusKind maps a non-2xx upstream status to an error kind. 403 is
// deliberately a single combined rate-limited/unauthorized kind; these
// APIs use it for both and the two cannot be told apart.
func statusKind(status int) domain.ErrorKind {
	switch status {
	case http.StatusBadRequest:
		return domain.KindBadRequest
	case http.StatusForbidden:
		return domain.KindRateLimited
	case http.StatusNotFound:
		return domain.KindNotFound
	default:
		return domain.KindUpstream
	}
}

// do issues the request once and decodes a 200 body into out. A nil
// return means out is populated. Timeouts, transport faults, non-200
// statuses and malformed bodies all come back as a callError; nothing
// escapes as a Go error or panic.
func (c *Client) do(ctx context.Context, req *http.Request, out any) *callError {
	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		if isTimeout(err) {
			return &callError{Kind: domain.KindTimeout}
		}
		return &callError{Kind: domain.KindUnexpected, Body: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &callError{Kind: domain.KindUnexpected, Body: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return &callError{Kind: statusKind(resp.StatusCode), Status: resp.StatusCode, Body: string(raw)}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return &callError{Kind: domain.KindUnexpected, Body: err.Error()}
		}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// record counts one finished provider query in the metrics.
func record(provider string, kind domain.ErrorKind) {
	outcome := "success"
	if kind != domain.KindNone {
		outcome = kind.String()
	}
	telemetry.ProviderRequests.WithLabelValues(provider, outcome).Inc()
}

// timeoutRemedy is the shared retry-later wording for timed-out calls.
const timeoutRemedy = "The API may be experiencing high load. Please try again later."
