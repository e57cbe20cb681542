package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lcalzada-xor/trustrecon/internal/core/domain"
	"github.com/lcalzada-xor/trustrecon/internal/core/ports"
)

const (
	obsProvider       = "Observatory"
	defaultObsBaseURL = "https://observatory-api.mdn.mozilla.net/api/v2/scan"
)

// ObservatoryAdapter scans a domain's web security headers via the MDN
// HTTP Observatory. No credential is required. The upstream can report
// a scan failure two ways: a structured error body on a non-2xx
// status, or an embedded error field inside a 200 response. Both are
// scan-level errors, distinct from transport failures.
type ObservatoryAdapter struct {
	client *Client

	// BaseURL is overridable for tests.
	BaseURL string
}

// NewObservatoryAdapter creates a new header-security scan adapter.
func NewObservatoryAdapter(client *Client) *ObservatoryAdapter {
	return &ObservatoryAdapter{client: client, BaseURL: defaultObsBaseURL}
}

type obsResponse struct {
	// Error and Message are set when the scan itself failed.
	Error   string `json:"error"`
	Message string `json:"message"`

	ID            int64  `json:"id"`
	Grade         string `json:"grade"`
	Score         int    `json:"score"`
	StatusCode    int    `json:"status_code"`
	TestsPassed   int    `json:"tests_passed"`
	TestsFailed   int    `json:"tests_failed"`
	TestsQuantity int    `json:"tests_quantity"`
	ScannedAt     string `json:"scanned_at"`
	DetailsURL    string `json:"details_url"`
}

// Scan runs a header scan for a host.
func (a *ObservatoryAdapter) Scan(ctx context.Context, q domain.DomainQuery) domain.HeaderResult {
	res := domain.HeaderResult{Host: q.Host}

	params := url.Values{}
	params.Set("host", q.Host)

	req, err := http.NewRequest(http.MethodPost, a.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		res.Status = domain.Failed(obsProvider, domain.KindUnexpected, err.Error(), "")
		record(obsProvider, res.Kind)
		return res
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var body obsResponse
	if cerr := a.client.do(ctx, req, &body); cerr != nil {
		res.Status = a.mapError(q.Host, cerr)
		record(obsProvider, res.Kind)
		return res
	}

	// A 200 can still carry an embedded failure.
	if body.Error != "" {
		msg := body.Message
		if msg == "" {
			msg = "Unknown error"
		}
		res.Status = domain.Failed(obsProvider, domain.KindScanError,
			fmt.Sprintf("Scan failed for '%s': %s", q.Host, msg), "")
		record(obsProvider, res.Kind)
		return res
	}

	res.Status = domain.Succeeded(obsProvider)
	res.ScanID = body.ID
	res.Grade = orNA(body.Grade)
	res.Score = body.Score
	res.HTTPStatus = body.StatusCode
	res.TestsPassed = body.TestsPassed
	res.TestsFailed = body.TestsFailed
	res.TestsQuantity = body.TestsQuantity
	res.ScannedAt = orUnknown(body.ScannedAt)
	res.DetailsURL = orNA(body.DetailsURL)
	record(obsProvider, res.Kind)
	return res
}

func (a *ObservatoryAdapter) mapError(host string, cerr *callError) domain.Status {
	// Non-2xx bodies may themselves be a structured scan failure.
	if cerr.Body != "" {
		var failure struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal([]byte(cerr.Body), &failure) == nil && failure.Error == "scan-failed" {
			msg := failure.Message
			if msg == "" {
				msg = "Unknown error"
			}
			return domain.Failed(obsProvider, domain.KindScanError,
				fmt.Sprintf("Scan failed for '%s': %s", host, msg), "")
		}
	}

	switch cerr.Kind {
	case domain.KindTimeout:
		return domain.Failed(obsProvider, cerr.Kind,
			fmt.Sprintf("Request timed out for '%s'.", host), timeoutRemedy)
	case domain.KindRateLimited:
		return domain.Failed(obsProvider, cerr.Kind, "Rate limit exceeded.", "Please wait and retry.")
	case domain.KindNotFound:
		return domain.Failed(obsProvider, cerr.Kind, fmt.Sprintf("No scan available for '%s'.", host), "")
	case domain.KindBadRequest:
		return domain.Failed(obsProvider, cerr.Kind, "Bad request. "+cerr.Body, "")
	case domain.KindUpstream:
		return domain.Failed(obsProvider, cerr.Kind,
			fmt.Sprintf("Received status %d. %s", cerr.Status, cerr.Body), "")
	}
	return domain.Failed(obsProvider, domain.KindUnexpected, cerr.Body, "")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

var _ ports.HeaderScanner = (*ObservatoryAdapter)(nil)
