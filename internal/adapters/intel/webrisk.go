package intel

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lcalzada-xor/trustrecon/internal/core/domain"
	"github.com/lcalzada-xor/trustrecon/internal/core/ports"
)

const (
	wrProvider       = "Web Risk"
	defaultWRBaseURL = "https://webrisk.googleapis.com/v1/uris:search"
)

// webRiskDescriptions maps upstream threat-type enums to fixed
// human-readable descriptions. Unlisted types fall back to the raw
// enum name.
var webRiskDescriptions = map[string]string{
	"MALWARE":                 "Sites that host or distribute malicious software",
	"SOCIAL_ENGINEERING":      "Deceptive sites that trick users into revealing credentials or installing software",
	"UNWANTED_SOFTWARE":       "Sites distributing software that violates acceptable-software policies",
	"THREAT_TYPE_UNSPECIFIED": "Unclassified threat",
}

// WebRiskAdapter checks a URL against the Google Web Risk v1 lookup
// API. This is the single-threat-object form: a GET whose response
// either carries one threat object or is empty, where absence of the
// threat object means safe.
type WebRiskAdapter struct {
	client *Client
	creds  ports.Credentials

	// BaseURL is overridable for tests.
	BaseURL string
}

// NewWebRiskAdapter creates a new single-object URL-reputation adapter.
func NewWebRiskAdapter(client *Client, creds ports.Credentials) *WebRiskAdapter {
	return &WebRiskAdapter{client: client, creds: creds, BaseURL: defaultWRBaseURL}
}

type wrResponse struct {
	Threat *struct {
		ThreatTypes []string `json:"threatTypes"`
		ExpireTime  string   `json:"expireTime"`
	} `json:"threat"`
}

// Name identifies the adapter in aggregated results.
func (a *WebRiskAdapter) Name() string { return wrProvider }

// Check looks up a URL. The URL travels percent-encoded in the query
// string, with one repeated threatTypes parameter per list.
func (a *WebRiskAdapter) Check(ctx context.Context, q domain.URLQuery) domain.URLResult {
	res := domain.URLResult{URL: q.URL}

	key, ok := a.creds.Credential(ports.CredentialGoogle)
	if !ok {
		res.Status = domain.Failed(wrProvider, domain.KindMissingCredential,
			"API key not found.", "Please configure the Google API key.")
		record(wrProvider, res.Kind)
		return res
	}
	if !q.Valid() {
		res.Status = domain.Failed(wrProvider, domain.KindBadRequest,
			fmt.Sprintf("URL '%s' is not well-formed.", q.URL), "")
		record(wrProvider, res.Kind)
		return res
	}

	params := url.Values{}
	params.Set("key", key)
	params.Add("threatTypes", "MALWARE")
	params.Add("threatTypes", "SOCIAL_ENGINEERING")
	params.Add("threatTypes", "UNWANTED_SOFTWARE")
	params.Set("uri", q.URL)

	req, err := http.NewRequest(http.MethodGet, a.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		res.Status = domain.Failed(wrProvider, domain.KindUnexpected, err.Error(), "")
		record(wrProvider, res.Kind)
		return res
	}

	var body wrResponse
	if cerr := a.client.do(ctx, req, &body); cerr != nil {
		res.Status = a.mapError(cerr)
		record(wrProvider, res.Kind)
		return res
	}

	res.Status = domain.Succeeded(wrProvider)
	if body.Threat == nil {
		res.Safe = true
		record(wrProvider, res.Kind)
		return res
	}

	for _, t := range body.Threat.ThreatTypes {
		desc, ok := webRiskDescriptions[t]
		if !ok {
			desc = t
		}
		res.Threats = append(res.Threats, domain.ThreatMatch{
			Type:        t,
			URL:         q.URL,
			ExpireTime:  body.Threat.ExpireTime,
			Description: desc,
		})
	}
	record(wrProvider, res.Kind)
	return res
}

func (a *WebRiskAdapter) mapError(cerr *callError) domain.Status {
	switch cerr.Kind {
	case domain.KindBadRequest:
		return domain.Failed(wrProvider, cerr.Kind, "Bad request. "+cerr.Body, "")
	case domain.KindRateLimited:
		return domain.Failed(wrProvider, cerr.Kind,
			"Rate limit exceeded or unauthorized.",
			"Please check your API key and rate limits.")
	case domain.KindTimeout:
		return domain.Failed(wrProvider, cerr.Kind, "Request timed out.", timeoutRemedy)
	case domain.KindNotFound:
		return domain.Failed(wrProvider, cerr.Kind, "Endpoint not found.", "")
	case domain.KindUpstream:
		return domain.Failed(wrProvider, cerr.Kind,
			fmt.Sprintf("Received status %d. %s", cerr.Status, cerr.Body), "")
	}
	return domain.Failed(wrProvider, domain.KindUnexpected, cerr.Body, "")
}

var _ ports.URLChecker = (*WebRiskAdapter)(nil)
