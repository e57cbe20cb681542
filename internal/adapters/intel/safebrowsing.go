package intel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lcalzada-xor/trustrecon/internal/core/domain"
	"github.com/lcalzada-xor/trustrecon/internal/core/ports"
)

const (
	sbProvider       = "Safe Browsing"
	defaultSBBaseURL = "https://safebrowsing.googleapis.com/v4/threatMatches:find"
)

// SafeBrowsingAdapter checks a URL against the Google Safe Browsing v4
// threat lists. This is the list-based check: a POST whose response
// carries zero or more matches, where an empty match list means safe.
type SafeBrowsingAdapter struct {
	client *Client
	creds  ports.Credentials

	// BaseURL is overridable for tests.
	BaseURL string
}

// NewSafeBrowsingAdapter creates a new list-based URL-reputation adapter.
func NewSafeBrowsingAdapter(client *Client, creds ports.Credentials) *SafeBrowsingAdapter {
	return &SafeBrowsingAdapter{client: client, creds: creds, BaseURL: defaultSBBaseURL}
}

type sbRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo struct {
		ThreatTypes      []string `json:"threatTypes"`
		PlatformTypes    []string `json:"platformTypes"`
		ThreatEntryTypes []string `json:"threatEntryTypes"`
		ThreatEntries    []struct {
			URL string `json:"url"`
		} `json:"threatEntries"`
	} `json:"threatInfo"`
}

type sbResponse struct {
	Matches []struct {
		ThreatType      string `json:"threatType"`
		PlatformType    string `json:"platformType"`
		ThreatEntryType string `json:"threatEntryType"`
		Threat          struct {
			URL string `json:"url"`
		} `json:"threat"`
		CacheDuration       string `json:"cacheDuration"`
		ThreatEntryMetadata struct {
			Entries []struct {
				Key   string `json:"key"`
				Value string `json:"value"`
			} `json:"entries"`
		} `json:"threatEntryMetadata"`
	} `json:"matches"`
}

// Name identifies the adapter in aggregated results.
func (a *SafeBrowsingAdapter) Name() string { return sbProvider }

// Check queries the threat lists for a URL.
func (a *SafeBrowsingAdapter) Check(ctx context.Context, q domain.URLQuery) domain.URLResult {
	res := domain.URLResult{URL: q.URL}

	key, ok := a.creds.Credential(ports.CredentialGoogle)
	if !ok {
		res.Status = domain.Failed(sbProvider, domain.KindMissingCredential,
			"API key not found.", "Please configure the Google API key.")
		record(sbProvider, res.Kind)
		return res
	}
	if !q.Valid() {
		res.Status = domain.Failed(sbProvider, domain.KindBadRequest,
			fmt.Sprintf("URL '%s' is not well-formed.", q.URL), "")
		record(sbProvider, res.Kind)
		return res
	}

	var reqBody sbRequest
	reqBody.Client.ClientID = "trustrecon"
	reqBody.Client.ClientVersion = "1.0.0"
	reqBody.ThreatInfo.ThreatTypes = []string{
		"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE", "POTENTIALLY_HARMFUL_APPLICATION",
	}
	reqBody.ThreatInfo.PlatformTypes = []string{"ANY_PLATFORM"}
	reqBody.ThreatInfo.ThreatEntryTypes = []string{"URL"}
	reqBody.ThreatInfo.ThreatEntries = []struct {
		URL string `json:"url"`
	}{{URL: q.URL}}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		res.Status = domain.Failed(sbProvider, domain.KindUnexpected, err.Error(), "")
		record(sbProvider, res.Kind)
		return res
	}

	req, err := http.NewRequest(http.MethodPost, a.BaseURL+"?key="+key, bytes.NewReader(payload))
	if err != nil {
		res.Status = domain.Failed(sbProvider, domain.KindUnexpected, err.Error(), "")
		record(sbProvider, res.Kind)
		return res
	}
	req.Header.Set("Content-Type", "application/json")

	var body sbResponse
	if cerr := a.client.do(ctx, req, &body); cerr != nil {
		res.Status = a.mapError(cerr)
		record(sbProvider, res.Kind)
		return res
	}

	res.Status = domain.Succeeded(sbProvider)
	res.Safe = len(body.Matches) == 0
	for _, m := range body.Matches {
		match := domain.ThreatMatch{
			Type:          orUnknown(m.ThreatType),
			Platform:      orUnknown(m.PlatformType),
			EntryType:     orUnknown(m.ThreatEntryType),
			URL:           m.Threat.URL,
			CacheDuration: orUnknown(m.CacheDuration),
		}
		if match.URL == "" {
			match.URL = q.URL
		}
		for _, e := range m.ThreatEntryMetadata.Entries {
			match.Metadata = append(match.Metadata, domain.MetadataEntry{
				Key:   orUnknown(e.Key),
				Value: orUnknown(e.Value),
			})
		}
		res.Threats = append(res.Threats, match)
	}
	record(sbProvider, res.Kind)
	return res
}

func (a *SafeBrowsingAdapter) mapError(cerr *callError) domain.Status {
	switch cerr.Kind {
	case domain.KindBadRequest:
		return domain.Failed(sbProvider, cerr.Kind, "Bad request. "+cerr.Body, "")
	case domain.KindRateLimited:
		return domain.Failed(sbProvider, cerr.Kind,
			"Rate limit exceeded or unauthorized.",
			"Please check your API key and rate limits.")
	case domain.KindTimeout:
		return domain.Failed(sbProvider, cerr.Kind, "Request timed out.", timeoutRemedy)
	case domain.KindNotFound:
		return domain.Failed(sbProvider, cerr.Kind, "Endpoint not found.", "")
	case domain.KindUpstream:
		return domain.Failed(sbProvider, cerr.Kind,
			fmt.Sprintf("Received status %d. %s", cerr.Status, cerr.Body), "")
	}
	return domain.Failed(sbProvider, domain.KindUnexpected, cerr.Body, "")
}

var _ ports.URLChecker = (*SafeBrowsingAdapter)(nil)
