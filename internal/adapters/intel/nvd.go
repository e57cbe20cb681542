package intel

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lcalzada-xor/trustrecon/internal/core/domain"
	"github.com/lcalzada-xor/trustrecon/internal/core/ports"
)

const (
	nvdProvider       = "NVD"
	defaultNVDBaseURL = "https://services.nvd.nist.gov/rest/json/cves/2.0"
)

// NVDAdapter searches the National Vulnerability Database CVE API by
// keywords. The API key is optional; without one the upstream applies
// stricter rate limits.
type NVDAdapter struct {
	client *Client
	creds  ports.Credentials

	// BaseURL is overridable for tests.
	BaseURL string
}

// NewNVDAdapter creates a new NVD search adapter.
func NewNVDAdapter(client *Client, creds ports.Credentials) *NVDAdapter {
	return &NVDAdapter{client: client, creds: creds, BaseURL: defaultNVDBaseURL}
}

// nvdResponse mirrors the slice of the NVD 2.0 response we consume.
// Everything below cve.id is optional upstream.
type nvdResponse struct {
	TotalResults    int `json:"totalResults"`
	Vulnerabilities []struct {
		CVE nvdCVE `json:"cve"`
	} `json:"vulnerabilities"`
}

type nvdCVE struct {
	ID           string `json:"id"`
	Published    string `json:"published"`
	LastModified string `json:"lastModified"`
	Descriptions []struct {
		Lang  string `json:"lang"`
		Value string `json:"value"`
	} `json:"descriptions"`
	Metrics struct {
		CVSSMetricV31 []nvdMetricV3 `json:"cvssMetricV31"`
		CVSSMetricV30 []nvdMetricV3 `json:"cvssMetricV30"`
		CVSSMetricV2  []nvdMetricV2 `json:"cvssMetricV2"`
	} `json:"metrics"`
	References []struct {
		URL string `json:"url"`
	} `json:"references"`
}

type nvdMetricV3 struct {
	CVSSData struct {
		BaseScore    *float64 `json:"baseScore"`
		BaseSeverity string   `json:"baseSeverity"`
	} `json:"cvssData"`
}

type nvdMetricV2 struct {
	CVSSData struct {
		BaseScore *float64 `json:"baseScore"`
	} `json:"cvssData"`
	BaseSeverity string `json:"baseSeverity"`
}

// Search queries the CVE database. Multiple keywords act as an AND.
func (a *NVDAdapter) Search(ctx context.Context, q domain.VulnQuery) domain.VulnResult {
	keywords := q.KeywordSearch()
	res := domain.VulnResult{Query: keywords}

	params := url.Values{}
	params.Set("keywordSearch", keywords)
	params.Set("resultsPerPage", strconv.Itoa(q.ClampedResults()))
	params.Set("startIndex", "0")

	req, err := http.NewRequest(http.MethodGet, a.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		res.Status = domain.Failed(nvdProvider, domain.KindUnexpected, err.Error(), "")
		record(nvdProvider, res.Kind)
		return res
	}
	if key, ok := a.creds.Credential(ports.CredentialNVD); ok {
		req.Header.Set("apiKey", key)
	}

	var body nvdResponse
	if cerr := a.client.do(ctx, req, &body); cerr != nil {
		res.Status = a.mapError(keywords, cerr)
		record(nvdProvider, res.Kind)
		return res
	}

	res.Status = domain.Succeeded(nvdProvider)
	res.Total = body.TotalResults
	for _, item := range body.Vulnerabilities {
		res.Findings = append(res.Findings, parseCVE(item.CVE))
	}
	record(nvdProvider, res.Kind)
	return res
}

func (a *NVDAdapter) mapError(keywords string, cerr *callError) domain.Status {
	switch cerr.Kind {
	case domain.KindRateLimited:
		return domain.Failed(nvdProvider, cerr.Kind,
			"Rate limit exceeded.",
			"Please wait 30 seconds before retrying or add an NVD API key to increase rate limits.")
	case domain.KindNotFound:
		return domain.Failed(nvdProvider, cerr.Kind,
			fmt.Sprintf("No results found for keywords: %s", keywords), "")
	case domain.KindTimeout:
		return domain.Failed(nvdProvider, cerr.Kind, "Request timed out.", timeoutRemedy)
	case domain.KindBadRequest:
		return domain.Failed(nvdProvider, cerr.Kind, "Bad request. "+cerr.Body, "")
	case domain.KindUpstream:
		return domain.Failed(nvdProvider, cerr.Kind,
			fmt.Sprintf("Received status %d. %s", cerr.Status, cerr.Body), "")
	}
	return domain.Failed(nvdProvider, domain.KindUnexpected, cerr.Body, "")
}

// parseCVE flattens one deeply-nested CVE entry into a finding,
// substituting sentinels for absent optional fields.
func parseCVE(cve nvdCVE) domain.VulnFinding {
	f := domain.VulnFinding{
		ID:           orUnknown(cve.ID),
		Description:  "No description available",
		Score:        "Not scored",
		Severity:     domain.Unknown,
		Published:    orUnknown(cve.Published),
		LastModified: orUnknown(cve.LastModified),
	}

	// Prefer the English description among locales.
	for _, d := range cve.Descriptions {
		if d.Lang == "en" && d.Value != "" {
			f.Description = d.Value
			break
		}
	}

	// CVSS precedence: v3.1, then v3.0, then v2.0.
	m := cve.Metrics
	switch {
	case len(m.CVSSMetricV31) > 0:
		f.Score, f.Severity = v3ScoreSeverity(m.CVSSMetricV31[0])
	case len(m.CVSSMetricV30) > 0:
		f.Score, f.Severity = v3ScoreSeverity(m.CVSSMetricV30[0])
	case len(m.CVSSMetricV2) > 0:
		f.Score = formatScore(m.CVSSMetricV2[0].CVSSData.BaseScore)
		if m.CVSSMetricV2[0].BaseSeverity != "" {
			f.Severity = m.CVSSMetricV2[0].BaseSeverity
		}
	}

	for _, ref := range cve.References {
		if ref.URL == "" {
			continue
		}
		f.References = append(f.References, ref.URL)
		if len(f.References) == domain.MaxReferenceURLs {
			break
		}
	}
	return f
}

func v3ScoreSeverity(m nvdMetricV3) (string, string) {
	severity := m.CVSSData.BaseSeverity
	if severity == "" {
		severity = domain.Unknown
	}
	return formatScore(m.CVSSData.BaseScore), severity
}

func formatScore(score *float64) string {
	if score == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*score, 'f', -1, 64)
}

func orUnknown(s string) string {
	if s == "" {
		return domain.Unknown
	}
	return s
}

var _ ports.VulnSearcher = (*NVDAdapter)(nil)
