package intel

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/lcalzada-xor/trustrecon/internal/core/domain"
	"github.com/lcalzada-xor/trustrecon/internal/core/ports"
)

const (
	vtProvider       = "VirusTotal"
	defaultVTBaseURL = "https://www.virustotal.com/api/v3/files/"
)

// VirusTotalAdapter looks up a file's multi-engine reputation by its
// SHA-256, SHA-1 or MD5 hash. An API key is required.
type VirusTotalAdapter struct {
	client *Client
	creds  ports.Credentials

	// BaseURL is overridable for tests. The hash is appended to it.
	BaseURL string
}

// NewVirusTotalAdapter creates a new file-reputation adapter.
func NewVirusTotalAdapter(client *Client, creds ports.Credentials) *VirusTotalAdapter {
	return &VirusTotalAdapter{client: client, creds: creds, BaseURL: defaultVTBaseURL}
}

type vtResponse struct {
	Data struct {
		Attributes *vtAttributes `json:"attributes"`
	} `json:"data"`
}

type vtAttributes struct {
	SHA256          string   `json:"sha256"`
	SHA1            string   `json:"sha1"`
	MD5             string   `json:"md5"`
	MeaningfulName  string   `json:"meaningful_name"`
	Size            int64    `json:"size"`
	TypeDescription string   `json:"type_description"`
	Magic           string   `json:"magic"`
	Tags            []string `json:"tags"`

	LastAnalysisStats struct {
		Malicious  int `json:"malicious"`
		Suspicious int `json:"suspicious"`
		Undetected int `json:"undetected"`
		Harmless   int `json:"harmless"`
	} `json:"last_analysis_stats"`

	SignatureInfo struct {
		Verified string `json:"verified"`
		Product  string `json:"product"`
		Signers  string `json:"signers"`
	} `json:"signature_info"`

	LastAnalysisResults map[string]struct {
		Category string `json:"category"`
		Result   string `json:"result"`
	} `json:"last_analysis_results"`
}

// Scan retrieves the reputation report for a file hash.
func (a *VirusTotalAdapter) Scan(ctx context.Context, q domain.HashQuery) domain.FileResult {
	res := domain.FileResult{Hash: q.Hash, Risk: domain.RiskUnknown}

	key, ok := a.creds.Credential(ports.CredentialVirusTotal)
	if !ok {
		res.Status = domain.Failed(vtProvider, domain.KindMissingCredential,
			"API key not found.", "Please configure the VirusTotal API key.")
		record(vtProvider, res.Kind)
		return res
	}

	req, err := http.NewRequest(http.MethodGet, a.BaseURL+q.Hash, nil)
	if err != nil {
		res.Status = domain.Failed(vtProvider, domain.KindUnexpected, err.Error(), "")
		record(vtProvider, res.Kind)
		return res
	}
	req.Header.Set("x-apikey", key)

	var body vtResponse
	if cerr := a.client.do(ctx, req, &body); cerr != nil {
		res.Status = a.mapError(q.Hash, cerr)
		record(vtProvider, res.Kind)
		return res
	}

	attrs := body.Data.Attributes
	if attrs == nil {
		res.Status = domain.Failed(vtProvider, domain.KindUnexpected,
			fmt.Sprintf("Invalid response format for hash '%s'.", q.Hash), "")
		record(vtProvider, res.Kind)
		return res
	}

	res.Status = domain.Succeeded(vtProvider)
	fillFileResult(&res, attrs)
	record(vtProvider, res.Kind)
	return res
}

func (a *VirusTotalAdapter) mapError(hash string, cerr *callError) domain.Status {
	switch cerr.Kind {
	case domain.KindRateLimited:
		return domain.Failed(vtProvider, cerr.Kind,
			"Rate limit exceeded or unauthorized.",
			"Please check your API key and rate limits.")
	case domain.KindNotFound:
		return domain.Failed(vtProvider, cerr.Kind,
			fmt.Sprintf("File with hash '%s' not found in the database.", hash), "")
	case domain.KindTimeout:
		return domain.Failed(vtProvider, cerr.Kind, "Request timed out.", timeoutRemedy)
	case domain.KindBadRequest:
		return domain.Failed(vtProvider, cerr.Kind, "Bad request. "+cerr.Body, "")
	case domain.KindUpstream:
		return domain.Failed(vtProvider, cerr.Kind,
			fmt.Sprintf("Received status %d. %s", cerr.Status, cerr.Body), "")
	}
	return domain.Failed(vtProvider, domain.KindUnexpected, cerr.Body, "")
}

func fillFileResult(res *domain.FileResult, attrs *vtAttributes) {
	res.SHA256 = orUnknown(attrs.SHA256)
	res.SHA1 = orUnknown(attrs.SHA1)
	res.MD5 = orUnknown(attrs.MD5)
	res.Name = orUnknown(attrs.MeaningfulName)
	res.Size = attrs.Size
	res.FileType = orUnknown(attrs.TypeDescription)
	res.Magic = orUnknown(attrs.Magic)
	res.Tags = attrs.Tags

	stats := attrs.LastAnalysisStats
	res.Malicious = stats.Malicious
	res.Suspicious = stats.Suspicious
	res.Harmless = stats.Harmless
	res.Undetected = stats.Undetected
	res.TotalEngines = stats.Malicious + stats.Suspicious + stats.Undetected + stats.Harmless
	res.Risk = domain.DeriveRisk(stats.Malicious, stats.Suspicious, stats.Harmless)

	// Only the exact verification literal counts as signed; any other
	// state (partial, unknown, absent) is treated as unsigned.
	res.Signed = attrs.SignatureInfo.Verified == "Signed"
	res.Signer = attrs.SignatureInfo.Product
	if res.Signer == "" {
		res.Signer = "Not signed"
	}
	res.Signers = attrs.SignatureInfo.Signers
	if res.Signers == "" {
		res.Signers = "N/A"
	}

	// Engine results arrive as a map; sort names so output is stable.
	engines := make([]string, 0, len(attrs.LastAnalysisResults))
	for name := range attrs.LastAnalysisResults {
		engines = append(engines, name)
	}
	sort.Strings(engines)
	for _, name := range engines {
		r := attrs.LastAnalysisResults[name]
		if r.Category != "malicious" && r.Category != "suspicious" {
			continue
		}
		detection := r.Result
		if detection == "" {
			detection = "Unknown threat"
		}
		res.Detections = append(res.Detections, fmt.Sprintf("%s: %s", name, detection))
	}
}

var _ ports.FileScanner = (*VirusTotalAdapter)(nil)
