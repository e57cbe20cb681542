package domain

// Unknown is the sentinel for provider fields that were absent from the
// response. Adapters must fill it in rather than leaving empties, so a
// missing optional field never looks like real data downstream.
const Unknown = "Unknown"

// MaxReferenceURLs caps how many reference links a vulnerability
// finding carries.
const MaxReferenceURLs = 3

// VulnFinding is one CVE record extracted from a vulnerability search.
type VulnFinding struct {
	ID           string   `json:"id"`
	Description  string   `json:"description"`
	Score        string   `json:"score"`    // "7.5" or "Not scored"
	Severity     string   `json:"severity"` // "CRITICAL".."LOW" or Unknown
	Published    string   `json:"published"`
	LastModified string   `json:"last_modified"`
	References   []string `json:"references,omitempty"`
}

// VulnResult is the vulnerability-search adapter output.
type VulnResult struct {
	Status
	Query    string        `json:"query"`
	Total    int           `json:"total"`
	Findings []VulnFinding `json:"findings,omitempty"`
}

// RiskLevel summarizes a file-reputation verdict.
type RiskLevel string

const (
	RiskHigh     RiskLevel = "HIGH"
	RiskModerate RiskLevel = "MODERATE"
	RiskLow      RiskLevel = "LOW"
	RiskUnknown  RiskLevel = "UNKNOWN"
)

// FileResult is the file-reputation adapter output.
type FileResult struct {
	Status
	Hash         string    `json:"hash"`
	Name         string    `json:"name"`
	FileType     string    `json:"file_type"`
	Magic        string    `json:"magic"`
	Size         int64     `json:"size"`
	SHA256       string    `json:"sha256"`
	SHA1         string    `json:"sha1"`
	MD5          string    `json:"md5"`
	Tags         []string  `json:"tags,omitempty"`
	Malicious    int       `json:"malicious"`
	Suspicious   int       `json:"suspicious"`
	Harmless     int       `json:"harmless"`
	Undetected   int       `json:"undetected"`
	TotalEngines int       `json:"total_engines"`
	Signed       bool      `json:"signed"`
	Signer       string    `json:"signer"`
	Signers      string    `json:"signers"`
	Detections   []string  `json:"detections,omitempty"` // "Engine: Threat"
	Risk         RiskLevel `json:"risk"`
}

// DeriveRisk maps detection counts to a risk level. Malicious hits win
// over suspicious, suspicious over harmless; with no data at all the
// verdict is unknown.
func DeriveRisk(malicious, suspicious, harmless int) RiskLevel {
	switch {
	case malicious > 0:
		return RiskHigh
	case suspicious > 0:
		return RiskModerate
	case harmless > 0:
		return RiskLow
	}
	return RiskUnknown
}

// MetadataEntry is one key/value pair attached to a threat match.
type MetadataEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ThreatMatch is a single URL-reputation hit.
type ThreatMatch struct {
	Type          string          `json:"type"`
	Platform      string          `json:"platform,omitempty"`
	EntryType     string          `json:"entry_type,omitempty"`
	URL           string          `json:"url"`
	CacheDuration string          `json:"cache_duration,omitempty"`
	ExpireTime    string          `json:"expire_time,omitempty"`
	Description   string          `json:"description,omitempty"`
	Metadata      []MetadataEntry `json:"metadata,omitempty"`
}

// URLResult is the output of either URL-reputation adapter. Safe is
// true when the provider reported no matches for the URL.
type URLResult struct {
	Status
	URL     string        `json:"url"`
	Safe    bool          `json:"safe"`
	Threats []ThreatMatch `json:"threats,omitempty"`
}

// HeaderResult is the header-security scan adapter output.
type HeaderResult struct {
	Status
	Host          string `json:"host"`
	ScanID        int64  `json:"scan_id"`
	Grade         string `json:"grade"`
	Score         int    `json:"score"`
	HTTPStatus    int    `json:"http_status"`
	TestsPassed   int    `json:"tests_passed"`
	TestsFailed   int    `json:"tests_failed"`
	TestsQuantity int    `json:"tests_quantity"`
	ScannedAt     string `json:"scanned_at"`
	DetailsURL    string `json:"details_url"`
}
