package domain

// SourceType distinguishes vendor-asserted from independently-verified
// claims in the source attribution list.
type SourceType string

const (
	SourceVendor      SourceType = "vendor"
	SourceIndependent SourceType = "independent"
)

// SourceAttribution cites one source used in an assessment.
type SourceAttribution struct {
	Type      SourceType `json:"type"`
	Source    string     `json:"source"`
	URL       string     `json:"url,omitempty"`
	Date      string     `json:"date"` // YYYY-MM-DD
	Relevance string     `json:"relevance"`
}

// TrustScore is the headline 0-100 score with its rationale.
type TrustScore struct {
	Score       int    `json:"score"`
	Confidence  string `json:"confidence"` // low, medium, high
	SourceCount int    `json:"source_count"`
	Rationale   string `json:"rationale"`
}

// KeyStrength is a positive security finding with attribution.
type KeyStrength struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	SourceType  SourceType `json:"source_type"`
	SourceURL   string     `json:"source_url,omitempty"`
}

// Consideration is a security risk or area of concern.
type Consideration struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"` // low, medium, high, critical
}

// ComplianceCertification records an active certification.
type ComplianceCertification struct {
	Cert      string `json:"cert"`
	Issued    string `json:"issued"`
	Expires   string `json:"expires"`
	Scope     string `json:"scope"`
	Auditor   string `json:"auditor"`
	SourceURL string `json:"source_url,omitempty"`
}

// CVERecord is a vulnerability entry in the final report.
type CVERecord struct {
	ID        string `json:"id"`
	Severity  string `json:"severity"`
	CVSS      string `json:"cvss"`
	Title     string `json:"title"`
	Published string `json:"published"`
	Patched   string `json:"patched,omitempty"`
	KEV       bool   `json:"kev"`
}

// VendorInfo captures vendor reputation details.
type VendorInfo struct {
	Company        string `json:"company"`
	MarketPresence string `json:"market_presence"`
	Transparency   string `json:"transparency"`
	PSIRTPresence  string `json:"psirt_presence"`
}

// EncryptionDetails captures encryption standards and practices.
type EncryptionDetails struct {
	InTransit     string `json:"in_transit"`
	AtRest        string `json:"at_rest"`
	KeyManagement string `json:"key_management"`
	Backups       string `json:"backups"`
}

// DataResidency captures data location and retention details.
type DataResidency struct {
	PrimaryStorage string `json:"primary_storage"`
	EUResidency    string `json:"eu_residency"`
	Retention      string `json:"retention"`
	Portability    string `json:"portability"`
}

// ControlFeature is an access or admin control with plan availability.
type ControlFeature struct {
	Feature string `json:"feature"`
	Plan    string `json:"plan"`
}

// Alternative is a recommended substitute product.
type Alternative struct {
	Name   string   `json:"name"`
	Score  int      `json:"score"`
	Reason string   `json:"reason"`
	Pros   []string `json:"pros,omitempty"`
	Cons   []string `json:"cons,omitempty"`
}

// TrustReport is the terminal software trust assessment record. The
// cache treats it as an opaque serializable payload; the assessment
// service fills what the intelligence adapters can support and leaves
// the rest to downstream enrichment.
type TrustReport struct {
	CompanyName string   `json:"company_name"`
	ProductName string   `json:"product_name"`
	Vendor      string   `json:"vendor"`
	URL         string   `json:"url,omitempty"`
	Taxonomy    []string `json:"taxonomy,omitempty"`

	TrustScore       TrustScore `json:"trust_score"`
	ExecutiveSummary string     `json:"executive_summary,omitempty"`

	Strengths      []KeyStrength   `json:"strengths,omitempty"`
	Considerations []Consideration `json:"considerations,omitempty"`

	Compliance []ComplianceCertification `json:"compliance,omitempty"`

	CVEs               []CVERecord `json:"cves,omitempty"`
	VulnerabilityTrend string      `json:"vulnerability_trend,omitempty"`
	AvgPatchTime       string      `json:"avg_patch_time,omitempty"`

	VendorInfo    VendorInfo        `json:"vendor_info"`
	Encryption    EncryptionDetails `json:"encryption"`
	DataResidency DataResidency     `json:"data_residency"`

	PrivacyCompliance []string `json:"privacy_compliance,omitempty"`

	AccessControls            []ControlFeature `json:"access_controls,omitempty"`
	AdminControls             []ControlFeature `json:"admin_controls,omitempty"`
	DeploymentRecommendations string           `json:"deployment_recommendations,omitempty"`

	Alternatives []Alternative `json:"alternatives,omitempty"`

	Sources []SourceAttribution `json:"sources,omitempty"`

	GeneratedAt           string   `json:"generated_at"` // ISO 8601
	AssessmentID          string   `json:"assessment_id"`
	InsufficientDataAreas []string `json:"insufficient_data_areas,omitempty"`

	// RawFindings keeps each adapter's rendered text block for audit.
	RawFindings []string `json:"raw_findings,omitempty"`
}
