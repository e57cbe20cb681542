package domain

import (
	"net/url"
	"strings"
)

// NormalizeQueryKey derives the cache key for a user query. Queries
// differing only in case or surrounding whitespace map to the same key.
func NormalizeQueryKey(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

const (
	// MaxVulnResults is the NVD API hard cap on resultsPerPage.
	MaxVulnResults = 100

	// DefaultVulnResults is used when the caller gives no cap.
	DefaultVulnResults = 20
)

// VulnQuery is the input to the vulnerability-search adapter. Multiple
// keywords act as an implicit AND on the upstream side.
type VulnQuery struct {
	Keywords   []string
	MaxResults int
}

// KeywordSearch joins the keywords into the upstream search string.
func (q VulnQuery) KeywordSearch() string {
	return strings.Join(q.Keywords, " ")
}

// ClampedResults returns the result cap bounded to the provider maximum.
func (q VulnQuery) ClampedResults() int {
	if q.MaxResults <= 0 {
		return DefaultVulnResults
	}
	if q.MaxResults > MaxVulnResults {
		return MaxVulnResults
	}
	return q.MaxResults
}

// HashQuery identifies a file by SHA-256, SHA-1 or MD5 hash. The hash
// is passed through as-is; upstream validates it.
type HashQuery struct {
	Hash string
}

// URLQuery is the input to the URL-reputation adapters.
type URLQuery struct {
	URL string
}

// Valid reports whether the URL is well-formed enough to send upstream.
func (q URLQuery) Valid() bool {
	u, err := url.Parse(q.URL)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// DomainQuery is the input to the header-security scan adapter.
type DomainQuery struct {
	Host string
}
