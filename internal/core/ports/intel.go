package ports

import (
	"context"

	"github.com/lcalzada-xor/trustrecon/internal/core/domain"
)

// Credential names resolved from the runtime configuration. Absence of
// a key is not fatal to the process, only to that adapter's calls.
const (
	CredentialNVD        = "nvd_api_key"
	CredentialVirusTotal = "virustotal_api_key"
	CredentialGoogle     = "google_api_key"
)

// Credentials is the read-only capability adapters resolve API keys
// from at call time.
type Credentials interface {
	Credential(name string) (string, bool)
}

// StaticCredentials is a map-backed Credentials implementation.
type StaticCredentials map[string]string

func (c StaticCredentials) Credential(name string) (string, bool) {
	v, ok := c[name]
	if v == "" {
		return "", false
	}
	return v, ok
}

// VulnSearcher queries a vulnerability database by keywords.
type VulnSearcher interface {
	Search(ctx context.Context, q domain.VulnQuery) domain.VulnResult
}

// FileScanner looks up a file's reputation by hash.
type FileScanner interface {
	Scan(ctx context.Context, q domain.HashQuery) domain.FileResult
}

// URLChecker checks a URL against a threat-intelligence service.
type URLChecker interface {
	Name() string
	Check(ctx context.Context, q domain.URLQuery) domain.URLResult
}

// HeaderScanner scans a domain's web security headers.
type HeaderScanner interface {
	Scan(ctx context.Context, q domain.DomainQuery) domain.HeaderResult
}
