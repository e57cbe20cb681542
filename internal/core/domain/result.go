package domain

import "fmt"

// ErrorKind classifies why a provider lookup failed. Adapters never
// return Go errors for upstream failures; they return a result value
// tagged with one of these kinds so an assessment can keep going when
// individual providers are down.
type ErrorKind int

const (
	// KindNone marks a successful lookup.
	KindNone ErrorKind = iota

	// KindMissingCredential means the required API key was not
	// configured. No network call is made in this case.
	KindMissingCredential

	// KindTimeout means the single request attempt exceeded the fixed
	// per-request timeout.
	KindTimeout

	// KindRateLimited covers HTTP 403. The upstream APIs use 403 for
	// both "unauthorized" and "rate limited" and the two cannot be
	// told apart, so they are reported as one kind.
	KindRateLimited

	// KindNotFound covers HTTP 404.
	KindNotFound

	// KindBadRequest covers HTTP 400.
	KindBadRequest

	// KindUpstream covers any other non-2xx status. The raw response
	// body is carried in the message.
	KindUpstream

	// KindScanError means the provider answered 200 transport-wise but
	// signalled inside the body that the scan itself failed.
	KindScanError

	// KindUnexpected covers transport and parse failures that do not
	// fit any other kind.
	KindUnexpected
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindMissingCredential:
		return "missing_credential"
	case KindTimeout:
		return "timeout"
	case KindRateLimited:
		return "rate_limited"
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindUpstream:
		return "upstream_error"
	case KindScanError:
		return "scan_error"
	case KindUnexpected:
		return "unexpected_error"
	}
	return "unknown"
}

// Status is the uniform outcome header embedded in every provider
// result. Tests and callers branch on Kind; Err produces the
// human-readable explanation.
type Status struct {
	Provider string    `json:"provider"`
	Kind     ErrorKind `json:"kind"`
	Message  string    `json:"message,omitempty"`
	Remedy   string    `json:"remedy,omitempty"`
}

// OK reports whether the lookup succeeded.
func (s Status) OK() bool {
	return s.Kind == KindNone
}

// Err renders the failure as display text naming the provider, the
// failure kind and, when known, a suggested remediation.
func (s Status) Err() string {
	if s.OK() {
		return ""
	}
	out := fmt.Sprintf("%s API Error (%s): %s", s.Provider, s.Kind, s.Message)
	if s.Remedy != "" {
		out += " " + s.Remedy
	}
	return out
}

// Succeeded builds a success status for a provider.
func Succeeded(provider string) Status {
	return Status{Provider: provider, Kind: KindNone}
}

// Failed builds a failure status for a provider.
func Failed(provider string, kind ErrorKind, message, remedy string) Status {
	return Status{Provider: provider, Kind: kind, Message: message, Remedy: remedy}
}
