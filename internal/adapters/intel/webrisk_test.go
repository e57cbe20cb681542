package intel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/trustrecon/internal/core/domain"
	"github.com/lcalzada-xor/trustrecon/internal/core/ports"
)

func newWR(t *testing.T, handler http.HandlerFunc) *WebRiskAdapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	a := NewWebRiskAdapter(NewClient(), ports.StaticCredentials{ports.CredentialGoogle: "g-key"})
	a.BaseURL = srv.URL
	return a
}

func TestWebRiskRequestShape(t *testing.T) {
	var gotRawQuery string
	var gotTypes []string
	var gotURI string
	a := newWR(t, func(w http.ResponseWriter, r *http.Request) {
		gotRawQuery = r.URL.RawQuery
		gotTypes = r.URL.Query()["threatTypes"]
		gotURI = r.URL.Query().Get("uri")
		w.Write([]byte(`{}`))
	})

	res := a.Check(context.Background(), domain.URLQuery{URL: "https://example.com/path?x=1"})

	require.True(t, res.OK())
	assert.Equal(t, []string{"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE"}, gotTypes,
		"threatTypes must travel as repeated parameters")
	assert.Equal(t, "https://example.com/path?x=1", gotURI)
	assert.True(t, strings.Contains(gotRawQuery, "uri=https%3A%2F%2Fexample.com%2Fpath%3Fx%3D1"),
		"uri must be percent-encoded in the raw query, got %q", gotRawQuery)
}

func TestWebRiskNoThreatIsSafe(t *testing.T) {
	a := newWR(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	})

	res := a.Check(context.Background(), domain.URLQuery{URL: "https://example.com"})

	require.True(t, res.OK())
	assert.True(t, res.Safe)
	assert.Empty(t, res.Threats)
}

func TestWebRiskThreatTypesExpand(t *testing.T) {
	body := `{"threat":{"threatTypes":["MALWARE","SOCIAL_ENGINEERING","SOME_FUTURE_TYPE"],"expireTime":"2026-02-01T00:00:00Z"}}`
	a := newWR(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(body))
	})

	res := a.Check(context.Background(), domain.URLQuery{URL: "https://evil.example"})

	require.True(t, res.OK())
	assert.False(t, res.Safe)
	require.Len(t, res.Threats, 3)

	assert.Equal(t, "MALWARE", res.Threats[0].Type)
	assert.Equal(t, "Sites that host or distribute malicious software", res.Threats[0].Description)
	assert.Equal(t, "2026-02-01T00:00:00Z", res.Threats[0].ExpireTime)

	// Unknown enums keep the raw name as their description.
	assert.Equal(t, "SOME_FUTURE_TYPE", res.Threats[2].Type)
	assert.Equal(t, "SOME_FUTURE_TYPE", res.Threats[2].Description)
}

func TestWebRiskRejectsMalformedURLLocally(t *testing.T) {
	called := false
	a := newWR(t, func(http.ResponseWriter, *http.Request) {
		called = true
	})

	res := a.Check(context.Background(), domain.URLQuery{URL: "%%%"})

	assert.Equal(t, domain.KindBadRequest, res.Kind)
	assert.False(t, called)
}

func TestWebRiskMissingKey(t *testing.T) {
	a := NewWebRiskAdapter(NewClient(), ports.StaticCredentials{})

	res := a.Check(context.Background(), domain.URLQuery{URL: "https://example.com"})

	assert.Equal(t, domain.KindMissingCredential, res.Kind)
}

func TestWebRiskForbidden(t *testing.T) {
	a := newWR(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	res := a.Check(context.Background(), domain.URLQuery{URL: "https://example.com"})

	assert.Equal(t, domain.KindRateLimited, res.Kind)
}
