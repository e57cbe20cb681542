package intel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/trustrecon/internal/core/domain"
	"github.com/lcalzada-xor/trustrecon/internal/core/ports"
)

func newSB(t *testing.T, handler http.HandlerFunc) *SafeBrowsingAdapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	a := NewSafeBrowsingAdapter(NewClient(), ports.StaticCredentials{ports.CredentialGoogle: "g-key"})
	a.BaseURL = srv.URL
	return a
}

func TestSafeBrowsingRequestShape(t *testing.T) {
	var gotKey string
	var gotBody sbRequest
	a := newSB(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{}`))
	})

	res := a.Check(context.Background(), domain.URLQuery{URL: "https://example.com/dl"})

	require.True(t, res.OK())
	assert.Equal(t, "g-key", gotKey)
	assert.Equal(t, "trustrecon", gotBody.Client.ClientID)
	assert.ElementsMatch(t, []string{
		"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE", "POTENTIALLY_HARMFUL_APPLICATION",
	}, gotBody.ThreatInfo.ThreatTypes)
	assert.Equal(t, []string{"ANY_PLATFORM"}, gotBody.ThreatInfo.PlatformTypes)
	assert.Equal(t, []string{"URL"}, gotBody.ThreatInfo.ThreatEntryTypes)
	require.Len(t, gotBody.ThreatInfo.ThreatEntries, 1)
	assert.Equal(t, "https://example.com/dl", gotBody.ThreatInfo.ThreatEntries[0].URL)
}

func TestSafeBrowsingEmptyResponseIsSafe(t *testing.T) {
	a := newSB(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	})

	res := a.Check(context.Background(), domain.URLQuery{URL: "https://example.com"})

	require.True(t, res.OK())
	assert.True(t, res.Safe)
	assert.Empty(t, res.Threats)
}

func TestSafeBrowsingMatchesAreThreats(t *testing.T) {
	body := `{"matches":[
		{
			"threatType": "MALWARE",
			"platformType": "ANY_PLATFORM",
			"threatEntryType": "URL",
			"threat": {"url": "https://evil.example"},
			"cacheDuration": "300s",
			"threatEntryMetadata": {"entries": [{"key": "malware_threat_type", "value": "LANDING"}]}
		},
		{"threatType": "SOCIAL_ENGINEERING", "threat": {"url": ""}}
	]}`
	a := newSB(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(body))
	})

	res := a.Check(context.Background(), domain.URLQuery{URL: "https://evil.example"})

	require.True(t, res.OK())
	assert.False(t, res.Safe)
	require.Len(t, res.Threats, 2)

	first := res.Threats[0]
	assert.Equal(t, "MALWARE", first.Type)
	assert.Equal(t, "300s", first.CacheDuration)
	require.Len(t, first.Metadata, 1)
	assert.Equal(t, "malware_threat_type", first.Metadata[0].Key)

	// An empty threat URL falls back to the queried URL.
	assert.Equal(t, "https://evil.example", res.Threats[1].URL)
}

func TestSafeBrowsingRejectsMalformedURLLocally(t *testing.T) {
	called := false
	a := newSB(t, func(http.ResponseWriter, *http.Request) {
		called = true
	})

	res := a.Check(context.Background(), domain.URLQuery{URL: "not a url"})

	assert.Equal(t, domain.KindBadRequest, res.Kind)
	assert.False(t, called, "malformed URLs must be rejected without a network call")
}

func TestSafeBrowsingMissingKey(t *testing.T) {
	a := NewSafeBrowsingAdapter(NewClient(), ports.StaticCredentials{})

	res := a.Check(context.Background(), domain.URLQuery{URL: "https://example.com"})

	assert.Equal(t, domain.KindMissingCredential, res.Kind)
}

func TestSafeBrowsingName(t *testing.T) {
	a := NewSafeBrowsingAdapter(NewClient(), ports.StaticCredentials{})
	assert.Equal(t, "Safe Browsing", a.Name())
}
