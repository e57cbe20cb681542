package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/trustrecon/internal/core/domain"
	"github.com/lcalzada-xor/trustrecon/internal/core/ports"
)

const testHash = "275a021bbfb6489e54d471899f7db9d1663fc695ec2fe2a2c4538aabf651fd0f"

func newVT(t *testing.T, handler http.HandlerFunc) *VirusTotalAdapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	a := NewVirusTotalAdapter(NewClient(), ports.StaticCredentials{ports.CredentialVirusTotal: "vt-key"})
	a.BaseURL = srv.URL + "/files/"
	return a
}

func vtBody(attrs map[string]any) string {
	b, _ := json.Marshal(map[string]any{"data": map[string]any{"attributes": attrs}})
	return string(b)
}

func TestVirusTotalMissingKeySkipsNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	t.Cleanup(srv.Close)

	a := NewVirusTotalAdapter(NewClient(), ports.StaticCredentials{})
	a.BaseURL = srv.URL + "/files/"

	res := a.Scan(context.Background(), domain.HashQuery{Hash: testHash})

	assert.Equal(t, domain.KindMissingCredential, res.Kind)
	assert.False(t, called, "no request may be sent without a configured key")
}

func TestVirusTotalRequestShape(t *testing.T) {
	var gotPath, gotKey string
	a := newVT(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-apikey")
		fmt.Fprint(w, vtBody(map[string]any{"sha256": testHash}))
	})

	res := a.Scan(context.Background(), domain.HashQuery{Hash: testHash})

	require.True(t, res.OK())
	assert.Equal(t, "/files/"+testHash, gotPath)
	assert.Equal(t, "vt-key", gotKey)
}

func TestVirusTotalParsesReport(t *testing.T) {
	attrs := map[string]any{
		"sha256":           testHash,
		"sha1":             "da39a3ee5e6b4b0d3255bfef95601890afd80709",
		"md5":              "d41d8cd98f00b204e9800998ecf8427e",
		"meaningful_name":  "setup.exe",
		"size":             2048,
		"type_description": "Win32 EXE",
		"magic":            "PE32 executable",
		"tags":             []string{"peexe", "signed"},
		"last_analysis_stats": map[string]int{
			"malicious": 2, "suspicious": 1, "undetected": 60, "harmless": 4,
		},
		"signature_info": map[string]string{
			"verified": "Signed",
			"product":  "Example Installer",
			"signers":  "Example Corp; Example CA",
		},
		"last_analysis_results": map[string]map[string]string{
			"EngineA": {"category": "malicious", "result": "Trojan.Agent"},
			"EngineB": {"category": "undetected", "result": ""},
			"EngineC": {"category": "suspicious", "result": ""},
		},
	}
	a := newVT(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, vtBody(attrs))
	})

	res := a.Scan(context.Background(), domain.HashQuery{Hash: testHash})

	require.True(t, res.OK())
	assert.Equal(t, "setup.exe", res.Name)
	assert.Equal(t, int64(2048), res.Size)
	assert.Equal(t, 67, res.TotalEngines)
	assert.Equal(t, domain.RiskHigh, res.Risk)
	assert.True(t, res.Signed)
	assert.Equal(t, "Example Installer", res.Signer)

	// Harmless engines are filtered out; empty results get a fallback.
	require.Len(t, res.Detections, 2)
	assert.Equal(t, "EngineA: Trojan.Agent", res.Detections[0])
	assert.Equal(t, "EngineC: Unknown threat", res.Detections[1])
}

func TestVirusTotalSignedRequiresExactLiteral(t *testing.T) {
	tests := []struct {
		verified string
		want     bool
	}{
		{"Signed", true},
		{"signed", false},
		{"Unsigned", false},
		{"A certificate was explicitly revoked", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run("verified="+tt.verified, func(t *testing.T) {
			a := newVT(t, func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, vtBody(map[string]any{
					"signature_info": map[string]string{"verified": tt.verified},
				}))
			})

			res := a.Scan(context.Background(), domain.HashQuery{Hash: testHash})

			require.True(t, res.OK())
			assert.Equal(t, tt.want, res.Signed)
		})
	}
}

func TestVirusTotalUnsignedDefaults(t *testing.T) {
	a := newVT(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, vtBody(map[string]any{"sha256": testHash}))
	})

	res := a.Scan(context.Background(), domain.HashQuery{Hash: testHash})

	require.True(t, res.OK())
	assert.False(t, res.Signed)
	assert.Equal(t, "Not signed", res.Signer)
	assert.Equal(t, "N/A", res.Signers)
	assert.Equal(t, domain.RiskUnknown, res.Risk)
}

func TestVirusTotalMissingAttributes(t *testing.T) {
	a := newVT(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data":{}}`)
	})

	res := a.Scan(context.Background(), domain.HashQuery{Hash: testHash})

	assert.Equal(t, domain.KindUnexpected, res.Kind)
	assert.Contains(t, res.Message, testHash)
}

func TestVirusTotalNotFound(t *testing.T) {
	a := newVT(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	res := a.Scan(context.Background(), domain.HashQuery{Hash: testHash})

	assert.Equal(t, domain.KindNotFound, res.Kind)
	assert.Contains(t, res.Message, testHash)
}

func TestVirusTotalForbidden(t *testing.T) {
	a := newVT(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	res := a.Scan(context.Background(), domain.HashQuery{Hash: testHash})

	assert.Equal(t, domain.KindRateLimited, res.Kind)
	assert.Contains(t, res.Message, "Rate limit exceeded or unauthorized")
}
