package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/trustrecon/internal/adapters/reporting"
	"github.com/lcalzada-xor/trustrecon/internal/core/domain"
	"github.com/lcalzada-xor/trustrecon/internal/core/services/assessment"
)

type memCache struct {
	entries map[string]domain.TrustReport
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]domain.TrustReport)}
}

func (c *memCache) Save(_ context.Context, query string, report domain.TrustReport) bool {
	c.entries[domain.NormalizeQueryKey(query)] = report
	return true
}

func (c *memCache) Get(_ context.Context, query string) (*domain.TrustReport, bool) {
	r, ok := c.entries[domain.NormalizeQueryKey(query)]
	if !ok {
		return nil, false
	}
	return &r, true
}

func (c *memCache) Close() error { return nil }

func newHandler(cache *memCache) *AssessmentHandler {
	assessor := assessment.NewAssessor(nil, nil, nil, nil, cache)
	return NewAssessmentHandler(assessor, reporting.NewPDFExporter())
}

func TestHandleAssess(t *testing.T) {
	h := newHandler(newMemCache())

	req := httptest.NewRequest(http.MethodPost, "/api/assessments",
		strings.NewReader(`{"query": "Slack"}`))
	rec := httptest.NewRecorder()

	h.HandleAssess(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report domain.TrustReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "Slack", report.ProductName)
	assert.NotEmpty(t, report.AssessmentID)
}

func TestHandleAssessValidation(t *testing.T) {
	h := newHandler(newMemCache())

	t.Run("missing query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/assessments", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		h.HandleAssess(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/assessments", strings.NewReader(`not-json`))
		rec := httptest.NewRecorder()

		h.HandleAssess(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleGet(t *testing.T) {
	cache := newMemCache()
	cache.Save(context.Background(), "Slack", domain.TrustReport{
		ProductName:  "Slack",
		AssessmentID: "11111111-2222-3333-4444-555555555555",
	})
	h := newHandler(cache)

	t.Run("cached report", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/assessments/slack", nil)
		req = mux.SetURLVars(req, map[string]string{"query": "slack"})
		rec := httptest.NewRecorder()

		h.HandleGet(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var report domain.TrustReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, "Slack", report.ProductName)
	})

	t.Run("unknown query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/assessments/zoom", nil)
		req = mux.SetURLVars(req, map[string]string{"query": "zoom"})
		rec := httptest.NewRecorder()

		h.HandleGet(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleDownloadPDF(t *testing.T) {
	cache := newMemCache()
	cache.Save(context.Background(), "Slack", domain.TrustReport{
		ProductName:  "Slack",
		AssessmentID: "11111111-2222-3333-4444-555555555555",
		TrustScore:   domain.TrustScore{Score: 82, Confidence: "high"},
		GeneratedAt:  "2026-01-01T00:00:00Z",
	})
	h := newHandler(cache)

	req := httptest.NewRequest(http.MethodGet, "/api/assessments/slack/pdf", nil)
	req = mux.SetURLVars(req, map[string]string{"query": "slack"})
	rec := httptest.NewRecorder()

	h.HandleDownloadPDF(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "trust-assessment-11111111.pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"), "body must be a PDF document")
}

// A cache row written by an older build may carry a short or missing
// assessment ID. Downloading it must still succeed.
func TestHandleDownloadPDFShortAssessmentID(t *testing.T) {
	for _, id := range []string{"", "abc"} {
		cache := newMemCache()
		cache.Save(context.Background(), "Slack", domain.TrustReport{
			ProductName:  "Slack",
			AssessmentID: id,
			GeneratedAt:  "2026-01-01T00:00:00Z",
		})
		h := newHandler(cache)

		req := httptest.NewRequest(http.MethodGet, "/api/assessments/slack/pdf", nil)
		req = mux.SetURLVars(req, map[string]string{"query": "slack"})
		rec := httptest.NewRecorder()

		h.HandleDownloadPDF(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, "id %q", id)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "trust-assessment-"+id+".pdf")
		assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"), "body must be a PDF document")
	}
}
