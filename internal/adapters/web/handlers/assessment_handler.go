package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lcalzada-xor/trustrecon/internal/adapters/reporting"
	"github.com/lcalzada-xor/trustrecon/internal/core/services/assessment"
)

// AssessmentHandler handles trust assessment requests
type AssessmentHandler struct {
	Assessor    *assessment.Assessor
	PDFExporter *reporting.PDFExporter
}

// NewAssessmentHandler creates a new AssessmentHandler
func NewAssessmentHandler(assessor *assessment.Assessor, pdfExporter *reporting.PDFExporter) *AssessmentHandler {
	return &AssessmentHandler{
		Assessor:    assessor,
		PDFExporter: pdfExporter,
	}
}

// assessmentRequest is the POST body for a new assessment.
type assessmentRequest struct {
	Query    string   `json:"query"`
	Keywords []string `json:"keywords,omitempty"`
	FileHash string   `json:"file_hash,omitempty"`
	URL      string   `json:"url,omitempty"`
	Domain   string   `json:"domain,omitempty"`
	MaxCVEs  int      `json:"max_cves,omitempty"`
}

// HandleAssess runs a new trust assessment
func (h *AssessmentHandler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	var req assessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "Missing required field: query", http.StatusBadRequest)
		return
	}

	report := h.Assessor.Assess(r.Context(), assessment.Request{
		Query:    req.Query,
		Keywords: req.Keywords,
		FileHash: req.FileHash,
		URL:      req.URL,
		Domain:   req.Domain,
		MaxCVEs:  req.MaxCVEs,
	})

	writeJSON(w, http.StatusOK, report)
}

// HandleGet returns the cached report for a query
func (h *AssessmentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	query := mux.Vars(r)["query"]

	report, ok := h.Assessor.Cached(r.Context(), query)
	if !ok {
		http.Error(w, fmt.Sprintf("No cached assessment for '%s'", query), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// HandleDownloadPDF renders the cached report for a query as PDF
func (h *AssessmentHandler) HandleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	query := mux.Vars(r)["query"]

	report, ok := h.Assessor.Cached(r.Context(), query)
	if !ok {
		http.Error(w, fmt.Sprintf("No cached assessment for '%s'", query), http.StatusNotFound)
		return
	}

	data, err := h.PDFExporter.ExportTrustReport(report)
	if err != nil {
		slog.Error("PDF export failed", "error", err, "query", query)
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	id := report.AssessmentID
	if len(id) > 8 {
		id = id[:8]
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"trust-assessment-%s.pdf\"", id))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
