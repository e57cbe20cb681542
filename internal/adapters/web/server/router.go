package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()

	// Assessment API
	r.HandleFunc("/api/assessments", s.AssessmentHandler.HandleAssess).Methods(http.MethodPost)
	r.HandleFunc("/api/assessments/{query}", s.AssessmentHandler.HandleGet).Methods(http.MethodGet)
	r.HandleFunc("/api/assessments/{query}/pdf", s.AssessmentHandler.HandleDownloadPDF).Methods(http.MethodGet)

	// Health check
	r.HandleFunc("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}
