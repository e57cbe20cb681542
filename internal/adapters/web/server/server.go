// Package server hosts the HTTP API for trust assessments.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lcalzada-xor/trustrecon/internal/adapters/reporting"
	"github.com/lcalzada-xor/trustrecon/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/trustrecon/internal/core/services/assessment"
)

// Server handles HTTP connections.
type Server struct {
	Addr              string
	AssessmentHandler *handlers.AssessmentHandler
	srv               *http.Server
}

// NewServer creates a new web server.
func NewServer(addr string, assessor *assessment.Assessor, pdfExporter *reporting.PDFExporter) *Server {
	return &Server{
		Addr:              addr,
		AssessmentHandler: handlers.NewAssessmentHandler(assessor, pdfExporter),
	}
}

// Run starts the server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	handler := SetupRoutes(s)

	// "trustrecon-server" is the name of the operation (span)
	instrumentedHandler := otelhttp.NewHandler(handler, "trustrecon-server")

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           instrumentedHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown implementation
	go func() {
		<-ctx.Done()
		slog.Info("Web server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Web server shutdown error", "error", err)
		}
	}()

	slog.Info("Web server listening", "addr", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
