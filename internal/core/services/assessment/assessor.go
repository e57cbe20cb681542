// Package assessment orchestrates the intelligence providers into a
// single software trust assessment and manages the report cache.
package assessment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/lcalzada-xor/trustrecon/internal/core/domain"
	"github.com/lcalzada-xor/trustrecon/internal/core/ports"
	"github.com/lcalzada-xor/trustrecon/internal/telemetry"
)

// Request describes one assessment. Query names the product under
// assessment and keys the cache; the remaining fields select which
// providers run.
type Request struct {
	Query    string
	Keywords []string // vulnerability database search terms
	FileHash string   // MD5, SHA-1 or SHA-256 of a release artifact
	URL      string   // download or landing page to check
	Domain   string   // host for the security header scan
	MaxCVEs  int
}

// Assessor fans an assessment request out to the configured providers,
// aggregates their findings into a TrustReport and caches the result.
type Assessor struct {
	vulns      ports.VulnSearcher
	files      ports.FileScanner
	urls       []ports.URLChecker
	headers    ports.HeaderScanner
	cache      ports.ReportCache
	calculator *TrustCalculator
}

// NewAssessor creates an assessor over the given providers. Any
// provider may be nil, in which case its intelligence area is skipped.
func NewAssessor(vulns ports.VulnSearcher, files ports.FileScanner, urls []ports.URLChecker, headers ports.HeaderScanner, cache ports.ReportCache) *Assessor {
	return &Assessor{
		vulns:      vulns,
		files:      files,
		urls:       urls,
		headers:    headers,
		cache:      cache,
		calculator: NewTrustCalculator(),
	}
}

// Cached returns the cached report for a query, if one exists.
func (a *Assessor) Cached(ctx context.Context, query string) (*domain.TrustReport, bool) {
	if a.cache == nil {
		return nil, false
	}
	return a.cache.Get(ctx, query)
}

// Assess runs the assessment. A cached report for the same query is
// returned as-is without contacting any provider. Provider failures
// degrade the report instead of failing it; a failed provider shows up
// in InsufficientDataAreas and lowers the score confidence.
func (a *Assessor) Assess(ctx context.Context, req Request) domain.TrustReport {
	ctx, span := otel.Tracer("assessment-service").Start(ctx, "Assess")
	defer span.End()

	if cached, ok := a.Cached(ctx, req.Query); ok {
		slog.Info("Serving cached trust report", "query", req.Query)
		telemetry.AssessmentsTotal.WithLabelValues("cached").Inc()
		return *cached
	}

	start := time.Now()
	slog.Info("Starting trust assessment", "query", req.Query)

	var (
		wg      sync.WaitGroup
		vuln    *domain.VulnResult
		file    *domain.FileResult
		urls    []domain.URLResult
		headers *domain.HeaderResult
	)

	if a.vulns != nil && len(req.Keywords) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := a.vulns.Search(ctx, domain.VulnQuery{Keywords: req.Keywords, MaxResults: req.MaxCVEs})
			vuln = &r
		}()
	}

	if a.files != nil && req.FileHash != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := a.files.Scan(ctx, domain.HashQuery{Hash: req.FileHash})
			file = &r
		}()
	}

	if req.URL != "" {
		urls = make([]domain.URLResult, len(a.urls))
		for i, checker := range a.urls {
			wg.Add(1)
			go func(i int, checker ports.URLChecker) {
				defer wg.Done()
				urls[i] = checker.Check(ctx, domain.URLQuery{URL: req.URL})
			}(i, checker)
		}
	}

	if a.headers != nil && req.Domain != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := a.headers.Scan(ctx, domain.DomainQuery{Host: req.Domain})
			headers = &r
		}()
	}

	wg.Wait()

	report := a.aggregate(req, vuln, file, urls, headers)

	if a.cache != nil {
		a.cache.Save(ctx, req.Query, report)
	}

	outcome := "completed"
	if len(report.InsufficientDataAreas) > 0 {
		outcome = "degraded"
	}
	telemetry.AssessmentsTotal.WithLabelValues(outcome).Inc()
	slog.Info("Trust assessment finished",
		"query", req.Query,
		"score", report.TrustScore.Score,
		"confidence", report.TrustScore.Confidence,
		"duration", time.Since(start).String())

	return report
}

// aggregate folds the provider results into the report structure.
func (a *Assessor) aggregate(req Request, vuln *domain.VulnResult, file *domain.FileResult, urls []domain.URLResult, headers *domain.HeaderResult) domain.TrustReport {
	now := time.Now().UTC()
	report := domain.TrustReport{
		ProductName:  req.Query,
		GeneratedAt:  now.Format(time.RFC3339),
		AssessmentID: uuid.NewString(),
	}

	report.TrustScore = a.calculator.Calculate(vuln, file, urls, headers)

	date := now.Format("2006-01-02")

	if vuln != nil {
		if vuln.OK() {
			report.Sources = append(report.Sources, domain.SourceAttribution{
				Type:      domain.SourceIndependent,
				Source:    vuln.Provider,
				Date:      date,
				Relevance: "Known vulnerability records",
			})
			for _, f := range vuln.Findings {
				report.CVEs = append(report.CVEs, domain.CVERecord{
					ID:        f.ID,
					Severity:  f.Severity,
					CVSS:      f.Score,
					Title:     f.Description,
					Published: f.Published,
				})
			}
			report.RawFindings = append(report.RawFindings, vuln.Render())
		} else {
			report.InsufficientDataAreas = append(report.InsufficientDataAreas, "vulnerability history")
			report.RawFindings = append(report.RawFindings, vuln.Err())
		}
	}

	if file != nil {
		if file.OK() {
			report.Sources = append(report.Sources, domain.SourceAttribution{
				Type:      domain.SourceIndependent,
				Source:    file.Provider,
				Date:      date,
				Relevance: "File reputation and signature",
			})
			switch file.Risk {
			case domain.RiskHigh, domain.RiskModerate:
				report.Considerations = append(report.Considerations, domain.Consideration{
					Title:       "Flagged release artifact",
					Description: fmt.Sprintf("%d of %d engines flagged hash %s", file.Malicious+file.Suspicious, file.TotalEngines, file.Hash),
					Severity:    considerationSeverity(file.Risk),
				})
			case domain.RiskLow:
				report.Strengths = append(report.Strengths, domain.KeyStrength{
					Title:       "Clean file reputation",
					Description: fmt.Sprintf("No engine flagged hash %s", file.Hash),
					SourceType:  domain.SourceIndependent,
				})
			}
			if file.Signed {
				report.Strengths = append(report.Strengths, domain.KeyStrength{
					Title:       "Signed release artifact",
					Description: fmt.Sprintf("Release binary carries a valid signature from %s", file.Signer),
					SourceType:  domain.SourceIndependent,
				})
			}
			report.RawFindings = append(report.RawFindings, file.Render())
		} else {
			report.InsufficientDataAreas = append(report.InsufficientDataAreas, "file reputation")
			report.RawFindings = append(report.RawFindings, file.Err())
		}
	}

	for _, u := range urls {
		if u.OK() {
			report.Sources = append(report.Sources, domain.SourceAttribution{
				Type:      domain.SourceIndependent,
				Source:    u.Provider,
				Date:      date,
				Relevance: "URL threat intelligence",
			})
			if !u.Safe {
				report.Considerations = append(report.Considerations, domain.Consideration{
					Title:       "URL flagged by " + u.Provider,
					Description: fmt.Sprintf("%s matched %d threat entries", u.URL, len(u.Threats)),
					Severity:    "high",
				})
			}
			report.RawFindings = append(report.RawFindings, u.Render())
		} else {
			report.InsufficientDataAreas = append(report.InsufficientDataAreas, "url reputation ("+strings.ToLower(u.Provider)+")")
			report.RawFindings = append(report.RawFindings, u.Err())
		}
	}

	if headers != nil {
		if headers.OK() {
			report.Sources = append(report.Sources, domain.SourceAttribution{
				Type:      domain.SourceIndependent,
				Source:    headers.Provider,
				URL:       headers.DetailsURL,
				Date:      date,
				Relevance: "Web security header posture",
			})
			if strings.HasPrefix(headers.Grade, "A") {
				report.Strengths = append(report.Strengths, domain.KeyStrength{
					Title:       "Strong security headers",
					Description: fmt.Sprintf("%s scored grade %s for its security headers", headers.Host, headers.Grade),
					SourceType:  domain.SourceIndependent,
					SourceURL:   headers.DetailsURL,
				})
			} else if headers.Grade >= "D" && headers.Grade != "N/A" && headers.Grade != domain.Unknown {
				report.Considerations = append(report.Considerations, domain.Consideration{
					Title:       "Weak security headers",
					Description: fmt.Sprintf("%s scored grade %s, failing %d of %d checks", headers.Host, headers.Grade, headers.TestsFailed, headers.TestsQuantity),
					Severity:    "medium",
				})
			}
			report.RawFindings = append(report.RawFindings, headers.Render())
		} else {
			report.InsufficientDataAreas = append(report.InsufficientDataAreas, "security headers")
			report.RawFindings = append(report.RawFindings, headers.Err())
		}
	}

	return report
}

func considerationSeverity(risk domain.RiskLevel) string {
	if risk == domain.RiskHigh {
		return "critical"
	}
	return "medium"
}
