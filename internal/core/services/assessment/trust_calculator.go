package assessment

import (
	"fmt"
	"math"
	"strings"

	"github.com/lcalzada-xor/trustrecon/internal/core/domain"
)

// TrustCalculator derives an overall trust score from the intelligence
// gathered for an assessment
type TrustCalculator struct{}

// NewTrustCalculator creates a new trust calculator instance
func NewTrustCalculator() *TrustCalculator {
	return &TrustCalculator{}
}

// Calculate computes a 0-100 trust score from the collected provider
// results. Each successful provider contributes a penalty or a bonus;
// providers that failed contribute nothing and lower confidence.
func (tc *TrustCalculator) Calculate(vuln *domain.VulnResult, file *domain.FileResult, urls []domain.URLResult, headers *domain.HeaderResult) domain.TrustScore {
	score := 100.0
	sources := 0
	var reasons []string

	if vuln != nil && vuln.OK() {
		sources++
		penalty := tc.vulnPenalty(vuln)
		score -= penalty
		if penalty > 0 {
			reasons = append(reasons, fmt.Sprintf("%d known vulnerabilities (-%.0f)", len(vuln.Findings), penalty))
		} else {
			reasons = append(reasons, "no known vulnerabilities")
		}
	}

	if file != nil && file.OK() {
		sources++
		penalty := tc.filePenalty(file)
		score -= penalty
		if penalty > 0 {
			reasons = append(reasons, fmt.Sprintf("file reputation %s (-%.0f)", file.Risk, penalty))
		} else {
			reasons = append(reasons, "clean file reputation")
		}
	}

	urlChecked := false
	for _, u := range urls {
		if !u.OK() {
			continue
		}
		urlChecked = true
		if !u.Safe {
			score -= 30
			reasons = append(reasons, fmt.Sprintf("threat match on %s (-30)", u.URL))
		}
	}
	if urlChecked {
		sources++
	}

	if headers != nil && headers.OK() {
		sources++
		penalty := tc.headerPenalty(headers)
		score -= penalty
		if penalty > 0 {
			reasons = append(reasons, fmt.Sprintf("weak security headers, grade %s (-%.0f)", headers.Grade, penalty))
		} else {
			reasons = append(reasons, fmt.Sprintf("strong security headers, grade %s", headers.Grade))
		}
	}

	score = math.Max(0, math.Min(score, 100))

	return domain.TrustScore{
		Score:       int(math.Round(score)),
		Confidence:  tc.confidence(sources),
		SourceCount: sources,
		Rationale:   tc.rationale(reasons, sources),
	}
}

// vulnPenalty weighs known CVEs by severity, capped at 40 points.
func (tc *TrustCalculator) vulnPenalty(vuln *domain.VulnResult) float64 {
	var penalty float64
	for _, f := range vuln.Findings {
		switch strings.ToUpper(f.Severity) {
		case "CRITICAL":
			penalty += 10
		case "HIGH":
			penalty += 6
		case "MEDIUM":
			penalty += 3
		case "LOW":
			penalty += 1
		default:
			penalty += 2
		}
	}
	return math.Min(penalty, 40)
}

// filePenalty maps the file risk level to a fixed deduction.
func (tc *TrustCalculator) filePenalty(file *domain.FileResult) float64 {
	switch file.Risk {
	case domain.RiskHigh:
		return 40
	case domain.RiskModerate:
		return 20
	case domain.RiskLow:
		return 0
	default:
		return 5
	}
}

// headerPenalty maps the Observatory grade to a deduction. Grades run
// A+ down to F.
func (tc *TrustCalculator) headerPenalty(headers *domain.HeaderResult) float64 {
	grade := headers.Grade
	if grade == "" || grade == domain.Unknown || grade == "N/A" {
		return 5
	}
	switch grade[0] {
	case 'A':
		return 0
	case 'B':
		return 5
	case 'C':
		return 10
	case 'D':
		return 15
	default:
		return 20
	}
}

// confidence converts the number of successful sources to a level
func (tc *TrustCalculator) confidence(sources int) string {
	switch {
	case sources >= 3:
		return "high"
	case sources == 2:
		return "medium"
	default:
		return "low"
	}
}

func (tc *TrustCalculator) rationale(reasons []string, sources int) string {
	if sources == 0 {
		return "No intelligence sources responded; score reflects absence of evidence, not safety."
	}
	return fmt.Sprintf("Based on %d sources: %s.", sources, strings.Join(reasons, "; "))
}
