// Package reporting renders trust assessment reports for export.
package reporting

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/lcalzada-xor/trustrecon/internal/core/domain"
)

// PDFExporter exports trust reports to PDF format
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ExportTrustReport generates a PDF rendering of a trust report
func (e *PDFExporter) ExportTrustReport(report *domain.TrustReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	e.addHeader(pdf, report)
	e.addTrustScore(pdf, report)
	e.addStrengths(pdf, report)
	e.addConsiderations(pdf, report)
	e.addCVEs(pdf, report)
	e.addSources(pdf, report)
	e.addFooter(pdf, report)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}

// addHeader adds the report header
func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, report *domain.TrustReport) {
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 51, 102) // Dark blue
	pdf.CellFormat(0, 15, "Software Trust Assessment", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 14)
	pdf.SetTextColor(100, 100, 100) // Gray
	pdf.CellFormat(0, 8, report.ProductName, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", report.GeneratedAt), "", 1, "L", false, 0, "")

	pdf.Ln(8)
}

// addTrustScore adds the prominent trust score display
func (e *PDFExporter) addTrustScore(pdf *gofpdf.Fpdf, report *domain.TrustReport) {
	r, g, b := e.getScoreColor(report.TrustScore.Score)

	pdf.SetFillColor(r, g, b)
	pdf.Rect(20, pdf.GetY(), 170, 30, "F")

	y := pdf.GetY()

	pdf.SetFont("Arial", "B", 36)
	pdf.SetTextColor(255, 255, 255) // White
	pdf.SetXY(25, y+5)
	pdf.CellFormat(80, 20, fmt.Sprintf("%d/100", report.TrustScore.Score), "", 0, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 14)
	pdf.SetXY(110, y+8)
	pdf.CellFormat(80, 14, fmt.Sprintf("Confidence: %s", report.TrustScore.Confidence), "", 0, "L", false, 0, "")

	pdf.SetY(y + 35)

	if report.TrustScore.Rationale != "" {
		pdf.SetFont("Arial", "I", 9)
		pdf.SetTextColor(100, 100, 100)
		pdf.MultiCell(0, 5, report.TrustScore.Rationale, "", "L", false)
	}
	pdf.Ln(5)
}

// getScoreColor returns RGB color based on trust score
func (e *PDFExporter) getScoreColor(score int) (r, g, b int) {
	switch {
	case score >= 80:
		return 52, 199, 89 // Green
	case score >= 60:
		return 255, 204, 0 // Yellow
	case score >= 40:
		return 255, 149, 0 // Orange
	default:
		return 220, 53, 69 // Red
	}
}

// addStrengths adds the key strengths section
func (e *PDFExporter) addStrengths(pdf *gofpdf.Fpdf, report *domain.TrustReport) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Key Strengths", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(report.Strengths) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, "No verified strengths recorded", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	for _, s := range report.Strengths {
		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(52, 120, 60)
		pdf.CellFormat(0, 6, s.Title, "", 1, "L", false, 0, "")

		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(60, 60, 60)
		pdf.MultiCell(0, 5, s.Description, "", "L", false)
		pdf.Ln(2)
	}
	pdf.Ln(5)
}

// addConsiderations adds the security considerations section
func (e *PDFExporter) addConsiderations(pdf *gofpdf.Fpdf, report *domain.TrustReport) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Security Considerations", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(report.Considerations) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, "No open concerns identified", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	for _, c := range report.Considerations {
		if pdf.GetY() > 250 {
			pdf.AddPage()
		}

		r, g, b := e.getSeverityColor(c.Severity)
		pdf.SetFillColor(r, g, b)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(25, 6, c.Severity, "", 0, "C", true, 0, "")

		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(0, 51, 102)
		pdf.CellFormat(0, 6, "  "+c.Title, "", 1, "L", false, 0, "")
		pdf.Ln(1)

		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(60, 60, 60)
		pdf.MultiCell(0, 5, c.Description, "", "L", false)
		pdf.Ln(3)
	}
	pdf.Ln(5)
}

// getSeverityColor returns RGB color based on severity label
func (e *PDFExporter) getSeverityColor(severity string) (r, g, b int) {
	switch severity {
	case "critical":
		return 220, 53, 69 // Red
	case "high":
		return 255, 149, 0 // Orange
	case "medium":
		return 255, 204, 0 // Yellow
	default:
		return 52, 199, 89 // Green
	}
}

// addCVEs adds the known vulnerabilities table
func (e *PDFExporter) addCVEs(pdf *gofpdf.Fpdf, report *domain.TrustReport) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Known Vulnerabilities", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(report.CVEs) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, "No vulnerability records found", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(60, 60, 60)

	pdf.CellFormat(40, 8, "CVE ID", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Severity", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 8, "CVSS", "1", 0, "C", true, 0, "")
	pdf.CellFormat(85, 8, "Summary", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, cve := range report.CVEs {
		if pdf.GetY() > 260 {
			pdf.AddPage()
		}

		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(40, 7, cve.ID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, cve.Severity, "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 7, cve.CVSS, "1", 0, "C", false, 0, "")

		title := cve.Title
		if runes := []rune(title); len(runes) > 55 {
			title = string(runes[:52]) + "..."
		}
		pdf.CellFormat(85, 7, title, "1", 1, "L", false, 0, "")
	}
	pdf.Ln(8)
}

// addSources adds the source attribution list
func (e *PDFExporter) addSources(pdf *gofpdf.Fpdf, report *domain.TrustReport) {
	if len(report.Sources) == 0 {
		return
	}

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Intelligence Sources", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(60, 60, 60)
	for _, s := range report.Sources {
		line := fmt.Sprintf("%s (%s) - %s", s.Source, s.Type, s.Relevance)
		pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}

// addFooter adds the report footer
func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, report *domain.TrustReport) {
	pdf.SetY(-20)

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)

	id := report.AssessmentID
	if len(id) > 8 {
		id = id[:8]
	}
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	footerText := fmt.Sprintf("Generated by trustrecon | Assessment ID: %s", id)
	pdf.CellFormat(0, 5, footerText, "", 1, "C", false, 0, "")
}
