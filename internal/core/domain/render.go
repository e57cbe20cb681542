package domain

import (
	"fmt"
	"strings"
)

// Rendering turns provider results into the text blocks surfaced to the
// report consumer. It is kept apart from the result types so callers
// can branch on Status.Kind without string matching.

const (
	descriptionDisplayLimit = 300
	detectionDisplayLimit   = 10

	ruleHeavy = "================================================================================"
	ruleLight = "--------------------------------------------------------------------------------"
)

// truncate shortens s to limit characters for display, appending an
// ellipsis when cut. Counts runes, not bytes, so a multi-byte character
// is never split.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// Render formats a vulnerability search for display.
func (r VulnResult) Render() string {
	if !r.OK() {
		return r.Err()
	}
	if len(r.Findings) == 0 {
		return fmt.Sprintf("No CVE records found for keywords: %s", r.Query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CVE Search Results for '%s':\n", r.Query)
	fmt.Fprintf(&b, "Found %d total results (showing %d)\n\n", r.Total, len(r.Findings))

	for _, f := range r.Findings {
		fmt.Fprintf(&b, "--- %s ---\n", f.ID)
		fmt.Fprintf(&b, "Description: %s\n", truncate(f.Description, descriptionDisplayLimit))
		fmt.Fprintf(&b, "CVSS Score: %s (%s)\n", f.Score, f.Severity)
		fmt.Fprintf(&b, "Published: %s\n", f.Published)
		fmt.Fprintf(&b, "Last Modified: %s\n", f.LastModified)
		refs := "No references available"
		if len(f.References) > 0 {
			refs = strings.Join(f.References, "\n  ")
		}
		fmt.Fprintf(&b, "References:\n  %s\n", refs)
		b.WriteString("\n" + ruleLight + "\n\n")
	}
	return b.String()
}

// Render formats a file-reputation report for display.
func (r FileResult) Render() string {
	if !r.OK() {
		return r.Err()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "File Reputation Report for '%s':\n", r.Name)
	b.WriteString(ruleHeavy + "\n\n")

	b.WriteString("FILE INFORMATION:\n")
	fmt.Fprintf(&b, "  Name: %s\n", r.Name)
	fmt.Fprintf(&b, "  Type: %s\n", r.FileType)
	fmt.Fprintf(&b, "  Magic: %s\n", r.Magic)
	fmt.Fprintf(&b, "  Size: %d bytes\n", r.Size)
	fmt.Fprintf(&b, "  SHA-256: %s\n", r.SHA256)
	fmt.Fprintf(&b, "  SHA-1: %s\n", r.SHA1)
	fmt.Fprintf(&b, "  MD5: %s\n", r.MD5)
	tags := "None"
	if len(r.Tags) > 0 {
		tags = strings.Join(r.Tags, ", ")
	}
	fmt.Fprintf(&b, "  Tags: %s\n\n", tags)

	b.WriteString("SECURITY ASSESSMENT:\n")
	fmt.Fprintf(&b, "  Total Engines Scanned: %d\n", r.TotalEngines)
	fmt.Fprintf(&b, "  Malicious Detections: %d\n", r.Malicious)
	fmt.Fprintf(&b, "  Suspicious Detections: %d\n", r.Suspicious)
	fmt.Fprintf(&b, "  Harmless: %d\n", r.Harmless)
	fmt.Fprintf(&b, "  Undetected: %d\n", r.Undetected)
	fmt.Fprintf(&b, "  Risk Level: %s RISK\n\n", r.Risk)

	b.WriteString("SIGNATURE INFORMATION:\n")
	if r.Signed {
		b.WriteString("  Signed: Yes\n")
		fmt.Fprintf(&b, "  Signer: %s\n", r.Signer)
		fmt.Fprintf(&b, "  Signers: %s\n", r.Signers)
	} else {
		b.WriteString("  Signed: No\n")
	}
	b.WriteString("\n")

	if len(r.Detections) > 0 {
		b.WriteString("DETECTION DETAILS:\n")
		shown := r.Detections
		if len(shown) > detectionDisplayLimit {
			shown = shown[:detectionDisplayLimit]
		}
		for i, d := range shown {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, d)
		}
		if extra := len(r.Detections) - detectionDisplayLimit; extra > 0 {
			fmt.Fprintf(&b, "  ... +%d more\n", extra)
		}
		b.WriteString("\n")
	}

	b.WriteString(ruleHeavy + "\n")
	return b.String()
}

// Render formats a URL-reputation check for display.
func (r URLResult) Render() string {
	if !r.OK() {
		return r.Err()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "URL Reputation Results for '%s' (%s):\n", r.URL, r.Provider)
	b.WriteString(ruleHeavy + "\n\n")

	if r.Safe {
		b.WriteString("STATUS: SAFE\n\n")
		b.WriteString("The URL is not flagged on any threat list.\n")
		b.WriteString(ruleHeavy + "\n")
		return b.String()
	}

	b.WriteString("STATUS: THREAT DETECTED\n\n")
	for i, m := range r.Threats {
		fmt.Fprintf(&b, "--- THREAT MATCH #%d ---\n", i+1)
		fmt.Fprintf(&b, "Threat Type: %s\n", m.Type)
		if m.Description != "" {
			fmt.Fprintf(&b, "Description: %s\n", m.Description)
		}
		if m.Platform != "" {
			fmt.Fprintf(&b, "Platform Type: %s\n", m.Platform)
		}
		if m.EntryType != "" {
			fmt.Fprintf(&b, "Threat Entry Type: %s\n", m.EntryType)
		}
		fmt.Fprintf(&b, "URL: %s\n", m.URL)
		if m.CacheDuration != "" {
			fmt.Fprintf(&b, "Cache Duration: %s\n", m.CacheDuration)
		}
		if m.ExpireTime != "" {
			fmt.Fprintf(&b, "Expires: %s\n", m.ExpireTime)
		}
		if len(m.Metadata) > 0 {
			b.WriteString("Metadata:\n")
			for _, e := range m.Metadata {
				fmt.Fprintf(&b, "  - %s: %s\n", e.Key, e.Value)
			}
		}
		b.WriteString("\n")
	}
	b.WriteString(ruleHeavy + "\n")
	b.WriteString("WARNING: This URL has been flagged. Do not visit it or download content from it.\n")
	b.WriteString(ruleHeavy + "\n")
	return b.String()
}

// Render formats a header-security scan for display.
func (r HeaderResult) Render() string {
	if !r.OK() {
		return r.Err()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Security Header Scan Results for '%s':\n\n", r.Host)
	b.WriteString("--- OVERALL ASSESSMENT ---\n")
	fmt.Fprintf(&b, "Grade: %s\n", r.Grade)
	fmt.Fprintf(&b, "Score: %d/100\n", r.Score)
	fmt.Fprintf(&b, "HTTP Status: %d\n\n", r.HTTPStatus)

	b.WriteString("--- TEST RESULTS ---\n")
	fmt.Fprintf(&b, "Tests Passed: %d\n", r.TestsPassed)
	fmt.Fprintf(&b, "Tests Failed: %d\n", r.TestsFailed)
	fmt.Fprintf(&b, "Total Tests: %d\n\n", r.TestsQuantity)

	b.WriteString("--- SCAN DETAILS ---\n")
	fmt.Fprintf(&b, "Scan ID: %d\n", r.ScanID)
	fmt.Fprintf(&b, "Scanned At: %s\n", r.ScannedAt)
	fmt.Fprintf(&b, "Full Report: %s\n\n", r.DetailsURL)
	b.WriteString(ruleLight + "\n")
	return b.String()
}
