// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scan

import (
	"strings"
	"testing"
	"time"

	"github.com/AleutianAI/hardgate/services/validation"
	"github.com/AleutianAI/hardgate/services/validation/gates"
	"github.com/AleutianAI/hardgate/services/validation/language"
	"github.com/AleutianAI/hardgate/services/validation/scoring"
)

func renderFixture() *validation.ValidationResult {
	return &validation.ValidationResult{
		ProjectName:     "checkout-service",
		RootPath:        "/repos/checkout-service",
		PrimaryLanguage: language.Python,
		TotalFiles:      42,
		TotalLines:      9000,
		ScanDuration:    3 * time.Second,
		Timestamp:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		OverallScore:    71.4,
		PassedGates:     9,
		WarningGates:    3,
		FailedGates:     3,
		CriticalIssues:  []string{"sensitive data may be written to logs: 2 violation(s) found"},
		Recommendations: []string{"Route all emitters through one logging facade"},
		GateScores: []scoring.GateScore{
			{
				Gate:        gates.StructuredLogs,
				DisplayName: "Logs Searchable and Analyzable",
				Status:      scoring.StatusPass,
				Expected:    10, Found: 12,
				FinalScore: 94.0,
				Details:    []string{"12 of 10 expected practices found"},
			},
			{
				Gate:        gates.RetryLogic,
				DisplayName: "Retry Logic",
				Status:      scoring.StatusWarning,
				Expected:    8, Found: 5,
				FinalScore: 65.0,
				Details:    []string{`retry config <b>unescaped?</b>`},
			},
			{
				Gate:        gates.ErrorLogs,
				DisplayName: "Log System Errors",
				Status:      scoring.StatusFail,
				Expected:    6, Found: 1,
				FinalScore: 31.0,
			},
			{
				Gate:        gates.AutomatedTests,
				DisplayName: "Automated Regression Tests",
				Status:      scoring.StatusPass,
				Expected:    20, Found: 25,
				FinalScore: 88.0,
			},
		},
	}
}

func TestHTMLRendererRender(t *testing.T) {
	payload, err := HTMLRenderer{}.Render(renderFixture(), "https://git.example/checkout", "main", "scan-123")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(payload)

	for _, want := range []string{
		"checkout-service",
		"https://git.example/checkout",
		"(main)",
		"scan-123",
		"71.4",
		// One gate per populated category bucket.
		"Auditability",
		"Availability",
		"Error Handling",
		"Testing",
		"Logs Searchable and Analyzable",
		"Retry Logic",
		"Log System Errors",
		"Automated Regression Tests",
		"sensitive data may be written to logs",
		"Route all emitters through one logging facade",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}

	// html/template must escape detail text.
	if strings.Contains(html, "<b>unescaped?</b>") {
		t.Error("detail text not escaped")
	}
}

func TestHTMLRendererOmitsEmptyCategories(t *testing.T) {
	result := renderFixture()
	result.GateScores = result.GateScores[:1] // Auditability only
	payload, err := HTMLRenderer{}.Render(result, "", "", "scan-1")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(payload)
	if !strings.Contains(html, "Auditability") {
		t.Error("populated category missing")
	}
	if strings.Contains(html, "<h2>Availability</h2>") {
		t.Error("empty category rendered")
	}
	// No repo URL: the local root path appears instead.
	if !strings.Contains(html, "/repos/checkout-service") {
		t.Error("root path fallback missing")
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		gate gates.GateKind
		want string
	}{
		{gates.StructuredLogs, "Auditability"},
		{gates.AvoidLoggingSecrets, "Auditability"},
		{gates.UIErrors, "Auditability"},
		{gates.RetryLogic, "Availability"},
		{gates.CircuitBreakers, "Availability"},
		{gates.HTTPCodes, "Error Handling"},
		{gates.UIErrorTools, "Error Handling"},
		{gates.AutomatedTests, "Testing"},
	}
	for _, tt := range tests {
		if got := categoryOf(tt.gate); got != tt.want {
			t.Errorf("categoryOf(%s) = %s, want %s", tt.gate, got, tt.want)
		}
	}
}

func TestReportFilename(t *testing.T) {
	if got := reportFilename("abc-123"); got != "hard_gate_report_abc-123.html" {
		t.Errorf("reportFilename = %q", got)
	}
}
