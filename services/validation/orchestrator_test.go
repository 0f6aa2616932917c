// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package validation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AleutianAI/hardgate/services/validation/enhance"
	"github.com/AleutianAI/hardgate/services/validation/gates"
	"github.com/AleutianAI/hardgate/services/validation/language"
	"github.com/AleutianAI/hardgate/services/validation/scoring"
)

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func gateScore(t *testing.T, result *ValidationResult, gate gates.GateKind) scoring.GateScore {
	t.Helper()
	for _, s := range result.GateScores {
		if s.Gate == gate {
			return s
		}
	}
	t.Fatalf("gate %s missing from result", gate)
	return scoring.GateScore{}
}

func TestValidateCleanPythonRepo(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"requirements.txt": "flask==3.0.0\n",
		"app/service.py": "import logging\n" +
			"logger = logging.getLogger(__name__)\n\n" +
			"def create_order(order):\n" +
			"    logger.info('order created', extra={'order_id': order.id})\n" +
			"    logger.error('order failed')\n",
		"app/api.py": "from flask import Flask\n" +
			"app = Flask(__name__)\n",
	})

	result, err := Validate(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(result.GateScores) != len(gates.All()) {
		t.Fatalf("got %d gate scores, want %d", len(result.GateScores), len(gates.All()))
	}
	if result.PrimaryLanguage != language.Python {
		t.Errorf("primary language = %q, want python", result.PrimaryLanguage)
	}
	if result.TotalFiles != 2 {
		t.Errorf("total files = %d, want 2", result.TotalFiles)
	}

	// No secrets logged and files present: the negative gate passes.
	secrets := gateScore(t, result, gates.AvoidLoggingSecrets)
	if secrets.Status != scoring.StatusPass {
		t.Errorf("avoid_logging_secrets = %s, want PASS (quality %.1f, final %.1f)",
			secrets.Status, secrets.Quality, secrets.FinalScore)
	}
	for _, issue := range result.CriticalIssues {
		if strings.Contains(issue, "sensitive data") {
			t.Errorf("clean repo reported a sensitive-data issue: %q", issue)
		}
	}

	logs := gateScore(t, result, gates.StructuredLogs)
	if logs.Found == 0 {
		t.Error("structured_logs found no evidence in a logging repo")
	}
}

func TestValidateSecretViolationIsCritical(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"app/auth.py": "logger.info(f\"password={pw}\")\n",
	})

	result, err := Validate(context.Background(), root, Options{Languages: []language.Language{language.Python}})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	secrets := gateScore(t, result, gates.AvoidLoggingSecrets)
	if secrets.Found == 0 {
		t.Fatal("password in log call not flagged")
	}
	if secrets.Coverage > 90 {
		t.Errorf("coverage = %.1f, want <= 90 with a violation", secrets.Coverage)
	}
	if secrets.Status != scoring.StatusFail && secrets.Status != scoring.StatusWarning {
		t.Errorf("avoid_logging_secrets = %s (final %.1f), want FAIL or WARNING",
			secrets.Status, secrets.FinalScore)
	}
	foundCritical := false
	for _, issue := range result.CriticalIssues {
		if strings.Contains(issue, "sensitive data may be written to logs") {
			foundCritical = true
		}
	}
	if !foundCritical {
		t.Errorf("critical issues = %v, want sensitive-data entry", result.CriticalIssues)
	}
}

func TestValidateBackendOnlyRepoSkipsUIGates(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"api/server.js": "const express = require('express');\n" +
			"const app = express();\napp.listen(3000);\n",
	})

	result, err := Validate(context.Background(), root, Options{Languages: []language.Language{language.JavaScript}})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for _, gate := range []gates.GateKind{gates.UIErrors, gates.UIErrorTools, gates.LogBackgroundJobs} {
		s := gateScore(t, result, gate)
		if s.Status != scoring.StatusNotApplicable {
			t.Errorf("%s = %s, want NOT_APPLICABLE", gate, s.Status)
		}
		if s.FinalScore != 0 {
			t.Errorf("%s final score = %.1f, want 0 (excluded from overall)", gate, s.FinalScore)
		}
	}
	// Skipped gates must not drag the overall score to zero.
	if result.OverallScore < 0 {
		t.Errorf("overall = %.1f", result.OverallScore)
	}
}

func TestValidateCSharpUIGatesUnsupported(t *testing.T) {
	// A C# repo with UI evidence: the UI gates apply but have no csharp
	// validator, so they report UNSUPPORTED rather than failing.
	root := writeRepo(t, map[string]string{
		"Views/Home.cshtml":      "<html><body><div>home</div></body></html>\n",
		"Controllers/HomeCtl.cs": "using Microsoft.AspNetCore.Mvc;\n",
	})

	result, err := Validate(context.Background(), root, Options{Languages: []language.Language{language.CSharp}})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for _, gate := range []gates.GateKind{gates.UIErrors, gates.UIErrorTools} {
		s := gateScore(t, result, gate)
		if s.Status != scoring.StatusUnsupported {
			t.Errorf("%s = %s, want UNSUPPORTED", gate, s.Status)
		}
	}
	// Unsupported gates never count toward the overall score.
	secrets := gateScore(t, result, gates.AvoidLoggingSecrets)
	if !secrets.Status.Counted() {
		t.Errorf("avoid_logging_secrets = %s, should be counted", secrets.Status)
	}
}

func TestValidateZeroDeadlineFailsEveryGate(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"app/mod.py": "import logging\n",
	})

	zero := time.Duration(0)
	result, err := Validate(context.Background(), root, Options{
		Languages:    []language.Language{language.Python},
		ScanDeadline: &zero,
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for _, s := range result.GateScores {
		if s.Status != scoring.StatusFailed {
			t.Errorf("%s = %s, want FAILED under zero deadline", s.Gate, s.Status)
		}
		if len(s.Details) == 0 || s.Details[0] != "timeout" {
			t.Errorf("%s details = %v, want timeout", s.Gate, s.Details)
		}
	}
	if result.OverallScore != 0 {
		t.Errorf("overall = %.1f, want 0", result.OverallScore)
	}
	if result.FailedGates != len(gates.All()) {
		t.Errorf("failed gates = %d, want %d", result.FailedGates, len(gates.All()))
	}
}

func TestValidateMissingRoot(t *testing.T) {
	_, err := Validate(context.Background(), filepath.Join(t.TempDir(), "absent"), Options{})
	if err == nil {
		t.Fatal("expected error for missing root")
	}
	var se *ScanError
	if !errors.As(err, &se) || se.Kind != KindInvalidInput {
		t.Errorf("got %v, want ScanError/invalid_input", err)
	}
}

func TestValidateProjectNameOverride(t *testing.T) {
	root := writeRepo(t, map[string]string{"a.py": "x = 1\n"})
	result, err := Validate(context.Background(), root, Options{
		ProjectName: "checkout-service",
		Languages:   []language.Language{language.Python},
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if result.ProjectName != "checkout-service" {
		t.Errorf("project name = %q", result.ProjectName)
	}
}

// recordingEnhancer counts calls and injects a summary, a quality
// override, and a security insight.
type recordingEnhancer struct {
	calls int
}

func (r *recordingEnhancer) Enhance(_ context.Context, score scoring.GateScore) (enhance.Result, error) {
	r.calls++
	if !enhance.ShouldEnhance(score) {
		return enhance.Result{Gate: score.Gate}, nil
	}
	quality := 95.0
	return enhance.Result{
		Gate:             score.Gate,
		Summary:          "model summary",
		Recommendations:  []string{"model recommendation"},
		EnhancedQuality:  &quality,
		SecurityInsights: []string{"token logged in plaintext"},
	}, nil
}

func TestValidateEnhancement(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"app/service.py": "import logging\n" +
			"logger = logging.getLogger(__name__)\n" +
			"logger.error('failed')\n",
	})

	enhancer := &recordingEnhancer{}
	result, err := Validate(context.Background(), root, Options{
		Languages: []language.Language{language.Python},
		Enhancer:  enhancer,
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if enhancer.calls == 0 {
		t.Fatal("enhancer never called")
	}

	logs := gateScore(t, result, gates.StructuredLogs)
	if !logs.Enhanced {
		t.Error("structured_logs not marked enhanced")
	}
	sawSummary, sawInsight := false, false
	for _, d := range logs.Details {
		if strings.HasPrefix(d, "analysis: ") {
			sawSummary = true
		}
		if d == "security: token logged in plaintext" {
			sawInsight = true
		}
	}
	if !sawSummary {
		t.Errorf("enhanced details = %v, missing analysis line", logs.Details)
	}
	if !sawInsight {
		t.Errorf("enhanced details = %v, missing security insight", logs.Details)
	}
	if len(logs.Recommendations) != 1 || logs.Recommendations[0] != "model recommendation" {
		t.Errorf("recommendations = %v", logs.Recommendations)
	}

	// The quality override must flow back through scoring.
	if logs.Quality != 95 {
		t.Errorf("quality = %.1f, want the 95 override", logs.Quality)
	}
	wantFinal := scoring.FinalScore(gates.StructuredLogs, logs.Coverage, 95)
	if logs.FinalScore != wantFinal {
		t.Errorf("final = %.2f, want %.2f recomputed from the override", logs.FinalScore, wantFinal)
	}
	if logs.Status != scoring.StatusFor(logs.FinalScore) {
		t.Errorf("status = %s, not re-derived from the overridden score", logs.Status)
	}
}

func TestValidateAggregatesAcrossLanguages(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"svc/App.java": "import org.slf4j.LoggerFactory;\n" +
			"public class App {\n" +
			"  private static final Logger log = LoggerFactory.getLogger(App.class);\n" +
			"}\n",
		"scripts/run.py": "import logging\n" +
			"logging.getLogger(__name__).info('run')\n",
	})

	result, err := Validate(context.Background(), root, Options{
		Languages: []language.Language{language.Java, language.Python},
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	logs := gateScore(t, result, gates.StructuredLogs)
	if logs.Found < 3 {
		t.Errorf("aggregated found = %d, want evidence from both languages", logs.Found)
	}
}
