// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gates

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AleutianAI/hardgate/services/validation/language"
	"github.com/AleutianAI/hardgate/services/validation/walker"
)

func fixtureTarget(t *testing.T, files map[string]string) Target {
	t.Helper()
	root := t.TempDir()
	var records []walker.FileRecord
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		lang, _ := language.FromPath(rel)
		records = append(records, walker.FileRecord{
			Path:      rel,
			AbsPath:   path,
			Language:  lang,
			SizeBytes: int64(len(content)),
			LineCount: strings.Count(content, "\n"),
		})
	}
	return Target{Root: root, Files: records}
}

func TestStructuredLogsValidatePython(t *testing.T) {
	target := fixtureTarget(t, map[string]string{
		"app/service.py": "import logging\n\n" +
			"logger = logging.getLogger(__name__)\n\n" +
			"def handle():\n" +
			"    logger.info('handled')\n" +
			"    logger.error('failed')\n",
		"app/util.py": "def helper():\n    return 1\n",
	})

	v := For(StructuredLogs, language.Python)
	res, err := v.Validate(context.Background(), target)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Found < 3 {
		t.Errorf("found = %d, want >= 3 (import, getLogger, calls)", res.Found)
	}
	if res.Expected < 1 {
		t.Errorf("expected = %d, want >= 1", res.Expected)
	}
	if res.QualityScore < float64(qualityBase) {
		t.Errorf("quality = %.1f, want >= %d", res.QualityScore, qualityBase)
	}
	if len(res.Details) == 0 || !strings.Contains(res.Details[0], "expected implementation") {
		t.Errorf("details = %v", res.Details)
	}
	// Matches must be deterministic: sorted by path, line, column.
	for i := 1; i < len(res.Matches); i++ {
		a, b := res.Matches[i-1], res.Matches[i]
		if a.RelativePath > b.RelativePath ||
			(a.RelativePath == b.RelativePath && a.LineNumber > b.LineNumber) {
			t.Errorf("matches not sorted at %d: %s:%d after %s:%d",
				i, b.RelativePath, b.LineNumber, a.RelativePath, a.LineNumber)
		}
	}
}

func TestStructuredLogsIgnoresOtherLanguages(t *testing.T) {
	target := fixtureTarget(t, map[string]string{
		"App.java": "import org.slf4j.LoggerFactory;\n",
	})
	v := For(StructuredLogs, language.Python)
	res, err := v.Validate(context.Background(), target)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Found != 0 {
		t.Errorf("found = %d, want 0 for java-only repo on python validator", res.Found)
	}
}

func TestAvoidLoggingSecretsClean(t *testing.T) {
	target := fixtureTarget(t, map[string]string{
		"app/service.py": "import logging\n" +
			"logger = logging.getLogger(__name__)\n" +
			"def login(user):\n" +
			"    logger.info('login for user_id=%s', user.id)\n",
	})

	v := For(AvoidLoggingSecrets, language.Python)
	res, err := v.Validate(context.Background(), target)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Expected != 0 || res.Found != 0 {
		t.Errorf("expected/found = %d/%d, want 0/0", res.Expected, res.Found)
	}
	if res.QualityScore != 100 {
		t.Errorf("clean quality = %.1f, want 100", res.QualityScore)
	}
	if len(res.Details) == 0 || res.Details[0] != "no violations detected" {
		t.Errorf("details = %v", res.Details)
	}
}

func TestAvoidLoggingSecretsViolation(t *testing.T) {
	target := fixtureTarget(t, map[string]string{
		"app/auth.py": "import logging\n" +
			"logger = logging.getLogger(__name__)\n" +
			"def login(user, password):\n" +
			"    logger.info('login %s with password %s', user, password)\n",
	})

	v := For(AvoidLoggingSecrets, language.Python)
	res, err := v.Validate(context.Background(), target)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Found == 0 {
		t.Fatal("password in a log call should be flagged")
	}
	if res.QualityScore > 50 {
		t.Errorf("violation quality = %.1f, want <= 50", res.QualityScore)
	}
	if res.Matches[0].Category != "Authentication" {
		t.Errorf("category = %q, want Authentication", res.Matches[0].Category)
	}
	if len(res.Recommendations) == 0 ||
		!strings.Contains(strings.Join(res.Recommendations, " "), "redaction") {
		t.Errorf("recommendations = %v", res.Recommendations)
	}
}

func TestRecommendationBuckets(t *testing.T) {
	v := &gateValidator{spec: gateSpec{
		recommendNone:    []string{"none"},
		recommendPartial: []string{"partial"},
		recommendFull:    []string{"full"},
	}}
	if got := v.recommendations(5, 0); got[0] != "none" {
		t.Errorf("zero coverage bucket = %v", got)
	}
	if got := v.recommendations(5, 2); got[0] != "partial" {
		t.Errorf("partial coverage bucket = %v", got)
	}
	if got := v.recommendations(5, 5); got[0] != "full" {
		t.Errorf("full coverage bucket = %v", got)
	}

	neg := &gateValidator{spec: gateSpec{
		negative:      true,
		recommendNone: []string{"fix"},
		recommendFull: []string{"keep"},
	}}
	if got := neg.recommendations(0, 1); got[0] != "fix" {
		t.Errorf("negative with violations bucket = %v", got)
	}
	if got := neg.recommendations(0, 0); got[0] != "keep" {
		t.Errorf("negative clean bucket = %v", got)
	}
}

func TestDetailCap(t *testing.T) {
	// Noisy repositories cap the rendered match lines and add an ellipsis.
	var sb strings.Builder
	sb.WriteString("import logging\nlogger = logging.getLogger(__name__)\n")
	for i := 0; i < 40; i++ {
		sb.WriteString("logger.info('event')\n")
	}
	target := fixtureTarget(t, map[string]string{"app/noisy.py": sb.String()})

	v := For(StructuredLogs, language.Python)
	res, err := v.Validate(context.Background(), target)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Found <= maxMatchDetails {
		t.Fatalf("fixture too quiet: found = %d", res.Found)
	}
	matchLines := 0
	sawEllipsis := false
	for _, d := range res.Details {
		if strings.HasPrefix(d, "app/noisy.py:") {
			matchLines++
		}
		if strings.Contains(d, "more match(es)") {
			sawEllipsis = true
		}
	}
	if matchLines != maxMatchDetails {
		t.Errorf("rendered %d match lines, want %d", matchLines, maxMatchDetails)
	}
	if !sawEllipsis {
		t.Error("missing ellipsis detail line")
	}
}
