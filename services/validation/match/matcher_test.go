// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package match

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/AleutianAI/hardgate/services/validation/language"
	"github.com/AleutianAI/hardgate/services/validation/walker"
)

func fixtureFile(t *testing.T, root, rel, content string, lang language.Language) walker.FileRecord {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return walker.FileRecord{
		Path:      rel,
		AbsPath:   path,
		Language:  lang,
		SizeBytes: int64(len(content)),
		LineCount: 1,
	}
}

func TestScanFindsMatchesWithMetadata(t *testing.T) {
	root := t.TempDir()
	src := "import logging\n" +
		"\n" +
		"def process(order):\n" +
		"    logger.info('processing')\n" +
		"    logger.error('failed', exc_info=True)\n"
	file := fixtureFile(t, root, "app/orders.py", src, language.Python)

	m := NewMatcher(Options{})
	matches, details, err := m.Scan(context.Background(), []walker.FileRecord{file},
		[]PatternSpec{{Pattern: `logger\.error`, Type: PatternTypeCall, Severity: SeverityHigh}}, "error_logs")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(details) != 0 {
		t.Errorf("unexpected skip details: %v", details)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}

	got := matches[0]
	if got.RelativePath != "app/orders.py" || got.FileName != "orders.py" {
		t.Errorf("path metadata wrong: %+v", got)
	}
	if got.LineNumber != 5 {
		t.Errorf("line = %d, want 5", got.LineNumber)
	}
	if got.ColumnStart != 5 {
		t.Errorf("column start = %d, want 5", got.ColumnStart)
	}
	if got.MatchedText != "logger.error" {
		t.Errorf("matched text = %q", got.MatchedText)
	}
	if got.Gate != "error_logs" {
		t.Errorf("gate = %q", got.Gate)
	}
	if got.Severity != SeverityHigh || got.Priority != DefaultPriority(SeverityHigh) {
		t.Errorf("severity/priority = %s/%d", got.Severity, got.Priority)
	}
	if got.Function.Name != "process" {
		t.Errorf("nearest function = %q, want process", got.Function.Name)
	}
	if got.ContextStartLine != 2 || got.ContextEndLine != 5 {
		t.Errorf("context window = [%d, %d]", got.ContextStartLine, got.ContextEndLine)
	}
}

func TestScanCaseInsensitiveByDefault(t *testing.T) {
	root := t.TempDir()
	file := fixtureFile(t, root, "A.java", "LOGGER.ERROR(\"x\");\n", language.Java)

	m := NewMatcher(Options{})
	matches, _, err := m.Scan(context.Background(), []walker.FileRecord{file},
		[]PatternSpec{{Pattern: `logger\.error`}}, "")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1 (case-insensitive)", len(matches))
	}

	m = NewMatcher(Options{CaseSensitive: true})
	matches, _, err = m.Scan(context.Background(), []walker.FileRecord{file},
		[]PatternSpec{{Pattern: `logger\.error`}}, "")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("got %d matches, want 0 (case-sensitive)", len(matches))
	}
}

func TestScanMultipleHitsPerLine(t *testing.T) {
	root := t.TempDir()
	file := fixtureFile(t, root, "x.js", "retry(); retry();\n", language.JavaScript)

	m := NewMatcher(Options{})
	matches, _, err := m.Scan(context.Background(), []walker.FileRecord{file},
		[]PatternSpec{{Pattern: `retry\(`}}, "")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
}

func TestScanPatternCompileError(t *testing.T) {
	root := t.TempDir()
	file := fixtureFile(t, root, "x.py", "pass\n", language.Python)

	m := NewMatcher(Options{})
	_, _, err := m.Scan(context.Background(), []walker.FileRecord{file},
		[]PatternSpec{{Pattern: `([unclosed`}}, "")
	var ce *ErrPatternCompile
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, want ErrPatternCompile", err)
	}
	if ce.Pattern != `([unclosed` {
		t.Errorf("pattern = %q", ce.Pattern)
	}
}

func TestScanUnreadableFileSkipped(t *testing.T) {
	root := t.TempDir()
	good := fixtureFile(t, root, "good.py", "logger.error('x')\n", language.Python)
	missing := walker.FileRecord{
		Path:     "gone.py",
		AbsPath:  filepath.Join(root, "gone.py"),
		Language: language.Python,
	}

	m := NewMatcher(Options{})
	matches, details, err := m.Scan(context.Background(), []walker.FileRecord{good, missing},
		[]PatternSpec{{Pattern: `logger\.error`}}, "")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("got %d matches, want 1", len(matches))
	}
	if len(details) != 1 {
		t.Errorf("got %d skip details, want 1: %v", len(details), details)
	}
}

func TestScanCancelled(t *testing.T) {
	root := t.TempDir()
	file := fixtureFile(t, root, "x.py", "pass\n", language.Python)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMatcher(Options{})
	_, _, err := m.Scan(ctx, []walker.FileRecord{file},
		[]PatternSpec{{Pattern: `pass`}}, "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestScanEmptyInputs(t *testing.T) {
	m := NewMatcher(Options{})
	matches, details, err := m.Scan(context.Background(), nil, []PatternSpec{{Pattern: "x"}}, "")
	if err != nil || matches != nil || details != nil {
		t.Fatalf("empty file set: got (%v, %v, %v)", matches, details, err)
	}
}
