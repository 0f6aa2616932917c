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
	"path/filepath"
	"strings"

	"github.com/AleutianAI/hardgate/services/validation/walker"
)

// fileStats summarizes a language's file set through filename-keyword
// classification. The expected-count heuristics are pure functions over
// these counts, which keeps them unit-testable without a filesystem.
type fileStats struct {
	FileCount int
	TotalLOC  int

	// Role counts. A file can count toward several roles.
	Business      int
	Service       int
	API           int
	IO            int
	External      int
	Job           int
	UI            int
	Web           int
	TestFiles     int
	NonTestSource int
}

// Keyword sets for filename classification. Matching is on the lowercased
// base name without extension, substring semantics.
var (
	serviceKeywords  = []string{"service", "provider", "manager", "client"}
	apiKeywords      = []string{"controller", "route", "endpoint", "api", "handler", "resource", "views", "rest"}
	businessKeywords = []string{"service", "manager", "repository", "domain", "business", "usecase", "logic", "model"}
	ioKeywords       = []string{"client", "repository", "dao", "db", "database", "http", "request", "fetch", "storage", "cache"}
	externalKeywords = []string{"client", "gateway", "adapter", "integration", "external", "connector"}
	jobKeywords      = []string{"job", "worker", "task", "scheduler", "queue", "cron", "consumer", "listener"}
	uiKeywords       = []string{"component", "page", "view", "screen", "widget", "layout"}
)

// uiExtensions are extensions that make a file UI evidence regardless of
// its name.
var uiExtensions = map[string]bool{
	".html": true, ".css": true, ".jsx": true, ".tsx": true,
	".vue": true, ".svelte": true,
}

// classifyFiles derives role counts from a file set.
func classifyFiles(files []walker.FileRecord) fileStats {
	var s fileStats
	for _, f := range files {
		s.FileCount++
		s.TotalLOC += f.LineCount

		base := strings.ToLower(filepath.Base(f.Path))
		name := strings.TrimSuffix(base, filepath.Ext(base))
		ext := strings.ToLower(filepath.Ext(base))

		isTest := isTestFileName(f.Path)
		if isTest {
			s.TestFiles++
		} else {
			s.NonTestSource++
		}

		if containsAny(name, serviceKeywords) {
			s.Service++
		}
		if containsAny(name, apiKeywords) {
			s.API++
			s.Web++
		}
		if containsAny(name, businessKeywords) {
			s.Business++
		}
		if containsAny(name, ioKeywords) {
			s.IO++
		}
		if containsAny(name, externalKeywords) {
			s.External++
		}
		if containsAny(name, jobKeywords) {
			s.Job++
		}
		if uiExtensions[ext] || containsAny(name, uiKeywords) {
			s.UI++
		}
	}
	return s
}

// isTestFileName matches language-specific test naming conventions plus
// test directories. Same shape as the graph classifier's definitive test
// patterns, reduced to the languages this engine scans.
func isTestFileName(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	lower := strings.ToLower(filepath.ToSlash(path))

	switch ext {
	case ".py":
		if strings.HasPrefix(name, "test_") || strings.HasSuffix(name, "_test") || name == "conftest" {
			return true
		}
	case ".java":
		if strings.HasSuffix(name, "test") || strings.HasSuffix(name, "tests") || strings.HasSuffix(name, "it") {
			return true
		}
	case ".cs":
		if strings.HasSuffix(name, "test") || strings.HasSuffix(name, "tests") {
			return true
		}
	case ".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts":
		if strings.Contains(name, ".test") || strings.Contains(name, ".spec") {
			return true
		}
	}

	for _, dir := range []string{"/test/", "/tests/", "/__tests__/", "/spec/", "/e2e/", "/cypress/"} {
		if strings.Contains(lower, dir) || strings.HasPrefix(lower, dir[1:]) {
			return true
		}
	}
	return false
}

func containsAny(name string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
