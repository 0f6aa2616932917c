// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package match finds regex evidence in source files and records each hit
// with full location, context, and heuristic metadata.
package match

import (
	"time"

	"github.com/AleutianAI/hardgate/services/validation/language"
)

// Severity buckets a match by how strongly it should be weighted.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// DefaultPriority returns the default 1..10 priority for a severity bucket.
// Priority correlates monotonically with severity: LOW < MEDIUM < HIGH.
func DefaultPriority(s Severity) int {
	switch s {
	case SeverityHigh:
		return 8
	case SeverityMedium:
		return 5
	default:
		return 2
	}
}

// PatternType tags what kind of evidence a pattern looks for.
type PatternType string

const (
	PatternTypeLibrary    PatternType = "library"
	PatternTypeCall       PatternType = "call"
	PatternTypeAnnotation PatternType = "annotation"
	PatternTypeConfig     PatternType = "config"
	PatternTypeViolation  PatternType = "violation"
	PatternTypeKeyword    PatternType = "keyword"
)

// PatternSpec is one regex pattern plus its metadata defaults.
type PatternSpec struct {
	// Pattern is the regex source. Compiled case-insensitively unless the
	// matcher is configured otherwise.
	Pattern string

	// Type tags the evidence kind.
	Type PatternType

	// Category is a free-form grouping tag (e.g. a secret-violation
	// category such as "Credentials").
	Category string

	// Severity defaults the match severity. Empty means MEDIUM.
	Severity Severity

	// Priority defaults the match priority (1..10). Zero means the
	// severity-derived default.
	Priority int
}

// FunctionContext is the nearest enclosing function of a match, found by a
// backward scan for a language-specific declaration pattern. All fields are
// best-effort; a zero value means no enclosing function was found.
type FunctionContext struct {
	Name            string `json:"name,omitempty"`
	Signature       string `json:"signature,omitempty"`
	DeclarationLine int    `json:"declaration_line,omitempty"`
	DistanceLines   int    `json:"distance_lines,omitempty"`
}

// Match is one piece of evidence: a pattern hit on a source line.
//
// Invariants: ColumnStart <= ColumnEnd; ContextStartLine <= LineNumber <=
// ContextEndLine; Priority correlates monotonically with Severity. Matches
// are constructed once and never mutated afterwards.
type Match struct {
	AbsolutePath string    `json:"absolute_path"`
	RelativePath string    `json:"relative_path"`
	FileName     string    `json:"file_name"`
	Extension    string    `json:"extension"`
	FileSize     int64     `json:"file_size"`
	ModifiedAt   time.Time `json:"modified_at"`

	// LineNumber is 1-based. Columns are 1-based and inclusive.
	LineNumber  int    `json:"line_number"`
	ColumnStart int    `json:"column_start"`
	ColumnEnd   int    `json:"column_end"`
	MatchedText string `json:"matched_text"`
	FullLine    string `json:"full_line"`

	// ContextLines holds up to contextRadius lines on each side of the
	// match, including the matched line itself.
	ContextLines     []string `json:"context_lines,omitempty"`
	ContextStartLine int      `json:"context_start_line"`
	ContextEndLine   int      `json:"context_end_line"`

	Pattern     string            `json:"pattern"`
	PatternType PatternType       `json:"pattern_type"`
	Category    string            `json:"category,omitempty"`
	Language    language.Language `json:"language"`
	Gate        string            `json:"gate,omitempty"`

	Severity Severity `json:"severity"`
	Priority int      `json:"priority"`

	Function FunctionContext `json:"function,omitempty"`

	LineLength        int  `json:"line_length"`
	LeadingWhitespace int  `json:"leading_whitespace"`
	IsComment         bool `json:"is_comment"`
	IsStringLiteral   bool `json:"is_string_literal"`

	SuggestedFix      string `json:"suggested_fix,omitempty"`
	DocumentationLink string `json:"documentation_link,omitempty"`
}
