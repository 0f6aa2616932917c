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
	"fmt"
	"log/slog"
	"sort"

	"github.com/AleutianAI/hardgate/services/validation/language"
	"github.com/AleutianAI/hardgate/services/validation/match"
	"github.com/AleutianAI/hardgate/services/validation/tech"
	"github.com/AleutianAI/hardgate/services/validation/walker"
)

// maxMatchDetails caps the per-gate detail lines rendered from matches so
// a noisy repository does not flood the report.
const maxMatchDetails = 25

// gateSpec is the declarative core of a validator: pattern table,
// expected-count heuristic, quality assessor, and recommendation buckets.
// The shared skeleton in gateValidator turns a spec into a Validator.
type gateSpec struct {
	gate GateKind
	lang language.Language

	patterns []match.PatternSpec
	expected func(fileStats) int
	quality  func(qualityInput) float64

	// Recommendation buckets, selected on coverage: no evidence, partial
	// coverage, full coverage. For the negative gate the buckets read as:
	// none = violations present, partial unused, full = clean.
	recommendNone    []string
	recommendPartial []string
	recommendFull    []string

	// negative flips the coverage semantics: expected is 0 and every
	// match is a violation.
	negative bool
}

// gateValidator executes a gateSpec. All fifteen gates share this skeleton;
// only the spec tables differ.
type gateValidator struct {
	spec gateSpec
}

var _ Validator = (*gateValidator)(nil)

func newValidator(spec gateSpec) *gateValidator {
	return &gateValidator{spec: spec}
}

func (v *gateValidator) Gate() GateKind              { return v.spec.gate }
func (v *gateValidator) Language() language.Language { return v.spec.lang }

// Validate runs the shared pipeline: filter files to the validator's
// language, classify them, detect technologies, estimate the expected
// count, collect pattern evidence, assess quality, and assemble the
// GateResult.
//
// Outputs:
//
//	GateResult - Deterministic for a fixed file set (matches sorted by
//	             path, line, column).
//	error - Pattern-compile failure or context cancellation. Either is
//	        fatal for this (gate, language) pair only.
func (v *gateValidator) Validate(ctx context.Context, target Target) (GateResult, error) {
	files := filterLanguage(target.Files, v.spec.lang)
	stats := classifyFiles(files)
	profile := tech.Detect(target.Root, v.spec.lang, files)

	matcher := match.NewMatcher(match.Options{
		CaseSensitive: target.Options.CaseSensitivePatterns,
		Workers:       target.Options.Workers,
	})
	matches, skipped, err := matcher.Scan(ctx, files, v.spec.patterns, string(v.spec.gate))
	if err != nil {
		return GateResult{}, fmt.Errorf("gate %s/%s: %w", v.spec.gate, v.spec.lang, err)
	}
	sortMatches(matches)

	expected := v.spec.expected(stats)
	found := len(matches)
	quality := clamp(v.spec.quality(qualityInput{Matches: matches, Tech: profile, Stats: stats}), 0, 100)

	slog.Debug("gate evaluated",
		slog.String("gate", string(v.spec.gate)),
		slog.String("language", string(v.spec.lang)),
		slog.Int("expected", expected),
		slog.Int("found", found),
		slog.Float64("quality", quality))

	return GateResult{
		Expected:        expected,
		Found:           found,
		QualityScore:    quality,
		Details:         v.buildDetails(expected, found, matches, skipped),
		Recommendations: v.recommendations(expected, found),
		Technologies:    profile.Names(),
		Matches:         matches,
	}, nil
}

// buildDetails renders a summary line, then capped per-match lines, then
// skipped-file notes.
func (v *gateValidator) buildDetails(expected, found int, matches []match.Match, skipped []string) []string {
	details := make([]string, 0, 2+len(skipped))
	if v.spec.negative {
		if found == 0 {
			details = append(details, "no violations detected")
		} else {
			details = append(details, fmt.Sprintf("%d violation(s) detected", found))
		}
	} else {
		details = append(details, fmt.Sprintf("found %d of %d expected implementation(s)", found, expected))
	}

	limit := len(matches)
	if limit > maxMatchDetails {
		limit = maxMatchDetails
	}
	for _, m := range matches[:limit] {
		details = append(details, fmt.Sprintf("%s:%d: %s", m.RelativePath, m.LineNumber, m.MatchedText))
	}
	if len(matches) > limit {
		details = append(details, fmt.Sprintf("... and %d more match(es)", len(matches)-limit))
	}

	sort.Strings(skipped)
	details = append(details, skipped...)
	return details
}

// recommendations selects the bucket for the observed coverage.
func (v *gateValidator) recommendations(expected, found int) []string {
	var bucket []string
	switch {
	case v.spec.negative:
		if found > 0 {
			bucket = v.spec.recommendNone
		} else {
			bucket = v.spec.recommendFull
		}
	case found == 0:
		bucket = v.spec.recommendNone
	case found < expected:
		bucket = v.spec.recommendPartial
	default:
		bucket = v.spec.recommendFull
	}
	return append([]string(nil), bucket...)
}

func filterLanguage(files []walker.FileRecord, lang language.Language) []walker.FileRecord {
	canonical := language.Canonical(lang)
	out := make([]walker.FileRecord, 0, len(files))
	for _, f := range files {
		if language.Canonical(f.Language) == canonical {
			out = append(out, f)
		}
	}
	return out
}

// sortMatches orders matches by path, line, then column. The matcher's
// worker pool makes raw ordering arbitrary; reports need stability.
func sortMatches(matches []match.Match) {
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.RelativePath != b.RelativePath {
			return a.RelativePath < b.RelativePath
		}
		if a.LineNumber != b.LineNumber {
			return a.LineNumber < b.LineNumber
		}
		return a.ColumnStart < b.ColumnStart
	})
}
