// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation orchestrates one end-to-end repository evaluation:
// detect languages, enumerate files, run every gate across the detected
// languages, score the results, and assemble a ValidationResult.
package validation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/hardgate/services/validation/applicability"
	"github.com/AleutianAI/hardgate/services/validation/enhance"
	"github.com/AleutianAI/hardgate/services/validation/gates"
	"github.com/AleutianAI/hardgate/services/validation/language"
	"github.com/AleutianAI/hardgate/services/validation/scoring"
	"github.com/AleutianAI/hardgate/services/validation/walker"
)

const defaultScanDeadline = 180 * time.Second

var tracer = otel.Tracer("hardgate/validation")

// Options tunes one validation run. The zero value scans with detected
// languages, default limits, and no enhancement.
type Options struct {
	// ProjectName labels the result; defaults to the root's base name.
	ProjectName string

	// Languages overrides autodetection when non-empty.
	Languages []language.Language

	IncludeGlobs   []string
	ExcludeGlobs   []string
	MaxFileSize    int64
	FollowSymlinks bool

	// CaseSensitivePatterns disables case-insensitive regex compilation.
	CaseSensitivePatterns bool

	// Workers bounds the per-file pools. Zero means package defaults.
	Workers int

	// ScanDeadline is the overall wall-clock budget. Nil means the
	// default; an explicit zero expires immediately, failing every gate
	// with a timeout detail.
	ScanDeadline *time.Duration

	// Enhancer augments scored gates. Nil disables enhancement.
	Enhancer enhance.Enhancer
}

// ValidationResult is the complete outcome of one scan.
type ValidationResult struct {
	ProjectName     string              `json:"project_name"`
	RootPath        string              `json:"root_path"`
	PrimaryLanguage language.Language   `json:"primary_language"`
	Languages       []language.Language `json:"languages"`
	TotalFiles      int                 `json:"total_files"`
	TotalLines      int                 `json:"total_lines"`
	ScanDuration    time.Duration       `json:"scan_duration"`
	Timestamp       time.Time           `json:"timestamp"`

	GateScores   []scoring.GateScore `json:"gate_scores"`
	OverallScore float64             `json:"overall_score"`

	PassedGates  int `json:"passed_gates"`
	WarningGates int `json:"warning_gates"`
	FailedGates  int `json:"failed_gates"`

	CriticalIssues  []string `json:"critical_issues"`
	Recommendations []string `json:"recommendations"`
}

// Validate runs every gate against the repository at root.
//
// Description:
//
//	Gates are evaluated in the canonical gates.All() order. A gate whose
//	applicability precondition fails reports NOT_APPLICABLE; a gate with
//	no validator for any selected language reports UNSUPPORTED; a gate
//	whose validator fails or panics reports FAILED with a zero score and
//	the scan continues. When the overall deadline expires, gates that
//	have not started report FAILED with a "timeout" detail.
//
// Inputs:
//
//	ctx - Cancels the scan.
//	root - Local repository path. Missing root is fatal.
//	opts - Tuning; see Options.
//
// Outputs:
//
//	*ValidationResult - Always non-nil on nil error.
//	error - *ScanError with KindInvalidInput for a missing root, or the
//	        context error on external cancellation.
//
// Thread Safety: Validate is stateless; concurrent scans are independent.
func Validate(ctx context.Context, root string, opts Options) (*ValidationResult, error) {
	start := time.Now()

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, NewScanError(KindInvalidInput, fmt.Sprintf("root path %q is not a readable directory", root), err)
	}

	deadline := defaultScanDeadline
	if opts.ScanDeadline != nil {
		deadline = *opts.ScanDeadline
	}
	ctx, cancel := context.WithDeadline(ctx, start.Add(deadline))
	defer cancel()

	ctx, span := tracer.Start(ctx, "validation.scan")
	span.SetAttributes(attribute.String("root", root))
	defer span.End()

	langs := opts.Languages
	if len(langs) == 0 {
		langs = detectLanguages(root)
	}

	walkRes, err := walker.Walk(root, walker.Options{
		Languages:      langs,
		IncludeGlobs:   opts.IncludeGlobs,
		ExcludeGlobs:   opts.ExcludeGlobs,
		MaxFileSize:    opts.MaxFileSize,
		FollowSymlinks: opts.FollowSymlinks,
	})
	if err != nil {
		return nil, NewScanError(KindInvalidInput, "file enumeration failed", err)
	}

	applicable := applicability.Evaluate(root, walkRes.Files)

	target := gates.Target{
		Root:  root,
		Files: walkRes.Files,
		Options: gates.Options{
			CaseSensitivePatterns: opts.CaseSensitivePatterns,
			Workers:               opts.Workers,
		},
	}

	scores := make([]scoring.GateScore, 0, len(gates.All()))
	for _, gate := range gates.All() {
		scores = append(scores, runGate(ctx, gate, langs, target, applicable[gate], opts.Enhancer))
	}

	result := &ValidationResult{
		ProjectName:     projectName(root, opts.ProjectName),
		RootPath:        root,
		PrimaryLanguage: primaryLanguage(langs),
		Languages:       langs,
		TotalFiles:      len(walkRes.Files),
		TotalLines:      walkRes.TotalLines,
		ScanDuration:    time.Since(start),
		Timestamp:       start.UTC(),
		GateScores:      scores,
		OverallScore:    scoring.Overall(scores),
	}
	summarize(result)

	slog.Info("scan complete",
		slog.String("project", result.ProjectName),
		slog.Int("files", result.TotalFiles),
		slog.Float64("overall", result.OverallScore),
		slog.Duration("duration", result.ScanDuration))
	return result, nil
}

// runGate evaluates one gate across all selected languages and scores it.
func runGate(ctx context.Context, gate gates.GateKind, langs []language.Language, target gates.Target, decision applicability.Decision, enhancer enhance.Enhancer) scoring.GateScore {
	if ctx.Err() != nil {
		return timeoutScore(gate)
	}
	if !decision.Applicable {
		return skippedScore(gate, scoring.StatusNotApplicable, decision.Reasons)
	}

	ctx, span := tracer.Start(ctx, "validation.gate")
	span.SetAttributes(attribute.String("gate", string(gate)))
	defer span.End()

	agg, ran, err := aggregateLanguages(ctx, gate, langs, target)
	if err != nil {
		if ctx.Err() != nil {
			return timeoutScore(gate)
		}
		slog.Error("gate failed", slog.String("gate", string(gate)), slog.String("error", err.Error()))
		return failedScore(gate, err.Error())
	}
	if !ran {
		return skippedScore(gate, scoring.StatusUnsupported, []string{"no validator available"})
	}

	score := scoring.Score(gate, agg)
	if enhancer != nil {
		applyEnhancement(ctx, enhancer, &score)
	}
	return score
}

// aggregateLanguages merges per-language GateResults: expected and found
// sum, quality averages over the validators that ran, and the list fields
// concatenate (recommendations deduplicate preserving order). A panicking
// validator fails the whole gate.
func aggregateLanguages(ctx context.Context, gate gates.GateKind, langs []language.Language, target gates.Target) (agg gates.GateResult, ran bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			agg, ran = gates.GateResult{}, false
			err = NewScanError(KindValidator, fmt.Sprintf("validator for %s panicked: %v", gate, r), nil)
		}
	}()

	var qualitySum float64
	var qualityCount int
	seen := make(map[language.Language]bool)
	techs := make(map[string][]string)

	for _, lang := range langs {
		canonical := language.Canonical(lang)
		if seen[canonical] {
			continue
		}
		seen[canonical] = true

		v := gates.For(gate, canonical)
		if v == nil {
			continue
		}
		res, verr := v.Validate(ctx, target)
		if verr != nil {
			return gates.GateResult{}, false, NewScanError(KindPatternCompile, verr.Error(), verr)
		}
		ran = true

		agg.Expected += res.Expected
		agg.Found += res.Found
		qualitySum += res.QualityScore
		qualityCount++
		agg.Details = append(agg.Details, res.Details...)
		agg.Matches = append(agg.Matches, res.Matches...)
		agg.Recommendations = dedupAppend(agg.Recommendations, res.Recommendations)
		for cat, names := range res.Technologies {
			techs[cat] = dedupAppend(techs[cat], names)
		}
	}
	if qualityCount > 0 {
		agg.QualityScore = qualitySum / float64(qualityCount)
	}
	if len(techs) > 0 {
		agg.Technologies = techs
	}
	return agg, ran, nil
}

// applyEnhancement merges a best-effort enhancement into the score.
// Failures are logged and ignored. A quality override recomputes the
// final score and status through the same scoring path as the base run.
func applyEnhancement(ctx context.Context, enhancer enhance.Enhancer, score *scoring.GateScore) {
	if ctx.Err() != nil {
		return
	}
	res, err := enhancer.Enhance(ctx, *score)
	if err != nil {
		slog.Warn("enhancement skipped",
			slog.String("gate", string(score.Gate)),
			slog.String("error", err.Error()))
		return
	}
	if res.Empty() {
		return
	}
	if q := res.ClampQuality(); q != nil {
		score.Quality = *q
		score.FinalScore = scoring.FinalScore(score.Gate, score.Coverage, *q)
		score.Status = scoring.StatusFor(score.FinalScore)
	}
	if res.Summary != "" {
		score.Details = append(score.Details, "analysis: "+res.Summary)
	}
	score.Details = append(score.Details, res.Details...)
	for _, insight := range res.SecurityInsights {
		score.Details = append(score.Details, "security: "+insight)
	}
	for _, insight := range res.TechnologyInsights {
		score.Details = append(score.Details, "technology: "+insight)
	}
	if len(res.Recommendations) > 0 {
		score.Recommendations = res.Recommendations
	}
	score.Enhanced = true
}

// summarize fills the verdict counts, critical issues, and the top-level
// recommendation digest.
func summarize(result *ValidationResult) {
	for _, s := range result.GateScores {
		switch s.Status {
		case scoring.StatusPass:
			result.PassedGates++
		case scoring.StatusWarning:
			result.WarningGates++
		case scoring.StatusFail, scoring.StatusFailed:
			result.FailedGates++
		}

		if s.Gate == gates.AvoidLoggingSecrets && s.Found > 0 {
			result.CriticalIssues = append(result.CriticalIssues,
				fmt.Sprintf("sensitive data may be written to logs: %d violation(s) found", s.Found))
		}
		if s.Status == scoring.StatusFail && s.Weight >= 1.5 {
			result.CriticalIssues = append(result.CriticalIssues,
				fmt.Sprintf("high-weight gate failing: %s (score %.1f)", s.DisplayName, s.FinalScore))
		}
		if s.Status == scoring.StatusFail || s.Status == scoring.StatusWarning {
			if len(s.Recommendations) > 0 {
				result.Recommendations = dedupAppend(result.Recommendations, s.Recommendations[:1])
			}
		}
	}
}

func skippedScore(gate gates.GateKind, status scoring.Status, details []string) scoring.GateScore {
	return scoring.GateScore{
		Gate:        gate,
		DisplayName: scoring.DisplayName(gate),
		Status:      status,
		Details:     details,
		Weight:      scoring.Weight(gate),
	}
}

func failedScore(gate gates.GateKind, detail string) scoring.GateScore {
	s := skippedScore(gate, scoring.StatusFailed, []string{detail})
	return s
}

func timeoutScore(gate gates.GateKind) scoring.GateScore {
	return failedScore(gate, "timeout")
}

func detectLanguages(root string) []language.Language {
	detections, err := language.Detect(root)
	if err != nil {
		slog.Warn("language detection failed", slog.String("error", err.Error()))
		return nil
	}
	langs := make([]language.Language, 0, len(detections))
	for _, d := range detections {
		langs = append(langs, d.Language)
	}
	return langs
}

func primaryLanguage(langs []language.Language) language.Language {
	if len(langs) == 0 {
		return ""
	}
	return langs[0]
}

func projectName(root, override string) string {
	if override != "" {
		return override
	}
	return filepath.Base(filepath.Clean(root))
}

// dedupAppend appends items not already present, preserving order.
func dedupAppend(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range src {
		if !seen[s] {
			seen[s] = true
			dst = append(dst, s)
		}
	}
	return dst
}
