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
	"regexp"
	"strings"

	"github.com/AleutianAI/hardgate/services/validation/match"
	"github.com/AleutianAI/hardgate/services/validation/tech"
)

// Quality scoring model shared by all positive gates.
//
// Any evidence at all earns a base score; sophistication earns additive
// bonuses. Each bonus is capped at bonusCap points and the sum is clamped
// to [0,100]. With the base plus four full bonuses a gate reaches 100.
const (
	qualityBase = 40
	bonusCap    = 15
)

// bonus is one earned (or not) quality increment.
type bonus struct {
	points float64
	earned bool
}

// qualityInput bundles what a gate's quality assessor may consult.
type qualityInput struct {
	Matches []match.Match
	Tech    tech.Profile
	Stats   fileStats
}

// scoreQuality combines the evidence base with earned bonuses.
//
// Outputs:
//
//	float64 - Quality in [0,100]. Zero when there are no matches.
func scoreQuality(in qualityInput, bonuses ...bonus) float64 {
	if len(in.Matches) == 0 {
		return 0
	}
	score := float64(qualityBase)
	for _, b := range bonuses {
		if !b.earned {
			continue
		}
		pts := b.points
		if pts > bonusCap {
			pts = bonusCap
		}
		score += pts
	}
	return clamp(score, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// =============================================================================
// Shared bonus predicates
// =============================================================================

// libraryBonus: a recognized framework/library backs the implementation.
func libraryBonus(in qualityInput, cat tech.Category) bonus {
	return bonus{points: bonusCap, earned: in.Tech.Any(cat)}
}

// libraryMatchBonus: at least one match came from a library-type pattern.
func libraryMatchBonus(in qualityInput) bonus {
	return bonus{points: bonusCap, earned: countByType(in.Matches, match.PatternTypeLibrary) > 0}
}

// spreadBonus: evidence is consistent across at least n distinct files.
func spreadBonus(in qualityInput, n int) bonus {
	return bonus{points: bonusCap, earned: distinctFiles(in.Matches) >= n}
}

// contextFieldRe covers the context identifiers the heuristics look for.
var contextFieldRe = regexp.MustCompile(`(?i)\b(correlation[_-]?id|request[_-]?id|trace[_-]?id|user[_-]?id|session[_-]?id)\b`)

// contextFieldsBonus: matched lines carry context identifiers.
func contextFieldsBonus(in qualityInput) bonus {
	return bonus{points: bonusCap, earned: anyLine(in.Matches, contextFieldRe)}
}

var logLevelRe = regexp.MustCompile(`(?i)\b(debug|info|warn|warning|error|critical|fatal|trace)\b`)

// logLevelsBonus: at least two distinct log levels appear in the evidence.
func logLevelsBonus(in qualityInput) bonus {
	levels := make(map[string]bool)
	for _, m := range in.Matches {
		for _, lvl := range logLevelRe.FindAllString(m.FullLine, -1) {
			levels[normalizeLevel(lvl)] = true
		}
	}
	return bonus{points: bonusCap, earned: len(levels) >= 2}
}

func normalizeLevel(lvl string) string {
	lvl = strings.ToLower(lvl)
	if lvl == "warning" {
		return "warn"
	}
	return lvl
}

var jsonStructureRe = regexp.MustCompile(`(?i)(json|structured|logstash|extra\s*=\s*\{|fields\s*[:=]|kv\b|"[\w_]+"\s*:)`)

// structuredFormatBonus: structured (JSON/key-value) log formatting.
func structuredFormatBonus(in qualityInput) bonus {
	return bonus{points: bonusCap, earned: anyLine(in.Matches, jsonStructureRe)}
}

var stackTraceRe = regexp.MustCompile(`(?i)(exc_info|stack[_ ]?trace|printStackTrace|traceback|\.stack\b|StackTrace)`)

// stackTraceBonus: error evidence preserves stack traces.
func stackTraceBonus(in qualityInput) bonus {
	return bonus{points: bonusCap, earned: anyLine(in.Matches, stackTraceRe)}
}

var lifecycleRe = regexp.MustCompile(`(?i)\b(start(ed|ing)?|complet(e|ed|ion)|finish(ed)?|fail(ed|ure)?|retry(ing)?|succe(ss|eded))\b`)

// lifecycleBonus: evidence covers event lifecycle stages (start, complete,
// fail, retry). Requires at least two distinct stages.
func lifecycleBonus(in qualityInput) bonus {
	stages := make(map[string]bool)
	for _, m := range in.Matches {
		for _, s := range lifecycleRe.FindAllString(strings.ToLower(m.FullLine), -1) {
			stages[stagePrefix(s)] = true
		}
	}
	return bonus{points: bonusCap, earned: len(stages) >= 2}
}

func stagePrefix(s string) string {
	for _, p := range []string{"start", "complet", "finish", "fail", "retry", "succe"} {
		if strings.HasPrefix(s, p) {
			return p
		}
	}
	return s
}

// annotationBonus: declarative (annotation/decorator) implementations
// outrank ad-hoc loops.
func annotationBonus(in qualityInput) bonus {
	return bonus{points: bonusCap, earned: countByType(in.Matches, match.PatternTypeAnnotation) > 0}
}

// regexBonus: a gate-specific sophistication regex hits any matched line.
func regexBonus(in qualityInput, re *regexp.Regexp) bonus {
	return bonus{points: bonusCap, earned: anyLine(in.Matches, re)}
}

// =============================================================================
// Helpers over match sets
// =============================================================================

func distinctFiles(matches []match.Match) int {
	files := make(map[string]bool, len(matches))
	for _, m := range matches {
		files[m.RelativePath] = true
	}
	return len(files)
}

func countByType(matches []match.Match, t match.PatternType) int {
	n := 0
	for _, m := range matches {
		if m.PatternType == t {
			n++
		}
	}
	return n
}

func anyLine(matches []match.Match, re *regexp.Regexp) bool {
	for _, m := range matches {
		if re.MatchString(m.FullLine) {
			return true
		}
	}
	return false
}

func countByCategory(matches []match.Match) map[string]int {
	out := make(map[string]int)
	for _, m := range matches {
		if m.Category != "" {
			out[m.Category]++
		}
	}
	return out
}
