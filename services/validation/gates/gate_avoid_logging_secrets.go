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
	"github.com/AleutianAI/hardgate/services/validation/language"
	"github.com/AleutianAI/hardgate/services/validation/match"
)

// avoid_logging_secrets is the one negative gate: the expected count is
// always zero and every match is a violation. Patterns pair a log-call
// prefix (per language) with a sensitive-data keyword group (per category).

// secretCategories maps violation category to its keyword alternation.
var secretCategories = []struct {
	name     string
	keywords string
}{
	{"Authentication", `password|passwd|pwd|secret`},
	{"Credentials", `credential|private[_-]?key|client[_-]?secret|passphrase`},
	{"Financial", `credit[_-]?card|card[_-]?number|cvv|iban|account[_-]?number`},
	{"Personal", `\bssn\b|social[_-]?security|date[_-]?of[_-]?birth|passport`},
	{"API Keys", `api[_-]?key|access[_-]?token|auth[_-]?token|bearer[_-]?token|refresh[_-]?token`},
	{"Database", `connection[_-]?string|db[_-]?pass|jdbc:.*password`},
}

// secretViolationPatterns builds the category table for one language's
// log-call prefix.
func secretViolationPatterns(logPrefix string) []match.PatternSpec {
	patterns := make([]match.PatternSpec, 0, len(secretCategories))
	for _, cat := range secretCategories {
		patterns = append(patterns, violation(logPrefix+`.*(`+cat.keywords+`)`, cat.name))
	}
	return patterns
}

func avoidLoggingSecretsSpecs() []gateSpec {
	prefixes := map[language.Language]string{
		language.Java:       `(\blog(ger)?\.(info|debug|warn|error|trace)|System\.(out|err)\.print)\s*\(`,
		language.Python:     `(\blogg(er|ing)\.(info|debug|warning|error|critical|exception)|\bprint)\s*\(`,
		language.JavaScript: `(console\.(log|info|warn|error|debug)|\blogger\.(info|debug|warn|error))\s*\(`,
		language.TypeScript: `(console\.(log|info|warn|error|debug)|\blogger\.(info|debug|warn|error))\s*\(`,
		language.CSharp:     `(\bLog\.(Information|Warning|Error|Debug)|_?logger\.Log\w+|Console\.Write(Line)?)\s*\(`,
	}

	specs := make([]gateSpec, 0, len(prefixes))
	for _, lang := range language.All() {
		prefix, ok := prefixes[lang]
		if !ok {
			continue
		}
		specs = append(specs, gateSpec{
			gate:     AvoidLoggingSecrets,
			lang:     lang,
			negative: true,
			patterns: secretViolationPatterns(prefix),
			expected: expectedAvoidLoggingSecrets,
			quality:  avoidLoggingSecretsQuality,
			recommendNone: []string{
				"Remove sensitive values from log statements; log opaque identifiers instead",
				"Add a log-masking or redaction filter to the logging pipeline",
				"Review matched lines and rotate any credentials that reached persisted logs",
			},
			recommendFull: []string{
				"Keep secret-scanning in CI to prevent regressions",
			},
		})
	}
	return specs
}

// avoidLoggingSecretsQuality penalizes each violation steeply. An empty
// file set scores zero: absence of code is not evidence of safe logging.
// Any violation caps quality at 50, keeping the quality multiplier in the
// lowest bucket so a single leaked secret can never score a PASS.
func avoidLoggingSecretsQuality(in qualityInput) float64 {
	if in.Stats.FileCount == 0 {
		return 0
	}
	violations := float64(len(in.Matches))
	if violations == 0 {
		return 100
	}
	return clamp(100-45*violations, 0, 50)
}
