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
	"fmt"
	"sort"

	"github.com/AleutianAI/hardgate/services/validation/language"
	"github.com/AleutianAI/hardgate/services/validation/match"
)

// registry holds every (gate, language) validator, built once at init.
// The table is static: support for a pair is a property of the build, not
// of configuration.
var registry = buildRegistry()

func buildRegistry() map[GateKind]map[language.Language]Validator {
	reg := make(map[GateKind]map[language.Language]Validator)
	for _, spec := range allSpecs() {
		if reg[spec.gate] == nil {
			reg[spec.gate] = make(map[language.Language]Validator)
		}
		if _, dup := reg[spec.gate][spec.lang]; dup {
			panic(fmt.Sprintf("gates: duplicate spec for %s/%s", spec.gate, spec.lang))
		}
		reg[spec.gate][spec.lang] = newValidator(spec)
	}
	return reg
}

func allSpecs() []gateSpec {
	var specs []gateSpec
	specs = append(specs, structuredLogsSpecs()...)
	specs = append(specs, avoidLoggingSecretsSpecs()...)
	specs = append(specs, auditTrailSpecs()...)
	specs = append(specs, correlationIDSpecs()...)
	specs = append(specs, logAPICallsSpecs()...)
	specs = append(specs, logBackgroundJobsSpecs()...)
	specs = append(specs, uiErrorsSpecs()...)
	specs = append(specs, retryLogicSpecs()...)
	specs = append(specs, timeoutsSpecs()...)
	specs = append(specs, throttlingSpecs()...)
	specs = append(specs, circuitBreakersSpecs()...)
	specs = append(specs, errorLogsSpecs()...)
	specs = append(specs, httpCodesSpecs()...)
	specs = append(specs, uiErrorToolsSpecs()...)
	specs = append(specs, automatedTestsSpecs()...)
	return specs
}

// For returns the validator for a (gate, language) pair, or nil when the
// pair is unsupported. Callers map nil to an UNSUPPORTED gate status.
func For(gate GateKind, lang language.Language) Validator {
	v, ok := registry[gate][language.Canonical(lang)]
	if !ok {
		return nil
	}
	return v
}

// SupportedLanguages lists the languages a gate supports, sorted.
func SupportedLanguages(gate GateKind) []language.Language {
	langs := make([]language.Language, 0, len(registry[gate]))
	for lang := range registry[gate] {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// Supports reports whether a (gate, language) pair has a validator.
func Supports(gate GateKind, lang language.Language) bool {
	return For(gate, lang) != nil
}

// =============================================================================
// PatternSpec constructors. Every pattern table below uses these.
// =============================================================================

func lib(pattern string) match.PatternSpec {
	return match.PatternSpec{Pattern: pattern, Type: match.PatternTypeLibrary}
}

func call(pattern string) match.PatternSpec {
	return match.PatternSpec{Pattern: pattern, Type: match.PatternTypeCall}
}

func ann(pattern string) match.PatternSpec {
	return match.PatternSpec{Pattern: pattern, Type: match.PatternTypeAnnotation}
}

func cfg(pattern string) match.PatternSpec {
	return match.PatternSpec{Pattern: pattern, Type: match.PatternTypeConfig}
}

func kw(pattern string) match.PatternSpec {
	return match.PatternSpec{Pattern: pattern, Type: match.PatternTypeKeyword, Severity: match.SeverityLow}
}

func violation(pattern, category string) match.PatternSpec {
	return match.PatternSpec{
		Pattern:  pattern,
		Type:     match.PatternTypeViolation,
		Category: category,
		Severity: match.SeverityHigh,
	}
}
