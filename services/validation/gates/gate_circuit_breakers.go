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

	"github.com/AleutianAI/hardgate/services/validation/language"
	"github.com/AleutianAI/hardgate/services/validation/match"
	"github.com/AleutianAI/hardgate/services/validation/tech"
)

// circuit_breakers: failing dependencies are isolated before they cascade.

var fallbackRe = regexp.MustCompile(`(?i)(fallback|half[_-]?open|failure[_-]?threshold)`)

func circuitBreakersSpecs() []gateSpec {
	jsPatterns := []match.PatternSpec{
		lib(`require\(['"](opossum|cockatiel)['"]\)`),
		lib(`from\s+['"](opossum|cockatiel)['"]`),
		call(`new\s+CircuitBreaker\s*\(`),
		call(`circuitBreaker\s*\(`),
	}

	specs := []gateSpec{
		{
			gate: CircuitBreakers, lang: language.Java,
			patterns: []match.PatternSpec{
				ann(`@CircuitBreaker\s*\(`),
				ann(`@HystrixCommand\b`),
				call(`CircuitBreakerFactory`),
				call(`CircuitBreakerRegistry`),
				lib(`import\s+io\.github\.resilience4j\.circuitbreaker`),
			},
		},
		{
			gate: CircuitBreakers, lang: language.Python,
			patterns: []match.PatternSpec{
				lib(`import\s+pybreaker|from\s+pybreaker`),
				call(`CircuitBreaker\s*\(`),
				ann(`@circuit\b`),
				lib(`import\s+circuitbreaker|from\s+circuitbreaker`),
			},
		},
		{gate: CircuitBreakers, lang: language.JavaScript, patterns: jsPatterns},
		{gate: CircuitBreakers, lang: language.TypeScript, patterns: jsPatterns},
		{
			gate: CircuitBreakers, lang: language.CSharp,
			patterns: []match.PatternSpec{
				call(`\.CircuitBreaker(Async)?\s*\(`),
				call(`AdvancedCircuitBreaker(Async)?\s*\(`),
				call(`BrokenCircuitException`),
				lib(`using\s+Polly`),
			},
		},
	}

	for i := range specs {
		specs[i].expected = expectedCircuitBreakers
		specs[i].quality = circuitBreakersQuality
		specs[i].recommendNone = []string{
			"Wrap calls to unreliable dependencies in a circuit breaker so failures stop cascading",
			"Define a fallback path for each breaker (cached value, degraded response, or fast failure)",
		}
		specs[i].recommendPartial = []string{
			"Protect every external dependency, not just the ones already wrapped",
			"Tune failure thresholds and half-open probe intervals from observed error rates",
		}
		specs[i].recommendFull = []string{
			"Emit breaker state transitions to monitoring so open circuits page someone",
		}
	}
	return specs
}

func circuitBreakersQuality(in qualityInput) float64 {
	return scoreQuality(in,
		libraryBonus(in, tech.CategoryResilience),
		regexBonus(in, fallbackRe),
		annotationBonus(in),
		libraryMatchBonus(in),
	)
}
