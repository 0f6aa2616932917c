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
)

// correlation_id: requests carry a propagated identifier visible in logs.

var correlationHeaderRe = regexp.MustCompile(`(?i)x-(correlation|request|trace)-id`)

func correlationIDSpecs() []gateSpec {
	jsPatterns := []match.PatternSpec{
		call(`\bcorrelation[_-]?id\b`),
		call(`x-(correlation|request)-id`),
		lib(`AsyncLocalStorage`),
		lib(`require\(['"]cls-hooked['"]\)`),
		lib(`(express-request-id|correlation-id)`),
	}

	specs := []gateSpec{
		{
			gate: CorrelationID, lang: language.Java,
			patterns: []match.PatternSpec{
				call(`MDC\.(put|get)\s*\(`),
				call(`\bcorrelationId\b`),
				call(`X-(Correlation|Request|Trace)-ID`),
				lib(`import\s+org\.slf4j\.MDC`),
				ann(`@NewSpan|@ContinueSpan`),
			},
		},
		{
			gate: CorrelationID, lang: language.Python,
			patterns: []match.PatternSpec{
				lib(`import\s+contextvars|from\s+contextvars`),
				lib(`asgi_correlation_id|django_guid`),
				call(`\bcorrelation[_-]?id\b`),
				call(`x-(correlation|request)-id`),
			},
		},
		{gate: CorrelationID, lang: language.JavaScript, patterns: jsPatterns},
		{gate: CorrelationID, lang: language.TypeScript, patterns: jsPatterns},
		{
			gate: CorrelationID, lang: language.CSharp,
			patterns: []match.PatternSpec{
				call(`HttpContext\.TraceIdentifier`),
				call(`Activity\.Current`),
				call(`\bCorrelationId\b`),
				call(`X-(Correlation|Request)-ID`),
				lib(`using\s+CorrelationId\b`),
			},
		},
	}

	for i := range specs {
		specs[i].expected = expectedCorrelationID
		specs[i].quality = correlationIDQuality
		specs[i].recommendNone = []string{
			"Generate a correlation identifier at the request boundary and propagate it through all calls",
			"Attach the correlation identifier to every log record (MDC, contextvars, or AsyncLocalStorage)",
		}
		specs[i].recommendPartial = []string{
			"Propagate the correlation identifier across async boundaries and outbound HTTP calls",
			"Return the correlation identifier in response headers for client-side tracing",
		}
		specs[i].recommendFull = []string{
			"Align correlation header naming with the tracing standard in use (W3C traceparent)",
		}
	}
	return specs
}

func correlationIDQuality(in qualityInput) float64 {
	return scoreQuality(in,
		regexBonus(in, correlationHeaderRe),
		contextFieldsBonus(in),
		libraryMatchBonus(in),
		spreadBonus(in, 2),
	)
}
