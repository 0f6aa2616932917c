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

// retry_logic: calls to external dependencies retry transient failures,
// preferably with backoff.

var backoffRe = regexp.MustCompile(`(?i)(backoff|exponential|jitter|wait.*retry|delay.*retry)`)

func retryLogicSpecs() []gateSpec {
	jsPatterns := []match.PatternSpec{
		lib(`require\(['"](axios-retry|p-retry|async-retry|retry)['"]\)`),
		lib(`from\s+['"](axios-retry|p-retry|async-retry)['"]`),
		call(`\b(maxRetries|retries)\s*[:=]\s*\d`),
		call(`axiosRetry\s*\(`),
		kw(`\bretry(ing)?\b.*\b(attempt|backoff|delay)\b`),
	}

	specs := []gateSpec{
		{
			gate: RetryLogic, lang: language.Java,
			patterns: []match.PatternSpec{
				ann(`@Retryable\s*\(`),
				ann(`@Retry\s*\(`),
				call(`RetryTemplate`),
				call(`Failsafe\.with`),
				lib(`import\s+io\.github\.resilience4j\.retry`),
				call(`\bmaxAttempts\s*=`),
			},
		},
		{
			gate: RetryLogic, lang: language.Python,
			patterns: []match.PatternSpec{
				ann(`@retry\b`),
				lib(`import\s+tenacity|from\s+tenacity\s+import`),
				lib(`import\s+backoff|from\s+backoff\s+import`),
				call(`\bmax_retries\s*=\s*\d`),
				call(`stop_after_attempt\s*\(`),
			},
		},
		{gate: RetryLogic, lang: language.JavaScript, patterns: jsPatterns},
		{gate: RetryLogic, lang: language.TypeScript, patterns: jsPatterns},
		{
			gate: RetryLogic, lang: language.CSharp,
			patterns: []match.PatternSpec{
				call(`Policy\s*\.\s*Handle<.*>\s*\(?\)?\s*\.\s*(Retry|WaitAndRetry)`),
				call(`WaitAndRetry(Async)?\s*\(`),
				call(`AddPolicyHandler|AddTransientHttpErrorPolicy`),
				lib(`using\s+Polly`),
			},
		},
	}

	for i := range specs {
		specs[i].expected = expectedRetryLogic
		specs[i].quality = retryLogicQuality
		specs[i].recommendNone = []string{
			"Wrap calls to external dependencies in retry logic with bounded attempts",
			"Use exponential backoff with jitter to avoid thundering-herd retries",
		}
		specs[i].recommendPartial = []string{
			"Apply the same retry policy to all outbound clients, not just some",
			"Retry only idempotent operations; guard non-idempotent calls explicitly",
		}
		specs[i].recommendFull = []string{
			"Log each retry attempt so retry storms are visible in monitoring",
		}
	}
	return specs
}

func retryLogicQuality(in qualityInput) float64 {
	return scoreQuality(in,
		libraryBonus(in, tech.CategoryResilience),
		regexBonus(in, backoffRe),
		annotationBonus(in),
		spreadBonus(in, 2),
	)
}
