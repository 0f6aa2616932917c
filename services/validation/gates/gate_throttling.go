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
	"github.com/AleutianAI/hardgate/services/validation/tech"
)

// throttling: inbound or outbound rates are bounded.

func throttlingSpecs() []gateSpec {
	jsPatterns := []match.PatternSpec{
		lib(`require\(['"](express-rate-limit|bottleneck|p-limit)['"]\)`),
		lib(`from\s+['"](express-rate-limit|bottleneck|p-limit)['"]`),
		call(`rateLimit\s*\(`),
		call(`new\s+Bottleneck\s*\(`),
		kw(`\bthrottl(e|ing)\b`),
	}

	specs := []gateSpec{
		{
			gate: Throttling, lang: language.Java,
			patterns: []match.PatternSpec{
				call(`RateLimiter\.(create|of)\s*\(`),
				ann(`@RateLimiter\s*\(`),
				lib(`import\s+io\.github\.bucket4j`),
				call(`Bucket4?j|Bandwidth\.simple`),
				call(`Semaphore\s*\(\s*\d`),
			},
		},
		{
			gate: Throttling, lang: language.Python,
			patterns: []match.PatternSpec{
				lib(`from\s+slowapi|import\s+slowapi`),
				lib(`from\s+ratelimit|import\s+ratelimit`),
				ann(`@limiter\.limit\s*\(`),
				call(`throttle_classes`),
				ann(`@sleep_and_retry`),
			},
		},
		{gate: Throttling, lang: language.JavaScript, patterns: jsPatterns},
		{gate: Throttling, lang: language.TypeScript, patterns: jsPatterns},
		{
			gate: Throttling, lang: language.CSharp,
			patterns: []match.PatternSpec{
				call(`AddRateLimiter\s*\(`),
				call(`RateLimitPartition\.`),
				lib(`using\s+AspNetCoreRateLimit`),
				call(`IpRateLimit|ClientRateLimit`),
				call(`SemaphoreSlim\s*\(\s*\d`),
			},
		},
	}

	for i := range specs {
		specs[i].expected = expectedThrottling
		specs[i].quality = throttlingQuality
		specs[i].recommendNone = []string{
			"Rate-limit public API endpoints to protect against abuse and overload",
			"Bound concurrency on expensive internal operations with a limiter or semaphore",
		}
		specs[i].recommendPartial = []string{
			"Apply limits per client or API key rather than one global bucket",
			"Return 429 with a Retry-After header when a limit trips",
		}
		specs[i].recommendFull = []string{
			"Expose rate-limit metrics so limits can be tuned from real traffic",
		}
	}
	return specs
}

func throttlingQuality(in qualityInput) float64 {
	return scoreQuality(in,
		libraryBonus(in, tech.CategoryResilience),
		libraryMatchBonus(in),
		spreadBonus(in, 2),
		bonus{points: bonusCap, earned: countByType(in.Matches, match.PatternTypeAnnotation) > 0 || countByType(in.Matches, match.PatternTypeCall) > 0},
	)
}
