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

// timeouts: blocking I/O carries explicit deadlines.

func timeoutsSpecs() []gateSpec {
	jsPatterns := []match.PatternSpec{
		call(`\btimeout\s*:\s*\d`),
		call(`AbortController\s*\(`),
		call(`AbortSignal\.timeout\s*\(`),
		call(`\.setTimeout\s*\(\s*\d`),
		call(`connectTimeoutMS|socketTimeoutMS`),
	}

	specs := []gateSpec{
		{
			gate: Timeouts, lang: language.Java,
			patterns: []match.PatternSpec{
				call(`set(Connect|Read|Write)Timeout\s*\(`),
				call(`\.timeout\s*\(\s*Duration`),
				call(`connectTimeout|readTimeout|requestTimeout`),
				ann(`@Transactional\s*\(.*timeout`),
				call(`CompletableFuture.*orTimeout\s*\(`),
			},
		},
		{
			gate: Timeouts, lang: language.Python,
			patterns: []match.PatternSpec{
				call(`\btimeout\s*=\s*\d`),
				call(`socket\.settimeout\s*\(`),
				call(`asyncio\.wait_for\s*\(`),
				call(`async_timeout|asyncio\.timeout\s*\(`),
			},
		},
		{gate: Timeouts, lang: language.JavaScript, patterns: jsPatterns},
		{gate: Timeouts, lang: language.TypeScript, patterns: jsPatterns},
		{
			gate: Timeouts, lang: language.CSharp,
			patterns: []match.PatternSpec{
				call(`\bTimeout\s*=\s*TimeSpan`),
				call(`CancellationTokenSource\s*\(\s*TimeSpan`),
				call(`\.Timeout\s*=\s*\d`),
				call(`CancelAfter\s*\(`),
				call(`CommandTimeout\s*=`),
			},
		},
	}

	for i := range specs {
		specs[i].expected = expectedTimeouts
		specs[i].quality = timeoutsQuality
		specs[i].recommendNone = []string{
			"Set explicit timeouts on all HTTP clients, database connections, and socket operations",
			"Never rely on library defaults; infinite default timeouts hang under load",
		}
		specs[i].recommendPartial = []string{
			"Cover connect and read timeouts separately where the client distinguishes them",
			"Propagate deadlines through internal call chains instead of stacking independent timeouts",
		}
		specs[i].recommendFull = []string{
			"Review timeout values against observed latency percentiles periodically",
		}
	}
	return specs
}

func timeoutsQuality(in qualityInput) float64 {
	return scoreQuality(in,
		spreadBonus(in, 3),
		libraryMatchBonus(in),
		annotationBonus(in),
		bonus{points: bonusCap, earned: distinctPatterns(in.Matches) >= 2},
	)
}

// distinctPatterns counts how many different pattern shapes hit; hitting
// several means timeouts are set on more than one kind of I/O.
func distinctPatterns(matches []match.Match) int {
	seen := make(map[string]bool)
	for _, m := range matches {
		seen[m.Pattern] = true
	}
	return len(seen)
}
