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

// log_api_calls: inbound API requests are logged, ideally by middleware
// rather than per-handler calls.

func logAPICallsSpecs() []gateSpec {
	jsPatterns := []match.PatternSpec{
		lib(`require\(['"](morgan|pino-http|express-winston)['"]\)`),
		lib(`from\s+['"](morgan|pino-http|express-winston)['"]`),
		call(`app\.use\s*\(\s*(morgan|pinoHttp|expressWinston)`),
		call(`\blogger\.(info|debug)\s*\(.*\b(request|req\.method|req\.url)\b`),
	}

	specs := []gateSpec{
		{
			gate: LogAPICalls, lang: language.Java,
			patterns: []match.PatternSpec{
				lib(`CommonsRequestLoggingFilter`),
				call(`implements\s+HandlerInterceptor`),
				call(`extends\s+OncePerRequestFilter`),
				ann(`@Around\s*\(.*(Controller|RestController|execution)`),
				call(`\blog(ger)?\.(info|debug)\s*\(.*\b(request|endpoint|httpServletRequest)\b`),
			},
		},
		{
			gate: LogAPICalls, lang: language.Python,
			patterns: []match.PatternSpec{
				ann(`@app\.middleware\s*\(`),
				call(`\b(before_request|after_request)\b`),
				call(`def\s+process_(request|response)\s*\(`),
				call(`\blogg(er|ing)\.(info|debug)\s*\(.*\b(request|endpoint|method)\b`),
			},
		},
		{gate: LogAPICalls, lang: language.JavaScript, patterns: jsPatterns},
		{gate: LogAPICalls, lang: language.TypeScript, patterns: jsPatterns},
		{
			gate: LogAPICalls, lang: language.CSharp,
			patterns: []match.PatternSpec{
				call(`UseSerilogRequestLogging\s*\(`),
				call(`UseHttpLogging\s*\(`),
				call(`implements\s+IMiddleware|:\s*IMiddleware\b`),
				call(`ActionFilterAttribute`),
				call(`_?logger\.Log(Information|Debug)\s*\(.*\b(request|HttpContext)\b`),
			},
		},
	}

	for i := range specs {
		specs[i].expected = expectedLogAPICalls
		specs[i].quality = logAPICallsQuality
		specs[i].recommendNone = []string{
			"Add request-logging middleware so every inbound API call is recorded",
			"Log method, path, status, and latency for each request",
		}
		specs[i].recommendPartial = []string{
			"Move ad-hoc handler logging into shared middleware for uniform coverage",
			"Include response status and duration in request logs",
		}
		specs[i].recommendFull = []string{
			"Sample or rate-limit verbose request logging on high-traffic endpoints",
		}
	}
	return specs
}

func logAPICallsQuality(in qualityInput) float64 {
	return scoreQuality(in,
		libraryBonus(in, tech.CategoryWebFrameworks),
		libraryMatchBonus(in),
		lifecycleBonus(in),
		spreadBonus(in, 2),
	)
}
