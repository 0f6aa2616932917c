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

// http_codes: API responses use deliberate status codes rather than a
// blanket 200/500.

var clientErrorCodeRe = regexp.MustCompile(`\b4\d\d\b`)

func httpCodesSpecs() []gateSpec {
	jsPatterns := []match.PatternSpec{
		call(`res\.status\s*\(\s*\d{3}\s*\)`),
		call(`\.sendStatus\s*\(\s*\d{3}\s*\)`),
		call(`StatusCodes\.\w+`),
		call(`statusCode\s*[:=]\s*\d{3}`),
	}

	specs := []gateSpec{
		{
			gate: HTTPCodes, lang: language.Java,
			patterns: []match.PatternSpec{
				call(`HttpStatus\.[A-Z_]+`),
				call(`ResponseEntity\.(ok|status|badRequest|notFound|created|accepted|noContent)\s*\(`),
				ann(`@ResponseStatus\s*\(`),
				call(`setStatus\s*\(\s*\d{3}\s*\)`),
			},
		},
		{
			gate: HTTPCodes, lang: language.Python,
			patterns: []match.PatternSpec{
				call(`status_code\s*=\s*\d{3}`),
				call(`HTTPException\s*\(`),
				call(`abort\s*\(\s*\d{3}`),
				call(`status\.HTTP_\d{3}`),
				call(`(Response|JsonResponse)\s*\(.*status\s*=\s*\d{3}`),
			},
		},
		{gate: HTTPCodes, lang: language.JavaScript, patterns: jsPatterns},
		{gate: HTTPCodes, lang: language.TypeScript, patterns: jsPatterns},
		{
			gate: HTTPCodes, lang: language.CSharp,
			patterns: []match.PatternSpec{
				call(`StatusCode\s*\(\s*\d{3}`),
				call(`\b(Ok|NotFound|BadRequest|Created|NoContent|Unauthorized|Conflict)\s*\(`),
				call(`HttpStatusCode\.\w+`),
				ann(`\[ProducesResponseType\s*\(`),
			},
		},
	}

	for i := range specs {
		specs[i].expected = expectedHTTPCodes
		specs[i].quality = httpCodesQuality
		specs[i].recommendNone = []string{
			"Return specific HTTP status codes (400, 401, 404, 409, 422) instead of a blanket 200 or 500",
			"Map domain errors to status codes in one shared error handler",
		}
		specs[i].recommendPartial = []string{
			"Cover client-error cases (4xx) as deliberately as success cases",
			"Document the status codes each endpoint can return",
		}
		specs[i].recommendFull = []string{
			"Keep error response bodies consistent in shape across all status codes",
		}
	}
	return specs
}

func httpCodesQuality(in qualityInput) float64 {
	return scoreQuality(in,
		regexBonus(in, clientErrorCodeRe),
		annotationBonus(in),
		spreadBonus(in, 2),
		bonus{points: bonusCap, earned: distinctPatterns(in.Matches) >= 2},
	)
}
