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

// ui_errors: user-facing failures are caught and surfaced, not swallowed.
// Not registered for C#: no portable regex evidence exists for desktop or
// Razor error surfaces, so the gate reports UNSUPPORTED there.

func uiErrorsSpecs() []gateSpec {
	jsPatterns := []match.PatternSpec{
		call(`componentDidCatch\s*\(`),
		call(`\bErrorBoundary\b`),
		call(`window\.onerror|addEventListener\s*\(\s*['"](error|unhandledrejection)['"]`),
		call(`(toast|notification|message|snackbar)\.(error|warning)\s*\(`),
		call(`\.catch\s*\(\s*(\(?err|\(?error|function)`),
	}

	specs := []gateSpec{
		{
			gate: UIErrors, lang: language.Java,
			patterns: []match.PatternSpec{
				ann(`@ExceptionHandler\s*\(`),
				ann(`@ControllerAdvice\b`),
				call(`ModelAndView\s*\(.*error`),
				cfg(`error\.(html|jsp)|/error['"]`),
			},
		},
		{
			gate: UIErrors, lang: language.Python,
			patterns: []match.PatternSpec{
				ann(`@app\.errorhandler\s*\(`),
				call(`\bhandler(404|500)\b`),
				call(`messages\.(error|warning)\s*\(`),
				call(`render\s*\(.*error`),
			},
		},
		{gate: UIErrors, lang: language.JavaScript, patterns: jsPatterns},
		{gate: UIErrors, lang: language.TypeScript, patterns: jsPatterns},
	}

	for i := range specs {
		specs[i].expected = expectedUIErrors
		specs[i].quality = uiErrorsQuality
		specs[i].recommendNone = []string{
			"Add error boundaries or global error handlers so failures reach the user as a readable message",
			"Show an actionable error state instead of a blank screen on fetch failure",
		}
		specs[i].recommendPartial = []string{
			"Cover async and promise rejections, not just render-time errors",
			"Standardize one error-display component across the UI",
		}
		specs[i].recommendFull = []string{
			"Include a retry affordance in user-facing error states where the operation is safe to repeat",
		}
	}
	return specs
}

func uiErrorsQuality(in qualityInput) float64 {
	return scoreQuality(in,
		libraryBonus(in, tech.CategoryFrontend),
		annotationBonus(in),
		spreadBonus(in, 2),
		stackTraceBonus(in),
	)
}
