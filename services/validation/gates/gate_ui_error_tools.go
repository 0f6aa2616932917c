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

// ui_error_tools: a client-side error-tracking integration exists. One
// integration anywhere satisfies the gate. Not registered for C# for the
// same reason as ui_errors.

func uiErrorToolsSpecs() []gateSpec {
	jsPatterns := []match.PatternSpec{
		call(`Sentry\.(init|captureException)\s*\(`),
		lib(`from\s+['"]@sentry/`),
		lib(`require\(['"]@sentry/`),
		call(`Bugsnag\.(start|notify)\s*\(`),
		call(`Rollbar\s*\(|rollbar\.(error|init)`),
		call(`LogRocket\.init\s*\(`),
		call(`datadogRum\.init\s*\(`),
	}

	specs := []gateSpec{
		{
			gate: UIErrorTools, lang: language.Java,
			patterns: []match.PatternSpec{
				lib(`import\s+io\.sentry`),
				call(`Sentry\.(init|captureException)\s*\(`),
				cfg(`sentry\.(dsn|properties)`),
			},
		},
		{
			gate: UIErrorTools, lang: language.Python,
			patterns: []match.PatternSpec{
				lib(`import\s+sentry_sdk|from\s+sentry_sdk`),
				call(`sentry_sdk\.init\s*\(`),
				lib(`import\s+rollbar|import\s+bugsnag`),
			},
		},
		{gate: UIErrorTools, lang: language.JavaScript, patterns: jsPatterns},
		{gate: UIErrorTools, lang: language.TypeScript, patterns: jsPatterns},
	}

	for i := range specs {
		specs[i].expected = expectedUIErrorTools
		specs[i].quality = uiErrorToolsQuality
		specs[i].recommendNone = []string{
			"Integrate an error-tracking service (Sentry, Bugsnag, Rollbar) to capture client-side failures",
			"Wire release and environment tags into the integration so errors map to deployments",
		}
		specs[i].recommendPartial = []string{
			"Enable source maps so tracked stack traces resolve to original source",
		}
		specs[i].recommendFull = []string{
			"Scrub sensitive data from error payloads before they leave the client",
		}
	}
	return specs
}

func uiErrorToolsQuality(in qualityInput) float64 {
	return scoreQuality(in,
		libraryMatchBonus(in),
		bonus{points: bonusCap, earned: countByType(in.Matches, match.PatternTypeCall) > 0},
		spreadBonus(in, 2),
		bonus{points: bonusCap, earned: distinctPatterns(in.Matches) >= 2},
	)
}
