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

// error_logs: failures are logged at error level with enough context to
// debug them.

func errorLogsSpecs() []gateSpec {
	jsPatterns := []match.PatternSpec{
		call(`\blogger\.(error|fatal)\s*\(`),
		call(`console\.error\s*\(`),
		call(`captureException\s*\(`),
		call(`\.catch\s*\(.*\b(log|logger|console)\b`),
	}

	specs := []gateSpec{
		{
			gate: ErrorLogs, lang: language.Java,
			patterns: []match.PatternSpec{
				call(`\blog(ger)?\.(error|fatal)\s*\(`),
				call(`printStackTrace\s*\(`),
				call(`\blog(ger)?\.error\s*\(.*,\s*(e|ex|exception|t|throwable)\s*\)`),
			},
		},
		{
			gate: ErrorLogs, lang: language.Python,
			patterns: []match.PatternSpec{
				call(`\blogg(er|ing)\.(error|critical)\s*\(`),
				call(`\blogg(er|ing)\.exception\s*\(`),
				call(`exc_info\s*=\s*True`),
				call(`traceback\.(format_exc|print_exc)\s*\(`),
			},
		},
		{gate: ErrorLogs, lang: language.JavaScript, patterns: jsPatterns},
		{gate: ErrorLogs, lang: language.TypeScript, patterns: jsPatterns},
		{
			gate: ErrorLogs, lang: language.CSharp,
			patterns: []match.PatternSpec{
				call(`_?logger\.Log(Error|Critical)\s*\(`),
				call(`\bLog\.(Error|Fatal)\s*\(`),
				call(`Log(Error|Critical)\s*\(\s*(e|ex|exception)\b`),
			},
		},
	}

	for i := range specs {
		specs[i].expected = expectedErrorLogs
		specs[i].quality = errorLogsQuality
		specs[i].recommendNone = []string{
			"Log every caught exception at error level; silent catch blocks hide production failures",
			"Include the exception object so the stack trace is preserved",
		}
		specs[i].recommendPartial = []string{
			"Audit catch blocks that swallow errors without logging",
			"Attach operation context (identifiers, inputs) to error records",
		}
		specs[i].recommendFull = []string{
			"Keep error logs free of sensitive payloads while retaining debuggability",
		}
	}
	return specs
}

func errorLogsQuality(in qualityInput) float64 {
	return scoreQuality(in,
		libraryBonus(in, tech.CategoryLogging),
		stackTraceBonus(in),
		contextFieldsBonus(in),
		spreadBonus(in, 3),
	)
}
