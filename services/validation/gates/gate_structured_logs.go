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

// structured_logs: the codebase emits logs through a structured logging
// framework rather than bare prints.

func structuredLogsSpecs() []gateSpec {
	jsPatterns := []match.PatternSpec{
		lib(`require\(['"](winston|pino|bunyan)['"]\)`),
		lib(`from\s+['"](winston|pino|bunyan)['"]`),
		call(`(winston\.createLogger|pino\(|bunyan\.createLogger)`),
		call(`\blogger\.(info|debug|warn|error|fatal|trace)\s*\(`),
	}
	tsPatterns := append(append([]match.PatternSpec(nil), jsPatterns...),
		call(`new\s+Logger\s*\(`),
		lib(`from\s+['"]@nestjs/common['"].*Logger`),
	)

	specs := []gateSpec{
		{
			gate: StructuredLogs, lang: language.Java,
			patterns: []match.PatternSpec{
				lib(`import\s+org\.slf4j`),
				lib(`import\s+(ch\.qos\.logback|org\.apache\.logging\.log4j)`),
				call(`LoggerFactory\.getLogger\s*\(`),
				call(`\blog(ger)?\.(info|debug|warn|error|trace)\s*\(`),
				ann(`@Slf4j\b`),
				cfg(`logstash.*encoder|JsonLayout|JsonTemplateLayout`),
			},
		},
		{
			gate: StructuredLogs, lang: language.Python,
			patterns: []match.PatternSpec{
				lib(`^\s*import\s+logging\b`),
				lib(`import\s+structlog`),
				lib(`from\s+loguru\s+import`),
				call(`logging\.getLogger\s*\(`),
				call(`structlog\.get_logger\s*\(`),
				call(`\blogg(er|ing)\.(info|debug|warning|error|critical|exception)\s*\(`),
			},
		},
		{gate: StructuredLogs, lang: language.JavaScript, patterns: jsPatterns},
		{gate: StructuredLogs, lang: language.TypeScript, patterns: tsPatterns},
		{
			gate: StructuredLogs, lang: language.CSharp,
			patterns: []match.PatternSpec{
				lib(`using\s+Serilog`),
				lib(`using\s+NLog`),
				lib(`ILogger<\w+>`),
				call(`\bLog\.(Information|Warning|Error|Debug|Fatal|Verbose)\s*\(`),
				call(`_?logger\.Log(Information|Warning|Error|Debug|Critical|Trace)\s*\(`),
				call(`UseSerilog\s*\(`),
			},
		},
	}

	for i := range specs {
		specs[i].expected = expectedStructuredLogs
		specs[i].quality = structuredLogsQuality
		specs[i].recommendNone = []string{
			"Adopt a structured logging framework (SLF4J/Logback, structlog, winston/pino, or Serilog) instead of bare print statements",
			"Configure a JSON log formatter so log aggregators can index fields",
		}
		specs[i].recommendPartial = []string{
			"Extend structured logging to all service and business-logic modules",
			"Replace remaining print/console statements with logger calls",
		}
		specs[i].recommendFull = []string{
			"Standardize field names (timestamp, level, message, correlation_id) across all loggers",
		}
	}
	return specs
}

func structuredLogsQuality(in qualityInput) float64 {
	return scoreQuality(in,
		libraryBonus(in, tech.CategoryLogging),
		structuredFormatBonus(in),
		logLevelsBonus(in),
		spreadBonus(in, 3),
	)
}
