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

// log_background_jobs: scheduled and queued work logs its lifecycle.

func logBackgroundJobsSpecs() []gateSpec {
	jsPatterns := []match.PatternSpec{
		call(`(queue|worker)\.(process|on)\s*\(`),
		call(`job\.log\s*\(`),
		call(`cron\.schedule\s*\(`),
		call(`\blogger\.(info|debug|warn|error)\s*\(.*\b(job|task|queue|worker)\b`),
		lib(`require\(['"](bull|bullmq|agenda|node-cron)['"]\)`),
	}

	specs := []gateSpec{
		{
			gate: LogBackgroundJobs, lang: language.Java,
			patterns: []match.PatternSpec{
				ann(`@Scheduled\s*\(`),
				call(`JobExecutionContext`),
				call(`implements\s+Job\b`),
				call(`\blog(ger)?\.(info|debug|warn|error)\s*\(.*\b(job|task|batch|scheduled)\b`),
				lib(`import\s+org\.quartz`),
			},
		},
		{
			gate: LogBackgroundJobs, lang: language.Python,
			patterns: []match.PatternSpec{
				ann(`@(celery\.|shared_|app\.)?task\b`),
				call(`get_task_logger\s*\(`),
				call(`\blogg(er|ing)\.(info|debug|warning|error)\s*\(.*\b(task|job|worker|queue)\b`),
				lib(`from\s+celery|import\s+celery`),
				lib(`import\s+rq\b|from\s+rq\s+import`),
			},
		},
		{gate: LogBackgroundJobs, lang: language.JavaScript, patterns: jsPatterns},
		{gate: LogBackgroundJobs, lang: language.TypeScript, patterns: jsPatterns},
		{
			gate: LogBackgroundJobs, lang: language.CSharp,
			patterns: []match.PatternSpec{
				call(`:\s*BackgroundService\b`),
				call(`IHostedService`),
				call(`RecurringJob\.AddOrUpdate|BackgroundJob\.Enqueue`),
				call(`_?logger\.Log\w+\s*\(.*\b(job|task|worker|background)\b`),
				lib(`using\s+Hangfire`),
			},
		},
	}

	for i := range specs {
		specs[i].expected = expectedLogBackgroundJobs
		specs[i].quality = logBackgroundJobsQuality
		specs[i].recommendNone = []string{
			"Log job start, completion, and failure for every background worker",
			"Include the job identifier and queue name in each log record",
		}
		specs[i].recommendPartial = []string{
			"Cover failure and retry paths, not just successful completion",
			"Log job duration so slow jobs are visible",
		}
		specs[i].recommendFull = []string{
			"Alert on jobs that fail repeatedly or exceed their expected duration",
		}
	}
	return specs
}

func logBackgroundJobsQuality(in qualityInput) float64 {
	return scoreQuality(in,
		libraryBonus(in, tech.CategoryAsync),
		lifecycleBonus(in),
		annotationBonus(in),
		spreadBonus(in, 2),
	)
}
