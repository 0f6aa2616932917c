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

// audit_trail: business-relevant actions are recorded with who/what/when.

func auditTrailSpecs() []gateSpec {
	jsPatterns := []match.PatternSpec{
		call(`audit(Log|Trail|Event|Entry)`),
		call(`\baudit\.(log|record|track)\s*\(`),
		lib(`require\(['"].*audit.*['"]\)`),
		kw(`\bevent[_-]?sourcing\b`),
	}

	specs := []gateSpec{
		{
			gate: AuditTrail, lang: language.Java,
			patterns: []match.PatternSpec{
				ann(`@Audited\b`),
				ann(`@EntityListeners\s*\(.*Audit`),
				call(`Audit(Log|Event|Service|Entry|Trail)`),
				call(`auditLogger\.|audit(Service|Repository)\.`),
				lib(`import\s+org\.hibernate\.envers`),
				lib(`import\s+org\.springframework\.data\.envers`),
			},
		},
		{
			gate: AuditTrail, lang: language.Python,
			patterns: []match.PatternSpec{
				lib(`import\s+auditlog|from\s+auditlog`),
				call(`audit[_-]?(log|trail|event|entry)`),
				call(`LogEntry\.objects|django_audit`),
				call(`simple_history|HistoricalRecords\s*\(`),
			},
		},
		{gate: AuditTrail, lang: language.JavaScript, patterns: jsPatterns},
		{gate: AuditTrail, lang: language.TypeScript, patterns: jsPatterns},
		{
			gate: AuditTrail, lang: language.CSharp,
			patterns: []match.PatternSpec{
				lib(`using\s+Audit\.Core|Audit\.EntityFramework`),
				call(`AuditScope\.Create|IAudit(Log|Scope|Trail)`),
				call(`audit(Log|Event|Entry|Trail)`),
			},
		},
	}

	for i := range specs {
		specs[i].expected = expectedAuditTrail
		specs[i].quality = auditTrailQuality
		specs[i].recommendNone = []string{
			"Record business-relevant actions (create, update, delete, access) to a dedicated audit log",
			"Include actor, action, target, and timestamp in every audit entry",
		}
		specs[i].recommendPartial = []string{
			"Extend audit coverage to all business entities, not just the ones currently instrumented",
			"Route audit entries to append-only storage separate from application logs",
		}
		specs[i].recommendFull = []string{
			"Verify audit entries are immutable and retained per compliance policy",
		}
	}
	return specs
}

func auditTrailQuality(in qualityInput) float64 {
	return scoreQuality(in,
		libraryMatchBonus(in),
		contextFieldsBonus(in),
		annotationBonus(in),
		spreadBonus(in, 2),
	)
}
