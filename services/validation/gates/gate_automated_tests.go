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
	"github.com/AleutianAI/hardgate/services/validation/tech"
)

// automated_tests: a real test suite exists, with assertions, not just
// test files.

var mockRe = regexp.MustCompile(`(?i)(mock|stub|spy|fake)`)

func automatedTestsSpecs() []gateSpec {
	jsPatterns := []match.PatternSpec{
		call(`\b(describe|it|test)\s*\(\s*['"]`),
		call(`\bexpect\s*\(`),
		lib(`jest\.(mock|fn|spyOn)\s*\(`),
		lib(`from\s+['"]vitest['"]`),
		call(`beforeEach\s*\(`),
	}

	specs := []gateSpec{
		{
			gate: AutomatedTests, lang: language.Java,
			patterns: []match.PatternSpec{
				ann(`@Test\b`),
				lib(`import\s+org\.junit`),
				lib(`import\s+org\.mockito`),
				call(`assert(Equals|True|False|That|Throws|NotNull)\s*\(`),
				call(`Mockito\.(when|verify|mock)\s*\(`),
			},
		},
		{
			gate: AutomatedTests, lang: language.Python,
			patterns: []match.PatternSpec{
				call(`def\s+test_\w+\s*\(`),
				lib(`import\s+pytest|from\s+pytest`),
				call(`unittest\.TestCase`),
				call(`\bassert\s+`),
				ann(`@pytest\.(fixture|mark)`),
			},
		},
		{gate: AutomatedTests, lang: language.JavaScript, patterns: jsPatterns},
		{gate: AutomatedTests, lang: language.TypeScript, patterns: jsPatterns},
		{
			gate: AutomatedTests, lang: language.CSharp,
			patterns: []match.PatternSpec{
				ann(`\[(Test|Fact|Theory|TestMethod)\]`),
				call(`Assert\.\w+\s*\(`),
				lib(`using\s+(Xunit|NUnit\.Framework|Microsoft\.VisualStudio\.TestTools)`),
				call(`new\s+Mock<`),
			},
		},
	}

	for i := range specs {
		specs[i].expected = expectedAutomatedTests
		specs[i].quality = automatedTestsQuality
		specs[i].recommendNone = []string{
			"Add a unit test suite with a standard framework (JUnit, pytest, jest, or xUnit)",
			"Start with the business-critical paths; a thin suite that runs in CI beats none",
		}
		specs[i].recommendPartial = []string{
			"Grow coverage toward the modules with no tests at all",
			"Add assertions to tests that only exercise code without checking outcomes",
		}
		specs[i].recommendFull = []string{
			"Track coverage trends in CI and fail the build on significant regressions",
		}
	}
	return specs
}

func automatedTestsQuality(in qualityInput) float64 {
	return scoreQuality(in,
		libraryBonus(in, tech.CategoryTesting),
		regexBonus(in, mockRe),
		spreadBonus(in, 3),
		bonus{points: bonusCap, earned: in.Stats.TestFiles > 0 && in.Stats.NonTestSource > 0 && in.Stats.TestFiles*3 >= in.Stats.NonTestSource},
	)
}
