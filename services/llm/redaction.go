// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"regexp"
)

// redactionPattern pairs a compiled regex with a labeled replacement so
// the reader knows what class of secret was present without seeing it.
type redactionPattern struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// redactionPatterns is ordered most-specific-first: "sk-ant-api03-" must
// match before the generic "sk-" prefix or the key would be half-redacted.
//
// Thread Safety: initialized once, read-only afterwards.
var redactionPatterns = []redactionPattern{
	{
		Pattern:     regexp.MustCompile(`sk-ant-api03-[A-Za-z0-9_-]{20,}`),
		Replacement: "[REDACTED:anthropic_key]",
	},
	{
		Pattern:     regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`),
		Replacement: "[REDACTED:openai_key]",
	},
	{
		Pattern:     regexp.MustCompile(`AIza[A-Za-z0-9_-]{30,}`),
		Replacement: "[REDACTED:gemini_key]",
	},
	{
		Pattern:     regexp.MustCompile(`ghp_[A-Za-z0-9]{30,}`),
		Replacement: "[REDACTED:github_token]",
	},
	{
		Pattern:     regexp.MustCompile(`Bearer\s+[A-Za-z0-9._-]{10,}`),
		Replacement: "[REDACTED:bearer_token]",
	},
	{
		Pattern:     regexp.MustCompile(`key=[A-Za-z0-9._-]{10,}`),
		Replacement: "key=[REDACTED]",
	},
	{
		Pattern:     regexp.MustCompile(`password=[^\s&]{3,}`),
		Replacement: "password=[REDACTED]",
	},
	{
		Pattern:     regexp.MustCompile(`(postgres|mysql|mongodb)://[^\s]+@`),
		Replacement: "${1}://[REDACTED]@",
	},
}

// SafeLogString redacts known secret patterns from a string.
//
// Description:
//
//	Applied to every outbound enhancement payload and to error strings
//	before logging. Source snippets sent for analysis routinely contain
//	the very credential leaks the scanner flagged; those values must not
//	reach a third-party provider or the process logs.
//
// Inputs:
//   - s: The string to redact. Empty is valid and returns empty.
//
// Outputs:
//   - string: The input with matched secrets replaced by labeled
//     placeholders; unchanged when nothing matches.
//
// Limitations: pattern-based only, single-line matches only. Secrets in
// unknown formats pass through.
//
// Thread Safety: safe for concurrent use.
func SafeLogString(s string) string {
	if s == "" {
		return s
	}
	for _, p := range redactionPatterns {
		s = p.Pattern.ReplaceAllString(s, p.Replacement)
	}
	return s
}
