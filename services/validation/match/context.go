// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package match

import (
	"regexp"
	"strings"

	"github.com/AleutianAI/hardgate/services/validation/language"
)

// functionBackscanLimit bounds how far above a match the nearest-function
// heuristic looks. Declarations further away than this are not attributed.
const functionBackscanLimit = 200

// functionDecls holds per-language function-declaration patterns. The first
// capture group is the function name.
var functionDecls = map[language.Language][]*regexp.Regexp{
	language.Java: {
		regexp.MustCompile(`(?:public|protected|private|static|final|synchronized|abstract)[\w<>\[\],\s]*\s+(\w+)\s*\([^)]*\)\s*(?:throws\s+[\w,\s]+)?\s*\{`),
	},
	language.Python: {
		regexp.MustCompile(`^\s*(?:async\s+)?def\s+(\w+)\s*\(`),
	},
	language.JavaScript: {
		regexp.MustCompile(`function\s+(\w+)\s*\(`),
		regexp.MustCompile(`(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s+)?(?:function\b|\([^)]*\)\s*=>|\w+\s*=>)`),
		regexp.MustCompile(`^\s*(?:async\s+)?(\w+)\s*\([^)]*\)\s*\{`),
	},
	language.TypeScript: {
		regexp.MustCompile(`function\s+(\w+)\s*\(`),
		regexp.MustCompile(`(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s+)?(?:function\b|\([^)]*\)\s*=>|\w+\s*=>)`),
		regexp.MustCompile(`^\s*(?:public|private|protected)?\s*(?:async\s+)?(\w+)\s*\([^)]*\)\s*(?::\s*[\w<>\[\],\s.|]+)?\s*\{`),
	},
	language.CSharp: {
		regexp.MustCompile(`(?:public|protected|private|internal|static|async|override|virtual)[\w<>\[\],\s?]*\s+(\w+)\s*\([^)]*\)\s*\{?`),
	},
}

// lineCommentMarkers are single-line comment prefixes per language.
var lineCommentMarkers = map[language.Language][]string{
	language.Java:       {"//"},
	language.Python:     {"#"},
	language.JavaScript: {"//"},
	language.TypeScript: {"//"},
	language.CSharp:     {"//"},
}

// nearestFunction scans backward from matchLine (0-based index into lines)
// for the nearest function declaration.
//
// Outputs:
//
//	FunctionContext - Zero value if no declaration was found within the
//	backscan limit.
func nearestFunction(lines []string, matchLine int, lang language.Language) FunctionContext {
	decls := functionDecls[language.Canonical(lang)]
	if len(decls) == 0 {
		return FunctionContext{}
	}
	limit := matchLine - functionBackscanLimit
	if limit < 0 {
		limit = 0
	}
	for i := matchLine; i >= limit; i-- {
		line := lines[i]
		for _, re := range decls {
			sub := re.FindStringSubmatch(line)
			if sub == nil {
				continue
			}
			name := sub[1]
			if name == "" || isControlKeyword(name) {
				continue
			}
			return FunctionContext{
				Name:            name,
				Signature:       strings.TrimSpace(line),
				DeclarationLine: i + 1,
				DistanceLines:   matchLine - i,
			}
		}
	}
	return FunctionContext{}
}

// isControlKeyword filters declaration-pattern false positives such as
// `if (...)` matching the method-shaped C# pattern.
func isControlKeyword(name string) bool {
	switch strings.ToLower(name) {
	case "if", "for", "while", "switch", "catch", "return", "new", "else", "using", "lock", "foreach":
		return true
	}
	return false
}

// isCommentLine reports whether the match column sits in a line comment.
//
// Description:
//
//	Heuristic: the trimmed line starts with a single-line comment marker,
//	or a marker appears before the match column. Block comments are not
//	tracked across lines; a line starting with '*' inside a Java/JS block
//	comment is treated as a comment. Advisory only, never used to filter.
func isCommentLine(line string, columnStart int, lang language.Language) bool {
	trimmed := strings.TrimSpace(line)
	markers := lineCommentMarkers[language.Canonical(lang)]
	for _, m := range markers {
		if strings.HasPrefix(trimmed, m) {
			return true
		}
		if idx := strings.Index(line, m); idx >= 0 && idx < columnStart-1 {
			return true
		}
	}
	// Interior of a block comment (Java/JS/TS/C# doc style).
	if language.Canonical(lang) != language.Python {
		if strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "/*") {
			return true
		}
	}
	// Python triple-quoted docstring openers.
	if language.Canonical(lang) == language.Python {
		if strings.HasPrefix(trimmed, `"""`) || strings.HasPrefix(trimmed, "'''") {
			return true
		}
	}
	return false
}

// isInStringLiteral reports whether the match column sits inside a string
// literal, by counting unescaped quotes before the match start.
//
// Description:
//
//	Counts double quotes, single quotes (non-Java), and backticks (JS/TS)
//	preceding the column; an odd count of any kind means the match starts
//	inside a literal. Escapes (\" and \') are skipped. Advisory only.
func isInStringLiteral(line string, columnStart int, lang language.Language) bool {
	if columnStart < 1 || columnStart > len(line)+1 {
		return false
	}
	prefix := line[:columnStart-1]
	canonical := language.Canonical(lang)

	counts := map[byte]int{}
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if c == '\\' {
			i++ // skip escaped character
			continue
		}
		switch c {
		case '"':
			counts['"']++
		case '\'':
			counts['\'']++
		case '`':
			counts['`']++
		}
	}

	if counts['"']%2 == 1 {
		return true
	}
	if canonical != language.Java && counts['\'']%2 == 1 {
		return true
	}
	if (canonical == language.JavaScript || canonical == language.TypeScript) && counts['`']%2 == 1 {
		return true
	}
	return false
}

// leadingWhitespace counts leading space and tab characters.
func leadingWhitespace(line string) int {
	n := 0
	for _, r := range line {
		if r == ' ' || r == '\t' {
			n++
			continue
		}
		break
	}
	return n
}
