// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package language classifies repository languages by file extension,
// content fingerprint, and manifest-file heuristics.
package language

import (
	"path/filepath"
	"strings"
)

// Language identifies a supported source language. It is used only as a
// dispatch key; the zero value is invalid.
type Language string

const (
	Java       Language = "java"
	Python     Language = "python"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	CSharp     Language = "csharp"
	// DotNet is accepted as an input alias for CSharp. Validators and
	// pattern tables are registered under CSharp only.
	DotNet Language = "dotnet"
)

// All returns the supported languages in canonical order.
func All() []Language {
	return []Language{Java, Python, JavaScript, TypeScript, CSharp}
}

// Canonical collapses aliases. DotNet maps to CSharp; everything else is
// returned unchanged.
func Canonical(l Language) Language {
	if l == DotNet {
		return CSharp
	}
	return l
}

// Parse converts a string to a Language tag.
//
// Outputs:
//   - Language: The parsed language (canonicalized).
//   - bool: False if the string names no supported language.
func Parse(s string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case Java:
		return Java, true
	case Python:
		return Python, true
	case JavaScript, "js":
		return JavaScript, true
	case TypeScript, "ts":
		return TypeScript, true
	case CSharp, DotNet, "c#":
		return CSharp, true
	}
	return "", false
}

// extensions maps file extensions (lowercase, with dot) to languages.
var extensions = map[string]Language{
	".java":   Java,
	".py":     Python,
	".pyw":    Python,
	".js":     JavaScript,
	".jsx":    JavaScript,
	".mjs":    JavaScript,
	".cjs":    JavaScript,
	".ts":     TypeScript,
	".tsx":    TypeScript,
	".mts":    TypeScript,
	".cts":    TypeScript,
	".cs":     CSharp,
	".cshtml": CSharp,
	".csx":    CSharp,
}

// FromPath returns the language for a file path based on its extension.
//
// Outputs:
//   - Language: The language tag.
//   - bool: False for unrecognized extensions.
func FromPath(path string) (Language, bool) {
	l, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return l, ok
}

// Extensions returns the file extensions (with leading dot) for a language.
func Extensions(l Language) []string {
	var out []string
	for ext, lang := range extensions {
		if lang == Canonical(l) {
			out = append(out, ext)
		}
	}
	return out
}

// manifests maps well-known top-level manifest file names to the language
// they indicate. Used by the detector's has_config heuristic.
var manifests = map[string]Language{
	"pom.xml":          Java,
	"build.gradle":     Java,
	"build.gradle.kts": Java,
	"settings.gradle":  Java,
	"requirements.txt": Python,
	"setup.py":         Python,
	"pyproject.toml":   Python,
	"pipfile":          Python,
	"package.json":     JavaScript,
	"tsconfig.json":    TypeScript,
	"packages.config":  CSharp,
	"nuget.config":     CSharp,
	"global.json":      CSharp,
}

// ManifestLanguage returns the language indicated by a top-level file name.
// Project files with variable names (*.csproj, *.sln) are matched by
// extension.
func ManifestLanguage(name string) (Language, bool) {
	lower := strings.ToLower(name)
	if l, ok := manifests[lower]; ok {
		return l, true
	}
	switch strings.ToLower(filepath.Ext(lower)) {
	case ".csproj", ".sln", ".fsproj", ".vbproj":
		return CSharp, true
	}
	return "", false
}
