// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tech detects frameworks and libraries per category from file
// content and manifest files. Its output is advisory: it enriches
// recommendations and tunes some expected-count estimates, but does not
// feed the numerical score directly.
package tech

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/AleutianAI/hardgate/services/validation/language"
	"github.com/AleutianAI/hardgate/services/validation/walker"
)

// sampleFilesPerLanguage caps content reads to keep detection O(files)
// with a small constant.
const sampleFilesPerLanguage = 50

// manifestNames are dependency manifests whose content is always sampled
// regardless of language, because they name technologies directly.
var manifestNames = map[string]bool{
	"package.json":     true,
	"requirements.txt": true,
	"pyproject.toml":   true,
	"pipfile":          true,
	"pom.xml":          true,
	"build.gradle":     true,
	"build.gradle.kts": true,
	"packages.config":  true,
}

// Profile maps category to the deduplicated technology names detected for
// it. Never nil after Detect; missing categories mean nothing detected.
type Profile map[Category][]string

// Has reports whether a specific technology was detected in a category.
func (p Profile) Has(cat Category, name string) bool {
	for _, n := range p[cat] {
		if n == name {
			return true
		}
	}
	return false
}

// Any reports whether anything was detected in a category.
func (p Profile) Any(cat Category) bool { return len(p[cat]) > 0 }

// Names flattens the profile into a map[string][]string keyed by category,
// for embedding in gate results.
func (p Profile) Names() map[string][]string {
	out := make(map[string][]string, len(p))
	for cat, names := range p {
		out[string(cat)] = append([]string(nil), names...)
	}
	return out
}

// Detect scans a sampled subset of files plus manifest files for known
// technology fingerprints.
//
// Description:
//
//	For every (category, technology, pattern-set) triple known for the
//	language, the technology is marked present when any pattern matches
//	sampled file content or any manifest file content. The sample is the
//	first N files per language in enumeration order, plus all top-level
//	manifests.
//
// Inputs:
//
//	root - Repository root (manifest lookup).
//	lang - The language whose catalog is consulted.
//	files - Enumerated file records.
//
// Outputs:
//
//	Profile - Category → sorted technology names.
//
// Thread Safety: Detect is stateless and safe for concurrent use.
func Detect(root string, lang language.Language, files []walker.FileRecord) Profile {
	entries := catalog[language.Canonical(lang)]
	if len(entries) == 0 {
		return Profile{}
	}

	// Compile the language's catalog once per call.
	type compiledEntry struct {
		entry
		regexes []*regexp.Regexp
	}
	compiled := make([]compiledEntry, 0, len(entries))
	for _, e := range entries {
		ce := compiledEntry{entry: e}
		for _, p := range e.patterns {
			if re, err := regexp.Compile("(?i)" + p); err == nil {
				ce.regexes = append(ce.regexes, re)
			}
		}
		compiled = append(compiled, ce)
	}

	var contents []string
	sampled := 0
	for _, f := range files {
		if language.Canonical(f.Language) != language.Canonical(lang) {
			continue
		}
		if sampled >= sampleFilesPerLanguage {
			break
		}
		data, err := os.ReadFile(f.AbsPath)
		if err != nil {
			continue
		}
		contents = append(contents, string(data))
		sampled++
	}
	if dirEntries, err := os.ReadDir(root); err == nil {
		for _, e := range dirEntries {
			if e.IsDir() || !manifestNames[strings.ToLower(e.Name())] {
				continue
			}
			data, readErr := os.ReadFile(filepath.Join(root, e.Name()))
			if readErr != nil {
				continue
			}
			contents = append(contents, string(data))
		}
	}

	found := make(map[Category]map[string]bool)
	for _, ce := range compiled {
		for _, content := range contents {
			if matchesAny(ce.regexes, content) {
				if found[ce.category] == nil {
					found[ce.category] = make(map[string]bool)
				}
				found[ce.category][ce.name] = true
				break
			}
		}
	}

	profile := make(Profile, len(found))
	for cat, names := range found {
		list := make([]string, 0, len(names))
		for n := range names {
			list = append(list, n)
		}
		sort.Strings(list)
		profile[cat] = list
	}
	return profile
}

func matchesAny(regexes []*regexp.Regexp, content string) bool {
	for _, re := range regexes {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}
