// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package language

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// contentSampleBytes is how much of a file the detector reads for
// signature matching. 2 KiB covers package declarations and imports.
const contentSampleBytes = 2048

// maxContentReadBytes caps per-file content reads. Files larger than this
// still count toward the extension tally but skip content analysis.
const maxContentReadBytes = 1 << 20

// minConfidence is the retention threshold. Languages below it are dropped
// unless no language qualifies, in which case the highest file count wins.
const minConfidence = 30

// Detection is one detected language with its confidence score.
type Detection struct {
	Language   Language `json:"language"`
	Confidence int      `json:"confidence"`
	FileCount  int      `json:"file_count"`
	HasConfig  bool     `json:"has_config"`
}

// signatures holds per-language content fingerprints. Each regex match in
// the sampled head of a file counts toward that language's content score.
var signatures = map[Language][]*regexp.Regexp{
	Java: {
		regexp.MustCompile(`(?m)^\s*package\s+[\w.]+\s*;`),
		regexp.MustCompile(`(?m)^\s*import\s+java\.`),
		regexp.MustCompile(`\bpublic\s+(final\s+)?class\s+\w+`),
		regexp.MustCompile(`@(Override|Autowired|RestController|Service)\b`),
	},
	Python: {
		regexp.MustCompile(`(?m)^\s*def\s+\w+\s*\(`),
		regexp.MustCompile(`(?m)^\s*from\s+[\w.]+\s+import\s+`),
		regexp.MustCompile(`(?m)^\s*import\s+\w+`),
		regexp.MustCompile(`(?m)^\s*if\s+__name__\s*==`),
	},
	JavaScript: {
		regexp.MustCompile(`\b(const|let)\s+\w+\s*=\s*require\(`),
		regexp.MustCompile(`\bmodule\.exports\b`),
		regexp.MustCompile(`(?m)^\s*import\s+.+\s+from\s+['"]`),
		regexp.MustCompile(`\bfunction\s*\w*\s*\([^)]*\)\s*{`),
	},
	TypeScript: {
		regexp.MustCompile(`\binterface\s+\w+\s*{`),
		regexp.MustCompile(`:\s*(string|number|boolean|void)\b`),
		regexp.MustCompile(`(?m)^\s*export\s+(default\s+)?(class|interface|type|const|function)\b`),
		regexp.MustCompile(`\benum\s+\w+\s*{`),
	},
	CSharp: {
		regexp.MustCompile(`(?m)^\s*namespace\s+[\w.]+`),
		regexp.MustCompile(`(?m)^\s*using\s+System`),
		regexp.MustCompile(`\bpublic\s+(static\s+)?(async\s+)?(class|void|Task)\b`),
		regexp.MustCompile(`\[\w+(\(.*\))?\]\s*$`),
	},
}

// skipDirs are vendor/metadata directories the detector never descends into.
// Standalone copy of the walker's skip set; the walker imports this package,
// so the set cannot be shared without a cycle.
var skipDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true,
	"node_modules": true, "vendor": true, "bower_components": true,
	"venv": true, ".venv": true, "env": true, "__pycache__": true,
	".tox": true, ".mypy_cache": true, ".pytest_cache": true,
	"target": true, "build": true, "dist": true, "out": true,
	"bin": true, "obj": true, "packages": true,
	".idea": true, ".vscode": true, ".vs": true,
}

// Detect classifies the languages present under root.
//
// Description:
//
//	Walks the tree (skipping vendor directories), tallying files by
//	extension and matching content signatures against the first 2 KiB of
//	each file. Top-level manifest files (pom.xml, package.json, *.csproj,
//	...) set a has_config flag per language. Confidence per language is
//
//	  min(100, 2*file_count + 3*content_matches + 20*has_config)
//
//	Languages with confidence >= 30 are retained, ordered by descending
//	confidence. If none qualifies, the single language with the highest
//	file count is returned. The primary language is the first entry.
//
// Inputs:
//
//	root - Repository root path. Must exist.
//
// Outputs:
//
//	[]Detection - Detected languages, best first. Empty if the tree holds
//	no recognizable source files.
//	error - Non-nil only if root is missing or unreadable.
//
// Thread Safety: Detect is stateless and safe for concurrent use.
func Detect(root string) ([]Detection, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("language: root path unavailable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("language: root path %q is not a directory", root)
	}

	fileCounts := make(map[Language]int)
	contentHits := make(map[Language]int)
	hasConfig := make(map[Language]bool)

	// Top-level manifest scan.
	if entries, dirErr := os.ReadDir(root); dirErr == nil {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if l, ok := ManifestLanguage(e.Name()); ok {
				hasConfig[l] = true
			}
		}
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree: skip, do not fail detection.
			slog.Warn("language: skipping unreadable path",
				slog.String("path", path),
				slog.String("error", err.Error()))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		lang, ok := FromPath(path)
		if !ok {
			return nil
		}
		fileCounts[lang]++

		if info, statErr := d.Info(); statErr != nil || info.Size() > maxContentReadBytes {
			return nil
		}
		contentHits[lang] += countSignatures(path, lang)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("language: walk failed: %w", walkErr)
	}

	var detections []Detection
	for lang, count := range fileCounts {
		d := Detection{
			Language:  lang,
			FileCount: count,
			HasConfig: hasConfig[lang],
		}
		confidence := 2*count + 3*contentHits[lang]
		if d.HasConfig {
			confidence += 20
		}
		if confidence > 100 {
			confidence = 100
		}
		d.Confidence = confidence
		detections = append(detections, d)
	}

	sort.Slice(detections, func(i, j int) bool {
		if detections[i].Confidence != detections[j].Confidence {
			return detections[i].Confidence > detections[j].Confidence
		}
		// Stable tie-break so repeated scans produce identical ordering.
		return detections[i].Language < detections[j].Language
	})

	retained := detections[:0:0]
	for _, d := range detections {
		if d.Confidence >= minConfidence {
			retained = append(retained, d)
		}
	}
	if len(retained) == 0 && len(detections) > 0 {
		// Fall back to the single language with the highest file count.
		best := detections[0]
		for _, d := range detections[1:] {
			if d.FileCount > best.FileCount {
				best = d
			}
		}
		retained = []Detection{best}
	}
	return retained, nil
}

// countSignatures reads the head of a file and counts signature matches
// for the given language. Read errors count as zero matches.
func countSignatures(path string, lang Language) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	buf := make([]byte, contentSampleBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0
	}
	head := buf[:n]

	hits := 0
	for _, re := range signatures[lang] {
		if re.Match(head) {
			hits++
		}
	}
	return hits
}
