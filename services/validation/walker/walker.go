// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package walker enumerates the source files of a repository, applying
// vendor-directory skips, include/exclude globs, and size caps.
package walker

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/AleutianAI/hardgate/services/validation/language"
)

// DefaultMaxFileSize is the per-file size cap when none is configured.
const DefaultMaxFileSize = 2 << 20 // 2 MiB

// skipDirs are version-control metadata, dependency caches, build outputs,
// virtualenv and IDE directories that are never descended into.
var skipDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true,
	"node_modules": true, "vendor": true, "bower_components": true,
	"venv": true, ".venv": true, "env": true, "__pycache__": true,
	".tox": true, ".mypy_cache": true, ".pytest_cache": true,
	"target": true, "build": true, "dist": true, "out": true,
	"bin": true, "obj": true, "packages": true,
	".idea": true, ".vscode": true, ".vs": true,
}

// FileRecord describes one enumerated source file. Records are immutable
// for the duration of a scan.
type FileRecord struct {
	// Path is repository-relative, with forward slashes.
	Path string `json:"path"`

	// AbsPath is the absolute filesystem path.
	AbsPath string `json:"-"`

	// Language is the dispatch tag derived from the extension.
	Language language.Language `json:"language"`

	// SizeBytes is the file size at enumeration time.
	SizeBytes int64 `json:"size_bytes"`

	// LineCount is the number of lines in the file (lossy UTF-8 read).
	LineCount int `json:"line_count"`
}

// Options configures a walk.
type Options struct {
	// Languages restricts enumeration to files of these languages. Files of
	// other languages are still accepted when they match an include glob.
	Languages []language.Language

	// IncludeGlobs force-include files whose base name or relative path
	// matches (filepath.Match syntax).
	IncludeGlobs []string

	// ExcludeGlobs reject files whose base name or relative path matches.
	// Exclusion is checked before inclusion.
	ExcludeGlobs []string

	// MaxFileSize is the per-file byte cap. Zero means DefaultMaxFileSize.
	MaxFileSize int64

	// FollowSymlinks enables traversal through symbolic links.
	FollowSymlinks bool
}

// Result is the outcome of a walk: the accepted files plus human-readable
// detail entries for files that were skipped due to read errors.
type Result struct {
	Files      []FileRecord
	TotalLines int
	Skipped    []string
}

// Walk enumerates source files under root.
//
// Description:
//
//	Recursive traversal skipping the fixed vendor-directory set. A file is
//	rejected when it exceeds the size cap or matches an exclude glob, and
//	accepted when it matches an include glob or belongs to a configured
//	language. Line counts come from a lossy UTF-8 read; a read error
//	downgrades the file to skipped with a detail entry and does not fail
//	the walk.
//
// Inputs:
//
//	root - Repository root. A missing root is a caller error and fatal.
//	opts - Walk options.
//
// Outputs:
//
//	*Result - Accepted files in traversal order. Callers must not rely on
//	the ordering; parallel consumers observe files in arbitrary order.
//	error - Non-nil if root is missing or not a directory.
//
// Thread Safety: Walk is stateless and safe for concurrent use.
func Walk(root string, opts Options) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("walker: root path unavailable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("walker: root path %q is not a directory", root)
	}

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	wanted := make(map[language.Language]bool, len(opts.Languages))
	for _, l := range opts.Languages {
		wanted[language.Canonical(l)] = true
	}

	res := &Result{}
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("unreadable path skipped: %s (%v)", path, err))
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
		if d.Type()&fs.ModeSymlink != 0 {
			if !opts.FollowSymlinks {
				return nil
			}
			target, linkErr := filepath.EvalSymlinks(path)
			if linkErr != nil {
				res.Skipped = append(res.Skipped, fmt.Sprintf("broken symlink skipped: %s", path))
				return nil
			}
			ti, statErr := os.Stat(target)
			if statErr != nil || ti.IsDir() {
				return nil
			}
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if matchesAny(opts.ExcludeGlobs, rel) {
			return nil
		}

		lang, hasLang := language.FromPath(path)
		included := matchesAny(opts.IncludeGlobs, rel)
		if !included {
			if !hasLang {
				return nil
			}
			if len(wanted) > 0 && !wanted[language.Canonical(lang)] {
				return nil
			}
		}

		fi, statErr := d.Info()
		if statErr != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("stat failed, file skipped: %s (%v)", rel, statErr))
			return nil
		}
		if fi.Size() > maxSize {
			return nil
		}

		lines, readErr := countLines(path)
		if readErr != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("read failed, file skipped: %s (%v)", rel, readErr))
			slog.Warn("walker: unreadable file skipped",
				slog.String("path", rel),
				slog.String("error", readErr.Error()))
			return nil
		}

		res.Files = append(res.Files, FileRecord{
			Path:      rel,
			AbsPath:   path,
			Language:  lang,
			SizeBytes: fi.Size(),
			LineCount: lines,
		})
		res.TotalLines += lines
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walker: traversal failed: %w", walkErr)
	}
	return res, nil
}

// matchesAny reports whether the relative path or its base name matches any
// of the globs. Globs containing a slash match against the full relative
// path; bare globs match the base name.
func matchesAny(globs []string, rel string) bool {
	base := filepath.Base(rel)
	for _, g := range globs {
		target := base
		if strings.ContainsRune(g, '/') {
			target = rel
		}
		if ok, err := filepath.Match(g, target); err == nil && ok {
			return true
		}
	}
	return false
}

// ReadLines reads a file as UTF-8 with lossy fallback, returning its lines.
//
// Description:
//
//	Invalid UTF-8 sequences are replaced with U+FFFD so that regex matching
//	downstream never sees invalid byte sequences. A trailing newline does
//	not produce a final empty line.
//
// Thread Safety: Safe for concurrent use.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		data = bytes.ToValidUTF8(data, []byte("�"))
	}
	s := string(data)
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{}, nil
	}
	return strings.Split(s, "\n"), nil
}

func countLines(path string) (int, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return 0, err
	}
	return len(lines), nil
}
