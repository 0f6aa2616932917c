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
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/hardgate/services/validation/language"
	"github.com/AleutianAI/hardgate/services/validation/walker"
)

// contextRadius is the number of surrounding lines captured on each side
// of a match.
const contextRadius = 3

// defaultWorkers bounds the per-file worker pool when unconfigured.
const defaultWorkers = 8

// ErrPatternCompile wraps a regex compile failure. It is fatal for the gate
// that owns the pattern set, never for the scan.
type ErrPatternCompile struct {
	Pattern string
	Err     error
}

func (e *ErrPatternCompile) Error() string {
	return fmt.Sprintf("match: pattern %q failed to compile: %v", e.Pattern, e.Err)
}

func (e *ErrPatternCompile) Unwrap() error { return e.Err }

// Options configures a Matcher.
type Options struct {
	// CaseSensitive disables the default case-insensitive compilation.
	CaseSensitive bool

	// Workers bounds the per-file pool. Zero means defaultWorkers.
	Workers int
}

// Matcher runs a pattern set over a file set and produces Match records.
//
// Thread Safety: Matcher is stateless; Scan is safe for concurrent use.
type Matcher struct {
	opts Options
}

// NewMatcher creates a Matcher with the given options.
func NewMatcher(opts Options) *Matcher {
	return &Matcher{opts: opts}
}

type compiledPattern struct {
	re   *regexp.Regexp
	spec PatternSpec
}

// Scan tests every pattern against every line of every file.
//
// Description:
//
//	Files are processed by a bounded worker pool; match ordering across
//	files is therefore arbitrary, and callers must treat the result as a
//	multiset. Each hit carries the full metadata of the Match type,
//	including the surrounding context window and the nearest-function
//	heuristic. Unreadable files are skipped with a detail entry; a regex
//	that fails to compile aborts the scan with ErrPatternCompile.
//
// Inputs:
//
//	ctx - Cancels in-flight file work.
//	files - Files to scan (typically pre-filtered by language).
//	patterns - The pattern set with metadata defaults.
//	gate - Gate tag stamped onto each match. May be empty.
//
// Outputs:
//
//	[]Match - All hits, unordered across files.
//	[]string - Detail entries for skipped files.
//	error - ErrPatternCompile, or the context error on cancellation.
func (m *Matcher) Scan(ctx context.Context, files []walker.FileRecord, patterns []PatternSpec, gate string) ([]Match, []string, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, spec := range patterns {
		src := spec.Pattern
		if !m.opts.CaseSensitive {
			src = "(?i)" + src
		}
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, nil, &ErrPatternCompile{Pattern: spec.Pattern, Err: err}
		}
		compiled = append(compiled, compiledPattern{re: re, spec: spec})
	}
	if len(compiled) == 0 || len(files) == 0 {
		return nil, nil, nil
	}

	workers := m.opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	var mu sync.Mutex
	var matches []Match
	var details []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, file := range files {
		file := file
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			fileMatches, err := scanFile(file, compiled, gate)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				details = append(details, fmt.Sprintf("read failed, file skipped: %s (%v)", file.Path, err))
				slog.Warn("match: unreadable file skipped",
					slog.String("path", file.Path),
					slog.String("error", err.Error()))
				return nil
			}
			matches = append(matches, fileMatches...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return matches, details, nil
}

// scanFile applies all compiled patterns to one file.
func scanFile(file walker.FileRecord, compiled []compiledPattern, gate string) ([]Match, error) {
	lines, err := walker.ReadLines(file.AbsPath)
	if err != nil {
		return nil, err
	}

	modifiedAt := fileModTime(file.AbsPath)
	var out []Match

	for lineIdx, line := range lines {
		for _, cp := range compiled {
			locs := cp.re.FindAllStringIndex(line, -1)
			for _, loc := range locs {
				out = append(out, buildMatch(file, lines, lineIdx, line, loc[0], loc[1], cp, gate, modifiedAt))
			}
		}
	}
	return out, nil
}

// buildMatch assembles the full Match metadata for one hit.
func buildMatch(file walker.FileRecord, lines []string, lineIdx int, line string, start, end int, cp compiledPattern, gate string, modifiedAt time.Time) Match {
	ctxStart := lineIdx - contextRadius
	if ctxStart < 0 {
		ctxStart = 0
	}
	ctxEnd := lineIdx + contextRadius
	if ctxEnd > len(lines)-1 {
		ctxEnd = len(lines) - 1
	}
	contextLines := make([]string, ctxEnd-ctxStart+1)
	copy(contextLines, lines[ctxStart:ctxEnd+1])

	severity := cp.spec.Severity
	if severity == "" {
		severity = SeverityMedium
	}
	priority := cp.spec.Priority
	if priority <= 0 {
		priority = DefaultPriority(severity)
	}

	columnStart := start + 1
	columnEnd := end // end is exclusive 0-based, so inclusive 1-based == end
	if columnEnd < columnStart {
		columnEnd = columnStart
	}

	lang := language.Canonical(file.Language)

	return Match{
		AbsolutePath: file.AbsPath,
		RelativePath: file.Path,
		FileName:     filepath.Base(file.Path),
		Extension:    filepath.Ext(file.Path),
		FileSize:     file.SizeBytes,
		ModifiedAt:   modifiedAt,

		LineNumber:  lineIdx + 1,
		ColumnStart: columnStart,
		ColumnEnd:   columnEnd,
		MatchedText: line[start:end],
		FullLine:    line,

		ContextLines:     contextLines,
		ContextStartLine: ctxStart + 1,
		ContextEndLine:   ctxEnd + 1,

		Pattern:     cp.spec.Pattern,
		PatternType: cp.spec.Type,
		Category:    cp.spec.Category,
		Language:    lang,
		Gate:        gate,

		Severity: severity,
		Priority: priority,

		Function: nearestFunction(lines, lineIdx, lang),

		LineLength:        len(line),
		LeadingWhitespace: leadingWhitespace(line),
		IsComment:         isCommentLine(line, columnStart, lang),
		IsStringLiteral:   isInStringLiteral(line, columnStart, lang),
	}
}

// fileModTime returns the modification time, or the zero time when the
// stat fails. Stat failure here is not worth a skipped file.
func fileModTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
