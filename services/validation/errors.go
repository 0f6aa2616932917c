// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package validation

import (
	"errors"
	"fmt"
)

// ErrorKind classifies scan failures. The policy: recover locally wherever
// that preserves a useful result (skip a file, skip a gate, skip an
// enhancement); surface a scan-level failure only when the scan cannot
// meaningfully proceed.
type ErrorKind string

const (
	// KindInvalidInput: malformed request or option. The scan is never
	// created.
	KindInvalidInput ErrorKind = "invalid_input"

	// KindRepositoryUnavailable: the acquisition adapter failed.
	KindRepositoryUnavailable ErrorKind = "repository_unavailable"

	// KindAccessDenied: the acquisition adapter hit an auth failure.
	KindAccessDenied ErrorKind = "access_denied"

	// KindFileRead: an unreadable file. Logged and skipped, never fatal.
	KindFileRead ErrorKind = "file_read_error"

	// KindPatternCompile: an invalid regex in a gate's pattern set. Fatal
	// for that gate only.
	KindPatternCompile ErrorKind = "pattern_compile_error"

	// KindValidator: a validator panicked. That gate reports FAILED with a
	// zero score; the scan continues.
	KindValidator ErrorKind = "validator_error"

	// KindTimeout: a deadline expired. The overall deadline fails unrun
	// gates; an enhancement deadline falls back silently.
	KindTimeout ErrorKind = "timeout"

	// KindInternal: an unexpected core error. The scan is marked failed.
	KindInternal ErrorKind = "internal"
)

// ScanError carries a kind alongside the message so the HTTP layer can map
// failures to status codes without string matching.
type ScanError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ScanError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ScanError) Unwrap() error { return e.Err }

// NewScanError builds a ScanError. err may be nil.
func NewScanError(kind ErrorKind, message string, err error) *ScanError {
	return &ScanError{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the ErrorKind from an error chain, defaulting to
// KindInternal for unclassified errors.
func KindOf(err error) ErrorKind {
	var se *ScanError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
