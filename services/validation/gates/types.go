// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package gates implements the fifteen hard-gate validators and their
// dispatch over (gate, language) pairs. All validators share one skeleton:
// detect technologies, estimate an expected count, collect pattern
// evidence, assess quality, and emit a GateResult.
package gates

import (
	"context"

	"github.com/AleutianAI/hardgate/services/validation/language"
	"github.com/AleutianAI/hardgate/services/validation/match"
	"github.com/AleutianAI/hardgate/services/validation/walker"
)

// GateKind names one of the fifteen hard gates.
type GateKind string

const (
	StructuredLogs      GateKind = "structured_logs"
	AvoidLoggingSecrets GateKind = "avoid_logging_secrets"
	AuditTrail          GateKind = "audit_trail"
	CorrelationID       GateKind = "correlation_id"
	LogAPICalls         GateKind = "log_api_calls"
	LogBackgroundJobs   GateKind = "log_background_jobs"
	UIErrors            GateKind = "ui_errors"
	RetryLogic          GateKind = "retry_logic"
	Timeouts            GateKind = "timeouts"
	Throttling          GateKind = "throttling"
	CircuitBreakers     GateKind = "circuit_breakers"
	ErrorLogs           GateKind = "error_logs"
	HTTPCodes           GateKind = "http_codes"
	UIErrorTools        GateKind = "ui_error_tools"
	AutomatedTests      GateKind = "automated_tests"
)

// All returns the gates in their canonical, deterministic iteration order.
// ValidationResult gate scores are emitted in this order.
func All() []GateKind {
	return []GateKind{
		StructuredLogs,
		AvoidLoggingSecrets,
		AuditTrail,
		CorrelationID,
		LogAPICalls,
		LogBackgroundJobs,
		UIErrors,
		RetryLogic,
		Timeouts,
		Throttling,
		CircuitBreakers,
		ErrorLogs,
		HTTPCodes,
		UIErrorTools,
		AutomatedTests,
	}
}

// GateResult is the per-(gate, language) intermediate outcome. Quality is
// clamped to [0,100]; Expected and Found are never negative.
type GateResult struct {
	Expected        int                 `json:"expected"`
	Found           int                 `json:"found"`
	QualityScore    float64             `json:"quality_score"`
	Details         []string            `json:"details"`
	Recommendations []string            `json:"recommendations"`
	Technologies    map[string][]string `json:"technologies,omitempty"`
	Matches         []match.Match       `json:"matches,omitempty"`
}

// Options carries matcher tuning through to the pattern matcher.
type Options struct {
	// CaseSensitivePatterns disables the default case-insensitive regex
	// compilation.
	CaseSensitivePatterns bool

	// Workers bounds the matcher's per-file pool. Zero means the matcher
	// default.
	Workers int
}

// Target is everything a validator needs about the repository under test.
type Target struct {
	Root    string
	Files   []walker.FileRecord
	Options Options
}

// Validator checks one gate for one language.
//
// Implementations are stateless and safe for concurrent reuse across scans.
type Validator interface {
	Gate() GateKind
	Language() language.Language
	Validate(ctx context.Context, target Target) (GateResult, error)
}
