// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scan runs repository evaluations asynchronously behind an HTTP
// API: submissions enqueue work, a bounded worker pool executes scans, and
// records plus rendered reports are queryable afterwards.
package scan

import (
	"time"

	"github.com/AleutianAI/hardgate/services/validation"
)

// ScanStatus is the lifecycle state of a scan. Transitions are strictly
// monotonic: pending -> running -> (completed | failed).
type ScanStatus string

const (
	StatusPending   ScanStatus = "pending"
	StatusRunning   ScanStatus = "running"
	StatusCompleted ScanStatus = "completed"
	StatusFailed    ScanStatus = "failed"
)

// Terminal reports whether the status can never change again.
func (s ScanStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// rank orders statuses for the monotonicity check.
func (s ScanStatus) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusRunning:
		return 1
	default:
		return 2
	}
}

// ScanRequest is the submit payload.
type ScanRequest struct {
	RepositoryURL string         `json:"repository_url" binding:"required"`
	Branch        string         `json:"branch"`
	GithubToken   string         `json:"github_token"`
	ScanOptions   map[string]any `json:"scan_options"`
}

// ScanRecord is the persistent state of one scan. The service exclusively
// owns records; the executing worker is the only mutator.
type ScanRecord struct {
	ID          string     `json:"scan_id"`
	SubmittedAt time.Time  `json:"submitted_at"`
	Status      ScanStatus `json:"status"`
	Message     string     `json:"message,omitempty"`
	Progress    string     `json:"progress,omitempty"`

	RepositoryURL string         `json:"repository_url"`
	Branch        string         `json:"branch,omitempty"`
	ScanOptions   map[string]any `json:"scan_options,omitempty"`

	Result *validation.ValidationResult `json:"result,omitempty"`

	ErrorKind   string `json:"error_kind,omitempty"`
	ErrorDetail string `json:"error_detail,omitempty"`

	ReportPath string `json:"report_path,omitempty"`
}

// =============================================================================
// HTTP response shapes
// =============================================================================

// submitResponse is the 202 body for POST /scan.
type submitResponse struct {
	ScanID  string `json:"scan_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// gateEntry is one gate in a status response.
type gateEntry struct {
	Name         string   `json:"name"`
	DisplayName  string   `json:"display_name"`
	Status       string   `json:"status"`
	Score        float64  `json:"score"`
	Expected     int      `json:"expected,omitempty"`
	Found        int      `json:"found,omitempty"`
	Coverage     float64  `json:"coverage,omitempty"`
	QualityScore float64  `json:"quality_score,omitempty"`
	Details      []string `json:"details"`
}

// statusResponse is the body for GET /scan/:id/status.
type statusResponse struct {
	ScanID          string      `json:"scan_id"`
	Status          string      `json:"status"`
	Message         string      `json:"message,omitempty"`
	Progress        string      `json:"progress,omitempty"`
	Score           *float64    `json:"score,omitempty"`
	Gates           []gateEntry `json:"gates,omitempty"`
	Recommendations []string    `json:"recommendations,omitempty"`
	CriticalIssues  []string    `json:"critical_issues,omitempty"`
	ReportURL       string      `json:"report_url,omitempty"`
}

// reportEntry is one row in the reports listing.
type reportEntry struct {
	ScanID     string    `json:"scan_id"`
	Filename   string    `json:"filename"`
	FileSize   int64     `json:"file_size"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
	Score      float64   `json:"score"`
	Status     string    `json:"status"`
	ReportURL  string    `json:"report_url"`
}

type listReportsResponse struct {
	Reports    []reportEntry `json:"reports"`
	TotalCount int           `json:"total_count"`
}

// errorEnvelope is the uniform error body.
type errorEnvelope struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
