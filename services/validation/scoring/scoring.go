// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scoring converts gate evidence into scores and statuses.
//
// The model: coverage measures how much of the expected implementation
// exists, quality measures how well what exists is built. Final score
// blends the two (70/30), scaled by the gate's compliance weight and a
// quality multiplier that punishes low-quality evidence superlinearly.
package scoring

import (
	"github.com/AleutianAI/hardgate/services/validation/gates"
	"github.com/AleutianAI/hardgate/services/validation/match"
)

// Status is the verdict for one gate or for a whole scan.
type Status string

const (
	StatusPass          Status = "PASS"
	StatusWarning       Status = "WARNING"
	StatusFail          Status = "FAIL"
	StatusFailed        Status = "FAILED"
	StatusNotApplicable Status = "NOT_APPLICABLE"
	StatusUnsupported   Status = "UNSUPPORTED"
)

// Counted reports whether a gate with this status participates in the
// overall score. FAILED counts (as zero); skipped gates do not.
func (s Status) Counted() bool {
	switch s {
	case StatusPass, StatusWarning, StatusFail, StatusFailed:
		return true
	default:
		return false
	}
}

// GateScore is the fully scored outcome for one gate.
type GateScore struct {
	Gate            gates.GateKind      `json:"gate"`
	DisplayName     string              `json:"display_name"`
	Status          Status              `json:"status"`
	Expected        int                 `json:"expected"`
	Found           int                 `json:"found"`
	Coverage        float64             `json:"coverage"`
	Quality         float64             `json:"quality"`
	FinalScore      float64             `json:"final_score"`
	Weight          float64             `json:"weight"`
	Details         []string            `json:"details"`
	Recommendations []string            `json:"recommendations"`
	Technologies    map[string][]string `json:"technologies,omitempty"`
	Matches         []match.Match       `json:"matches,omitempty"`
	Enhanced        bool                `json:"enhanced,omitempty"`
}

// Blend and threshold constants.
const (
	coverageShare = 0.7
	qualityShare  = 0.3

	passThreshold    = 80.0
	warningThreshold = 60.0
)

// weights are the per-gate compliance weights. Secret hygiene carries
// double weight; background-job logging slightly under par.
var weights = map[gates.GateKind]float64{
	gates.AvoidLoggingSecrets: 2.0,
	gates.ErrorLogs:           1.8,
	gates.StructuredLogs:      1.6,
	gates.AuditTrail:          1.5,
	gates.AutomatedTests:      1.4,
	gates.RetryLogic:          1.3,
	gates.CircuitBreakers:     1.3,
	gates.Timeouts:            1.2,
	gates.HTTPCodes:           1.2,
	gates.CorrelationID:       1.1,
	gates.LogAPICalls:         1.1,
	gates.Throttling:          1.0,
	gates.UIErrors:            1.0,
	gates.UIErrorTools:        1.0,
	gates.LogBackgroundJobs:   0.9,
}

// displayNames are the human-readable gate titles used in reports.
var displayNames = map[gates.GateKind]string{
	gates.StructuredLogs:      "Logs Searchable and Available",
	gates.AvoidLoggingSecrets: "Avoid Logging Confidential Information",
	gates.AuditTrail:          "Create Audit Trail Logs",
	gates.CorrelationID:       "Tracking ID for Log Messages",
	gates.LogAPICalls:         "Log REST API Calls",
	gates.LogBackgroundJobs:   "Log Application Background Jobs",
	gates.UIErrors:            "Client UI Errors Logged",
	gates.RetryLogic:          "Retry Logic",
	gates.Timeouts:            "Timeouts on IO Operations",
	gates.Throttling:          "Throttling and Drop Requests",
	gates.CircuitBreakers:     "Circuit Breakers on Outgoing Requests",
	gates.ErrorLogs:           "Log System Errors",
	gates.HTTPCodes:           "Use HTTP Standard Error Codes",
	gates.UIErrorTools:        "Client Error Tracking Integration",
	gates.AutomatedTests:      "Automated Tests",
}

// Weight returns the compliance weight for a gate (1.0 when unknown).
func Weight(gate gates.GateKind) float64 {
	if w, ok := weights[gate]; ok {
		return w
	}
	return 1.0
}

// DisplayName returns the report title for a gate.
func DisplayName(gate gates.GateKind) string {
	if n, ok := displayNames[gate]; ok {
		return n
	}
	return string(gate)
}

// Coverage computes coverage in [0,100] from expected and found counts.
//
// Description:
//
//	Positive gates: found/expected, capped at 100. Negative gates
//	(expected 0): a clean result is full coverage; each finding costs
//	10 points.
func Coverage(expected, found int) float64 {
	if expected == 0 {
		if found == 0 {
			return 100
		}
		c := 100 - 10*float64(found)
		if c < 0 {
			return 0
		}
		return c
	}
	c := 100 * float64(found) / float64(expected)
	if c > 100 {
		return 100
	}
	return c
}

// QualityMultiplier maps quality to a superlinear penalty bucket. High
// quality passes through; poor quality drags the final score down faster
// than the 30% blend share alone would.
func QualityMultiplier(quality float64) float64 {
	switch {
	case quality >= 90:
		return 1.0
	case quality >= 80:
		return 0.9
	case quality >= 70:
		return 0.8
	case quality >= 60:
		return 0.6
	default:
		return 0.4
	}
}

// FinalScore blends coverage and quality, applies the gate weight and the
// quality multiplier, and caps at 100.
func FinalScore(gate gates.GateKind, coverage, quality float64) float64 {
	score := (coverageShare*coverage + qualityShare*quality) * Weight(gate) * QualityMultiplier(quality)
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

// StatusFor maps a final score to a verdict.
func StatusFor(finalScore float64) Status {
	switch {
	case finalScore >= passThreshold:
		return StatusPass
	case finalScore >= warningThreshold:
		return StatusWarning
	default:
		return StatusFail
	}
}

// Score assembles a full GateScore from gate evidence.
func Score(gate gates.GateKind, res gates.GateResult) GateScore {
	coverage := Coverage(res.Expected, res.Found)
	final := FinalScore(gate, coverage, res.QualityScore)
	return GateScore{
		Gate:            gate,
		DisplayName:     DisplayName(gate),
		Status:          StatusFor(final),
		Expected:        res.Expected,
		Found:           res.Found,
		Coverage:        coverage,
		Quality:         res.QualityScore,
		FinalScore:      final,
		Weight:          Weight(gate),
		Details:         res.Details,
		Recommendations: res.Recommendations,
		Technologies:    res.Technologies,
		Matches:         res.Matches,
	}
}

// Overall computes the weighted mean of counted gate scores. Gates that
// were skipped (NOT_APPLICABLE, UNSUPPORTED) are excluded entirely; FAILED
// gates count with a zero score. Returns 0 when nothing counted.
func Overall(scores []GateScore) float64 {
	var sum, weightSum float64
	for _, s := range scores {
		if !s.Status.Counted() {
			continue
		}
		sum += s.FinalScore * s.Weight
		weightSum += s.Weight
	}
	if weightSum == 0 {
		return 0
	}
	return sum / weightSum
}

// OverallStatus maps the overall score to a scan verdict using the same
// thresholds as per-gate statuses.
func OverallStatus(overall float64) Status {
	return StatusFor(overall)
}
