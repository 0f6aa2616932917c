// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package enhance adds model-assisted analysis on top of scored gates.
// Enhancement is best-effort: any failure or timeout leaves the base
// result intact. A Result may carry an optional quality override; the
// orchestrator, never the enhancer, applies it to the score.
package enhance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AleutianAI/hardgate/services/llm"
	"github.com/AleutianAI/hardgate/services/validation/gates"
	"github.com/AleutianAI/hardgate/services/validation/scoring"
)

// Per-gate budget so one scan cannot burn unbounded model calls.
const (
	defaultTimeout = 30 * time.Second

	// maxMatchesPerPrompt caps the evidence sent per gate.
	maxMatchesPerPrompt = 10

	// minMatchesLowPriority skips low-weight gates with thin evidence;
	// a couple of matches on a minor gate is not worth a model call.
	minMatchesLowPriority = 3

	// highPriorityWeight marks gates that are always worth enhancing.
	highPriorityWeight = 1.3
)

// Result is the outcome of enhancing one gate.
type Result struct {
	Gate            gates.GateKind `json:"gate"`
	Summary         string         `json:"summary,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`

	// EnhancedQuality optionally overrides the gate's quality score.
	// Values are clamped to [0,100] before use; nil leaves the base
	// quality untouched.
	EnhancedQuality *float64 `json:"enhanced_quality_score,omitempty"`

	// Details are extra human-readable findings appended to the gate.
	Details []string `json:"details,omitempty"`

	SecurityInsights   []string `json:"security_insights,omitempty"`
	TechnologyInsights []string `json:"technology_insights,omitempty"`
}

// Empty reports whether the result carries nothing to apply.
func (r Result) Empty() bool {
	return r.Summary == "" && len(r.Recommendations) == 0 &&
		r.EnhancedQuality == nil && len(r.Details) == 0 &&
		len(r.SecurityInsights) == 0 && len(r.TechnologyInsights) == 0
}

// ClampQuality returns the override restricted to [0,100], or nil.
func (r Result) ClampQuality() *float64 {
	if r.EnhancedQuality == nil {
		return nil
	}
	q := *r.EnhancedQuality
	if q < 0 {
		q = 0
	}
	if q > 100 {
		q = 100
	}
	return &q
}

// Enhancer analyzes a scored gate. Implementations must not mutate the
// input score.
type Enhancer interface {
	Enhance(ctx context.Context, score scoring.GateScore) (Result, error)
}

// Noop is the default Enhancer: it does nothing, successfully.
type Noop struct{}

func (Noop) Enhance(_ context.Context, score scoring.GateScore) (Result, error) {
	return Result{Gate: score.Gate}, nil
}

// ShouldEnhance applies the evidence budget: high-weight gates enhance
// whenever they have matches; low-weight gates need enough evidence to
// justify the call.
func ShouldEnhance(score scoring.GateScore) bool {
	if len(score.Matches) == 0 {
		return false
	}
	if score.Weight >= highPriorityWeight {
		return true
	}
	return len(score.Matches) >= minMatchesLowPriority
}

// =============================================================================
// Model-backed enhancer
// =============================================================================

// LLMEnhancer asks a chat model to summarize gate evidence and refine
// recommendations. Outbound content passes through the llm package's
// redaction before leaving the process.
//
// Thread Safety: safe for concurrent use; the underlying client is.
type LLMEnhancer struct {
	client  llm.Client
	timeout time.Duration
}

// NewLLMEnhancer wraps a client. A zero timeout means defaultTimeout.
func NewLLMEnhancer(client llm.Client, timeout time.Duration) *LLMEnhancer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &LLMEnhancer{client: client, timeout: timeout}
}

const systemPrompt = `You review static-analysis findings for engineering practice gates.
Given a gate, its score, and evidence lines from a repository, reply with a
JSON object: {"summary": "...", "recommendations": ["...", ...],
"enhanced_quality_score": 0-100 (optional, only when the evidence clearly
justifies adjusting the heuristic quality score),
"security_insights": ["...", ...], "technology_insights": ["...", ...]}.
Keep the summary under 80 words. Give at most 4 concrete recommendations.
Reply with JSON only.`

// Enhance implements Enhancer with a bounded single-shot model call.
//
// Outputs:
//   - Result: Summary and refined recommendations; zero-valued on skip.
//   - error: Transport or parse failure. Callers log and continue.
func (e *LLMEnhancer) Enhance(ctx context.Context, score scoring.GateScore) (Result, error) {
	if !ShouldEnhance(score) {
		return Result{Gate: score.Gate}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	reply, err := e.client.Complete(ctx, systemPrompt, buildPrompt(score))
	if err != nil {
		return Result{}, fmt.Errorf("enhance %s: %w", score.Gate, err)
	}

	parsed, err := parseReply(reply)
	if err != nil {
		return Result{}, fmt.Errorf("enhance %s: %w", score.Gate, err)
	}
	parsed.Gate = score.Gate
	slog.Debug("gate enhanced", slog.String("gate", string(score.Gate)),
		slog.Int("recommendations", len(parsed.Recommendations)))
	return parsed, nil
}

func buildPrompt(score scoring.GateScore) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Gate: %s (%s)\n", score.DisplayName, score.Gate)
	fmt.Fprintf(&b, "Status: %s, score %.1f, expected %d, found %d\n\n",
		score.Status, score.FinalScore, score.Expected, score.Found)

	limit := len(score.Matches)
	if limit > maxMatchesPerPrompt {
		limit = maxMatchesPerPrompt
	}
	b.WriteString("Evidence:\n")
	for _, m := range score.Matches[:limit] {
		fmt.Fprintf(&b, "%s:%d: %s\n", m.RelativePath, m.LineNumber, strings.TrimSpace(m.FullLine))
	}
	if len(score.Matches) > limit {
		fmt.Fprintf(&b, "(%d more matches omitted)\n", len(score.Matches)-limit)
	}
	return b.String()
}

// parseReply tolerates code fences around the JSON object.
func parseReply(reply string) (Result, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var out Result
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return Result{}, fmt.Errorf("unparseable enhancement reply: %w", err)
	}
	return out, nil
}
