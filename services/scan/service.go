// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/hardgate/services/scan/config"
	"github.com/AleutianAI/hardgate/services/validation"
	"github.com/AleutianAI/hardgate/services/validation/enhance"
)

// acquireDeadline bounds repository acquisition, separate from the scan
// deadline which only starts once a local path is ready.
const acquireDeadline = 120 * time.Second

// queueCapacity bounds pending submissions. Hitting it rejects the
// submit rather than blocking the HTTP handler.
const queueCapacity = 256

// ErrQueueFull is returned when the pending queue is at capacity.
var ErrQueueFull = errors.New("scan: queue full")

// ErrInvalidRequest wraps submit-time validation failures.
var ErrInvalidRequest = errors.New("scan: invalid request")

// ErrNotReady is returned when results are requested before completion.
var ErrNotReady = errors.New("scan: result not ready")

// Service executes scans asynchronously with a bounded worker pool.
//
// Thread Safety: all exported methods are safe for concurrent callers.
// The store is the single source of truth for records; workers are the
// only mutators of a running scan's record.
type Service struct {
	settings config.Settings
	store    Store
	acquirer Acquirer
	renderer Renderer
	enhancer enhance.Enhancer

	queue chan string

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	// tokens holds acquisition credentials in memory only, keyed by scan
	// id. They are handed to the acquirer once and never persisted in the
	// record or the store.
	tokens map[string]string

	baseCtx context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup
}

// Option customizes a Service.
type Option func(*Service)

// WithStore replaces the default in-memory store.
func WithStore(store Store) Option { return func(s *Service) { s.store = store } }

// WithAcquirer replaces the default local-path acquirer.
func WithAcquirer(a Acquirer) Option { return func(s *Service) { s.acquirer = a } }

// WithRenderer replaces the default HTML renderer.
func WithRenderer(r Renderer) Option { return func(s *Service) { s.renderer = r } }

// WithEnhancer enables LLM enhancement for all scans.
func WithEnhancer(e enhance.Enhancer) Option { return func(s *Service) { s.enhancer = e } }

// NewService builds a Service and starts its worker pool.
func NewService(settings config.Settings, opts ...Option) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		settings: settings,
		store:    NewMemoryStore(),
		acquirer: LocalPathAcquirer{},
		renderer: HTMLRenderer{},
		queue:    make(chan string, queueCapacity),
		cancels:  make(map[string]context.CancelFunc),
		tokens:   make(map[string]string),
		baseCtx:  ctx,
		stop:     cancel,
	}
	for _, opt := range opts {
		opt(s)
	}

	workers := settings.MaxConcurrentScans
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

// Shutdown stops accepting work, waits for in-flight scans, and closes
// the store.
func (s *Service) Shutdown() error {
	s.stop()
	s.wg.Wait()
	return s.store.Close()
}

// Submit validates the request, records a pending scan, and enqueues it.
//
// Outputs:
//   - string: The new scan id.
//   - error: ErrInvalidRequest for bad input, ErrQueueFull under
//     backpressure.
func (s *Service) Submit(req ScanRequest) (string, error) {
	if req.RepositoryURL == "" {
		return "", fmt.Errorf("%w: repository_url is required", ErrInvalidRequest)
	}
	if err := config.ValidateScanOptions(req.ScanOptions); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	record := ScanRecord{
		ID:            uuid.NewString(),
		SubmittedAt:   time.Now().UTC(),
		Status:        StatusPending,
		Message:       "scan queued",
		RepositoryURL: req.RepositoryURL,
		Branch:        req.Branch,
		ScanOptions:   req.ScanOptions,
	}
	if err := s.store.Put(record); err != nil {
		return "", err
	}
	if req.GithubToken != "" {
		s.mu.Lock()
		s.tokens[record.ID] = req.GithubToken
		s.mu.Unlock()
	}

	select {
	case s.queue <- record.ID:
		scansSubmitted.Inc()
		queueDepth.Inc()
		slog.Info("scan submitted",
			slog.String("scan_id", record.ID),
			slog.String("repository", req.RepositoryURL))
		return record.ID, nil
	default:
		s.mu.Lock()
		delete(s.tokens, record.ID)
		s.mu.Unlock()
		_ = s.transition(record.ID, func(r *ScanRecord) {
			r.Status = StatusFailed
			r.Message = "queue full"
			r.ErrorKind = string(validation.KindInternal)
		})
		return "", ErrQueueFull
	}
}

// Get returns the record for a scan id.
func (s *Service) Get(id string) (ScanRecord, error) {
	return s.store.Get(id)
}

// Result returns the ValidationResult for a completed scan.
func (s *Service) Result(id string) (*validation.ValidationResult, error) {
	rec, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if rec.Status != StatusCompleted || rec.Result == nil {
		return nil, ErrNotReady
	}
	return rec.Result, nil
}

// Report returns the rendered report bytes for a completed scan.
func (s *Service) Report(id string) ([]byte, error) {
	rec, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if rec.Status != StatusCompleted || rec.ReportPath == "" {
		return nil, ErrNotReady
	}
	return os.ReadFile(rec.ReportPath)
}

// List returns all records, newest first.
func (s *Service) List() ([]ScanRecord, error) {
	return s.store.List()
}

// Cancel stops a pending or running scan. Partial results are discarded;
// the record becomes failed with message "cancelled". Cancelling a
// terminal scan is a no-op.
func (s *Service) Cancel(id string) error {
	if _, err := s.store.Get(id); err != nil {
		return err
	}
	err := s.transition(id, func(r *ScanRecord) {
		r.Status = StatusFailed
		r.Message = "cancelled"
		r.Result = nil
	})
	if err != nil {
		return nil // already terminal
	}

	s.mu.Lock()
	cancel := s.cancels[id]
	delete(s.tokens, id)
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	scansFinished.WithLabelValues(string(StatusFailed)).Inc()
	return nil
}

// =============================================================================
// Worker pool
// =============================================================================

func (s *Service) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.baseCtx.Done():
			return
		case id := <-s.queue:
			queueDepth.Dec()
			s.run(id)
		}
	}
}

// run executes one scan end to end.
func (s *Service) run(id string) {
	if err := s.transition(id, func(r *ScanRecord) {
		r.Status = StatusRunning
		r.Message = "scan in progress"
		r.Progress = "acquiring repository"
	}); err != nil {
		// Cancelled while pending.
		return
	}
	scansRunning.Inc()
	defer scansRunning.Dec()
	started := time.Now()

	ctx, cancel := context.WithCancel(s.baseCtx)
	s.mu.Lock()
	s.cancels[id] = cancel
	s.mu.Unlock()
	defer func() {
		cancel()
		s.mu.Lock()
		delete(s.cancels, id)
		s.mu.Unlock()
	}()

	rec, err := s.store.Get(id)
	if err != nil {
		return
	}

	s.mu.Lock()
	token := s.tokens[id]
	delete(s.tokens, id)
	s.mu.Unlock()

	acquireCtx, acquireCancel := context.WithTimeout(ctx, acquireDeadline)
	root, cleanup, err := s.acquirer.Fetch(acquireCtx, rec.RepositoryURL, rec.Branch, token)
	acquireCancel()
	if err != nil {
		s.fail(id, classifyAcquireError(err), err.Error())
		return
	}
	defer cleanup()

	_ = s.transition(id, func(r *ScanRecord) { r.Progress = "running gates" })

	deadline := time.Duration(s.settings.ScanDeadline)
	result, err := validation.Validate(ctx, root, validation.Options{
		IncludeGlobs:          s.settings.IncludeGlobs,
		ExcludeGlobs:          s.settings.ExcludeGlobs,
		MaxFileSize:           s.settings.MaxFileSize,
		FollowSymlinks:        s.settings.FollowSymlinks,
		CaseSensitivePatterns: s.settings.CaseSensitivePatterns,
		Workers:               s.settings.PerScanWorkers,
		ScanDeadline:          &deadline,
		Enhancer:              s.enhancer,
	})
	if err != nil {
		if ctx.Err() != nil {
			// Cancel() already marked the record failed.
			return
		}
		s.fail(id, validation.KindOf(err), err.Error())
		return
	}

	reportPath := s.writeReport(id, rec, result)

	if err := s.transition(id, func(r *ScanRecord) {
		r.Status = StatusCompleted
		r.Message = "scan complete"
		r.Progress = ""
		r.Result = result
		r.ReportPath = reportPath
	}); err != nil {
		// Cancelled mid-scan: discard the result.
		return
	}
	scansFinished.WithLabelValues(string(StatusCompleted)).Inc()
	scanDuration.Observe(time.Since(started).Seconds())
	overallScores.Observe(result.OverallScore)
}

// writeReport renders and persists the HTML artifact. Failures are logged
// and leave the scan completed without a report.
func (s *Service) writeReport(id string, rec ScanRecord, result *validation.ValidationResult) string {
	payload, err := s.renderer.Render(result, rec.RepositoryURL, rec.Branch, id)
	if err != nil {
		slog.Warn("report rendering failed", slog.String("scan_id", id), slog.String("error", err.Error()))
		return ""
	}
	if err := os.MkdirAll(s.settings.ReportDir, 0o755); err != nil {
		slog.Warn("report directory unavailable", slog.String("dir", s.settings.ReportDir), slog.String("error", err.Error()))
		return ""
	}
	path := filepath.Join(s.settings.ReportDir, reportFilename(id))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		slog.Warn("report write failed", slog.String("path", path), slog.String("error", err.Error()))
		return ""
	}
	return path
}

func (s *Service) fail(id string, kind validation.ErrorKind, detail string) {
	_ = s.transition(id, func(r *ScanRecord) {
		r.Status = StatusFailed
		r.Message = detail
		r.Progress = ""
		r.ErrorKind = string(kind)
		r.ErrorDetail = detail
	})
	scansFinished.WithLabelValues(string(StatusFailed)).Inc()
	slog.Error("scan failed",
		slog.String("scan_id", id),
		slog.String("kind", string(kind)),
		slog.String("error", detail))
}

// errTerminal rejects status writes after a terminal state.
var errTerminal = errors.New("scan: record already terminal")

// transition applies mutate under the monotonicity rule: once terminal,
// a record never changes, and status never moves backwards.
func (s *Service) transition(id string, mutate func(*ScanRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if rec.Status.Terminal() {
		return errTerminal
	}
	before := rec.Status.rank()
	mutate(&rec)
	if rec.Status.rank() < before {
		return fmt.Errorf("scan: illegal transition %s for %s", rec.Status, id)
	}
	return s.store.Put(rec)
}

// classifyAcquireError maps adapter error kinds onto scan error kinds.
func classifyAcquireError(err error) validation.ErrorKind {
	var ae *AcquireError
	if errors.As(err, &ae) {
		switch ae.Kind {
		case AcquireAuth:
			return validation.KindAccessDenied
		case AcquireTimeout:
			return validation.KindTimeout
		default:
			return validation.KindRepositoryUnavailable
		}
	}
	return validation.KindRepositoryUnavailable
}
