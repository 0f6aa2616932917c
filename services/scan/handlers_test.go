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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T, svc *Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(RequestIDMiddleware())
	RegisterRoutes(api, NewHandlers(svc))
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, w.Body.String())
	}
	return env
}

func TestHandleHealth(t *testing.T) {
	svc := NewService(testSettings(t))
	defer svc.Shutdown()
	router := newTestRouter(t, svc)

	w := doJSON(t, router, http.MethodGet, "/api/v1/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestHandleSubmitValidation(t *testing.T) {
	svc := NewService(testSettings(t))
	defer svc.Shutdown()
	router := newTestRouter(t, svc)

	// Malformed JSON.
	w := doJSON(t, router, http.MethodPost, "/api/v1/scan", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body = %d, want 400", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Error != "validation_error" {
		t.Errorf("error code = %q", env.Error)
	}

	// Missing repository_url fails binding.
	w = doJSON(t, router, http.MethodPost, "/api/v1/scan", `{"branch": "main"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing url = %d, want 400", w.Code)
	}

	// Unknown scan option.
	w = doJSON(t, router, http.MethodPost, "/api/v1/scan",
		`{"repository_url": "file:///r", "scan_options": {"mode": "fast"}}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown option = %d, want 400", w.Code)
	}
	if env := decodeEnvelope(t, w); !strings.Contains(env.Message, "unknown scan option") {
		t.Errorf("message = %q", env.Message)
	}
}

func TestSubmitStatusReportLifecycle(t *testing.T) {
	repo := scanFixtureRepo(t)
	svc := NewService(testSettings(t))
	defer svc.Shutdown()
	router := newTestRouter(t, svc)

	w := doJSON(t, router, http.MethodPost, "/api/v1/scan",
		`{"repository_url": "file://`+repo+`", "scan_options": {"threshold": 70}}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("submit = %d: %s", w.Code, w.Body.String())
	}
	var submitted submitResponse
	if err := json.Unmarshal(w.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode submit: %v", err)
	}
	if submitted.ScanID == "" || submitted.Status != "running" {
		t.Errorf("submit response = %+v", submitted)
	}

	waitForTerminal(t, svc, submitted.ScanID)

	w = doJSON(t, router, http.MethodGet, "/api/v1/scan/"+submitted.ScanID+"/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var status statusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Status != "completed" {
		t.Fatalf("scan status = %q (%s)", status.Status, status.Message)
	}
	if status.Score == nil {
		t.Error("completed status missing score")
	}
	if len(status.Gates) == 0 {
		t.Fatal("completed status has no gates")
	}
	seen := make(map[string]bool)
	for _, g := range status.Gates {
		seen[g.Name] = true
	}
	if !seen["structured_logs"] || !seen["avoid_logging_secrets"] {
		t.Errorf("gate list incomplete: %v", seen)
	}
	if status.ReportURL == "" {
		t.Fatal("completed status missing report URL")
	}

	w = doJSON(t, router, http.MethodGet, status.ReportURL, "")
	if w.Code != http.StatusOK {
		t.Fatalf("report = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("report content type = %q", ct)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/reports", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list reports = %d", w.Code)
	}
	var listing listReportsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if listing.TotalCount != 1 || listing.Reports[0].ScanID != submitted.ScanID {
		t.Errorf("listing = %+v", listing)
	}
	if listing.Reports[0].FileSize == 0 {
		t.Error("listing missing artifact size")
	}
}

func TestHandleStatusUnknownScan(t *testing.T) {
	svc := NewService(testSettings(t))
	defer svc.Shutdown()
	router := newTestRouter(t, svc)

	w := doJSON(t, router, http.MethodGet, "/api/v1/scan/no-such-id/status", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Error != "not_found" {
		t.Errorf("error code = %q", env.Error)
	}
}

func TestHandleReportNotReady(t *testing.T) {
	acquirer := &blockingAcquirer{started: make(chan struct{})}
	svc := NewService(testSettings(t), WithAcquirer(acquirer))
	defer svc.Shutdown()
	router := newTestRouter(t, svc)

	w := doJSON(t, router, http.MethodPost, "/api/v1/scan", `{"repository_url": "file:///blocked"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("submit = %d", w.Code)
	}
	var submitted submitResponse
	if err := json.Unmarshal(w.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	<-acquirer.started

	w = doJSON(t, router, http.MethodGet, "/api/v1/reports/"+submitted.ScanID, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("report while running = %d, want 400", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Error != "not_ready" {
		t.Errorf("error code = %q", env.Error)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/reports/unknown-id", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown report = %d, want 404", w.Code)
	}

	if err := svc.Cancel(submitted.ScanID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	waitForTerminal(t, svc, submitted.ScanID)
}

func TestHandleCancel(t *testing.T) {
	acquirer := &blockingAcquirer{started: make(chan struct{})}
	svc := NewService(testSettings(t), WithAcquirer(acquirer))
	defer svc.Shutdown()
	router := newTestRouter(t, svc)

	w := doJSON(t, router, http.MethodPost, "/api/v1/scan", `{"repository_url": "file:///blocked"}`)
	var submitted submitResponse
	if err := json.Unmarshal(w.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	<-acquirer.started

	w = doJSON(t, router, http.MethodPost, "/api/v1/scan/"+submitted.ScanID+"/cancel", "")
	if w.Code != http.StatusOK {
		t.Fatalf("cancel = %d: %s", w.Code, w.Body.String())
	}
	rec := waitForTerminal(t, svc, submitted.ScanID)
	if rec.Status != StatusFailed || rec.Message != "cancelled" {
		t.Errorf("record = %s/%q", rec.Status, rec.Message)
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/scan/unknown/cancel", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("cancel unknown = %d, want 404", w.Code)
	}
}

func TestExternalStatus(t *testing.T) {
	tests := []struct {
		in   ScanStatus
		want string
	}{
		{StatusPending, "running"},
		{StatusRunning, "running"},
		{StatusCompleted, "completed"},
		{StatusFailed, "failed"},
	}
	for _, tt := range tests {
		if got := externalStatus(tt.in); got != tt.want {
			t.Errorf("externalStatus(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
