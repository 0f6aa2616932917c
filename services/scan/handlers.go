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
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/hardgate/services/validation"
)

// Handlers exposes the scan service over HTTP.
type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleHealth implements GET /health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// HandleSubmit implements POST /scan. Accepted submissions return 202
// immediately; the scan runs asynchronously.
func (h *Handlers) HandleSubmit(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	id, err := h.service.Submit(req)
	switch {
	case errors.Is(err, ErrInvalidRequest):
		h.writeError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	case errors.Is(err, ErrQueueFull):
		h.writeError(c, http.StatusTooManyRequests, "queue_full", "scan queue is full, retry later")
		return
	case err != nil:
		h.writeError(c, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	c.JSON(http.StatusAccepted, submitResponse{
		ScanID:  id,
		Status:  "running",
		Message: "scan accepted",
	})
}

// HandleStatus implements GET /scan/:id/status. Completed scans include
// gate results and recommendations.
func (h *Handlers) HandleStatus(c *gin.Context) {
	rec, err := h.service.Get(c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		h.writeError(c, http.StatusNotFound, "not_found", "unknown scan id")
		return
	}
	if err != nil {
		h.writeError(c, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	resp := statusResponse{
		ScanID:   rec.ID,
		Status:   externalStatus(rec.Status),
		Message:  rec.Message,
		Progress: rec.Progress,
	}
	if rec.Status == StatusCompleted && rec.Result != nil {
		score := rec.Result.OverallScore
		resp.Score = &score
		resp.Recommendations = rec.Result.Recommendations
		resp.CriticalIssues = rec.Result.CriticalIssues
		for _, gs := range rec.Result.GateScores {
			resp.Gates = append(resp.Gates, gateEntry{
				Name:         string(gs.Gate),
				DisplayName:  gs.DisplayName,
				Status:       string(gs.Status),
				Score:        gs.FinalScore,
				Expected:     gs.Expected,
				Found:        gs.Found,
				Coverage:     gs.Coverage,
				QualityScore: gs.Quality,
				Details:      gs.Details,
			})
		}
		if rec.ReportPath != "" {
			resp.ReportURL = reportURL(rec.ID)
		}
	}
	if rec.Status == StatusFailed {
		resp.Message = failureMessage(rec)
	}
	c.JSON(http.StatusOK, resp)
}

// HandleReport implements GET /reports/:id, serving the rendered HTML.
// 404 for unknown scans or missing artifacts, 400 when not yet completed.
func (h *Handlers) HandleReport(c *gin.Context) {
	id := c.Param("id")
	payload, err := h.service.Report(id)
	switch {
	case errors.Is(err, ErrNotFound):
		h.writeError(c, http.StatusNotFound, "not_found", "unknown scan id")
		return
	case errors.Is(err, ErrNotReady):
		h.writeError(c, http.StatusBadRequest, "not_ready", "scan has not completed")
		return
	case err != nil:
		h.writeError(c, http.StatusNotFound, "not_found", "report artifact unavailable")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", payload)
}

// HandleListReports implements GET /reports.
func (h *Handlers) HandleListReports(c *gin.Context) {
	records, err := h.service.List()
	if err != nil {
		h.writeError(c, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	resp := listReportsResponse{Reports: []reportEntry{}}
	for _, rec := range records {
		if rec.Status != StatusCompleted || rec.ReportPath == "" {
			continue
		}
		entry := reportEntry{
			ScanID:    rec.ID,
			Filename:  reportFilename(rec.ID),
			CreatedAt: rec.SubmittedAt,
			Status:    externalStatus(rec.Status),
			ReportURL: reportURL(rec.ID),
		}
		if rec.Result != nil {
			entry.Score = rec.Result.OverallScore
		}
		if info, statErr := os.Stat(rec.ReportPath); statErr == nil {
			entry.FileSize = info.Size()
			entry.ModifiedAt = info.ModTime().UTC()
		}
		resp.Reports = append(resp.Reports, entry)
	}
	resp.TotalCount = len(resp.Reports)
	c.JSON(http.StatusOK, resp)
}

// HandleCancel implements POST /scan/:id/cancel.
func (h *Handlers) HandleCancel(c *gin.Context) {
	err := h.service.Cancel(c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		h.writeError(c, http.StatusNotFound, "not_found", "unknown scan id")
		return
	}
	if err != nil {
		h.writeError(c, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"scan_id": c.Param("id"), "status": "failed", "message": "cancelled"})
}

func (h *Handlers) writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorEnvelope{
		Error:     code,
		Message:   message,
		RequestID: requestID(c),
		Timestamp: time.Now().UTC(),
	})
}

// externalStatus maps internal lifecycle states to the API vocabulary:
// pending is reported as running, since from the caller's view the scan
// is accepted and in progress.
func externalStatus(s ScanStatus) string {
	if s == StatusPending {
		return string(StatusRunning)
	}
	return string(s)
}

func failureMessage(rec ScanRecord) string {
	if rec.ErrorKind == string(validation.KindAccessDenied) {
		return "repository access denied"
	}
	if rec.Message != "" {
		return rec.Message
	}
	return "scan failed"
}

func reportURL(id string) string {
	return fmt.Sprintf("/api/v1/reports/%s", id)
}
