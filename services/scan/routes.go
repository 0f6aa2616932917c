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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the scan API with the router group.
//
// Description:
//
//	Registers all /api/v1 endpoints. The group should already carry the
//	request-id and rate-limit middleware.
//
// Endpoints:
//
//	GET  /api/v1/health - Liveness probe
//	POST /api/v1/scan - Submit a scan (202)
//	GET  /api/v1/scan/:id/status - Scan status and results
//	POST /api/v1/scan/:id/cancel - Cancel a scan
//	GET  /api/v1/reports/:id - Rendered HTML report
//	GET  /api/v1/reports - List persisted reports
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	rg.GET("/health", handlers.HandleHealth)

	rg.POST("/scan", handlers.HandleSubmit)
	rg.GET("/scan/:id/status", handlers.HandleStatus)
	rg.POST("/scan/:id/cancel", handlers.HandleCancel)

	rg.GET("/reports", handlers.HandleListReports)
	rg.GET("/reports/:id", handlers.HandleReport)
}
