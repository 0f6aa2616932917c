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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scansSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hardgate",
		Name:      "scans_submitted_total",
		Help:      "Scans accepted for processing.",
	})

	scansFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hardgate",
		Name:      "scans_finished_total",
		Help:      "Scans reaching a terminal status.",
	}, []string{"status"})

	scansRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "hardgate",
		Name:      "scans_running",
		Help:      "Scans currently executing.",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "hardgate",
		Name:      "scan_queue_depth",
		Help:      "Submitted scans waiting for a worker.",
	})

	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hardgate",
		Name:      "scan_duration_seconds",
		Help:      "Wall-clock duration of completed scans.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	overallScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hardgate",
		Name:      "scan_overall_score",
		Help:      "Overall scores of completed scans.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	})
)
