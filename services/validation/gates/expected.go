// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gates

// Expected-count heuristics. Each is a pure function over fileStats so it
// can be tested without a filesystem. All are bounded below by 1 except
// the negative gate, whose expected count is always 0.

func expectedStructuredLogs(s fileStats) int {
	return atLeast(s.FileCount/2+s.TotalLOC/100+3*s.Service, 1)
}

// expectedAvoidLoggingSecrets is always 0: any finding is a violation.
func expectedAvoidLoggingSecrets(fileStats) int { return 0 }

func expectedAuditTrail(s fileStats) int {
	return atLeast(2*s.Business, 5)
}

func expectedCorrelationID(s fileStats) int {
	return atLeast(s.Web, 3)
}

func expectedLogAPICalls(s fileStats) int {
	return atLeast(2*s.API, 5)
}

func expectedLogBackgroundJobs(s fileStats) int {
	return atLeast(2*s.Job, 3)
}

func expectedUIErrors(s fileStats) int {
	return atLeast(s.UI/2, 1)
}

func expectedRetryLogic(s fileStats) int {
	return atLeast(maxInt(2*s.External, s.FileCount/3), 1)
}

func expectedTimeouts(s fileStats) int {
	return atLeast(maxInt(2*s.IO, s.FileCount/4), 1)
}

func expectedThrottling(s fileStats) int {
	return atLeast(s.API/3, 1)
}

func expectedCircuitBreakers(s fileStats) int {
	return atLeast(s.Service/2, 1)
}

func expectedErrorLogs(s fileStats) int {
	return atLeast(maxInt(2*s.Business, s.FileCount/3), 1)
}

func expectedHTTPCodes(s fileStats) int {
	return atLeast(3*s.API, 5)
}

func expectedUIErrorTools(fileStats) int { return 1 }

func expectedAutomatedTests(s fileStats) int {
	return atLeast(maxInt(2*s.NonTestSource, s.FileCount/2), 1)
}

func atLeast(n, floor int) int {
	if n < floor {
		return floor
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
