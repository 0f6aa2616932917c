// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package validation

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestScanErrorMessage(t *testing.T) {
	inner := errors.New("permission denied")
	err := NewScanError(KindAccessDenied, "cannot clone", inner)
	if !strings.Contains(err.Error(), "access_denied") ||
		!strings.Contains(err.Error(), "cannot clone") ||
		!strings.Contains(err.Error(), "permission denied") {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("Unwrap chain broken")
	}

	bare := NewScanError(KindTimeout, "deadline expired", nil)
	if bare.Error() != "timeout: deadline expired" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestKindOf(t *testing.T) {
	direct := NewScanError(KindPatternCompile, "bad regex", nil)
	if got := KindOf(direct); got != KindPatternCompile {
		t.Errorf("KindOf(direct) = %s", got)
	}

	wrapped := fmt.Errorf("gate failed: %w", NewScanError(KindValidator, "panic", nil))
	if got := KindOf(wrapped); got != KindValidator {
		t.Errorf("KindOf(wrapped) = %s", got)
	}

	if got := KindOf(errors.New("mystery")); got != KindInternal {
		t.Errorf("KindOf(unclassified) = %s, want internal", got)
	}
}
