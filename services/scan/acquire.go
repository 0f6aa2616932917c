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
	"fmt"
	"os"
	"strings"
)

// AcquireErrorKind classifies acquisition failures for HTTP mapping.
type AcquireErrorKind string

const (
	AcquireAuth     AcquireErrorKind = "auth"
	AcquireNotFound AcquireErrorKind = "not_found"
	AcquireNetwork  AcquireErrorKind = "network"
	AcquireTimeout  AcquireErrorKind = "timeout"
	AcquireSSL      AcquireErrorKind = "ssl"
	AcquireSize     AcquireErrorKind = "size"
)

// AcquireError is the adapter failure contract.
type AcquireError struct {
	Kind    AcquireErrorKind
	Message string
	Err     error
}

func (e *AcquireError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("acquire (%s): %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("acquire (%s): %s", e.Kind, e.Message)
}

func (e *AcquireError) Unwrap() error { return e.Err }

// Acquirer resolves a repository reference to a local path. The core
// never performs network I/O for repository contents itself; remote
// acquisition lives entirely behind this interface.
//
// The returned cleanup releases any temporary checkout; it is always
// safe to call and may be a no-op.
type Acquirer interface {
	Fetch(ctx context.Context, url, branch, token string) (localPath string, cleanup func(), err error)
}

// LocalPathAcquirer accepts absolute paths and file:// URLs and verifies
// they exist. It is the default acquirer: deployments that scan remote
// repositories inject a cloning adapter instead.
type LocalPathAcquirer struct{}

func (LocalPathAcquirer) Fetch(_ context.Context, url, _, _ string) (string, func(), error) {
	path := strings.TrimPrefix(url, "file://")
	if path == "" {
		return "", noopCleanup, &AcquireError{Kind: AcquireNotFound, Message: "empty repository reference"}
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", noopCleanup, &AcquireError{Kind: AcquireNotFound, Message: fmt.Sprintf("path %q not found", path), Err: err}
	}
	if !info.IsDir() {
		return "", noopCleanup, &AcquireError{Kind: AcquireNotFound, Message: fmt.Sprintf("path %q is not a directory", path)}
	}
	return path, noopCleanup, nil
}

func noopCleanup() {}
