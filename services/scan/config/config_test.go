// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	s := Default()
	if s.Port != 8080 {
		t.Errorf("port = %d, want 8080", s.Port)
	}
	if s.MaxConcurrentScans != 4 {
		t.Errorf("max_concurrent_scans = %d, want 4", s.MaxConcurrentScans)
	}
	if s.ScanDeadline != Duration(180*time.Second) {
		t.Errorf("scan_deadline = %s, want 180s", s.ScanDeadline)
	}
	if s.StoreDir != "" {
		t.Errorf("store_dir = %q, want empty (memory store)", s.StoreDir)
	}
	if err := s.validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hardgate.yaml")
	body := "port: 9090\n" +
		"report_dir: /tmp/hg-reports\n" +
		"max_concurrent_scans: 2\n" +
		"enhancement_enabled: true\n" +
		"exclude_globs:\n  - vendor/**\n  - node_modules/**\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Port != 9090 || s.ReportDir != "/tmp/hg-reports" || s.MaxConcurrentScans != 2 {
		t.Errorf("file values not applied: %+v", s)
	}
	if !s.EnhancementEnabled {
		t.Error("enhancement_enabled not applied")
	}
	if len(s.ExcludeGlobs) != 2 || s.ExcludeGlobs[0] != "vendor/**" {
		t.Errorf("exclude_globs = %v", s.ExcludeGlobs)
	}
	// Untouched fields keep their defaults.
	if s.PerScanWorkers != Default().PerScanWorkers {
		t.Errorf("per_scan_workers = %d, want default", s.PerScanWorkers)
	}
}

func TestLoadDurationsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hardgate.yaml")
	body := "scan_deadline: 2m30s\nllm_deadline: 45s\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.ScanDeadline != Duration(150*time.Second) {
		t.Errorf("scan_deadline = %s, want 2m30s", s.ScanDeadline)
	}
	if s.LLMDeadline != Duration(45*time.Second) {
		t.Errorf("llm_deadline = %s, want 45s", s.LLMDeadline)
	}

	bad := filepath.Join(t.TempDir(), "hardgate.yaml")
	if err := os.WriteFile(bad, []byte("scan_deadline: soon\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("unparseable duration accepted")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("explicitly named missing file should error")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("port: [not a number\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "parse") {
		t.Fatalf("got %v, want parse error", err)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hardgate.yaml")
	if err := os.WriteFile(path, []byte("port: 9090\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("HARDGATE_PORT", "7070")
	t.Setenv("HARDGATE_STORE_DIR", "/var/lib/hardgate")
	t.Setenv("HARDGATE_SCAN_DEADLINE", "90s")
	t.Setenv("HARDGATE_ENHANCEMENT_ENABLED", "true")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Port != 7070 {
		t.Errorf("port = %d, env should win over file", s.Port)
	}
	if s.StoreDir != "/var/lib/hardgate" {
		t.Errorf("store_dir = %q", s.StoreDir)
	}
	if s.ScanDeadline != Duration(90*time.Second) {
		t.Errorf("scan_deadline = %s, want 90s", s.ScanDeadline)
	}
	if !s.EnhancementEnabled {
		t.Error("enhancement_enabled not applied from env")
	}
}

func TestEnvironmentParseErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hardgate.yaml")
	if err := os.WriteFile(path, []byte("port: 9090\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("HARDGATE_PORT", "not-a-port")
	if _, err := Load(path); err == nil {
		t.Error("bad HARDGATE_PORT accepted")
	}
	t.Setenv("HARDGATE_PORT", "8080")

	t.Setenv("HARDGATE_SCAN_DEADLINE", "ninety seconds")
	if _, err := Load(path); err == nil {
		t.Error("bad HARDGATE_SCAN_DEADLINE accepted")
	}
}

func TestValidateRanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hardgate.yaml")
	if err := os.WriteFile(path, []byte("port: 70000\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Errorf("port 70000 accepted: %v", err)
	}

	path2 := filepath.Join(t.TempDir(), "hardgate.yaml")
	if err := os.WriteFile(path2, []byte("max_concurrent_scans: 0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path2); err == nil {
		t.Error("max_concurrent_scans 0 accepted")
	}
}

func TestValidateScanOptions(t *testing.T) {
	tests := []struct {
		name string
		opts map[string]any
		ok   bool
	}{
		{"nil", nil, true},
		{"empty", map[string]any{}, true},
		{"threshold int", map[string]any{"threshold": 80}, true},
		{"threshold json float", map[string]any{"threshold": float64(80)}, true},
		{"threshold zero", map[string]any{"threshold": 0}, true},
		{"threshold hundred", map[string]any{"threshold": 100}, true},
		{"threshold over range", map[string]any{"threshold": 120}, false},
		{"threshold negative", map[string]any{"threshold": -1}, false},
		{"threshold fractional", map[string]any{"threshold": 42.5}, false},
		{"threshold string", map[string]any{"threshold": "high"}, false},
		{"unknown key", map[string]any{"mode": "fast"}, false},
	}
	for _, tt := range tests {
		err := ValidateScanOptions(tt.opts)
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("%s: expected rejection", tt.name)
		}
	}
}
