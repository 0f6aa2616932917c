// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the scan service settings from defaults, an
// optional YAML file, and HARDGATE_* environment variables, in that
// precedence order (environment wins).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is probed when no explicit path is given.
const DefaultConfigFile = "hardgate.config.yaml"

// Duration is a time.Duration that unmarshals from YAML strings in
// time.ParseDuration form ("90s", "2m30s").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) String() string { return time.Duration(d).String() }

// Settings is the typed configuration for the scan service.
type Settings struct {
	// Port is the HTTP listen port.
	Port int `yaml:"port"`

	// ReportDir is where rendered HTML reports are persisted.
	ReportDir string `yaml:"report_dir"`

	// StoreDir is the BadgerDB directory for persisted scan records.
	// Empty selects the in-memory store.
	StoreDir string `yaml:"store_dir"`

	// MaxConcurrentScans bounds the scan worker pool (K >= 1).
	MaxConcurrentScans int `yaml:"max_concurrent_scans"`

	// PerScanWorkers bounds the inner per-file pools.
	PerScanWorkers int `yaml:"per_scan_workers"`

	// ScanDeadline is the overall wall-clock budget per scan.
	ScanDeadline Duration `yaml:"scan_deadline"`

	// LLMDeadline is the per-gate enhancement budget.
	LLMDeadline Duration `yaml:"llm_deadline"`

	// MaxFileSize caps individual file reads during the walk.
	MaxFileSize int64 `yaml:"max_file_size"`

	FollowSymlinks        bool `yaml:"follow_symlinks"`
	CaseSensitivePatterns bool `yaml:"case_sensitive_patterns"`

	IncludeGlobs []string `yaml:"include_globs"`
	ExcludeGlobs []string `yaml:"exclude_globs"`

	// EnhancementEnabled turns the LLM hook on. The client itself is
	// configured via HARDGATE_LLM_* variables.
	EnhancementEnabled bool `yaml:"enhancement_enabled"`

	// RateLimitRPS throttles the HTTP API (requests per second). Zero
	// disables throttling.
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// Default returns the baseline settings.
func Default() Settings {
	return Settings{
		Port:               8080,
		ReportDir:          "reports",
		MaxConcurrentScans: 4,
		PerScanWorkers:     8,
		ScanDeadline:       Duration(180 * time.Second),
		LLMDeadline:        Duration(30 * time.Second),
		RateLimitRPS:       10,
		RateLimitBurst:     20,
	}
}

// Load builds Settings from defaults, the YAML file at path (optional;
// empty probes DefaultConfigFile), and the environment.
//
// Outputs:
//   - Settings: The merged configuration.
//   - error: YAML parse failure or an invalid value. A missing default
//     config file is not an error.
func Load(path string) (Settings, error) {
	s := Default()

	probe := path
	if probe == "" {
		probe = DefaultConfigFile
	}
	data, err := os.ReadFile(probe)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("config: parse %s: %w", probe, err)
		}
	case os.IsNotExist(err) && path == "":
		// Default file absent: fine.
	case err != nil:
		return Settings{}, fmt.Errorf("config: read %s: %w", probe, err)
	}

	if err := s.applyEnv(); err != nil {
		return Settings{}, err
	}
	return s, s.validate()
}

func (s *Settings) applyEnv() error {
	var err error
	if v := os.Getenv("HARDGATE_PORT"); v != "" {
		if s.Port, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("config: HARDGATE_PORT: %w", err)
		}
	}
	if v := os.Getenv("HARDGATE_REPORT_DIR"); v != "" {
		s.ReportDir = v
	}
	if v := os.Getenv("HARDGATE_STORE_DIR"); v != "" {
		s.StoreDir = v
	}
	if v := os.Getenv("HARDGATE_MAX_CONCURRENT_SCANS"); v != "" {
		if s.MaxConcurrentScans, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("config: HARDGATE_MAX_CONCURRENT_SCANS: %w", err)
		}
	}
	if v := os.Getenv("HARDGATE_PER_SCAN_WORKERS"); v != "" {
		if s.PerScanWorkers, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("config: HARDGATE_PER_SCAN_WORKERS: %w", err)
		}
	}
	if v := os.Getenv("HARDGATE_SCAN_DEADLINE"); v != "" {
		d, perr := time.ParseDuration(v)
		if perr != nil {
			return fmt.Errorf("config: HARDGATE_SCAN_DEADLINE: %w", perr)
		}
		s.ScanDeadline = Duration(d)
	}
	if v := os.Getenv("HARDGATE_LLM_DEADLINE"); v != "" {
		d, perr := time.ParseDuration(v)
		if perr != nil {
			return fmt.Errorf("config: HARDGATE_LLM_DEADLINE: %w", perr)
		}
		s.LLMDeadline = Duration(d)
	}
	if v := os.Getenv("HARDGATE_MAX_FILE_SIZE"); v != "" {
		if s.MaxFileSize, err = strconv.ParseInt(v, 10, 64); err != nil {
			return fmt.Errorf("config: HARDGATE_MAX_FILE_SIZE: %w", err)
		}
	}
	if v := os.Getenv("HARDGATE_ENHANCEMENT_ENABLED"); v != "" {
		if s.EnhancementEnabled, err = strconv.ParseBool(v); err != nil {
			return fmt.Errorf("config: HARDGATE_ENHANCEMENT_ENABLED: %w", err)
		}
	}
	return nil
}

func (s *Settings) validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", s.Port)
	}
	if s.MaxConcurrentScans < 1 {
		return fmt.Errorf("config: max_concurrent_scans must be >= 1, got %d", s.MaxConcurrentScans)
	}
	if s.ScanDeadline < 0 || s.LLMDeadline < 0 {
		return fmt.Errorf("config: deadlines must not be negative")
	}
	return nil
}

// knownScanOptions are the per-request options a submit may carry.
// Anything else is rejected at submit time.
var knownScanOptions = map[string]bool{
	"threshold": true,
}

// ValidateScanOptions rejects unknown per-request scan options and range
// errors. The only recognized option is threshold (int 0..100).
func ValidateScanOptions(opts map[string]any) error {
	for key, value := range opts {
		if !knownScanOptions[key] {
			return fmt.Errorf("unknown scan option %q", key)
		}
		switch key {
		case "threshold":
			f, ok := toFloat(value)
			if !ok || f < 0 || f > 100 || f != float64(int(f)) {
				return fmt.Errorf("scan option threshold must be an integer in 0..100")
			}
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
