// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package applicability decides which gates apply to a repository. Most
// gates are unconditional; the UI gates require user-interface evidence and
// the background-job gate requires job evidence. Evidence gathering is
// deliberately conservative: a backend service must not be penalized for
// lacking a UI it never had.
package applicability

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/AleutianAI/hardgate/services/validation/gates"
	"github.com/AleutianAI/hardgate/services/validation/walker"
)

// Decision records whether a gate applies and why.
type Decision struct {
	Applicable bool     `json:"applicable"`
	Reasons    []string `json:"reasons,omitempty"`
}

// Report maps each gate to its applicability decision. Every gate in
// gates.All() has an entry.
type Report map[gates.GateKind]Decision

// maxContentSamples bounds content sniffing for UI and job evidence.
const maxContentSamples = 40

// uiExtensions are extensions that are UI evidence on their own, except
// for the HTML guard handled separately.
var uiExtensions = map[string]bool{
	".jsx": true, ".tsx": true, ".vue": true, ".svelte": true, ".css": true,
}

// uiDirNames are directory names that indicate a user interface.
var uiDirNames = map[string]bool{
	"components": true, "pages": true, "views": true, "ui": true,
	"frontend": true, "client": true, "static": true, "templates": true,
}

// uiPackageDeps are package.json dependencies that indicate a frontend.
var uiPackageDeps = []string{
	`"react"`, `"vue"`, `"@angular/core"`, `"svelte"`, `"next"`, `"nuxt"`, `"preact"`,
}

var (
	uiContentRe = regexp.MustCompile(`(?i)(from\s+['"]react['"]|ReactDOM\.|createApp\s*\(|document\.(getElementById|querySelector)|useState\s*\(|@Component\s*\()`)

	// serverSideRe marks a JS/TS file as backend; UI content signatures in
	// such files are ignored (server-rendered strings are not a UI).
	serverSideRe = regexp.MustCompile(`(?i)(require\(['"](express|koa|fastify|http)['"]\)|from\s+['"](express|koa|fastify)['"]|createServer\s*\()`)

	htmlTagRe = regexp.MustCompile(`<([a-zA-Z][a-zA-Z0-9]*)[\s>]`)

	jobContentRe = regexp.MustCompile(`(?i)(@Scheduled\b|@(shared_)?task\b|JobExecutionContext|new\s+(Bull|Queue)\s*\(|cron\.schedule|BackgroundService|IHostedService|RecurringJob|celery)`)
)

// jobManifestDeps are dependency names (any manifest format) that indicate
// background-job infrastructure.
var jobManifestDeps = []string{
	"celery", "bull", "bullmq", "agenda", "node-cron", "quartz", "hangfire", "sidekiq", "rq",
}

// Evaluate builds the applicability report for a repository.
//
// Description:
//
//	ui_errors and ui_error_tools apply only when UI evidence is found;
//	log_background_jobs applies only when job evidence is found; every
//	other gate applies unconditionally. Evidence sources: file
//	extensions, directory names, dependency manifests, and sampled file
//	content. HTML content only counts when a file uses at least two
//	distinct tags, and UI signatures inside server-side JS files are
//	ignored.
//
// Thread Safety: Evaluate is stateless and safe for concurrent use.
func Evaluate(root string, files []walker.FileRecord) Report {
	uiOK, uiReasons := detectUI(root, files)
	jobOK, jobReasons := detectJobs(root, files)

	report := make(Report, len(gates.All()))
	for _, gate := range gates.All() {
		switch gate {
		case gates.UIErrors, gates.UIErrorTools:
			report[gate] = decision(uiOK, uiReasons, "no user interface evidence found")
		case gates.LogBackgroundJobs:
			report[gate] = decision(jobOK, jobReasons, "no background job evidence found")
		default:
			report[gate] = Decision{Applicable: true}
		}
	}
	return report
}

func decision(ok bool, reasons []string, whenNot string) Decision {
	if ok {
		return Decision{Applicable: true, Reasons: reasons}
	}
	return Decision{Applicable: false, Reasons: []string{whenNot}}
}

// detectUI gathers user-interface evidence.
func detectUI(root string, files []walker.FileRecord) (bool, []string) {
	var reasons []string

	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Path))
		if uiExtensions[ext] {
			reasons = append(reasons, "UI file extension: "+f.Path)
			break
		}
	}

	for _, f := range files {
		if dir := uiDir(f.Path); dir != "" {
			reasons = append(reasons, "UI directory: "+dir)
			break
		}
	}

	if dep := packageJSONDep(root, uiPackageDeps); dep != "" {
		reasons = append(reasons, "frontend dependency in package.json: "+strings.Trim(dep, `"`))
	}

	if path := uiContentEvidence(files); path != "" {
		reasons = append(reasons, "UI content signature: "+path)
	}

	return len(reasons) > 0, reasons
}

func uiDir(path string) string {
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(path)), "/") {
		if uiDirNames[strings.ToLower(part)] {
			return part
		}
	}
	return ""
}

// uiContentEvidence samples file content for UI signatures. HTML files
// need at least two distinct tags to count; a stray tag in a template
// string is not a UI. Server-side JS files are excluded entirely.
func uiContentEvidence(files []walker.FileRecord) string {
	sampled := 0
	for _, f := range files {
		if sampled >= maxContentSamples {
			break
		}
		ext := strings.ToLower(filepath.Ext(f.Path))
		switch ext {
		case ".js", ".jsx", ".ts", ".tsx", ".html", ".vue", ".svelte":
		default:
			continue
		}
		data, err := os.ReadFile(f.AbsPath)
		if err != nil {
			continue
		}
		sampled++
		content := string(data)

		if ext == ".html" {
			if distinctHTMLTags(content) >= 2 {
				return f.Path
			}
			continue
		}
		if serverSideRe.MatchString(content) {
			continue
		}
		if uiContentRe.MatchString(content) {
			return f.Path
		}
	}
	return ""
}

func distinctHTMLTags(content string) int {
	tags := make(map[string]bool)
	for _, m := range htmlTagRe.FindAllStringSubmatch(content, -1) {
		tags[strings.ToLower(m[1])] = true
	}
	return len(tags)
}

// detectJobs gathers background-job evidence.
func detectJobs(root string, files []walker.FileRecord) (bool, []string) {
	var reasons []string

	for _, f := range files {
		base := strings.ToLower(filepath.Base(f.Path))
		name := strings.TrimSuffix(base, filepath.Ext(base))
		for _, kw := range []string{"job", "worker", "scheduler", "cron", "task", "consumer"} {
			if strings.Contains(name, kw) {
				reasons = append(reasons, "job-named file: "+f.Path)
				break
			}
		}
		if len(reasons) > 0 {
			break
		}
	}

	if dep := manifestDep(root, jobManifestDeps); dep != "" {
		reasons = append(reasons, "job dependency in manifest: "+dep)
	}

	if path := jobContentEvidence(files); path != "" {
		reasons = append(reasons, "job content signature: "+path)
	}

	return len(reasons) > 0, reasons
}

func jobContentEvidence(files []walker.FileRecord) string {
	sampled := 0
	for _, f := range files {
		if sampled >= maxContentSamples {
			break
		}
		data, err := os.ReadFile(f.AbsPath)
		if err != nil {
			continue
		}
		sampled++
		if jobContentRe.MatchString(string(data)) {
			return f.Path
		}
	}
	return ""
}

// packageJSONDep returns the first needle found in the repository's
// package.json, or empty.
func packageJSONDep(root string, needles []string) string {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return ""
	}
	content := string(data)
	for _, n := range needles {
		if strings.Contains(content, n) {
			return n
		}
	}
	return ""
}

// manifestDep scans the common dependency manifests at the root for any
// of the needles.
func manifestDep(root string, needles []string) string {
	manifests := []string{
		"package.json", "requirements.txt", "pyproject.toml", "Pipfile",
		"pom.xml", "build.gradle", "build.gradle.kts", "packages.config",
	}
	for _, name := range manifests {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		content := strings.ToLower(string(data))
		for _, n := range needles {
			if strings.Contains(content, n) {
				return n
			}
		}
	}
	return ""
}
