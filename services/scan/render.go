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
	"bytes"
	"fmt"
	"html/template"

	"github.com/AleutianAI/hardgate/services/validation"
	"github.com/AleutianAI/hardgate/services/validation/gates"
	"github.com/AleutianAI/hardgate/services/validation/scoring"
)

// Renderer turns a ValidationResult into a self-contained artifact.
type Renderer interface {
	Render(result *validation.ValidationResult, repoURL, branch, scanID string) ([]byte, error)
}

// HTMLRenderer is the default renderer. It groups gates into the four
// presentation categories and emits one self-contained HTML page.
type HTMLRenderer struct{}

// categoryOf is presentation-only grouping; the core model knows nothing
// about these buckets.
func categoryOf(gate gates.GateKind) string {
	switch gate {
	case gates.StructuredLogs, gates.AvoidLoggingSecrets, gates.AuditTrail,
		gates.CorrelationID, gates.LogAPICalls, gates.LogBackgroundJobs, gates.UIErrors:
		return "Auditability"
	case gates.RetryLogic, gates.Timeouts, gates.Throttling, gates.CircuitBreakers:
		return "Availability"
	case gates.ErrorLogs, gates.HTTPCodes, gates.UIErrorTools:
		return "Error Handling"
	default:
		return "Testing"
	}
}

var categoryOrder = []string{"Auditability", "Availability", "Error Handling", "Testing"}

type reportCategory struct {
	Name  string
	Gates []scoring.GateScore
}

type reportData struct {
	Result     *validation.ValidationResult
	RepoURL    string
	Branch     string
	ScanID     string
	Categories []reportCategory
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"printf": fmt.Sprintf,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Hard Gate Report — {{.Result.ProjectName}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem; color: #1c2733; }
h1 { font-size: 1.6rem; } h2 { font-size: 1.2rem; margin-top: 2rem; }
.summary { background: #f4f7fa; border-radius: 8px; padding: 1rem 1.5rem; }
table { border-collapse: collapse; width: 100%; margin-top: .5rem; }
th, td { text-align: left; padding: .45rem .7rem; border-bottom: 1px solid #e1e8ef; font-size: .92rem; }
.status { font-weight: 600; border-radius: 4px; padding: .1rem .5rem; }
.PASS { color: #11734b; background: #e4f3ec; }
.WARNING { color: #8a6400; background: #fdf3da; }
.FAIL, .FAILED { color: #a1260d; background: #fbe9e5; }
.NOT_APPLICABLE, .UNSUPPORTED { color: #5f6b76; background: #eef1f4; }
.critical { color: #a1260d; }
ul { margin: .3rem 0; padding-left: 1.3rem; }
footer { margin-top: 3rem; font-size: .8rem; color: #5f6b76; }
</style>
</head>
<body>
<h1>Hard Gate Assessment — {{.Result.ProjectName}}</h1>
<div class="summary">
<p><strong>Overall score:</strong> {{printf "%.1f" .Result.OverallScore}} / 100 &nbsp;|&nbsp;
<strong>Passed:</strong> {{.Result.PassedGates}} &nbsp;
<strong>Warnings:</strong> {{.Result.WarningGates}} &nbsp;
<strong>Failed:</strong> {{.Result.FailedGates}}</p>
<p><strong>Repository:</strong> {{if .RepoURL}}{{.RepoURL}}{{else}}{{.Result.RootPath}}{{end}}
{{if .Branch}} ({{.Branch}}){{end}} &nbsp;|&nbsp;
<strong>Primary language:</strong> {{.Result.PrimaryLanguage}} &nbsp;|&nbsp;
<strong>Files:</strong> {{.Result.TotalFiles}} &nbsp;|&nbsp;
<strong>Lines:</strong> {{.Result.TotalLines}}</p>
<p><strong>Scan:</strong> {{.ScanID}} at {{.Result.Timestamp.Format "2006-01-02 15:04:05 UTC"}}</p>
</div>

{{if .Result.CriticalIssues}}
<h2 class="critical">Critical Issues</h2>
<ul>{{range .Result.CriticalIssues}}<li class="critical">{{.}}</li>{{end}}</ul>
{{end}}

{{range .Categories}}
<h2>{{.Name}}</h2>
<table>
<tr><th>Gate</th><th>Status</th><th>Score</th><th>Found / Expected</th><th>Details</th></tr>
{{range .Gates}}
<tr>
<td>{{.DisplayName}}</td>
<td><span class="status {{.Status}}">{{.Status}}</span></td>
<td>{{printf "%.1f" .FinalScore}}</td>
<td>{{.Found}} / {{.Expected}}</td>
<td><ul>{{range .Details}}<li>{{.}}</li>{{end}}</ul></td>
</tr>
{{end}}
</table>
{{end}}

{{if .Result.Recommendations}}
<h2>Recommendations</h2>
<ul>{{range .Result.Recommendations}}<li>{{.}}</li>{{end}}</ul>
{{end}}

<footer>Generated by hardgate in {{.Result.ScanDuration}}</footer>
</body>
</html>
`))

// Render implements Renderer.
func (HTMLRenderer) Render(result *validation.ValidationResult, repoURL, branch, scanID string) ([]byte, error) {
	byCategory := make(map[string][]scoring.GateScore)
	for _, gs := range result.GateScores {
		cat := categoryOf(gs.Gate)
		byCategory[cat] = append(byCategory[cat], gs)
	}
	data := reportData{
		Result:  result,
		RepoURL: repoURL,
		Branch:  branch,
		ScanID:  scanID,
	}
	for _, name := range categoryOrder {
		if len(byCategory[name]) > 0 {
			data.Categories = append(data.Categories, reportCategory{Name: name, Gates: byCategory[name]})
		}
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("scan: render report for %s: %w", scanID, err)
	}
	return buf.Bytes(), nil
}

// reportFilename is the persisted-report naming scheme.
func reportFilename(scanID string) string {
	return fmt.Sprintf("hard_gate_report_%s.html", scanID)
}
