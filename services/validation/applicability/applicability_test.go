// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package applicability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AleutianAI/hardgate/services/validation/gates"
	"github.com/AleutianAI/hardgate/services/validation/language"
	"github.com/AleutianAI/hardgate/services/validation/walker"
)

func fixture(t *testing.T, root, rel, content string) walker.FileRecord {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	lang, _ := language.FromPath(rel)
	return walker.FileRecord{Path: rel, AbsPath: path, Language: lang}
}

func TestEvaluateBackendOnlyRepo(t *testing.T) {
	root := t.TempDir()
	files := []walker.FileRecord{
		fixture(t, root, "api/server.js",
			"const express = require('express');\nconst app = express();\napp.listen(3000);\n"),
		fixture(t, root, "api/orders.js",
			"module.exports = function list(req, res) { res.json([]); };\n"),
	}

	report := Evaluate(root, files)
	if len(report) != len(gates.All()) {
		t.Fatalf("report has %d entries, want %d", len(report), len(gates.All()))
	}
	if report[gates.UIErrors].Applicable {
		t.Error("ui_errors should not apply to a backend-only repo")
	}
	if report[gates.UIErrorTools].Applicable {
		t.Error("ui_error_tools should not apply to a backend-only repo")
	}
	if len(report[gates.UIErrors].Reasons) == 0 {
		t.Error("inapplicable decision must carry a reason")
	}
	if !report[gates.StructuredLogs].Applicable || !report[gates.Timeouts].Applicable {
		t.Error("unconditional gates must always apply")
	}
}

func TestEvaluateUIEvidenceFromExtension(t *testing.T) {
	root := t.TempDir()
	files := []walker.FileRecord{
		fixture(t, root, "src/App.tsx", "export default function App() { return null; }\n"),
	}
	report := Evaluate(root, files)
	if !report[gates.UIErrors].Applicable {
		t.Errorf("tsx file should make ui_errors applicable: %+v", report[gates.UIErrors])
	}
}

func TestEvaluateUIEvidenceFromPackageJSON(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "package.json"),
		[]byte(`{"dependencies": {"react": "^18.0.0"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	files := []walker.FileRecord{
		fixture(t, root, "src/app.js", "module.exports = {};\n"),
	}
	report := Evaluate(root, files)
	if !report[gates.UIErrors].Applicable {
		t.Error("react dependency should make ui_errors applicable")
	}
}

func TestServerSideJSDoesNotCountAsUI(t *testing.T) {
	// A server file that renders HTML strings via document-like calls must
	// not flip the UI gates on.
	root := t.TempDir()
	files := []walker.FileRecord{
		fixture(t, root, "server.js",
			"const express = require('express');\n"+
				"// document.getElementById is referenced in a template below\n"+
				"const tpl = 'document.getElementById(\"x\")';\n"),
	}
	report := Evaluate(root, files)
	if report[gates.UIErrors].Applicable {
		t.Error("server-side JS content must be excluded from UI evidence")
	}
}

func TestHTMLNeedsTwoDistinctTags(t *testing.T) {
	root := t.TempDir()
	one := []walker.FileRecord{
		fixture(t, root, "a/snippet.html", "<div>just one tag kind</div><div>again</div>\n"),
	}
	if Evaluate(root, one)[gates.UIErrors].Applicable {
		t.Error("single-tag HTML should not count as UI evidence")
	}

	two := []walker.FileRecord{
		fixture(t, root, "b/page.html", "<html><body><div>hi</div></body></html>\n"),
	}
	if !Evaluate(root, two)[gates.UIErrors].Applicable {
		t.Error("multi-tag HTML should count as UI evidence")
	}
}

func TestEvaluateJobEvidence(t *testing.T) {
	root := t.TempDir()

	// No evidence: gate off.
	none := []walker.FileRecord{
		fixture(t, root, "app/orders.py", "def list_orders():\n    return []\n"),
	}
	if Evaluate(root, none)[gates.LogBackgroundJobs].Applicable {
		t.Error("log_background_jobs should not apply without job evidence")
	}

	// Job-named file.
	named := []walker.FileRecord{
		fixture(t, root, "app/report_worker.py", "def run():\n    pass\n"),
	}
	if !Evaluate(root, named)[gates.LogBackgroundJobs].Applicable {
		t.Error("worker-named file should make log_background_jobs applicable")
	}

	// Content signature.
	content := []walker.FileRecord{
		fixture(t, root, "app/mailer.py", "@shared_task\ndef send():\n    pass\n"),
	}
	if !Evaluate(root, content)[gates.LogBackgroundJobs].Applicable {
		t.Error("@shared_task content should make log_background_jobs applicable")
	}
}

func TestEvaluateJobEvidenceFromManifest(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "requirements.txt"),
		[]byte("celery==5.3.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	files := []walker.FileRecord{
		fixture(t, root, "app/mod.py", "x = 1\n"),
	}
	if !Evaluate(root, files)[gates.LogBackgroundJobs].Applicable {
		t.Error("celery in requirements.txt should make log_background_jobs applicable")
	}
}
