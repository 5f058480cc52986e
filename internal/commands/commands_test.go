// Copyright 2026 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(BuildInfo{Version: "1.2.3", Commit: "abc1234", BuildDate: "2026-01-01"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writePipeline(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "1.2.3") || !strings.Contains(out, "abc1234") {
		t.Errorf("output = %q", out)
	}
}

func TestOperationsCommand(t *testing.T) {
	out, err := execute(t, "operations")
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	names := []string{
		"get_invoices", "filter_invoices_by_amount", "group_by_field",
		"save_to_file", "convert_currency", "add_numbers", "transform_json",
		"evaluate",
	}
	for _, name := range names {
		if !strings.Contains(out, name) {
			t.Errorf("output missing %s:\n%s", name, out)
		}
	}
	if !strings.Contains(out, "variables (optional)") {
		t.Errorf("output should mark optional inputs:\n%s", out)
	}
}

func TestRunCommand(t *testing.T) {
	path := writePipeline(t, `
steps:
  - operation: get_invoices
    inputs:
      month: March
  - operation: calculate_total
    inputs:
      items: $output_0.invoices
      field: amount
`)
	out, err := execute(t, "run", path)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if !strings.Contains(out, "✓ step 0: get_invoices") {
		t.Errorf("summary missing:\n%s", out)
	}
	if !strings.Contains(out, "7890") {
		t.Errorf("final output missing total:\n%s", out)
	}
}

func TestRunCommandFailureExitsNonNil(t *testing.T) {
	path := writePipeline(t, `
steps:
  - operation: frobnicate
    inputs: {}
`)
	out, err := execute(t, "run", path)
	if err == nil {
		t.Fatalf("expected error, output:\n%s", out)
	}
	if !strings.Contains(err.Error(), "step 0") {
		t.Errorf("error = %v", err)
	}
}

func TestRunCommandBareListFormat(t *testing.T) {
	path := writePipeline(t, `
- operation: add_numbers
  inputs:
    a: 1
    b: 2
`)
	out, err := execute(t, "run", path)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if !strings.Contains(out, "add_numbers") {
		t.Errorf("output = %q", out)
	}
}

func TestValidateCommand(t *testing.T) {
	valid := writePipeline(t, `
steps:
  - operation: get_current_time
    inputs: {}
`)
	out, err := execute(t, "validate", valid)
	if err != nil {
		t.Fatalf("validate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "validation passed") {
		t.Errorf("output = %q", out)
	}

	invalid := writePipeline(t, `
steps:
  - operation: add_numbers
    inputs:
      a: 1
`)
	out, err = execute(t, "validate", invalid)
	if err == nil {
		t.Fatalf("expected validation failure, output:\n%s", out)
	}
	if !strings.Contains(out, `"b"`) {
		t.Errorf("output should name missing input:\n%s", out)
	}
}

func TestPlanCommandOffline(t *testing.T) {
	out, err := execute(t, "plan", "--offline", "is 17 prime?")
	if err != nil {
		t.Fatalf("plan: %v\n%s", err, out)
	}
	if !strings.Contains(out, "check_prime") {
		t.Errorf("output = %q", out)
	}
}

func TestPlanCommandOfflineExecute(t *testing.T) {
	out, err := execute(t, "plan", "--offline", "--execute", "what time is it")
	if err != nil {
		t.Fatalf("plan --execute: %v\n%s", err, out)
	}
	if !strings.Contains(out, "get_current_time") || !strings.Contains(out, "✓ step 0") {
		t.Errorf("output = %q", out)
	}
}

func TestPlanCommandUnplannable(t *testing.T) {
	_, err := execute(t, "plan", "--offline", "translate this to French")
	if err == nil {
		t.Fatal("expected error for unplannable query")
	}
}
