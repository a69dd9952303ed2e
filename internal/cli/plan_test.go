package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/py2plan/pkg/errors"
)

const sampleSource = `def helper(x):
    return x

def plan(items):
    for item in items:
        if item:
            process(item)
    with open("f") as fh:
        pass
    return finish()
`

// runCLI executes the root command and returns its status output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	stdout = &out
	t.Cleanup(func() { stdout = defaultStdout })

	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.py")
	if err := os.WriteFile(path, []byte(sampleSource), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPlanCommand(t *testing.T) {
	src := writeSource(t)
	dir := filepath.Join(t.TempDir(), "out")

	out, err := runCLI(t, src, "--out", dir, "--yaml", "--config", writeConfig(t, ""))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	for _, name := range []string{"plan.json", "plan.pseudo", "plan.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	for _, name := range []string{"plan.svg", "plan.html"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			t.Errorf("%s written without being requested", name)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "plan.json"))
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Function struct {
			Name string `json:"name"`
		} `json:"function"`
		Warnings []json.RawMessage `json:"warnings"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("plan.json: %v", err)
	}
	if doc.Function.Name != "plan" {
		t.Errorf("planned %q, want automatic choice plan", doc.Function.Name)
	}
	if len(doc.Warnings) != 1 {
		t.Errorf("warnings = %d, want 1 for the with statement", len(doc.Warnings))
	}
	if !strings.Contains(out, "Planned") || !strings.Contains(out, "line 8") {
		t.Errorf("summary output = %q", out)
	}
}

func TestPlanCommandExplicitFunction(t *testing.T) {
	src := writeSource(t)
	dir := t.TempDir()

	if _, err := runCLI(t, src, "--func", "helper", "-o", dir, "--config", writeConfig(t, "")); err != nil {
		t.Fatalf("execute: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "plan.pseudo"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "helper") {
		t.Errorf("plan.pseudo does not describe helper:\n%s", data)
	}
}

func TestPlanCommandErrors(t *testing.T) {
	src := writeSource(t)
	cfg := writeConfig(t, "")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"no args", nil, errors.ErrCodeInvalidInput},
		{"two args", []string{src, src}, errors.ErrCodeInvalidInput},
		{"unknown flag", []string{src, "--colour"}, errors.ErrCodeInvalidInput},
		{"missing file", []string{filepath.Join(t.TempDir(), "gone.py"), "--config", cfg}, errors.ErrCodeInvalidInput},
		{"bad engine", []string{src, "--engine", "neato", "--config", cfg}, errors.ErrCodeInvalidInput},
		{"unknown function", []string{src, "--func", "missing", "-o", t.TempDir(), "--config", cfg}, errors.ErrCodeFunctionNotFound},
		{"pick with func", []string{src, "--pick", "--func", "plan", "--config", cfg}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("execute = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestFunctionsCommandConfig(t *testing.T) {
	src := writeSource(t)

	_, err := runCLI(t, "functions", src, "--config", writeConfig(t, "max_source_bytes = 16\n"))
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("source over the configured limit = %v, want PARSE_ERROR", err)
	}

	_, err = runCLI(t, "functions", src, "--config", writeConfig(t, "max_source_bytes = 16\n"), "--max-source-bytes", "4096")
	if err != nil {
		t.Errorf("explicit flag should override the config: %v", err)
	}

	_, err = runCLI(t, "functions", src, "--config", writeConfig(t, "colour = 1\n"))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown config key = %v, want INVALID_INPUT", err)
	}
}

func TestFunctionsCommand(t *testing.T) {
	out, err := runCLI(t, "functions", writeSource(t), "--config", writeConfig(t, ""))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{"helper", "line 1", "plan", "line 4", "default"} {
		if !strings.Contains(out, want) {
			t.Errorf("functions output missing %q:\n%s", want, out)
		}
	}
}
