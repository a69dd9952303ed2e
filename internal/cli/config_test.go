package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/py2plan/pkg/errors"
	"github.com/matzehuels/py2plan/pkg/pipeline"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), configFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
out_dir = "build"
func = "main"
engine = "dot"
export_timeout = "5s"
max_source_bytes = 4096
rankdir = "LR"
strict_export = true
yaml = true
`)
	cfg, used, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if used != path {
		t.Errorf("path = %q, want %q", used, path)
	}
	want := Config{
		OutDir:         "build",
		Func:           "main",
		Engine:         "dot",
		ExportTimeout:  "5s",
		MaxSourceBytes: 4096,
		Rankdir:        "LR",
		StrictExport:   true,
		YAML:           true,
	}
	if cfg != want {
		t.Errorf("config = %+v, want %+v", cfg, want)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", `colour = "red"`},
		{"malformed", `out_dir = `},
		{"wrong type", `max_source_bytes = "big"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := loadConfig(writeConfig(t, tt.content))
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("loadConfig() = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestLoadConfigMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, used, err := loadConfig("")
	if err != nil || used != "" || cfg != (Config{}) {
		t.Errorf("default config absent: got (%+v, %q, %v)", cfg, used, err)
	}

	if _, _, err := loadConfig("nope.toml"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("explicit missing config = %v, want INVALID_INPUT", err)
	}
}

func TestConfigApply(t *testing.T) {
	cfg := Config{
		OutDir:        "from-config",
		Func:          "main",
		Engine:        "dot",
		ExportTimeout: "3s",
		Rankdir:       "LR",
		YAML:          true,
	}
	opts := pipeline.Options{OutDir: "from-flag", Engine: "graphviz"}
	changed := func(flag string) bool { return flag == "out" }

	if err := cfg.apply(&opts, changed); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if opts.OutDir != "from-flag" {
		t.Errorf("OutDir = %q, explicit flag must win", opts.OutDir)
	}
	if opts.Function != "main" || opts.Engine != "dot" || opts.Rankdir != "LR" || !opts.YAML {
		t.Errorf("config values not applied: %+v", opts)
	}
	if opts.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", opts.Timeout)
	}
}

func TestConfigApplyBadTimeout(t *testing.T) {
	opts := pipeline.Options{}
	err := Config{ExportTimeout: "soon"}.apply(&opts, func(string) bool { return false })
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("apply() = %v, want INVALID_INPUT", err)
	}
}
