package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
jobs: 3
recursive: true
rename_pattern: "%Y%m%d_%H%M%S"
log:
  level: debug
  format: json
`)
	got, err := Load(path, true)
	if err != nil {
		t.Fatal(err)
	}
	want := Config{
		Jobs:          3,
		Recursive:     true,
		RenamePattern: "%Y%m%d_%H%M%S",
		Trim:          true,
		Log:           Log{Level: "debug", Format: "json"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")
	got, err := Load(missing, false)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if _, err := Load(missing, true); err == nil {
		t.Error("missing required config accepted")
	}
}

func TestLoad_Invalid(t *testing.T) {
	for name, body := range map[string]string{
		"syntax": "jobs: [",
		"jobs":   "jobs: 0",
		"format": "log:\n  format: xml",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body), true); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(EnvPath, "/tmp/custom.yaml")
	if got := DefaultPath(); got != "/tmp/custom.yaml" {
		t.Errorf("DefaultPath = %q", got)
	}
}

func TestDefault(t *testing.T) {
	if d := Default(); d.Jobs != runtime.NumCPU() || !d.Trim {
		t.Errorf("unexpected defaults: %+v", d)
	}
}
