package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"greg-hacke/photosnorm/config"
	"greg-hacke/photosnorm/exif"
	"greg-hacke/photosnorm/formats"
	"greg-hacke/photosnorm/meta"
	"greg-hacke/photosnorm/tags"
)

// run executes the CLI with args and returns stdout and stderr
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(config.EnvPath, filepath.Join(t.TempDir(), "none.yaml"))
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func photo(t *testing.T, dir, name string, build func(s *exif.Store)) string {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 16, 8)), nil); err != nil {
		t.Fatal(err)
	}
	s := exif.New(binary.BigEndian)
	build(s)
	blob, err := s.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	c, _ := formats.GetContainer(formats.FormatJPEG)
	data, err := c.Embed(buf.Bytes(), blob)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInfo(t *testing.T) {
	dir := t.TempDir()
	photo(t, dir, "a.jpg", func(s *exif.Store) {
		s.SetString(tags.ImageDescription, "A fun picture!")
		s.SetString(tags.Make, "Canon")
	})
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("text"), 0o644)

	out, _, err := run(t, "info", "-v", dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"a.jpg", "A fun picture!", "No date!", "16x8", "Canon"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "readme.txt") {
		t.Errorf("non-image printed:\n%s", out)
	}
}

func TestSet(t *testing.T) {
	dir := t.TempDir()
	path := photo(t, dir, "a.jpg", func(s *exif.Store) { s.SetString(tags.Make, "Canon") })

	if _, _, err := run(t, "set", "-t", "Holidays", "-d", "2006-10-29 16:27:21", path); err != nil {
		t.Fatal(err)
	}
	m, err := meta.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	date, _ := m.Date()
	if m.Description() != "Holidays" || exif.FormatDateTime(date) != "2006:10:29 16:27:21" {
		t.Errorf("description %q, date %v", m.Description(), date)
	}
}

func TestSet_InvalidDate(t *testing.T) {
	path := photo(t, t.TempDir(), "a.jpg", func(s *exif.Store) { s.SetString(tags.Make, "Canon") })
	before, _ := os.ReadFile(path)

	_, _, err := run(t, "set", "-t", "x", "-d", "2001:01:01", path)
	if !errors.Is(err, exif.ErrInvalidDate) {
		t.Fatalf("err = %v, want ErrInvalidDate", err)
	}
	after, _ := os.ReadFile(path)
	if !bytes.Equal(before, after) {
		t.Error("file modified despite invalid date")
	}
}

func TestFix(t *testing.T) {
	dir := t.TempDir()
	photo(t, dir, "IMG_0001.jpg", func(s *exif.Store) {
		s.SetString(tags.DateTimeOriginal, "2006:10:29 16:27:21")
		s.SetString(tags.ImageDescription, "A fun picture!")
	})
	out, _, err := run(t, "fix", "-n", dir)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "2006_10_29-16_27_21 - A fun picture!.jpg")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("renamed file missing: %v\n%s", err, out)
	}
}

func TestFailuresExitNonZero(t *testing.T) {
	_, _, err := run(t, "info", filepath.Join(t.TempDir(), "missing.jpg"))
	if !errors.Is(err, errFilesFailed) {
		t.Errorf("err = %v, want errFilesFailed", err)
	}
}

func TestUsageErrors(t *testing.T) {
	tests := [][]string{
		{"info"},
		{"set", "-t"},
		{"fix", "--bogus", "x"},
		{"--log-level", "loud", "info", "x"},
		{"--jobs", "0", "info", "x"},
	}
	for _, args := range tests {
		if _, _, err := run(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	os.WriteFile(cfg, []byte("rename_pattern: \"%Y%m%d\"\nlog:\n  format: json\n  level: debug\n"), 0o644)
	photos := filepath.Join(dir, "photos")
	os.Mkdir(photos, 0o755)
	photo(t, photos, "a.jpg", func(s *exif.Store) { s.SetString(tags.DateTimeOriginal, "2006:10:29 16:27:21") })

	_, stderr, err := run(t, "--config", cfg, "fix", "--name", photos)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(photos, "20061029.jpg")); err != nil {
		t.Errorf("pattern from config not used: %v", err)
	}
	if !strings.Contains(stderr, `"component":"cli"`) {
		t.Errorf("expected JSON debug logs, got: %s", stderr)
	}
}
