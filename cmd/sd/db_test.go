package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sprintdeck.yaml")
	yaml := "db:\n  driver: sqlite\n  path: " + filepath.Join(dir, "test.db") + "\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDBInit_Sqlite(t *testing.T) {
	configPath := writeTestConfig(t)

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"db", "init", "--config", configPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("db init failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "initialized") {
		t.Errorf("expected success message, got: %s", out)
	}
	if !strings.Contains(out, "sqlite") {
		t.Errorf("expected driver in output, got: %s", out)
	}
}

func TestDBReset_Force(t *testing.T) {
	configPath := writeTestConfig(t)

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"db", "init", "--config", configPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("db init failed: %v", err)
	}

	cmd = newRootCmd()
	buf.Reset()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"db", "reset", "--config", configPath, "--force"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("db reset failed: %v", err)
	}
	if !strings.Contains(buf.String(), "reset") {
		t.Errorf("expected reset message, got: %s", buf.String())
	}
}

func TestImport_MissingToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	configPath := writeTestConfig(t)

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"import", "--config", configPath, "--repo", "acme/app", "--space", "s1"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "GITHUB_TOKEN") {
		t.Fatalf("expected GITHUB_TOKEN error, got: %v", err)
	}
}
