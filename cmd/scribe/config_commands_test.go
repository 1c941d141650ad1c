package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Errorf("output should mention target path, got %q", out)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample config: %v", err)
	}
	if !strings.Contains(string(data), "[drive]") {
		t.Errorf("sample config missing [drive] section")
	}
}

func TestConfigInitRefusesExisting(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error for existing config file")
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# existing\n" {
		t.Errorf("existing config was modified")
	}
}

func TestConfigInitOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[drive]") {
		t.Errorf("overwritten config should contain sample content")
	}
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	path := writeCLIConfig(t, "127.0.0.1:1", "")

	out, err := runCommand(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "test-llm-key") {
		t.Errorf("llm api key leaked into output:\n%s", out)
	}
	if strings.Contains(out, "secret-notion-token") {
		t.Errorf("notion token leaked into output:\n%s", out)
	}
	if !strings.Contains(out, "<redacted>") {
		t.Errorf("expected redaction markers in output:\n%s", out)
	}
	if !strings.Contains(out, "folder-123") {
		t.Errorf("non-secret values should still be shown:\n%s", out)
	}
}

func TestConfigValidate(t *testing.T) {
	path := writeCLIConfig(t, "127.0.0.1:1", "")

	out, err := runCommand(t, "--config", path, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Errorf("expected validation success message, got %q", out)
	}
}
