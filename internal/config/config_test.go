package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
[drive]
folder_id = "folder123"

[llm]
api_key = "sk-test"

[notion]
token = "secret_test"
database_id = "db123"
`

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Drive.PageSize != defaultPageSize {
		t.Fatalf("page size = %d, want default %d", cfg.Drive.PageSize, defaultPageSize)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if len(cfg.Drive.Extensions) == 0 {
		t.Fatal("expected default extensions")
	}
	if !strings.HasSuffix(cfg.CursorPath(), "cursor.json") {
		t.Fatalf("unexpected cursor path %q", cfg.CursorPath())
	}
}

func TestLoadRequiresFolderID(t *testing.T) {
	path := writeConfig(t, `
[llm]
api_key = "sk-test"

[notion]
token = "secret_test"
database_id = "db123"
`)

	_, _, _, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "drive.folder_id") {
		t.Fatalf("expected folder_id validation error, got %v", err)
	}
}

func TestLoadHonoursEnvFallbacks(t *testing.T) {
	t.Setenv("SCRIBE_DRIVE_FOLDER_ID", "env-folder")
	t.Setenv("SCRIBE_LLM_API_KEY", "env-key")
	t.Setenv("SCRIBE_NOTION_TOKEN", "env-token")
	path := writeConfig(t, `
[notion]
database_id = "db123"
`)

	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Drive.FolderID != "env-folder" {
		t.Fatalf("folder id = %q", cfg.Drive.FolderID)
	}
	if cfg.LLM.APIKey != "env-key" || cfg.Notion.Token != "env-token" {
		t.Fatalf("env fallbacks not applied: %+v %+v", cfg.LLM, cfg.Notion)
	}
}

func TestNormalizeExtensions(t *testing.T) {
	path := writeConfig(t, strings.Replace(minimalConfig,
		`folder_id = "folder123"`,
		"folder_id = \"folder123\"\nextensions = [\".MP3\", \" m4a \", \"\"]", 1))
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"mp3", "m4a"}
	if len(cfg.Drive.Extensions) != len(want) {
		t.Fatalf("extensions = %v, want %v", cfg.Drive.Extensions, want)
	}
	for i, ext := range want {
		if cfg.Drive.Extensions[i] != ext {
			t.Fatalf("extensions = %v, want %v", cfg.Drive.Extensions, want)
		}
	}
}

func TestValidateRejectsBadLogFormat(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
[logging]
format = "xml"
`)
	_, _, _, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected logging.format error, got %v", err)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected overwrite refusal")
	}
}
