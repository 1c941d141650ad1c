// Package testsupport provides helpers shared across package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"scribe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Drive.FolderID = "test-folder"
	cfg.Drive.CredentialsPath = filepath.Join(base, "credentials.json")
	cfg.Drive.TokenPath = filepath.Join(base, "token.json")
	cfg.LLM.APIKey = "test"
	cfg.Notion.Token = "test"
	cfg.Notion.DatabaseID = "test-db"
	cfg.Workflow.PollingEnabled = false

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}
