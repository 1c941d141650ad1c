package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	StateDir   string `toml:"state_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
	APIToken   string `toml:"api_token"`
}

// Drive contains configuration for the watched Google Drive folder.
type Drive struct {
	FolderID        string   `toml:"folder_id"`
	CredentialsPath string   `toml:"credentials_path"`
	TokenPath       string   `toml:"token_path"`
	RedirectBaseURL string   `toml:"redirect_base_url"`
	PageSize        int64    `toml:"page_size"`
	MaxFileMiB      int64    `toml:"max_file_mib"`
	Extensions      []string `toml:"extensions"`
}

// Whisper contains configuration for the local speech-to-text engine.
type Whisper struct {
	Binary        string `toml:"binary"`
	ModelPath     string `toml:"model_path"`
	Language      string `toml:"language"`
	GPUEnabled    bool   `toml:"gpu_enabled"`
	Threads       int    `toml:"threads"`
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// LLM contains configuration for the summarization endpoint.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxTokens      int    `toml:"max_tokens"`
	SchemaEnabled  bool   `toml:"schema_enabled"`
}

// Notion contains configuration for the published summary pages.
type Notion struct {
	Token      string `toml:"token"`
	DatabaseID string `toml:"database_id"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Published      bool   `toml:"published"`
	Failures       bool   `toml:"failures"`
	Passes         bool   `toml:"passes"`
}

// Workflow contains configuration for daemon timing.
type Workflow struct {
	PollInterval    int  `toml:"poll_interval"`
	PollingEnabled  bool `toml:"polling_enabled"`
	StagingMaxAgeHr int  `toml:"staging_max_age_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for scribe.
//
// Configuration sections by subsystem:
//   - Paths: staging/state/log directories and API bind address
//   - Drive: watched folder, credential/token files, scan filters
//   - Whisper: local whisper.cpp transcription settings
//   - LLM: summarization endpoint settings
//   - Notion: destination database for summary pages
//   - Notifications: ntfy push notification settings
//   - Workflow: daemon polling cadence and staging hygiene
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Drive         Drive         `toml:"drive"`
	Whisper       Whisper       `toml:"whisper"`
	LLM           LLM           `toml:"llm"`
	Notion        Notion        `toml:"notion"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/scribe/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a config file was found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// WriteSample writes the embedded sample configuration to the given path.
// It refuses to overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the directories the daemon needs at runtime.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// WhisperBinary returns the whisper.cpp executable name.
func (c *Config) WhisperBinary() string {
	if bin := strings.TrimSpace(c.Whisper.Binary); bin != "" {
		return bin
	}
	return "whisper-cli"
}

// FFprobeBinary returns the ffprobe executable used for duration probing.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Whisper.FFprobeBinary); bin != "" {
		return bin
	}
	return "ffprobe"
}

// CursorPath returns the location of the persisted scan cursor.
func (c *Config) CursorPath() string {
	return filepath.Join(c.Paths.StateDir, "cursor.json")
}

// LedgerPath returns the location of the pass/item history database.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.StateDir, "ledger.db")
}

// LockPath returns the location of the daemon's single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "scribed.lock")
}

// MaxFileBytes returns the scan size cap in bytes.
func (c *Config) MaxFileBytes() int64 {
	return c.Drive.MaxFileMiB * 1024 * 1024
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
