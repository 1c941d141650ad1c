package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDrive(); err != nil {
		return err
	}
	if err := c.normalizeWhisper(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeNotion()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeDrive() error {
	var err error
	c.Drive.FolderID = strings.TrimSpace(c.Drive.FolderID)
	if c.Drive.FolderID == "" {
		if value, ok := os.LookupEnv("SCRIBE_DRIVE_FOLDER_ID"); ok {
			c.Drive.FolderID = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Drive.CredentialsPath) == "" {
		c.Drive.CredentialsPath = defaultCredentialsPath
	}
	if c.Drive.CredentialsPath, err = expandPath(c.Drive.CredentialsPath); err != nil {
		return fmt.Errorf("drive.credentials_path: %w", err)
	}
	if strings.TrimSpace(c.Drive.TokenPath) == "" {
		c.Drive.TokenPath = defaultTokenPath
	}
	if c.Drive.TokenPath, err = expandPath(c.Drive.TokenPath); err != nil {
		return fmt.Errorf("drive.token_path: %w", err)
	}
	c.Drive.RedirectBaseURL = strings.TrimRight(strings.TrimSpace(c.Drive.RedirectBaseURL), "/")
	if c.Drive.RedirectBaseURL == "" {
		c.Drive.RedirectBaseURL = defaultRedirectBase
	}
	if c.Drive.PageSize <= 0 {
		c.Drive.PageSize = defaultPageSize
	}
	if c.Drive.MaxFileMiB <= 0 {
		c.Drive.MaxFileMiB = defaultMaxFileMiB
	}
	if len(c.Drive.Extensions) == 0 {
		c.Drive.Extensions = defaultExtensions()
	}
	normalized := make([]string, 0, len(c.Drive.Extensions))
	for _, ext := range c.Drive.Extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			normalized = append(normalized, ext)
		}
	}
	c.Drive.Extensions = normalized
	return nil
}

func (c *Config) normalizeWhisper() error {
	var err error
	c.Whisper.Binary = strings.TrimSpace(c.Whisper.Binary)
	c.Whisper.FFprobeBinary = strings.TrimSpace(c.Whisper.FFprobeBinary)
	c.Whisper.Language = strings.ToLower(strings.TrimSpace(c.Whisper.Language))
	if c.Whisper.ModelPath != "" {
		if c.Whisper.ModelPath, err = expandPath(c.Whisper.ModelPath); err != nil {
			return fmt.Errorf("whisper.model_path: %w", err)
		}
	}
	if c.Whisper.Threads <= 0 {
		c.Whisper.Threads = 4
	}
	return nil
}

func (c *Config) normalizeLLM() {
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("SCRIBE_LLM_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeout
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = defaultLLMMaxTokens
	}
}

func (c *Config) normalizeNotion() {
	if c.Notion.Token == "" {
		if value, ok := os.LookupEnv("SCRIBE_NOTION_TOKEN"); ok {
			c.Notion.Token = strings.TrimSpace(value)
		}
	}
	c.Notion.Token = strings.TrimSpace(c.Notion.Token)
	c.Notion.DatabaseID = strings.TrimSpace(c.Notion.DatabaseID)
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.PollInterval <= 0 {
		c.Workflow.PollInterval = defaultPollInterval
	}
	if c.Workflow.StagingMaxAgeHr <= 0 {
		c.Workflow.StagingMaxAgeHr = defaultStagingMaxAgeHr
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
