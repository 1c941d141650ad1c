package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDrive(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateNotion(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDrive() error {
	if c.Drive.FolderID == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/scribe/config.toml"
		}
		return fmt.Errorf("drive.folder_id is required. Set SCRIBE_DRIVE_FOLDER_ID env var or edit %s (create with 'scribe config init')", defaultPath)
	}
	if c.Drive.PageSize > 1000 {
		return errors.New("drive.page_size must not exceed 1000 (Drive API limit)")
	}
	if len(c.Drive.Extensions) == 0 {
		return errors.New("drive.extensions must list at least one audio extension")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.APIKey == "" {
		return errors.New("llm.api_key is required. Set SCRIBE_LLM_API_KEY env var or add it to the [llm] config section")
	}
	return nil
}

func (c *Config) validateNotion() error {
	if c.Notion.Token == "" {
		return errors.New("notion.token is required. Set SCRIBE_NOTION_TOKEN env var or add it to the [notion] config section")
	}
	if c.Notion.DatabaseID == "" {
		return errors.New("notion.database_id must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
