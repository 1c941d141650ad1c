package config

const (
	defaultStagingDir      = "~/.local/share/scribe/staging"
	defaultStateDir        = "~/.local/share/scribe/state"
	defaultLogDir          = "~/.local/share/scribe/logs"
	defaultAPIBind         = "127.0.0.1:7391"
	defaultCredentialsPath = "~/.config/scribe/credentials.json"
	defaultTokenPath       = "~/.config/scribe/token.json"
	defaultRedirectBase    = "http://localhost:7391"
	defaultPageSize        = 500
	defaultMaxFileMiB      = 300
	defaultWhisperLanguage = "en"
	defaultLLMBaseURL      = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel        = "google/gemini-3-flash-preview"
	defaultLLMTimeout      = 120
	defaultLLMMaxTokens    = 4096
	defaultLLMReferer      = "https://github.com/scribe-audio/scribe"
	defaultLLMTitle        = "Scribe Summarizer"
	defaultPollInterval    = 300
	defaultStagingMaxAgeHr = 24
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultNtfyTimeout     = 10
)

func defaultExtensions() []string {
	return []string{"mp3", "m4a", "wav", "ogg", "flac", "aac", "opus", "webm"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			StateDir:   defaultStateDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Drive: Drive{
			CredentialsPath: defaultCredentialsPath,
			TokenPath:       defaultTokenPath,
			RedirectBaseURL: defaultRedirectBase,
			PageSize:        defaultPageSize,
			MaxFileMiB:      defaultMaxFileMiB,
			Extensions:      defaultExtensions(),
		},
		Whisper: Whisper{
			Language: defaultWhisperLanguage,
			Threads:  4,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeout,
			MaxTokens:      defaultLLMMaxTokens,
			SchemaEnabled:  true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
			Published:      true,
			Failures:       true,
			Passes:         false,
		},
		Workflow: Workflow{
			PollInterval:    defaultPollInterval,
			PollingEnabled:  true,
			StagingMaxAgeHr: defaultStagingMaxAgeHr,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
