package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the dashboard services.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Mail    MailConfig    `yaml:"mail"`
	Extract ExtractConfig `yaml:"extract"`
	Notion  NotionConfig  `yaml:"notion,omitempty"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig points at the backend ledger API.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Port    string `yaml:"port"`
}

// SessionConfig controls where the bearer credential is persisted.
type SessionConfig struct {
	TokenPath string `yaml:"token_path"`
}

// MailConfig selects the mail retrieval backend.
type MailConfig struct {
	// Provider is "gmail" or "mock".
	Provider string `yaml:"provider"`
	// User is the Gmail mailbox to query, usually "me".
	User string `yaml:"user"`
	// CredentialsFile is the OAuth credentials JSON for the Gmail API.
	CredentialsFile string `yaml:"credentials_file,omitempty"`
}

// ExtractConfig controls the extraction model.
type ExtractConfig struct {
	Model string `yaml:"model"`
}

// NotionConfig enables the optional Notion ledger export.
type NotionConfig struct {
	Token      string `yaml:"token,omitempty"`
	DatabaseID string `yaml:"database_id,omitempty"`
}

// LogConfig controls log verbosity.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:5000/api/v1",
			Port:    "8080",
		},
		Session: SessionConfig{
			TokenPath: filepath.Join(home, ".secretapp", "token"),
		},
		Mail: MailConfig{
			Provider: "mock",
			User:     "me",
		},
		Extract: ExtractConfig{
			Model: "gemini-2.5-flash",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration file at path, falling back to defaults when
// the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("Load: reading %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("Load: parsing %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv lets deployment environments override file settings without
// editing config on disk.
func (c *Config) applyEnv() {
	if v := os.Getenv("SECRETAPP_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("SECRETAPP_PORT"); v != "" {
		c.API.Port = v
	}
	if v := os.Getenv("SECRETAPP_TOKEN_PATH"); v != "" {
		c.Session.TokenPath = v
	}
	if v := os.Getenv("SECRETAPP_MAIL_PROVIDER"); v != "" {
		c.Mail.Provider = v
	}
	if v := os.Getenv("SECRETAPP_EXTRACT_MODEL"); v != "" {
		c.Extract.Model = v
	}
	if v := os.Getenv("SECRETAPP_NOTION_TOKEN"); v != "" {
		c.Notion.Token = v
	}
	if v := os.Getenv("SECRETAPP_NOTION_DATABASE_ID"); v != "" {
		c.Notion.DatabaseID = v
	}
	if v := os.Getenv("SECRETAPP_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}
