// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DatabaseConfig holds the connection settings for the read-only reporting
// database that supplies researcher facts.
type DatabaseConfig struct {
	// Driver is the database/sql driver name: "mysql" or "sqlite3".
	Driver string `json:"driver" yaml:"driver" mapstructure:"driver"`

	// DSN is a complete data source name. When empty and Driver is "mysql",
	// the DSN is assembled from Host, User, Password and Name.
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty" mapstructure:"dsn"`

	Host string `json:"host,omitempty" yaml:"host,omitempty" mapstructure:"host"`
	User string `json:"user,omitempty" yaml:"user,omitempty" mapstructure:"user"`

	// Password is never read from source; it comes from the environment,
	// the config file, or the facts-db-password secret.
	Password string `json:"-" yaml:"-" mapstructure:"password"`

	Name string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`

	// QueryTimeout bounds each fact query (default 30s).
	QueryTimeout time.Duration `json:"query_timeout" yaml:"query_timeout" mapstructure:"query_timeout"`
}

// AIConfig holds settings for the text-generation backend.
type AIConfig struct {
	// BaseURL is the OpenAI-compatible API base (default https://api.openai.com/v1).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Model is the model identifier (default "gpt-4").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`

	// MaxTokens caps the completion length.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// Temperature is the sampling temperature.
	Temperature float32 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`

	// Timeout bounds one generation call; zero disables the bound.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries is the number of retries on HTTP 429 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// HistoryConfig holds settings for the generation history.
type HistoryConfig struct {
	// Path is the SQLite database file for the persisted log.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// SessionLimit is the number of entries kept in the session ledger (default 10).
	SessionLimit int `json:"session_limit" yaml:"session_limit" mapstructure:"session_limit"`

	// ExportDir is where CSV exports are written.
	ExportDir string `json:"export_dir" yaml:"export_dir" mapstructure:"export_dir"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is a logrus level name (default "info").
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "text" or "json".
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings. It is built once at process start and passed
// explicitly to the components that need it.
type Config struct {
	Database DatabaseConfig `json:"database" yaml:"database" mapstructure:"database"`
	AI       AIConfig       `json:"ai" yaml:"ai" mapstructure:"ai"`
	History  HistoryConfig  `json:"history" yaml:"history" mapstructure:"history"`
	Server   ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}
