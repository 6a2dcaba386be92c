// Package config loads Claudia's configuration from an optional YAML file,
// with environment variables taking precedence. Credentials are never read
// from the file; they come from the environment only.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/JackJackJ/claudia/common/environment"
)

//go:embed schema.json
var schemaJSON []byte

// Config holds Claudia's full runtime configuration.
type Config struct {
	// Matrix
	Homeserver string   `yaml:"homeserver"`
	UserID     string   `yaml:"user_id"`
	Rooms      []string `yaml:"rooms"`

	// Bot behavior
	BotName       string `yaml:"bot_name"`
	CommandPrefix string `yaml:"command_prefix"`
	SystemPrompt  string `yaml:"system_prompt"`

	// Completion service
	Model                 string `yaml:"model"`
	MaxTokens             int    `yaml:"max_tokens"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`

	// Conversation memory
	MaxHistoryLength     int `yaml:"max_history_length"`
	MaxHistoryAgeSeconds int `yaml:"max_history_age_seconds"`
	MaxUserHistory       int `yaml:"max_user_history"`

	// Infrastructure
	DatabasePath string `yaml:"database_path"`
	HealthAddr   string `yaml:"health_addr"`

	// Credentials, environment only.
	AccessToken string `yaml:"-"`
	APIKey      string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BotName:               "Claudia",
		CommandPrefix:         "!",
		Model:                 "claude-3-5-sonnet-20241022",
		MaxTokens:             1024,
		RequestTimeoutSeconds: 60,
		MaxHistoryLength:      50,
		MaxHistoryAgeSeconds:  172800,
		MaxUserHistory:        50,
		DatabasePath:          "claudia.db",
		HealthAddr:            ":8080",
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := validateSchema(data); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validateSchema checks the raw YAML document against the embedded schema
// before it is unmarshalled, so typos and type mistakes fail loudly.
func validateSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("not valid YAML: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("failed to load config schema: %w", err)
	}
	schema, err := compiler.Compile("config.schema.json")
	if err != nil {
		return fmt.Errorf("failed to compile config schema: %w", err)
	}
	return schema.Validate(doc)
}

func (c *Config) applyEnv() {
	c.Homeserver = environment.StringOr("CLAUDIA_HOMESERVER", c.Homeserver)
	c.UserID = environment.StringOr("CLAUDIA_USER_ID", c.UserID)
	c.Rooms = environment.StringSliceOr("CLAUDIA_ROOMS", c.Rooms)
	c.BotName = environment.StringOr("CLAUDIA_BOT_NAME", c.BotName)
	c.CommandPrefix = environment.StringOr("CLAUDIA_COMMAND_PREFIX", c.CommandPrefix)
	c.SystemPrompt = environment.StringOr("CLAUDIA_SYSTEM_PROMPT", c.SystemPrompt)
	c.Model = environment.StringOr("CLAUDIA_MODEL", c.Model)
	c.MaxTokens = environment.IntOr("CLAUDIA_MAX_TOKENS", c.MaxTokens)
	c.RequestTimeoutSeconds = environment.IntOr("CLAUDIA_REQUEST_TIMEOUT_SECONDS", c.RequestTimeoutSeconds)
	c.MaxHistoryLength = environment.IntOr("CLAUDIA_MAX_HISTORY_LENGTH", c.MaxHistoryLength)
	c.MaxHistoryAgeSeconds = environment.IntOr("CLAUDIA_MAX_HISTORY_AGE_SECONDS", c.MaxHistoryAgeSeconds)
	c.MaxUserHistory = environment.IntOr("CLAUDIA_MAX_USER_HISTORY", c.MaxUserHistory)
	c.DatabasePath = environment.StringOr("CLAUDIA_DB_PATH", c.DatabasePath)
	c.HealthAddr = environment.StringOr("CLAUDIA_HEALTH_ADDR", c.HealthAddr)

	// Secrets never come from the config file.
	c.AccessToken = environment.StringOr("MATRIX_ACCESS_TOKEN", c.AccessToken)
	c.APIKey = environment.StringOr("ANTHROPIC_API_KEY", c.APIKey)
}

// Validate checks that every required setting is present.
func (c *Config) Validate() error {
	if c.Homeserver == "" {
		return fmt.Errorf("homeserver is required (set homeserver in the config file or CLAUDIA_HOMESERVER)")
	}
	if c.UserID == "" {
		return fmt.Errorf("user_id is required (set user_id in the config file or CLAUDIA_USER_ID)")
	}
	if c.AccessToken == "" {
		return fmt.Errorf("MATRIX_ACCESS_TOKEN environment variable is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY environment variable is required")
	}
	return nil
}

// MaxHistoryAge returns the history expiry window as a duration.
func (c *Config) MaxHistoryAge() time.Duration {
	return time.Duration(c.MaxHistoryAgeSeconds) * time.Second
}

// RequestTimeout returns the completion request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
