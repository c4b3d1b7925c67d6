package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
)

// Config represents the main taskpilot configuration
type Config struct {
	// LLM
	LLM LLMConfig `json:"llm" mapstructure:"llm"`

	// Agent defaults
	Agent AgentConfig `json:"agent" mapstructure:"agent"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Session transcripts
	Sessions SessionsConfig `json:"sessions" mapstructure:"sessions"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`

	// Default working directory handed to the agent when -d is not given
	WorkspaceDir string `json:"workspace_dir" mapstructure:"workspace_dir"`
}

// LLMConfig holds model client configuration
type LLMConfig struct {
	Model      string      `json:"model" mapstructure:"model"`
	MaxRetries int         `json:"max_retries" mapstructure:"max_retries"`
	Profiles   []AIProfile `json:"profiles" mapstructure:"profiles"`
}

// AIProfile represents an AI provider profile
type AIProfile struct {
	ID       string `json:"id" mapstructure:"id"`
	Provider string `json:"provider" mapstructure:"provider"` // anthropic, openai
	APIKey   string `json:"api_key" mapstructure:"api_key"`
	BaseURL  string `json:"base_url,omitempty" mapstructure:"base_url"`
	Priority int    `json:"priority" mapstructure:"priority"`
}

// AgentConfig holds the defaults applied to a run when flags are absent
type AgentConfig struct {
	Default       string `json:"default" mapstructure:"default"`
	MaxIterations int    `json:"max_iterations" mapstructure:"max_iterations"`
	MaxChars      int    `json:"max_chars" mapstructure:"max_chars"`
}

// SessionsConfig controls run transcripts
type SessionsConfig struct {
	Record bool   `json:"record" mapstructure:"record"`
	Dir    string `json:"dir,omitempty" mapstructure:"dir"` // defaults to <data_dir>/sessions
	MaxAge int    `json:"max_age" mapstructure:"max_age"`   // days, 0 keeps everything
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	MaxSize   int    `json:"max_size" mapstructure:"max_size"` // MB
	MaxAge    int    `json:"max_age" mapstructure:"max_age"`   // days
	Compress  bool   `json:"compress" mapstructure:"compress"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

const (
	// DefaultAgent is the agent used when neither the flag nor the config names one.
	DefaultAgent = "MonologueAgent"
	// DefaultModel is the model used when neither the flag nor the config names one.
	DefaultModel = "claude-sonnet-4-20250514"
	// DefaultMaxIterations caps agent steps per run.
	DefaultMaxIterations = 100
	// DefaultMaxChars caps characters exchanged with the model per run.
	DefaultMaxChars = 5_000_000
)

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:      DefaultModel,
			MaxRetries: 3,
			Profiles:   []AIProfile{},
		},
		Agent: AgentConfig{
			Default:       DefaultAgent,
			MaxIterations: DefaultMaxIterations,
			MaxChars:      DefaultMaxChars,
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSize:   100,
			MaxAge:    7,
			Compress:  true,
			Redaction: true,
		},
		Sessions: SessionsConfig{
			Record: true,
			MaxAge: 30,
		},
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must be >= 0, got %d", c.LLM.MaxRetries)
	}

	for i, profile := range c.LLM.Profiles {
		if profile.ID == "" {
			return fmt.Errorf("AI profile %d: ID is required", i)
		}
		if profile.Provider == "" {
			return fmt.Errorf("AI profile %s: provider is required", profile.ID)
		}
		if !isKnownProvider(profile.Provider) {
			return fmt.Errorf("AI profile %s: invalid provider %s (must be: %s)", profile.ID, profile.Provider, joinProviders())
		}
	}

	if c.Agent.Default == "" {
		return fmt.Errorf("agent.default is required")
	}
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("agent.max_iterations must be positive, got %d", c.Agent.MaxIterations)
	}
	if c.Agent.MaxChars <= 0 {
		return fmt.Errorf("agent.max_chars must be positive, got %d", c.Agent.MaxChars)
	}

	if c.Sessions.MaxAge < 0 {
		return fmt.Errorf("sessions.max_age must be >= 0, got %d", c.Sessions.MaxAge)
	}

	return nil
}

// SessionsDir returns where transcripts are stored
func (c *Config) SessionsDir() string {
	if c.Sessions.Dir != "" {
		return c.Sessions.Dir
	}
	if c.DataDir == "" {
		return ""
	}
	return filepath.Join(c.DataDir, "sessions")
}

// ProfilesFor returns the profiles serving the given provider, in config order
func (c *Config) ProfilesFor(provider string) []AIProfile {
	var out []AIProfile
	for _, p := range c.LLM.Profiles {
		if p.Provider == provider {
			out = append(out, p)
		}
	}
	return out
}
