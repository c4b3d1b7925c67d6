package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TASKPILOT_LLM_MODEL
const EnvPrefix = "TASKPILOT"

// Loader handles configuration loading
type Loader struct {
	configPath string
	getenv     func(string) string
}

// NewLoader creates a new config loader
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
		getenv:     os.Getenv,
	}
}

// Load loads the configuration from file and environment.
// A missing file is not an error: defaults plus environment overrides are returned.
func (l *Loader) Load() (*Config, error) {
	configPath := l.GetConfigPath()
	if configPath == "" {
		return nil, fmt.Errorf("failed to determine config path")
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := ValidateDocument(data); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	case os.IsNotExist(err):
		// defaults + env only
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Dir(configPath)
	}

	if len(cfg.LLM.Profiles) == 0 {
		cfg.LLM.Profiles = l.envProfiles()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// envProfiles derives provider profiles from the conventional SDK environment variables
func (l *Loader) envProfiles() []AIProfile {
	profiles := []AIProfile{}
	if key := l.getenv("ANTHROPIC_API_KEY"); key != "" {
		profiles = append(profiles, AIProfile{
			ID:       "env-anthropic",
			Provider: "anthropic",
			APIKey:   key,
			BaseURL:  l.getenv("ANTHROPIC_BASE_URL"),
			Priority: 1,
		})
	}
	if key := l.getenv("OPENAI_API_KEY"); key != "" {
		profiles = append(profiles, AIProfile{
			ID:       "env-openai",
			Provider: "openai",
			APIKey:   key,
			BaseURL:  l.getenv("OPENAI_BASE_URL"),
			Priority: 2,
		})
	}
	return profiles
}

// setDefaults registers every scalar key so AutomaticEnv can override it without a file
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("llm.model", cfg.LLM.Model)
	v.SetDefault("llm.max_retries", cfg.LLM.MaxRetries)
	v.SetDefault("agent.default", cfg.Agent.Default)
	v.SetDefault("agent.max_iterations", cfg.Agent.MaxIterations)
	v.SetDefault("agent.max_chars", cfg.Agent.MaxChars)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.max_size", cfg.Logging.MaxSize)
	v.SetDefault("logging.max_age", cfg.Logging.MaxAge)
	v.SetDefault("logging.compress", cfg.Logging.Compress)
	v.SetDefault("logging.redaction", cfg.Logging.Redaction)
	v.SetDefault("sessions.record", cfg.Sessions.Record)
	v.SetDefault("sessions.dir", cfg.Sessions.Dir)
	v.SetDefault("sessions.max_age", cfg.Sessions.MaxAge)
	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("workspace_dir", cfg.WorkspaceDir)
}

// Save saves the configuration to file
func (l *Loader) Save(cfg *Config) error {
	configPath := l.GetConfigPath()
	if configPath == "" {
		return fmt.Errorf("failed to determine config path")
	}

	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	v.Set("llm", cfg.LLM)
	v.Set("agent", cfg.Agent)
	v.Set("logging", cfg.Logging)
	v.Set("sessions", cfg.Sessions)
	v.Set("data_dir", cfg.DataDir)
	v.Set("workspace_dir", cfg.WorkspaceDir)

	if err := v.WriteConfig(); err != nil {
		// If file doesn't exist, create it
		if os.IsNotExist(err) {
			if err := v.SafeWriteConfig(); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}
		} else {
			return fmt.Errorf("failed to write config file: %w", err)
		}
	}

	return nil
}

// GetConfigPath returns the config file path
func (l *Loader) GetConfigPath() string {
	if l.configPath != "" {
		return l.configPath
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".taskpilot", "taskpilot.json")
}

// Load is a convenience function that creates a loader and loads the config
func Load(configPath string) (*Config, error) {
	loader := NewLoader(configPath)
	return loader.Load()
}
