// Package config handles configuration loading for AgentLance.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/viper"
)

// Config holds all configuration for AgentLance.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Roster    RosterConfig    `mapstructure:"roster"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Stream    StreamConfig    `mapstructure:"stream"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// RosterConfig holds provider roster settings.
type RosterConfig struct {
	// Path is an optional roster YAML file replacing the built-in lineup.
	Path string `mapstructure:"path"`
}

// ArchiveConfig holds event archive settings.
type ArchiveConfig struct {
	// Enabled toggles archiving mesh events to the local database.
	Enabled bool `mapstructure:"enabled"`
	// Path is the SQLite database file.
	Path string `mapstructure:"path"`
}

// StreamConfig holds event stream display settings.
type StreamConfig struct {
	// BufferSize is the channel buffer of a live event subscription;
	// events beyond it are dropped rather than blocking publishers.
	BufferSize int `mapstructure:"buffer_size"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.agentlance.yaml in current directory or parent)
// 3. User config (~/.config/agentlance/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("anthropic.model", "AGENTLANCE_MODEL")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")

	v.SetDefault("roster.path", "")

	v.SetDefault("archive.enabled", true)
	v.SetDefault("archive.path", filepath.Join(getUserDataDir(), "events.db"))

	v.SetDefault("stream.buffer_size", 256)
}

// getUserConfigDir returns the XDG config directory for agentlance.
func getUserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "agentlance")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".agentlance"
	}
	return filepath.Join(home, ".config", "agentlance")
}

// getUserDataDir returns the XDG data directory for agentlance.
func getUserDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "agentlance")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".agentlance"
	}
	return filepath.Join(home, ".local", "share", "agentlance")
}

// findProjectConfig searches the current directory and its parents for
// a .agentlance.yaml file.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ".agentlance.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv expands ${VAR} references against the environment.
func expandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}
