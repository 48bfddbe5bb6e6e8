package agentfs

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment variable read by LoadConfig.
const EnvPrefix = "agentfs"

// DefaultAddress is the backend used for unmounted paths if none is configured.
const DefaultAddress = ":ephemeral:"

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Default string        `yaml:"default" envconfig:"DEFAULT"`
	Mounts  []MountConfig `yaml:"mounts" ignored:"true"`
}

type LogConfig struct {
	Level      string `yaml:"level" envconfig:"LEVEL"`
	File       string `yaml:"file" envconfig:"FILE"`
	NoTerminal bool   `yaml:"no_terminal" envconfig:"NO_TERMINAL"`
	JSON       bool   `yaml:"json" envconfig:"JSON"`
}

type MountConfig struct {
	Path           string `yaml:"path"`
	Address        string `yaml:"address"`
	ReadOnly       bool   `yaml:"read_only"`
	DisableNesting bool   `yaml:"disable_nesting"`
}

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Default: DefaultAddress,
	}
}

// LoadConfig reads the YAML file at path and applies AGENTFS_* environment
// overrides on top. An empty path only applies the environment.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config '%s': %w", path, err)
		}

		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config '%s': %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if cfg.Default == "" {
		cfg.Default = DefaultAddress
	}

	return cfg, nil
}
