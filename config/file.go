package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig represents the structure of ~/.dailyarxiv/config.yaml.
type FileConfig struct {
	Categories   []string       `yaml:"categories"`
	Priorities   map[string]int `yaml:"priorities"`
	Mode         string         `yaml:"mode"`
	Concurrency  int            `yaml:"concurrency"`
	RateInterval string         `yaml:"rate_interval"`
	Timeout      string         `yaml:"timeout"`
	Output       struct {
		Path string `yaml:"path"`
		Dir  string `yaml:"dir"`
	} `yaml:"output"`
	Archive struct {
		DSN string `yaml:"dsn"`
	} `yaml:"archive"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// DefaultConfigPath returns ~/.dailyarxiv/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".dailyarxiv", "config.yaml"), nil
}

// LoadConfigFile loads configuration from path. Returns nil if the file
// doesn't exist (not an error). Returns error if the file exists but cannot
// be parsed.
func LoadConfigFile(path string) (*FileConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}
