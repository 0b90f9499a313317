package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source tags selecting a built-in release provider.
const (
	SourceGitHub = "github"
	SourceCoding = "coding"
	SourceLocal  = "local"
)

// Config captures the certificate and binary management settings for a save
// directory.
type Config struct {
	Version int `yaml:"version"`

	// Force regenerates the certificate on every install run.
	Force bool `yaml:"force"`

	// AutoUpgrade checks for a newer mkcert release during init.
	AutoUpgrade bool `yaml:"auto_upgrade"`

	// Source picks the release provider: github, coding, or local.
	Source string `yaml:"source"`

	// MkcertPath points at an existing mkcert binary instead of the managed
	// download. Must be absolute when set.
	MkcertPath string `yaml:"mkcert_path"`

	// SavePath relocates the save directory itself.
	SavePath string `yaml:"save_path"`

	KeyFileName  string `yaml:"key_file_name"`
	CertFileName string `yaml:"cert_file_name"`

	// LogLevel controls console verbosity: debug, info, warn, or error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version:      1,
		Force:        false,
		AutoUpgrade:  false,
		Source:       SourceGitHub,
		KeyFileName:  "dev.pem",
		CertFileName: "cert.pem",
		LogLevel:     "info",
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures fields fall back to sensible defaults when the YAML
// omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Source == "" {
		c.Source = defaults.Source
	}
	if c.KeyFileName == "" {
		c.KeyFileName = defaults.KeyFileName
	}
	if c.CertFileName == "" {
		c.CertFileName = defaults.CertFileName
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}
