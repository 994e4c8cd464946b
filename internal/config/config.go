package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProviderConfig holds credentials for one social provider.
type ProviderConfig struct {
	ClientID     string `yaml:"client_id,omitempty"`
	ClientSecret string `yaml:"client_secret,omitempty"`
	AccessToken  string `yaml:"access_token,omitempty"`
	// TokenExpiry is the RFC3339 expiry of the access token, when known.
	TokenExpiry string `yaml:"token_expiry,omitempty"`
	// AuthorURN identifies the acting account on the platform
	// (e.g. urn:li:person:xxxx for LinkedIn).
	AuthorURN string `yaml:"author_urn,omitempty"`
}

// Config represents the socialcli configuration.
type Config struct {
	DefaultProvider string                     `yaml:"default_provider"`
	Providers       map[string]*ProviderConfig `yaml:"providers"`
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".socialcli", "config.yaml"), nil
}

// Load reads the config file at path, creating a default one when absent.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := &Config{
			DefaultProvider: "linkedin",
			Providers:       make(map[string]*ProviderConfig),
		}
		if saveErr := Save(path, cfg); saveErr != nil {
			return nil, saveErr
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.DefaultProvider == "" {
		cfg.DefaultProvider = "linkedin"
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]*ProviderConfig)
	}

	return &cfg, nil
}

// Save writes the config file. Credentials live here, so the file is 0600.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Provider returns the configuration for the named provider, or the default
// provider when name is empty. Returns nil if not configured.
func (c *Config) Provider(name string) *ProviderConfig {
	if name == "" {
		name = c.DefaultProvider
	}
	return c.Providers[name]
}

// SetProvider stores configuration for a provider.
func (c *Config) SetProvider(name string, pc *ProviderConfig) {
	if c.Providers == nil {
		c.Providers = make(map[string]*ProviderConfig)
	}
	c.Providers[name] = pc
}
