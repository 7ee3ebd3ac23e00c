package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// Catalog API configuration
	Catalog CatalogConfig `toml:"catalog"`

	// Price lookup configuration
	Pricing PricingConfig `toml:"pricing"`

	// Local database configuration
	Store StoreConfig `toml:"store"`

	// HTTP API configuration
	API APIConfig `toml:"api"`

	// Import drop directory configuration
	Watch WatchConfig `toml:"watch"`
}

// CatalogConfig contains card catalog API settings.
type CatalogConfig struct {
	BaseURL    string `toml:"base_url"`    // Card API base URL
	ChunkDelay string `toml:"chunk_delay"` // Delay between batch chunks (e.g., "50ms")
}

// PricingConfig contains price lookup settings.
type PricingConfig struct {
	RelayURL   string `toml:"relay_url"`   // CORS relay endpoint
	SourceURL  string `toml:"source_url"`  // Vendor page base URL
	QueueDelay string `toml:"queue_delay"` // Delay between queued lookups (e.g., "300ms")
	RateURL    string `toml:"rate_url"`    // USD-BRL exchange rate endpoint
}

// StoreConfig contains local database settings.
type StoreConfig struct {
	Path string `toml:"path"` // SQLite database path ("" = default location)
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port int `toml:"port"` // Listen port
}

// WatchConfig contains import drop directory settings.
type WatchConfig struct {
	Enabled bool   `toml:"enabled"` // Watch a directory for import files
	Dir     string `toml:"dir"`     // Directory to watch
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			BaseURL:    "https://api.scryfall.com",
			ChunkDelay: "50ms",
		},
		Pricing: PricingConfig{
			RelayURL:   "https://api.allorigins.win/get?url=",
			SourceURL:  "https://www.ligamagic.com.br/",
			QueueDelay: "300ms",
			RateURL:    "https://economia.awesomeapi.com.br/last/USD-BRL",
		},
		Store: StoreConfig{
			Path: "",
		},
		API: APIConfig{
			Port: 8080,
		},
		Watch: WatchConfig{
			Enabled: false,
			Dir:     "",
		},
	}
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".portal-mtg")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// DataPath returns the default database path inside the config directory.
func DataPath() (string, error) {
	path, err := configPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(path), "portal.db"), nil
}

// Load loads the configuration from disk. Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	// If file doesn't exist, return default config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &config, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Catalog.ChunkDelay); err != nil {
		return fmt.Errorf("invalid chunk delay %q: %w", c.Catalog.ChunkDelay, err)
	}

	if _, err := time.ParseDuration(c.Pricing.QueueDelay); err != nil {
		return fmt.Errorf("invalid queue delay %q: %w", c.Pricing.QueueDelay, err)
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("invalid API port: %d", c.API.Port)
	}

	if c.Watch.Enabled && c.Watch.Dir == "" {
		return fmt.Errorf("watch enabled but no directory configured")
	}

	return nil
}

// GetChunkDelay returns the batch chunk delay as a duration.
func (c *Config) GetChunkDelay() (time.Duration, error) {
	return time.ParseDuration(c.Catalog.ChunkDelay)
}

// GetQueueDelay returns the price queue delay as a duration.
func (c *Config) GetQueueDelay() (time.Duration, error) {
	return time.ParseDuration(c.Pricing.QueueDelay)
}
