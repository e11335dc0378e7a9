package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName                string        `mapstructure:"app_name"`
	Env                    string        `mapstructure:"app_env"`
	LogLevel               string        `mapstructure:"log_level"`
	ProvidersFile          string        `mapstructure:"providers_file"`
	PublishersFile         string        `mapstructure:"publishers_file"`
	RefreshIntervalSeconds int64         `mapstructure:"refresh_interval"`
	RefreshInterval        time.Duration `mapstructure:"-"`
	RefreshPageSize        int           `mapstructure:"refresh_page_size"`
	HTTPTimeoutSeconds     int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout            time.Duration `mapstructure:"-"`

	ScrapeEnabled bool          `mapstructure:"scrape_enabled"`
	ScrapeDelayMs int64         `mapstructure:"scrape_delay_ms"`
	ScrapeDelay   time.Duration `mapstructure:"-"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "newsblend-aggregator")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("providers_file", "./configs/providers.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("refresh_interval", 900) // seconds
	v.SetDefault("refresh_page_size", 20)
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("scrape_enabled", true)
	v.SetDefault("scrape_delay_ms", 500)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/published.db")
	v.SetDefault("storage_ttl_seconds", int64((5*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.RefreshIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid refresh_interval (must be positive seconds)")
	}
	cfg.RefreshInterval = time.Duration(cfg.RefreshIntervalSeconds) * time.Second

	if cfg.RefreshPageSize <= 0 {
		return nil, fmt.Errorf("invalid refresh_page_size (must be positive)")
	}

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.ScrapeDelayMs < 0 {
		return nil, fmt.Errorf("invalid scrape_delay_ms (must be non-negative)")
	}
	cfg.ScrapeDelay = time.Duration(cfg.ScrapeDelayMs) * time.Millisecond

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}
