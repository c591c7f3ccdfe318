package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mmcdole/folio/internal/domain"
)

// Config holds all application configuration
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Gallery   GalleryConfig   `mapstructure:"gallery"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Viewer    ViewerConfig    `mapstructure:"viewer"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// APIConfig holds portfolio API configuration
type APIConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// GalleryConfig holds the initial gallery query and layout
type GalleryConfig struct {
	PageSize     int    `mapstructure:"page_size"`
	SortField    string `mapstructure:"sort_field"`
	SortDir      string `mapstructure:"sort_dir"`
	RevealMargin int    `mapstructure:"reveal_margin"` // rows beyond the viewport that count as visible
}

// CacheConfig holds local storage configuration
type CacheConfig struct {
	Dir             string        `mapstructure:"dir"` // empty = memory only
	PrefetchWorkers int           `mapstructure:"prefetch_workers"`
	CatalogTTL      time.Duration `mapstructure:"catalog_ttl"`
}

// ViewerConfig holds external image viewer configuration
type ViewerConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// TelemetryConfig holds tracing configuration. Tracing is off without an endpoint.
type TelemetryConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			URL:     "",
			Timeout: 30 * time.Second,
		},
		Gallery: GalleryConfig{
			PageSize:     domain.DefaultPageSize,
			SortField:    domain.SortByCreated,
			SortDir:      string(domain.SortDesc),
			RevealMargin: 4,
		},
		Cache: CacheConfig{
			Dir:             defaultCachePath(),
			PrefetchWorkers: 4,
			CatalogTTL:      15 * time.Minute,
		},
		Viewer: ViewerConfig{
			Command: "",
			Args:    []string{},
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "folio",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "folio", "folio.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "folio", "folio.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "folio")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "folio")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "folio", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "folio", "cache")
	}
}

// LoadConfig loads configuration from .env, the config file and environment
func LoadConfig() (*Config, error) {
	return Load(defaultConfigPath(), ".env")
}

// Load reads config.yaml from configDir (or the working directory) after
// loading envFile into the process environment. Missing files are not errors.
func Load(configDir, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading env file: %w", err)
		}
	}

	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	// Environment variable overrides, e.g. FOLIO_API_URL
	viper.SetEnvPrefix("FOLIO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	registerDefaults(cfg)

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.Cache.Dir = ExpandHome(cfg.Cache.Dir)
	cfg.Logging.File = ExpandHome(cfg.Logging.File)
	return cfg, nil
}

// registerDefaults makes every key known to viper so env overrides apply
func registerDefaults(cfg *Config) {
	viper.SetDefault("api.url", cfg.API.URL)
	viper.SetDefault("api.timeout", cfg.API.Timeout)
	viper.SetDefault("gallery.page_size", cfg.Gallery.PageSize)
	viper.SetDefault("gallery.sort_field", cfg.Gallery.SortField)
	viper.SetDefault("gallery.sort_dir", cfg.Gallery.SortDir)
	viper.SetDefault("gallery.reveal_margin", cfg.Gallery.RevealMargin)
	viper.SetDefault("cache.dir", cfg.Cache.Dir)
	viper.SetDefault("cache.prefetch_workers", cfg.Cache.PrefetchWorkers)
	viper.SetDefault("cache.catalog_ttl", cfg.Cache.CatalogTTL)
	viper.SetDefault("viewer.command", cfg.Viewer.Command)
	viper.SetDefault("viewer.args", cfg.Viewer.Args)
	viper.SetDefault("logging.file", cfg.Logging.File)
	viper.SetDefault("logging.level", cfg.Logging.Level)
	viper.SetDefault("telemetry.endpoint", cfg.Telemetry.Endpoint)
	viper.SetDefault("telemetry.service_name", cfg.Telemetry.ServiceName)
}

// SaveConfig saves the configuration to the default location
func SaveConfig(cfg *Config) error {
	return Save(cfg, defaultConfigPath())
}

// Save writes cfg as config.yaml in configDir
func Save(cfg *Config, configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	viper.Set("api.url", cfg.API.URL)
	viper.Set("api.timeout", cfg.API.Timeout.String())

	viper.Set("gallery.page_size", cfg.Gallery.PageSize)
	viper.Set("gallery.sort_field", cfg.Gallery.SortField)
	viper.Set("gallery.sort_dir", cfg.Gallery.SortDir)
	viper.Set("gallery.reveal_margin", cfg.Gallery.RevealMargin)

	viper.Set("cache.dir", cfg.Cache.Dir)
	viper.Set("cache.prefetch_workers", cfg.Cache.PrefetchWorkers)
	viper.Set("cache.catalog_ttl", cfg.Cache.CatalogTTL.String())

	viper.Set("viewer.command", cfg.Viewer.Command)
	viper.Set("viewer.args", cfg.Viewer.Args)

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	viper.Set("telemetry.endpoint", cfg.Telemetry.Endpoint)
	viper.Set("telemetry.service_name", cfg.Telemetry.ServiceName)

	configFile := filepath.Join(configDir, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// IsConfigured returns true if the API URL is set
func (c *Config) IsConfigured() bool {
	return c.API.URL != ""
}

// InitialQuery returns the gallery query the app starts with
func (c *Config) InitialQuery() domain.QueryParams {
	return domain.QueryParams{
		SortField: c.Gallery.SortField,
		SortDir:   domain.SortDir(strings.ToLower(c.Gallery.SortDir)),
		PageSize:  c.Gallery.PageSize,
		Page:      1,
	}.Normalize()
}

// ClearCache removes all cached data
func ClearCache(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
