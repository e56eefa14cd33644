package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	redisadapter "scorewatch/adapters/redis"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds the complete application configuration
type Config struct {
	// Environment and profile settings
	Environment Environment `json:"environment" env:"SCOREWATCH_ENV"`
	Profile     string      `json:"profile" env:"SCOREWATCH_PROFILE"`

	// Server configuration
	Server ServerConfig `json:"server"`

	// Upstream scoring API credentials and endpoints
	Osu OsuConfig `json:"osu"`

	// Ingestion pipeline tuning
	Tracker TrackerConfig `json:"tracker"`

	// User-entity cache configuration
	Cache CacheConfig `json:"cache"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// Security configuration
	Security SecurityConfig `json:"security"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Address           string        `json:"address" env:"SCOREWATCH_SERVER_ADDR"`
	PathPrefix        string        `json:"path_prefix" env:"SCOREWATCH_SERVER_PATH_PREFIX"`
	CORSOrigin        string        `json:"cors_origin" env:"SCOREWATCH_SERVER_CORS_ORIGIN"`
	ReadTimeout       time.Duration `json:"read_timeout" env:"SCOREWATCH_SERVER_READ_TIMEOUT"`
	WriteTimeout      time.Duration `json:"write_timeout" env:"SCOREWATCH_SERVER_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `json:"idle_timeout" env:"SCOREWATCH_SERVER_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `json:"read_header_timeout" env:"SCOREWATCH_SERVER_READ_HEADER_TIMEOUT"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout" env:"SCOREWATCH_SERVER_SHUTDOWN_TIMEOUT"`
}

// OsuConfig holds the background poller's API application credentials.
// Search requests never use these; callers supply their own.
type OsuConfig struct {
	ClientID     string        `json:"client_id" env:"SCOREWATCH_OSU_CLIENT_ID"`
	ClientSecret string        `json:"client_secret,omitempty" env:"SCOREWATCH_OSU_CLIENT_SECRET"`
	BaseURL      string        `json:"base_url" env:"SCOREWATCH_OSU_BASE_URL"`
	Timeout      time.Duration `json:"timeout" env:"SCOREWATCH_OSU_TIMEOUT"`
}

// TrackerConfig holds ingestion, classification, and search tuning
type TrackerConfig struct {
	Ruleset          string        `json:"ruleset" env:"SCOREWATCH_TRACKER_RULESET"`
	PageSize         int           `json:"page_size" env:"SCOREWATCH_TRACKER_PAGE_SIZE"`
	PollInterval     time.Duration `json:"poll_interval" env:"SCOREWATCH_TRACKER_POLL_INTERVAL"`
	BackfillPages    int           `json:"backfill_pages" env:"SCOREWATCH_TRACKER_BACKFILL_PAGES"`
	BackfillDelay    time.Duration `json:"backfill_delay" env:"SCOREWATCH_TRACKER_BACKFILL_DELAY"`
	RecentCapacity   int           `json:"recent_capacity" env:"SCOREWATCH_TRACKER_RECENT_CAPACITY"`
	SuspiciousMod    string        `json:"suspicious_mod" env:"SCOREWATCH_TRACKER_SUSPICIOUS_MOD"`
	SuspiciousPP     float64       `json:"suspicious_pp" env:"SCOREWATCH_TRACKER_SUSPICIOUS_PP"`
	SearchBudget     time.Duration `json:"search_budget" env:"SCOREWATCH_TRACKER_SEARCH_BUDGET"`
	SearchMaxScanned int           `json:"search_max_scanned" env:"SCOREWATCH_TRACKER_SEARCH_MAX_SCANNED"`
	WebhookEndpoints []string      `json:"webhook_endpoints,omitempty" env:"SCOREWATCH_TRACKER_WEBHOOK_ENDPOINTS"`
}

// CacheConfig holds user-entity cache configuration
type CacheConfig struct {
	Adapter    string              `json:"adapter" env:"SCOREWATCH_CACHE_ADAPTER"`
	MaxEntries int                 `json:"max_entries" env:"SCOREWATCH_CACHE_MAX_ENTRIES"`
	Redis      redisadapter.Config `json:"redis,omitempty"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `json:"level" env:"SCOREWATCH_LOG_LEVEL"`
	Format string `json:"format" env:"SCOREWATCH_LOG_FORMAT"`
	Output string `json:"output" env:"SCOREWATCH_LOG_OUTPUT"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	EnableRateLimit bool            `json:"enable_rate_limit" env:"SCOREWATCH_SECURITY_RATE_LIMIT_ENABLED"`
	RateLimit       RateLimitConfig `json:"rate_limit,omitempty"`
	APIKeys         []string        `json:"api_keys,omitempty" env:"SCOREWATCH_SECURITY_API_KEYS"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `json:"requests_per_minute" env:"SCOREWATCH_SECURITY_RATE_LIMIT_RPM"`
	BurstSize         int `json:"burst_size" env:"SCOREWATCH_SECURITY_RATE_LIMIT_BURST"`
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Load from environment variables
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validateConfigPath validates that the config file path is safe
func validateConfigPath(path string) error {
	if path == "" {
		return errors.New("config file path cannot be empty")
	}

	cleanPath := filepath.Clean(path)

	if !strings.HasSuffix(strings.ToLower(cleanPath), ".json") {
		return errors.New("config file must have .json extension")
	}

	if _, err := os.Stat(cleanPath); err != nil {
		return fmt.Errorf("config file not accessible: %w", err)
	}

	return nil
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(path string) (*Config, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, fmt.Errorf("invalid config file path: %w", err)
	}

	file, err := os.Open(path) // #nosec G304 - Path validated above
	if err != nil {
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// Environment variables override file values
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development
func DefaultConfig() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Profile:     "default",
		Server: ServerConfig{
			Address:           ":8080",
			PathPrefix:        "/api",
			CORSOrigin:        "*",
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   30 * time.Second,
		},
		Osu: OsuConfig{
			BaseURL: "https://osu.ppy.sh",
			Timeout: 30 * time.Second,
		},
		Tracker: TrackerConfig{
			Ruleset:          "osu",
			PageSize:         50,
			PollInterval:     5 * time.Second,
			BackfillPages:    5,
			BackfillDelay:    1500 * time.Millisecond,
			RecentCapacity:   50,
			SuspiciousMod:    "FL",
			SuspiciousPP:     100,
			SearchBudget:     25 * time.Second,
			SearchMaxScanned: 10000,
		},
		Cache: CacheConfig{
			Adapter:    "memory",
			MaxEntries: 10000,
			Redis:      redisadapter.DefaultConfig(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			EnableRateLimit: false,
			RateLimit: RateLimitConfig{
				RequestsPerMinute: 60,
				BurstSize:         10,
			},
			APIKeys: []string{},
		},
	}
}

// Validate validates the configuration and returns detailed error messages
func (c *Config) Validate() error {
	var errs []string

	if c.Environment == "" {
		errs = append(errs, "environment cannot be empty")
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Osu.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("osu config: %v", err))
	}

	if err := c.Tracker.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("tracker config: %v", err))
	}

	if err := c.Cache.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("cache config: %v", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// String returns a JSON representation of the config (with secrets redacted)
func (c *Config) String() string {
	// Create a copy for redaction
	cfg := *c

	if cfg.Osu.ClientSecret != "" {
		cfg.Osu.ClientSecret = "[REDACTED]"
	}
	if cfg.Cache.Redis.Password != "" {
		cfg.Cache.Redis.Password = "[REDACTED]"
	}

	data, _ := json.MarshalIndent(cfg, "", "  ")
	return string(data)
}
