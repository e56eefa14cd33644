package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate validates server configuration
func (s *ServerConfig) Validate() error {
	var errs []string

	if s.Address == "" {
		errs = append(errs, "address cannot be empty")
	}

	if s.ReadTimeout <= 0 {
		errs = append(errs, "read_timeout must be positive")
	}

	if s.WriteTimeout <= 0 {
		errs = append(errs, "write_timeout must be positive")
	}

	if s.IdleTimeout <= 0 {
		errs = append(errs, "idle_timeout must be positive")
	}

	if s.ReadHeaderTimeout <= 0 {
		errs = append(errs, "read_header_timeout must be positive")
	}

	if s.ShutdownTimeout <= 0 {
		errs = append(errs, "shutdown_timeout must be positive")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates upstream API configuration
func (o *OsuConfig) Validate() error {
	var errs []string

	if o.BaseURL == "" {
		errs = append(errs, "base_url cannot be empty")
	}

	if o.Timeout <= 0 {
		errs = append(errs, "timeout must be positive")
	}

	// Credentials may legitimately be empty in testing profiles; the
	// poller skips cycles until an exchange succeeds.

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates tracker configuration
func (t *TrackerConfig) Validate() error {
	var errs []string

	if t.PageSize <= 0 || t.PageSize > 50 {
		errs = append(errs, "page_size must be in 1..50")
	}

	if t.PollInterval <= 0 {
		errs = append(errs, "poll_interval must be positive")
	}

	if t.BackfillPages < 0 {
		errs = append(errs, "backfill_pages cannot be negative")
	}

	if t.RecentCapacity <= 0 {
		errs = append(errs, "recent_capacity must be positive")
	}

	if t.SuspiciousMod == "" {
		errs = append(errs, "suspicious_mod cannot be empty")
	}

	if t.SuspiciousPP <= 0 {
		errs = append(errs, "suspicious_pp must be positive")
	}

	if t.SearchBudget <= 0 {
		errs = append(errs, "search_budget must be positive")
	}

	if t.SearchMaxScanned <= 0 {
		errs = append(errs, "search_max_scanned must be positive")
	}

	for i, ep := range t.WebhookEndpoints {
		if strings.TrimSpace(ep) == "" {
			errs = append(errs, fmt.Sprintf("webhook_endpoints[%d] is empty", i))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates cache configuration
func (c *CacheConfig) Validate() error {
	var errs []string

	validAdapters := []string{"memory", "redis"}
	isValidAdapter := false
	for _, adapter := range validAdapters {
		if c.Adapter == adapter {
			isValidAdapter = true
			break
		}
	}

	if !isValidAdapter {
		errs = append(errs, fmt.Sprintf("adapter must be one of: %s", strings.Join(validAdapters, ", ")))
	}

	if c.Adapter == "memory" && c.MaxEntries <= 0 {
		errs = append(errs, "max_entries must be positive for the memory adapter")
	}

	if c.Adapter == "redis" && c.Redis.Addr == "" {
		errs = append(errs, "redis.addr cannot be empty for the redis adapter")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	var errs []string

	validLevels := []string{"debug", "info", "warn", "error"}
	isValidLevel := false
	for _, level := range validLevels {
		if l.Level == level {
			isValidLevel = true
			break
		}
	}

	if !isValidLevel {
		errs = append(errs, fmt.Sprintf("level must be one of: %s", strings.Join(validLevels, ", ")))
	}

	validFormats := []string{"json", "text"}
	isValidFormat := false
	for _, format := range validFormats {
		if l.Format == format {
			isValidFormat = true
			break
		}
	}

	if !isValidFormat {
		errs = append(errs, fmt.Sprintf("format must be one of: %s", strings.Join(validFormats, ", ")))
	}

	validOutputs := []string{"stdout", "stderr"}
	isValidOutput := false
	for _, output := range validOutputs {
		if l.Output == output {
			isValidOutput = true
			break
		}
	}

	if !isValidOutput {
		errs = append(errs, fmt.Sprintf("output must be one of: %s", strings.Join(validOutputs, ", ")))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates security settings.
func (s SecurityConfig) Validate() error {
	var errs []string
	if s.EnableRateLimit {
		if s.RateLimit.RequestsPerMinute <= 0 {
			errs = append(errs, "rate_limit.requests_per_minute must be > 0 when rate limiting is enabled")
		}
		if s.RateLimit.BurstSize <= 0 {
			errs = append(errs, "rate_limit.burst_size must be > 0 when rate limiting is enabled")
		}
	}
	for i, key := range s.APIKeys {
		if strings.TrimSpace(key) == "" {
			errs = append(errs, fmt.Sprintf("api_keys[%d] is empty", i))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
