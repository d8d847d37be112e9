// Package config provides configuration loading and validation for the CLI and the server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/layout"
)

// Measurer names.
const (
	MeasurerText   = "text"
	MeasurerChrome = "chrome"
)

// Preference store backends.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config represents the service configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or come from the environment.
type Config struct {
	// Server
	Port               int `json:"port,omitempty"`                 // HTTP listen port
	SessionIdleMinutes int `json:"session_idle_minutes,omitempty"` // Close editing sessions idle this long

	// Storage
	DatabaseURL   string `json:"database_url,omitempty"`   // PostgreSQL connection URL
	RedisAddr     string `json:"redis_addr,omitempty"`     // Redis address for layout preferences
	RedisPassword string `json:"redis_password,omitempty"` // Redis password
	RedisDB       int    `json:"redis_db,omitempty"`       // Redis logical database
	PrefsStore    string `json:"prefs_store,omitempty"`    // memory, redis or postgres

	// Browser
	ChromeEnabled bool   `json:"chrome_enabled,omitempty"` // Start headless Chrome for measuring and export
	ChromePath    string `json:"chrome_path,omitempty"`    // Explicit Chrome binary
	MaxTabs       int    `json:"max_tabs,omitempty"`       // Concurrent browser tabs

	// Layout
	Measurer        string  `json:"measurer,omitempty"`         // text or chrome
	DebounceMS      int     `json:"debounce_ms,omitempty"`      // Recalculation debounce window
	PageMarginPx    float64 `json:"page_margin_px,omitempty"`   // Vertical page margin
	PageFooterPx    float64 `json:"page_footer_px,omitempty"`   // Footer height
	DefaultTemplate string  `json:"default_template,omitempty"` // Template for new resumes
	ExportStrategy  string  `json:"export_strategy,omitempty"`  // Default export strategy

	// Behavior
	Verbose         bool `json:"verbose,omitempty"`          // Print detailed debug information
	CheckInvariants bool `json:"check_invariants,omitempty"` // Verify every pagination pass
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:               8080,
		SessionIdleMinutes: 30,
		PrefsStore:         StoreMemory,
		MaxTabs:            4,
		Measurer:           MeasurerText,
		DebounceMS:         275,
		PageMarginPx:       layout.DefaultMarginPx,
		PageFooterPx:       layout.DefaultFooterPx,
		DefaultTemplate:    layout.DefaultTemplateID,
		ExportStrategy:     export.DefaultStrategy,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load reads the optional config file, fills the gaps with defaults and applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// ApplyEnv overrides fields from environment variables. Unset variables leave the field alone.
func (c *Config) ApplyEnv() error {
	var err error
	if v := os.Getenv("PORT"); v != "" {
		if c.Port, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("invalid PORT: %w", err)
		}
	}
	if v := os.Getenv("SESSION_IDLE_MINUTES"); v != "" {
		if c.SessionIdleMinutes, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("invalid SESSION_IDLE_MINUTES: %w", err)
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if c.RedisDB, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("invalid REDIS_DB: %w", err)
		}
	}
	if v := os.Getenv("PREFS_STORE"); v != "" {
		c.PrefsStore = strings.ToLower(v)
	}
	if v := os.Getenv("CHROME_ENABLED"); v != "" {
		if c.ChromeEnabled, err = strconv.ParseBool(v); err != nil {
			return fmt.Errorf("invalid CHROME_ENABLED: %w", err)
		}
	}
	if v := os.Getenv("CHROME_PATH"); v != "" {
		c.ChromePath = v
	}
	if v := os.Getenv("DEBOUNCE_MS"); v != "" {
		if c.DebounceMS, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("invalid DEBOUNCE_MS: %w", err)
		}
	}
	if v := os.Getenv("PAGE_MARGIN_PX"); v != "" {
		if c.PageMarginPx, err = strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("invalid PAGE_MARGIN_PX: %w", err)
		}
	}
	if v := os.Getenv("PAGE_FOOTER_PX"); v != "" {
		if c.PageFooterPx, err = strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("invalid PAGE_FOOTER_PX: %w", err)
		}
	}
	if v := os.Getenv("DEFAULT_TEMPLATE"); v != "" {
		c.DefaultTemplate = v
	}
	if v := os.Getenv("MEASURER"); v != "" {
		c.Measurer = strings.ToLower(v)
	}
	if v := os.Getenv("EXPORT_STRATEGY"); v != "" {
		c.ExportStrategy = strings.ToLower(v)
	}
	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("config error: 'redis_db' must be non-negative")
	}
	if c.SessionIdleMinutes < 0 {
		return fmt.Errorf("config error: 'session_idle_minutes' must be non-negative")
	}
	if c.DebounceMS < 0 {
		return fmt.Errorf("config error: 'debounce_ms' must be non-negative")
	}
	if c.PageMarginPx < 0 || c.PageFooterPx < 0 {
		return fmt.Errorf("config error: 'page_margin_px' and 'page_footer_px' must be non-negative")
	}
	if c.PageMarginPx+c.PageFooterPx >= layout.A4HeightPx {
		return fmt.Errorf("config error: margin and footer leave no room on the page")
	}
	if c.MaxTabs < 0 {
		return fmt.Errorf("config error: 'max_tabs' must be non-negative")
	}

	if c.DefaultTemplate != "" {
		if _, err := layout.LookupTemplate(c.DefaultTemplate); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}

	switch c.Measurer {
	case "", MeasurerText:
	case MeasurerChrome:
		if !c.ChromeEnabled {
			return fmt.Errorf("config error: measurer 'chrome' requires 'chrome_enabled'")
		}
	default:
		return fmt.Errorf("config error: unknown measurer %q", c.Measurer)
	}

	if c.ExportStrategy != "" && !export.IsStrategy(c.ExportStrategy) {
		return fmt.Errorf("config error: unknown export strategy %q", c.ExportStrategy)
	}

	// Layout preferences live in exactly one backend.
	switch c.PrefsStore {
	case "", StoreMemory:
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("config error: prefs_store 'redis' requires 'redis_addr'")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: prefs_store 'postgres' requires 'database_url'")
		}
	default:
		return fmt.Errorf("config error: unknown prefs_store %q", c.PrefsStore)
	}

	return nil
}

// Debounce returns the debounce window as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// SessionIdleTTL returns how long an editing session may sit unused before it is closed.
func (c *Config) SessionIdleTTL() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisAddr == "" {
		result.RedisAddr = defaults.RedisAddr
	}
	if result.RedisPassword == "" {
		result.RedisPassword = defaults.RedisPassword
	}
	if result.PrefsStore == "" {
		result.PrefsStore = defaults.PrefsStore
	}
	if result.ChromePath == "" {
		result.ChromePath = defaults.ChromePath
	}
	if result.Measurer == "" {
		result.Measurer = defaults.Measurer
	}
	if result.DefaultTemplate == "" {
		result.DefaultTemplate = defaults.DefaultTemplate
	}
	if result.ExportStrategy == "" {
		result.ExportStrategy = defaults.ExportStrategy
	}

	// Numeric fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.SessionIdleMinutes == 0 {
		result.SessionIdleMinutes = defaults.SessionIdleMinutes
	}
	if result.RedisDB == 0 {
		result.RedisDB = defaults.RedisDB
	}
	if result.MaxTabs == 0 {
		result.MaxTabs = defaults.MaxTabs
	}
	if result.DebounceMS == 0 {
		result.DebounceMS = defaults.DebounceMS
	}
	if result.PageMarginPx == 0 {
		result.PageMarginPx = defaults.PageMarginPx
	}
	if result.PageFooterPx == 0 {
		result.PageFooterPx = defaults.PageFooterPx
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags and env should always win for bools)

	return result
}
