package ratelimit

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds rate limiting configuration.
type Config struct {
	Enabled bool
	// Default applies to requests no rule matches.
	Default Rule
	Rules   []Rule
	// Allow and Deny hold client ids (IP addresses) that bypass or are refused by the limiter.
	Allow map[string]bool
	Deny  map[string]bool
	// Buckets idle for IdleTTL are dropped every SweepInterval.
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// DefaultConfig returns the limits used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		Default:       Rule{Name: "default", Limit: 1000, Window: time.Minute},
		Rules:         DefaultRules(),
		Allow:         map[string]bool{},
		Deny:          map[string]bool{},
		IdleTTL:       time.Hour,
		SweepInterval: 5 * time.Minute,
	}
}

// ConfigFromEnv starts from DefaultConfig and applies RATE_LIMIT_* environment variables.
func ConfigFromEnv() (*Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_ENABLED: %w", err)
		}
		cfg.Enabled = enabled
	}
	if v := os.Getenv("RATE_LIMIT_DEFAULT_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_DEFAULT_LIMIT: %w", err)
		}
		cfg.Default.Limit = limit
	}
	durations := map[string]*time.Duration{
		"RATE_LIMIT_DEFAULT_WINDOW": &cfg.Default.Window,
		"RATE_LIMIT_IDLE_TTL":       &cfg.IdleTTL,
		"RATE_LIMIT_SWEEP_INTERVAL": &cfg.SweepInterval,
	}
	for key, dst := range durations {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}
	cfg.Allow = parseClientList(os.Getenv("RATE_LIMIT_ALLOW"))
	cfg.Deny = parseClientList(os.Getenv("RATE_LIMIT_DENY"))

	return &cfg, nil
}

// parseClientList parses a comma-separated list of client ids into a set.
func parseClientList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			result[id] = true
		}
	}
	return result
}
