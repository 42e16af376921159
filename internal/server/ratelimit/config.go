package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/curriculum-coverage/internal/logging"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{
			Enabled: false,
		}
	}

	defaultLimit := getEnvLimit("RATE_LIMIT_DEFAULT_LIMIT", 1000)
	defaultWindow := getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute)
	cleanupInterval := getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute)

	whitelist := parseIPList(getEnvString("RATE_LIMIT_WHITELIST", ""))
	blacklist := parseIPList(getEnvString("RATE_LIMIT_BLACKLIST", ""))

	return &Config{
		Enabled:         enabled,
		DefaultLimit:    defaultLimit,
		DefaultWindow:   defaultWindow,
		CleanupInterval: cleanupInterval,
		Whitelist:       whitelist,
		Blacklist:       blacklist,
		EndpointConfigs: applyOverrides(DefaultEndpointConfigs()),
	}
}

// applyOverrides lets RATE_LIMIT_COVERAGE_LIMIT and RATE_LIMIT_MATCH_LIMIT
// replace the per-window limit of the matching endpoints.
func applyOverrides(configs []EndpointConfig) []EndpointConfig {
	overrides := map[string]string{
		"/coverage": "RATE_LIMIT_COVERAGE_LIMIT",
		"/match":    "RATE_LIMIT_MATCH_LIMIT",
	}
	for i := range configs {
		key, ok := overrides[configs[i].Path]
		if !ok {
			continue
		}
		configs[i].Limit = getEnvLimit(key, configs[i].Limit)
		if configs[i].Burst > configs[i].Limit {
			configs[i].Burst = configs[i].Limit
		}
	}
	return configs
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Matching endpoints do the real work
		{Path: "/coverage", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/match", Method: "POST", Limit: 600, Window: time.Minute, Burst: 50},

		// Stored report reads
		{Path: "/reports", Method: "GET", Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/reports/", Method: "GET", Limit: 300, Window: time.Minute, Burst: 30},

		// Health and metrics are unlimited, see MatchEndpoint
	}
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvLimit reads a request limit. A limit of zero would switch limiting
// off for the endpoint, so values below 1 are ignored.
func getEnvLimit(key string, defaultValue int) int {
	limit := getEnvInt(key, defaultValue)
	if limit < 1 {
		logging.Warn().Str("key", key).Int("value", limit).Int("using", defaultValue).
			Msg("rate limit must be at least 1, ignoring override")
		return defaultValue
	}
	return limit
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	if list == "" {
		return result
	}

	ips := strings.Split(list, ",")
	for _, ip := range ips {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}

	return result
}

