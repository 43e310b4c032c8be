package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ulule/limiter/v3"
	"gopkg.in/yaml.v3"
)

// FileEnv names an optional YAML file layered under the environment
const FileEnv = "OMNIFOCUS_BRIDGE_CONFIG"

// Config holds application configuration
type Config struct {
	ServerHost          string        `yaml:"server_host"`
	ServerPort          string        `yaml:"server_port"`
	ServerDebugMode     bool          `yaml:"server_debug_mode"`
	OSAScriptPath       string        `yaml:"osascript_path"`
	ScriptsDir          string        `yaml:"scripts_dir"`
	AutomationTimeout   time.Duration `yaml:"automation_timeout"`
	AutomationKillGrace time.Duration `yaml:"automation_kill_grace"`
	RequestTimeout      time.Duration `yaml:"request_timeout"`
	StoreTimezone       string        `yaml:"store_timezone"`
	AllowedOrigins      string        `yaml:"allowed_origins"`
	RateLimit           string        `yaml:"rate_limit"`
	RedisURL            string        `yaml:"redis_url"`
	APIToken            string        `yaml:"api_token"`
	EnableHSTS          bool          `yaml:"enable_hsts"`
	OTELEnabled         bool          `yaml:"otel_enabled"`
	OTELEndpoint        string        `yaml:"otel_endpoint"`

	location *time.Location
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		ServerHost:          "127.0.0.1",
		ServerPort:          "8000",
		OSAScriptPath:       "osascript",
		AutomationTimeout:   30 * time.Second,
		AutomationKillGrace: 2 * time.Second,
		RequestTimeout:      60 * time.Second,
		RateLimit:           "20-S",
	}
}

// Load loads configuration from defaults, then the optional YAML file named
// by OMNIFOCUS_BRIDGE_CONFIG, then environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ServerHost = getEnv("SERVER_HOST", cfg.ServerHost)
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.ServerDebugMode = getEnvBool("SERVER_DEBUG_MODE", cfg.ServerDebugMode)
	cfg.OSAScriptPath = getEnv("OSASCRIPT_PATH", cfg.OSAScriptPath)
	cfg.ScriptsDir = getEnv("SCRIPTS_DIR", cfg.ScriptsDir)
	cfg.AutomationTimeout = getEnvDuration("AUTOMATION_TIMEOUT", cfg.AutomationTimeout)
	cfg.AutomationKillGrace = getEnvDuration("AUTOMATION_KILL_GRACE", cfg.AutomationKillGrace)
	cfg.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.StoreTimezone = getEnv("STORE_TIMEZONE", cfg.StoreTimezone)
	cfg.AllowedOrigins = getEnv("ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.RateLimit = getEnv("RATE_LIMIT", cfg.RateLimit)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.APIToken = getEnv("API_TOKEN", cfg.APIToken)
	cfg.EnableHSTS = getEnvBool("ENABLE_HSTS", cfg.EnableHSTS)
	cfg.OTELEnabled = getEnvBool("OTEL_ENABLED", cfg.OTELEnabled)
	cfg.OTELEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTELEndpoint)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks values that would otherwise fail at first use
func (c *Config) Validate() error {
	var errs []error

	if c.AutomationTimeout <= 0 {
		errs = append(errs, errors.New("AUTOMATION_TIMEOUT must be positive"))
	}
	if c.AutomationKillGrace <= 0 {
		errs = append(errs, errors.New("AUTOMATION_KILL_GRACE must be positive"))
	}
	if c.RequestTimeout <= c.AutomationTimeout {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT (%s) must exceed AUTOMATION_TIMEOUT (%s)", c.RequestTimeout, c.AutomationTimeout))
	}
	if _, err := limiter.NewRateFromFormatted(c.RateLimit); err != nil {
		errs = append(errs, fmt.Errorf("RATE_LIMIT %q is invalid: %w", c.RateLimit, err))
	}
	if port, err := strconv.Atoi(c.ServerPort); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT %q is invalid", c.ServerPort))
	}

	loc := time.Local
	if c.StoreTimezone != "" {
		var err error
		if loc, err = time.LoadLocation(c.StoreTimezone); err != nil {
			errs = append(errs, fmt.Errorf("STORE_TIMEZONE %q is invalid: %w", c.StoreTimezone, err))
		}
	}
	c.location = loc

	return errors.Join(errs...)
}

// Location returns the zone the store's wall-clock dates are read in
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// Addr returns the HTTP listen address
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// Origins returns the parsed ALLOWED_ORIGINS list
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("45s") or whole seconds ("45")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
