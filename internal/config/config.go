package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Scan     ScanConfig
	Browser  BrowserConfig
	Gemini   GeminiConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Settings SettingsConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type ScanConfig struct {
	CartURL      string
	WaitTimeout  time.Duration
	PollInterval time.Duration
	RateLimitMin time.Duration
	RateLimitMax time.Duration
	MaxRetries   int
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
	ProxyServer    string
}

type GeminiConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DatabaseConfig is optional: an empty URL disables the scan archive.
type DatabaseConfig struct {
	URL      string
	MaxConns int
}

// SettingsConfig picks the credential store. With Redis reachable the key
// lives there; FilePath is the local fallback.
type SettingsConfig struct {
	FilePath string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Scan: ScanConfig{
			CartURL:      getEnvOrDefault("SCAN_CART_URL", "https://www.amazon.com/gp/cart/view.html"),
			WaitTimeout:  getDurationOrDefault("SCAN_WAIT_TIMEOUT", 6*time.Second),
			PollInterval: getDurationOrDefault("SCAN_POLL_INTERVAL", 200*time.Millisecond),
			RateLimitMin: getDurationOrDefault("SCAN_RATE_LIMIT_MIN", 5*time.Second),
			RateLimitMax: getDurationOrDefault("SCAN_RATE_LIMIT_MAX", 30*time.Second),
			MaxRetries:   getIntOrDefault("SCAN_MAX_RETRIES", 3),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
			TimezoneID:     getEnvOrDefault("BROWSER_TIMEZONE", "America/New_York"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "en-US"),
			ProxyServer:    getEnvOrDefault("BROWSER_PROXY", ""),
		},
		Gemini: GeminiConfig{
			BaseURL: getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			Model:   getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
			Timeout: getDurationOrDefault("GEMINI_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", ""),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			URL:      getEnvOrDefault("DATABASE_URL", ""),
			MaxConns: getIntOrDefault("DATABASE_MAX_CONNS", 4),
		},
		Settings: SettingsConfig{
			FilePath: getEnvOrDefault("SETTINGS_FILE", "ecocart-settings.json"),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Scan.WaitTimeout <= 0 {
		return fmt.Errorf("SCAN_WAIT_TIMEOUT must be positive")
	}

	if c.Scan.PollInterval <= 0 {
		return fmt.Errorf("SCAN_POLL_INTERVAL must be positive")
	}

	if c.Scan.RateLimitMin > c.Scan.RateLimitMax {
		return fmt.Errorf("SCAN_RATE_LIMIT_MIN cannot be greater than SCAN_RATE_LIMIT_MAX")
	}

	if c.Gemini.BaseURL == "" {
		return fmt.Errorf("GEMINI_BASE_URL cannot be empty")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
