package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// Server settings
	ServerPort   string        `json:"server_port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	Debug        bool          `json:"debug"`

	LogDir string `json:"log_dir"`

	Middleware MiddlewareConfig `json:"middleware"`
	CORS       CORSConfig       `json:"cors"`
	RateLimit  RateLimitConfig  `json:"rate_limit"`
	Database   DatabaseConfig   `json:"database"`
	Cache      CacheConfig      `json:"cache"`
	Settings   SettingsConfig   `json:"settings"`
	Providers  ProvidersConfig  `json:"providers"`
	Transcript TranscriptConfig `json:"transcript"`
	Summary    SummaryConfig    `json:"summary"`

	Version string `json:"version"`

	// Request and shutdown timeouts
	RequestTimeout  time.Duration `json:"request_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type MiddlewareConfig struct {
	EnableRecover   bool `json:"enable_recover"`
	EnableRequestID bool `json:"enable_request_id"`
	EnableLogger    bool `json:"enable_logger"`
	EnableTimeout   bool `json:"enable_timeout"`
	EnableCORS      bool `json:"enable_cors"`
	EnableRateLimit bool `json:"enable_rate_limit"`
	EnableDebugMode bool `json:"enable_debug_mode"`
}

type CORSConfig struct {
	Enabled          bool     `json:"enabled"`
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	ExposedHeaders   []string `json:"exposed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `json:"enabled"`
	RequestsPerMinute int  `json:"requests_per_minute"`
	BurstSize         int  `json:"burst_size"`
}

type DatabaseConfig struct {
	Path               string        `json:"path"`
	MaxConnections     int           `json:"max_connections"`
	MaxIdleConnections int           `json:"max_idle_connections"`
	ConnMaxLifetime    time.Duration `json:"conn_max_lifetime"`
}

// Backend names shared by the cache and settings sections.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendS3     = "s3"
	BackendEnv    = "env"
)

type CacheConfig struct {
	Backend  string        `json:"backend"`
	RedisURL string        `json:"redis_url"`
	TTL      time.Duration `json:"ttl"`
}

// SettingsConfig selects where provider choice and keys are persisted.
// The s3 backend plays the role of browser sync storage.
type SettingsConfig struct {
	Backend     string `json:"backend"`
	S3Bucket    string `json:"s3_bucket"`
	S3Region    string `json:"s3_region"`
	S3Endpoint  string `json:"s3_endpoint"`
	S3AccessKey string `json:"-"`
	S3SecretKey string `json:"-"`
	S3ObjectKey string `json:"s3_object_key"`

	// Seed values applied when the store is empty, and the only source
	// for the env backend.
	DefaultProvider string `json:"default_provider"`
	OpenAIKey       string `json:"-"`
	ClaudeKey       string `json:"-"`
	GeminiKey       string `json:"-"`
}

type ProviderConfig struct {
	Endpoint    string  `json:"endpoint"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	// RequestsPerMinute throttles outbound calls client-side. Zero disables it.
	RequestsPerMinute int `json:"requests_per_minute"`
}

type ProvidersConfig struct {
	OpenAI      ProviderConfig `json:"openai"`
	Claude      ProviderConfig `json:"claude"`
	Gemini      ProviderConfig `json:"gemini"`
	HTTPTimeout time.Duration  `json:"http_timeout"`
}

type TranscriptConfig struct {
	SettleDelay   time.Duration `json:"settle_delay"`
	CaptionFormat string        `json:"caption_format"`
	UserAgent     string        `json:"user_agent"`
	FetchTimeout  time.Duration `json:"fetch_timeout"`
}

type SummaryConfig struct {
	TruncateChars  int  `json:"truncate_chars"`
	DedupeInFlight bool `json:"dedupe_in_flight"`
}

// Default configurations
func defaultDevConfig() MiddlewareConfig {
	return MiddlewareConfig{
		EnableRecover:   true,
		EnableRequestID: true,
		EnableLogger:    true,
		EnableTimeout:   false, // provider calls can be slow while debugging
		EnableCORS:      true,
		EnableRateLimit: false,
		EnableDebugMode: true,
	}
}

func defaultProdConfig() MiddlewareConfig {
	return MiddlewareConfig{
		EnableRecover:   true,
		EnableRequestID: true,
		EnableLogger:    true,
		EnableTimeout:   true,
		EnableCORS:      true,
		EnableRateLimit: true,
		EnableDebugMode: false,
	}
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present; real env vars win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("Failed to load .env file")
	}

	cfg := &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 90*time.Second),
		IdleTimeout:  getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		Debug:        getEnvAsBool("DEBUG", false),

		LogDir:  getEnv("LOG_DIR", "/var/log/summora"),
		Version: getEnv("VERSION", "1.0.0"),

		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 2*time.Minute),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		CORS: CORSConfig{
			Enabled:        getEnvAsBool("CORS_ENABLED", true),
			AllowedOrigins: getEnvAsStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsStringSlice(
				"CORS_ALLOWED_METHODS",
				[]string{"GET", "POST", "PUT", "OPTIONS"},
			),
			AllowedHeaders:   getEnvAsStringSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type"}),
			ExposedHeaders:   getEnvAsStringSlice("CORS_EXPOSED_HEADERS", []string{"X-Request-ID"}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getEnvAsInt("CORS_MAX_AGE", 86400),
		},

		RateLimit: RateLimitConfig{
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 60),
			BurstSize:         getEnvAsInt("RATE_LIMIT_BURST", 10),
		},

		Database: DatabaseConfig{
			Path:               getEnv("DB_PATH", "/var/lib/summora/data.db"),
			MaxConnections:     getEnvAsInt("DB_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},

		Cache: CacheConfig{
			Backend:  strings.ToLower(getEnv("CACHE_BACKEND", BackendSQLite)),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
			TTL:      getEnvAsDuration("CACHE_TTL", 7*24*time.Hour),
		},

		Settings: SettingsConfig{
			Backend:         strings.ToLower(getEnv("SETTINGS_BACKEND", BackendSQLite)),
			S3Bucket:        getEnv("SETTINGS_S3_BUCKET", ""),
			S3Region:        getEnv("SETTINGS_S3_REGION", "us-east-1"),
			S3Endpoint:      getEnv("SETTINGS_S3_ENDPOINT", ""),
			S3AccessKey:     getEnv("SETTINGS_S3_ACCESS_KEY", ""),
			S3SecretKey:     getEnv("SETTINGS_S3_SECRET_KEY", ""),
			S3ObjectKey:     getEnv("SETTINGS_S3_OBJECT_KEY", "summora/settings.json"),
			DefaultProvider: strings.ToLower(getEnv("DEFAULT_PROVIDER", "openai")),
			OpenAIKey:       getEnv("OPENAI_API_KEY", ""),
			ClaudeKey:       getEnv("ANTHROPIC_API_KEY", ""),
			GeminiKey:       getEnv("GEMINI_API_KEY", ""),
		},

		Providers: ProvidersConfig{
			OpenAI: ProviderConfig{
				Endpoint:          getEnv("OPENAI_ENDPOINT", "https://api.openai.com/v1/chat/completions"),
				Model:             getEnv("OPENAI_MODEL", "gpt-4o-mini"),
				MaxTokens:         getEnvAsInt("OPENAI_MAX_TOKENS", 500),
				Temperature:       getEnvAsFloat("OPENAI_TEMPERATURE", 0.7),
				RequestsPerMinute: getEnvAsInt("OPENAI_RPM", 0),
			},
			Claude: ProviderConfig{
				Endpoint:          getEnv("CLAUDE_ENDPOINT", "https://api.anthropic.com/v1/messages"),
				Model:             getEnv("CLAUDE_MODEL", "claude-3-5-haiku-20241022"),
				MaxTokens:         getEnvAsInt("CLAUDE_MAX_TOKENS", 500),
				RequestsPerMinute: getEnvAsInt("CLAUDE_RPM", 0),
			},
			Gemini: ProviderConfig{
				Endpoint: getEnv(
					"GEMINI_ENDPOINT",
					"https://generativelanguage.googleapis.com/v1beta/models/{model}:generateContent",
				),
				Model:             getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
				MaxTokens:         getEnvAsInt("GEMINI_MAX_TOKENS", 500),
				Temperature:       getEnvAsFloat("GEMINI_TEMPERATURE", 0.7),
				RequestsPerMinute: getEnvAsInt("GEMINI_RPM", 0),
			},
			HTTPTimeout: getEnvAsDuration("PROVIDER_HTTP_TIMEOUT", 0),
		},

		Transcript: TranscriptConfig{
			SettleDelay:   getEnvAsDuration("TRANSCRIPT_SETTLE_DELAY", 1500*time.Millisecond),
			CaptionFormat: getEnv("TRANSCRIPT_CAPTION_FORMAT", "json3"),
			UserAgent: getEnv(
				"TRANSCRIPT_USER_AGENT",
				"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
			),
			FetchTimeout: getEnvAsDuration("TRANSCRIPT_FETCH_TIMEOUT", 30*time.Second),
		},

		Summary: SummaryConfig{
			TruncateChars:  getEnvAsInt("SUMMARY_TRUNCATE_CHARS", 12000),
			DedupeInFlight: getEnvAsBool("SUMMARY_DEDUPE_IN_FLIGHT", false),
		},

		Middleware: defaultDevConfig(),
	}

	if os.Getenv("ENV") == "production" {
		cfg.Middleware = defaultProdConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validatePaths(c); err != nil {
		return err
	}

	if err := validateTimeouts(c); err != nil {
		return err
	}

	if err := validateBackends(c); err != nil {
		return err
	}

	return nil
}

func validatePaths(c *Config) error {
	paths := []struct {
		path string
		name string
	}{
		{c.LogDir, "log directory"},
	}
	if c.usesSQLite() && c.Database.Path != ":memory:" {
		paths = append(paths, struct {
			path string
			name string
		}{filepath.Dir(c.Database.Path), "database directory"})
	}

	for _, p := range paths {
		if err := os.MkdirAll(p.path, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", p.name, err)
		}
	}

	return nil
}

func validateTimeouts(c *Config) error {
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive")
	}
	if c.Providers.HTTPTimeout < 0 {
		return fmt.Errorf("provider http timeout must not be negative")
	}
	if c.Transcript.SettleDelay < 0 {
		return fmt.Errorf("transcript settle delay must not be negative")
	}
	return nil
}

func validateBackends(c *Config) error {
	switch c.Cache.Backend {
	case BackendSQLite, BackendMemory:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("redis cache backend requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	switch c.Settings.Backend {
	case BackendSQLite, BackendEnv, BackendMemory:
	case BackendS3:
		if c.Settings.S3Bucket == "" {
			return fmt.Errorf("s3 settings backend requires SETTINGS_S3_BUCKET")
		}
	default:
		return fmt.Errorf("unknown settings backend %q", c.Settings.Backend)
	}

	if c.Summary.TruncateChars <= 0 {
		return fmt.Errorf("summary truncate chars must be positive")
	}
	return nil
}

func (c *Config) usesSQLite() bool {
	return c.Cache.Backend == BackendSQLite || c.Settings.Backend == BackendSQLite
}

// Helper functions for reading environment variables
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		if value = strings.TrimSpace(value); value != "" {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return parts
		}
	}
	return defaultValue
}
