package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/Rrens/card-workbench/internal/catalog"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Workbench WorkbenchConfig `mapstructure:"workbench"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	MiddlewareTimeout time.Duration `mapstructure:"middleware_timeout"`
}

// CatalogConfig selects and parameterises the card catalog backend
type CatalogConfig struct {
	Driver         string        `mapstructure:"driver"`
	APIURL         string        `mapstructure:"api_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	Database       string        `mapstructure:"database"`
	SSLMode        string        `mapstructure:"ssl_mode"`
	Path           string        `mapstructure:"path"`
	RegistrySource string        `mapstructure:"registry_source"`
	MigrationsPath string        `mapstructure:"migrations_path"`
}

// Connection converts the section into source connection parameters
func (c CatalogConfig) Connection() catalog.ConnectionConfig {
	return catalog.ConnectionConfig{
		BaseURL:  c.APIURL,
		Host:     c.Host,
		Port:     c.Port,
		Database: c.Database,
		Username: c.User,
		Password: c.Password,
		SSLMode:  c.SSLMode,
		Path:     c.Path,
		Timeout:  c.Timeout,
	}
}

type RedisConfig struct {
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	CorpusTTL time.Duration `mapstructure:"corpus_ttl"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Enabled reports whether a Redis host is configured
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	Required        bool          `mapstructure:"required"`
}

type LLMConfig struct {
	DefaultProvider string        `mapstructure:"default_provider"`
	Ollama          OllamaConfig  `mapstructure:"ollama"`
	Gemini          GeminiConfig  `mapstructure:"gemini"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type OllamaConfig struct {
	Host         string `mapstructure:"host"`
	DefaultModel string `mapstructure:"default_model"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// WorkbenchConfig holds the engine tunables
type WorkbenchConfig struct {
	PageSize         int           `mapstructure:"page_size"`
	MaxPageSize      int           `mapstructure:"max_page_size"`
	QuickStartCount  int           `mapstructure:"quick_start_count"`
	RecommendedCount int           `mapstructure:"recommended_count"`
	SessionIdleTTL   time.Duration `mapstructure:"session_idle_ttl"`
	MaxSessions      int           `mapstructure:"max_sessions"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level        string        `mapstructure:"level"`
	Format       string        `mapstructure:"format"`
	File         string        `mapstructure:"file"`
	MaxAge       time.Duration `mapstructure:"max_age"`
	RotationTime time.Duration `mapstructure:"rotation_time"`
}

var catalogDrivers = map[string]bool{
	"api":      true,
	"postgres": true,
	"mysql":    true,
	"sqlite":   true,
	"mongodb":  true,
}

// Validate rejects configurations the workbench cannot run with
func (c *Config) Validate() error {
	var errs []error

	if !catalogDrivers[c.Catalog.Driver] {
		errs = append(errs, fmt.Errorf("catalog.driver: unknown driver %q", c.Catalog.Driver))
	}
	if c.Catalog.Driver == "api" && c.Catalog.APIURL == "" {
		errs = append(errs, errors.New("catalog.api_url: required for the api driver"))
	}
	if c.Catalog.Driver == "sqlite" && c.Catalog.Path == "" {
		errs = append(errs, errors.New("catalog.path: required for the sqlite driver"))
	}
	if c.Catalog.RegistrySource != "cache" && c.Catalog.RegistrySource != "feed" {
		errs = append(errs, fmt.Errorf("catalog.registry_source: must be cache or feed, got %q", c.Catalog.RegistrySource))
	}
	if c.Workbench.PageSize <= 0 {
		errs = append(errs, errors.New("workbench.page_size: must be positive"))
	}
	if c.Workbench.MaxPageSize <= 0 {
		errs = append(errs, errors.New("workbench.max_page_size: must be positive"))
	}
	if c.Workbench.PageSize > c.Workbench.MaxPageSize {
		errs = append(errs, errors.New("workbench.page_size: exceeds max_page_size"))
	}
	if c.Workbench.QuickStartCount < 0 || c.Workbench.RecommendedCount < 0 {
		errs = append(errs, errors.New("workbench: counts must not be negative"))
	}
	if c.Auth.Required && c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret: required when auth is required"))
	}

	return errors.Join(errs...)
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set config file path
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set defaults
	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	// Override with environment variables
	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.middleware_timeout", "60s")

	// Catalog
	v.SetDefault("catalog.driver", "api")
	v.SetDefault("catalog.api_url", "http://localhost:8000")
	v.SetDefault("catalog.timeout", "30s")
	v.SetDefault("catalog.host", "localhost")
	v.SetDefault("catalog.port", 5432)
	v.SetDefault("catalog.user", "cards")
	v.SetDefault("catalog.database", "cards")
	v.SetDefault("catalog.ssl_mode", "disable")
	v.SetDefault("catalog.registry_source", "cache")
	v.SetDefault("catalog.migrations_path", "file://migrations")

	// Redis
	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.corpus_ttl", "5m")

	// Auth
	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.refresh_token_ttl", "168h") // 7 days
	v.SetDefault("auth.required", false)

	// LLM
	v.SetDefault("llm.default_provider", "local")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.ollama.default_model", "llama3")
	v.SetDefault("llm.gemini.model", "gemini-2.5-flash")

	// Workbench
	v.SetDefault("workbench.page_size", 10)
	v.SetDefault("workbench.max_page_size", 100)
	v.SetDefault("workbench.quick_start_count", 2)
	v.SetDefault("workbench.recommended_count", 3)
	v.SetDefault("workbench.session_idle_ttl", "2h")
	v.SetDefault("workbench.max_sessions", 1000)

	// Rate limit
	v.SetDefault("rate_limit.requests_per_minute", 120)
	v.SetDefault("rate_limit.burst", 20)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.max_age", "168h")
	v.SetDefault("logging.rotation_time", "24h")
}

func bindEnvVars(v *viper.Viper) {
	// Catalog
	v.BindEnv("catalog.api_url", "CATALOG_API_URL")
	v.BindEnv("catalog.driver", "CATALOG_DRIVER")
	v.BindEnv("catalog.password", "POSTGRES_PASSWORD", "MYSQL_PASSWORD", "MONGO_PASSWORD")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Auth
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")

	// LLM
	v.BindEnv("llm.default_provider", "LLM_PROVIDER")
	v.BindEnv("llm.gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("llm.ollama.host", "OLLAMA_HOST")
}
