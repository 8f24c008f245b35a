package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	LLM       LLMConfig       `mapstructure:"llm"`
	Tagging   TaggingConfig   `mapstructure:"tagging"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

// DatabaseConfig selects mysql (default) or sqlite; Path is the sqlite file.
type DatabaseConfig struct {
	Driver    string
	Path      string
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// LLMConfig selects and configures the language-model provider used for
// question generation, tagging and answer feedback.
type LLMConfig struct {
	// Provider: azure_openai, openai, anthropic, gemini, mock
	Provider       string          `mapstructure:"provider"`
	TimeoutSeconds int             `mapstructure:"timeout_seconds"`
	Azure          AzureConfig     `mapstructure:"azure"`
	OpenAI         OpenAIConfig    `mapstructure:"openai"`
	Anthropic      AnthropicConfig `mapstructure:"anthropic"`
	Gemini         GeminiConfig    `mapstructure:"gemini"`
	Retry          RetryConfig     `mapstructure:"retry"`
}

// Timeout bounds a single LLM call including retries.
func (c LLMConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type AzureConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	APIKey     string `mapstructure:"api_key"`
	APIVersion string `mapstructure:"api_version"`
	Deployment string `mapstructure:"deployment"`
}

type OpenAIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type RetryConfig struct {
	MaxAttempts   int     `mapstructure:"max_attempts"`
	InitialWaitMs int     `mapstructure:"initial_wait_ms"`
	MaxWaitMs     int     `mapstructure:"max_wait_ms"`
	Multiplier    float64 `mapstructure:"multiplier"`
}

// TaggingConfig selects the question-tagging backend: remote_llm or local_llm.
type TaggingConfig struct {
	Backend       string `mapstructure:"backend"`
	LocalEndpoint string `mapstructure:"local_endpoint"`
	// BackfillIntervalHours schedules tagging of untagged questions; 0 disables it.
	BackfillIntervalHours int `mapstructure:"backfill_interval_hours"`
}

type AnalyticsConfig struct {
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.path", "medboard.db")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("llm.provider", "azure_openai")
	v.SetDefault("llm.timeout_seconds", 30)
	v.SetDefault("llm.azure.api_version", "2024-02-01")
	v.SetDefault("llm.azure.deployment", "gpt-4")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.anthropic.model", "claude-haiku")
	v.SetDefault("llm.gemini.model", "gemini-flash")
	v.SetDefault("llm.retry.max_attempts", 3)
	v.SetDefault("llm.retry.initial_wait_ms", 1000)
	v.SetDefault("llm.retry.max_wait_ms", 10000)
	v.SetDefault("llm.retry.multiplier", 2.0)
	v.SetDefault("tagging.backend", "remote_llm")
	v.SetDefault("tagging.local_endpoint", "http://localhost:11434")
	v.SetDefault("analytics.cache_ttl_seconds", 300)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:3001"})
	v.SetDefault("rate_limit.max_requests", 1000)
	v.SetDefault("rate_limit.window_minutes", 1)
}

func bindEnv(v *viper.Viper) {
	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.path", "DATABASE_PATH")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET_KEY")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "PORT")

	// LLM
	v.BindEnv("llm.provider", "LLM_PROVIDER")
	v.BindEnv("llm.azure.endpoint", "AZURE_OPENAI_ENDPOINT")
	v.BindEnv("llm.azure.api_key", "AZURE_OPENAI_API_KEY")
	v.BindEnv("llm.azure.api_version", "AZURE_OPENAI_API_VERSION")
	v.BindEnv("llm.azure.deployment", "AZURE_OPENAI_DEPLOYMENT_NAME")
	v.BindEnv("llm.openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.openai.base_url", "OPENAI_BASE_URL")
	v.BindEnv("llm.anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("llm.gemini.api_key", "GEMINI_API_KEY")

	// Tagging
	v.BindEnv("tagging.backend", "TAGGING_BACKEND")
	v.BindEnv("tagging.local_endpoint", "LOCAL_LLM_ENDPOINT")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")
}

// LoadConfig reads config.yaml from path and applies environment overrides.
// A missing file is tolerated so the service can run from environment alone.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("MEDBOARD")
	v.AutomaticEnv()

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	// 生产环境校验 JWT Secret 强度
	if c.Server.Mode == "release" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}

	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unknown database driver: %q", c.Database.Driver)
	}

	switch c.Tagging.Backend {
	case "remote_llm", "azure_openai", "local_llm":
	default:
		return fmt.Errorf("unknown tagging backend: %q", c.Tagging.Backend)
	}
	return nil
}
