package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	API           APIConfig           `mapstructure:"api"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Chat          ChatConfig          `mapstructure:"chat"`
	LLM           LLMConfig           `mapstructure:"llm"`
	KnowledgeBase KnowledgeBaseConfig `mapstructure:"knowledge_base"`
	Security      SecurityConfig      `mapstructure:"security"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// APIConfig describes the remote backend consumed by the API client
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Origin  string        `mapstructure:"origin"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ResolvedBaseURL returns the absolute base URL for /api endpoints.
// A relative base URL (the default "/api") is joined onto the origin.
func (c APIConfig) ResolvedBaseURL() string {
	base := c.BaseURL
	if base == "" {
		base = "/api"
	}
	if strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://") {
		return strings.TrimRight(base, "/")
	}
	return strings.TrimRight(c.Origin, "/") + "/" + strings.Trim(base, "/")
}

// ResolvedOrigin returns the scheme://host part of the backend, used for
// endpoints living outside the /api namespace.
func (c APIConfig) ResolvedOrigin() string {
	u, err := url.Parse(c.ResolvedBaseURL())
	if err != nil || u.Host == "" {
		return strings.TrimRight(c.Origin, "/")
	}
	return u.Scheme + "://" + u.Host
}

type StorageConfig struct {
	Driver        string         `mapstructure:"driver"`
	SQLite        SQLiteConfig   `mapstructure:"sqlite"`
	Redis         RedisConfig    `mapstructure:"redis"`
	Postgres      PostgresConfig `mapstructure:"postgres"`
	EncryptionKey string         `mapstructure:"encryption_key"`
	// Passphrase is used when no EncryptionKey is set
	Passphrase string `mapstructure:"passphrase"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

func (c PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

type ChatConfig struct {
	ReplyDelay time.Duration `mapstructure:"reply_delay"`
	Responder  string        `mapstructure:"responder"`
}

type LLMConfig struct {
	Ollama OllamaConfig `mapstructure:"ollama"`
}

type OllamaConfig struct {
	Host         string        `mapstructure:"host"`
	DefaultModel string        `mapstructure:"default_model"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type KnowledgeBaseConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type SecurityConfig struct {
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level        string        `mapstructure:"level"`
	Format       string        `mapstructure:"format"`
	File         string        `mapstructure:"file"`
	MaxAge       time.Duration `mapstructure:"max_age"`
	RotationTime time.Duration `mapstructure:"rotation_time"`
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

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
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
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Backend API
	v.SetDefault("api.base_url", "/api")
	v.SetDefault("api.origin", "http://localhost:8000")
	v.SetDefault("api.timeout", "0s")

	// Storage
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite.path", "./data/assistant.db")
	v.SetDefault("storage.redis.host", "localhost")
	v.SetDefault("storage.redis.port", 6379)
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", "assistant:")
	v.SetDefault("storage.postgres.host", "localhost")
	v.SetDefault("storage.postgres.port", 5432)
	v.SetDefault("storage.postgres.user", "assistant")
	v.SetDefault("storage.postgres.database", "assistant")
	v.SetDefault("storage.postgres.ssl_mode", "disable")
	v.SetDefault("storage.postgres.max_conns", 4)
	v.SetDefault("storage.postgres.min_conns", 1)

	// Chat
	v.SetDefault("chat.reply_delay", "1s")
	v.SetDefault("chat.responder", "simulated")
	v.SetDefault("llm.ollama.host", "http://localhost:11434")
	v.SetDefault("llm.ollama.default_model", "llama3")
	v.SetDefault("llm.ollama.timeout", "300s")

	// Knowledge base
	v.SetDefault("knowledge_base.poll_interval", "3s")

	// Security
	v.SetDefault("security.rate_limit.requests_per_second", 20)
	v.SetDefault("security.rate_limit.burst", 40)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.max_age", "168h")
	v.SetDefault("logging.rotation_time", "24h")
}

func bindEnvVars(v *viper.Viper) {
	// Backend API
	v.BindEnv("api.base_url", "BACKEND_API_URL", "VITE_BACKEND_API_URL")
	v.BindEnv("api.origin", "BACKEND_ORIGIN")

	// Storage
	v.BindEnv("storage.redis.password", "REDIS_PASSWORD")
	v.BindEnv("storage.postgres.password", "POSTGRES_PASSWORD")
	v.BindEnv("storage.encryption_key", "STORAGE_ENCRYPTION_KEY")
	v.BindEnv("storage.passphrase", "STORAGE_PASSPHRASE")

	// LLM
	v.BindEnv("llm.ollama.host", "OLLAMA_HOST")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
}
