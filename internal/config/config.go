package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Backend   BackendConfig
	DB        DBConfig
	S3        S3Config
	Document  DocumentConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Workspace WorkspaceConfig
	Engine    EngineConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// BackendConfig selects where assignments, enums and reports live.
// Mode is "rest" (lab backend API) or "postgres" (direct database access).
type BackendConfig struct {
	Mode         string        `mapstructure:"mode"`
	BaseURL      string        `mapstructure:"base_url"`
	APIToken     string        `mapstructure:"api_token"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FetchRetries int           `mapstructure:"fetch_retries"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// DocumentConfig selects the post-submission document hand-off.
// Provider is "noop" or "s3".
type DocumentConfig struct {
	Provider  string `mapstructure:"provider"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig controls enum vocabulary caching. Provider is "none" or "redis".
type CacheConfig struct {
	Provider string        `mapstructure:"provider"`
	EnumTTL  time.Duration `mapstructure:"enum_ttl"`
}

// WorkspaceConfig bounds the in-memory batch workspaces.
type WorkspaceConfig struct {
	MaxIdle time.Duration `mapstructure:"max_idle"`
}

// EngineConfig tunes batch assembly behaviour.
type EngineConfig struct {
	InferResultFromRemarks bool `mapstructure:"infer_result_from_remarks"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the RMTL_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RMTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Backend defaults
	v.SetDefault("backend.mode", "rest")
	v.SetDefault("backend.base_url", "http://localhost:8000/api")
	v.SetDefault("backend.api_token", "")
	v.SetDefault("backend.timeout", "30s")
	v.SetDefault("backend.fetch_retries", 2)

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "rmtl")
	v.SetDefault("db.password", "rmtl_secret")
	v.SetDefault("db.name", "rmtl_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "rmtl-reports")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Document defaults
	v.SetDefault("document.provider", "noop")
	v.SetDefault("document.key_prefix", "test-reports")

	// Redis and cache defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.provider", "none")
	v.SetDefault("cache.enum_ttl", "10m")

	// Workspace and engine defaults
	v.SetDefault("workspace.max_idle", "8h")
	v.SetDefault("engine.infer_result_from_remarks", false)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                      "RMTL_SERVER_PORT",
		"server.read_timeout":              "RMTL_SERVER_READ_TIMEOUT",
		"server.write_timeout":             "RMTL_SERVER_WRITE_TIMEOUT",
		"server.environment":               "RMTL_SERVER_ENVIRONMENT",
		"log.level":                        "RMTL_LOG_LEVEL",
		"log.format":                       "RMTL_LOG_FORMAT",
		"backend.mode":                     "RMTL_BACKEND_MODE",
		"backend.base_url":                 "RMTL_BACKEND_BASE_URL",
		"backend.api_token":                "RMTL_BACKEND_API_TOKEN",
		"backend.timeout":                  "RMTL_BACKEND_TIMEOUT",
		"backend.fetch_retries":            "RMTL_BACKEND_FETCH_RETRIES",
		"db.host":                          "RMTL_DB_HOST",
		"db.port":                          "RMTL_DB_PORT",
		"db.user":                          "RMTL_DB_USER",
		"db.password":                      "RMTL_DB_PASSWORD",
		"db.name":                          "RMTL_DB_NAME",
		"db.sslmode":                       "RMTL_DB_SSLMODE",
		"db.max_open":                      "RMTL_DB_MAX_OPEN",
		"db.max_idle":                      "RMTL_DB_MAX_IDLE",
		"s3.region":                        "RMTL_S3_REGION",
		"s3.bucket":                        "RMTL_S3_BUCKET",
		"s3.endpoint":                      "RMTL_S3_ENDPOINT",
		"s3.access_key":                    "RMTL_S3_ACCESS_KEY",
		"s3.secret_key":                    "RMTL_S3_SECRET_KEY",
		"s3.presign_expiry":                "RMTL_S3_PRESIGN_EXPIRY",
		"document.provider":                "RMTL_DOCUMENT_PROVIDER",
		"document.key_prefix":              "RMTL_DOCUMENT_KEY_PREFIX",
		"redis.addr":                       "RMTL_REDIS_ADDR",
		"redis.password":                   "RMTL_REDIS_PASSWORD",
		"redis.db":                         "RMTL_REDIS_DB",
		"cache.provider":                   "RMTL_CACHE_PROVIDER",
		"cache.enum_ttl":                   "RMTL_CACHE_ENUM_TTL",
		"workspace.max_idle":               "RMTL_WORKSPACE_MAX_IDLE",
		"engine.infer_result_from_remarks": "RMTL_ENGINE_INFER_RESULT_FROM_REMARKS",
		"cors.allowed_origins":             "RMTL_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Container platforms set PORT. Use it if RMTL_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("RMTL_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Backend = BackendConfig{
		Mode:         strings.ToLower(v.GetString("backend.mode")),
		BaseURL:      strings.TrimRight(v.GetString("backend.base_url"), "/"),
		APIToken:     v.GetString("backend.api_token"),
		Timeout:      v.GetDuration("backend.timeout"),
		FetchRetries: v.GetInt("backend.fetch_retries"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Document = DocumentConfig{
		Provider:  strings.ToLower(v.GetString("document.provider")),
		KeyPrefix: strings.Trim(v.GetString("document.key_prefix"), "/"),
	}
	cfg.Redis = RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
	cfg.Cache = CacheConfig{
		Provider: strings.ToLower(v.GetString("cache.provider")),
		EnumTTL:  v.GetDuration("cache.enum_ttl"),
	}
	cfg.Workspace = WorkspaceConfig{
		MaxIdle: v.GetDuration("workspace.max_idle"),
	}
	cfg.Engine = EngineConfig{
		InferResultFromRemarks: v.GetBool("engine.infer_result_from_remarks"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend.Mode {
	case "rest", "postgres":
	default:
		return fmt.Errorf("config: backend.mode must be rest or postgres, got %q", c.Backend.Mode)
	}
	switch c.Document.Provider {
	case "noop", "s3":
	default:
		return fmt.Errorf("config: document.provider must be noop or s3, got %q", c.Document.Provider)
	}
	switch c.Cache.Provider {
	case "none", "redis":
	default:
		return fmt.Errorf("config: cache.provider must be none or redis, got %q", c.Cache.Provider)
	}
	return nil
}
