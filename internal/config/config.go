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
	Server     ServerConfig
	DB         DBConfig
	S3         S3Config
	Log        LogConfig
	CORS       CORSConfig
	Extraction ExtractionConfig
	Draft      DraftConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EndpointConfig holds settings for a single extraction service endpoint.
type EndpointConfig struct {
	Name        string `mapstructure:"name"`
	URL         string `mapstructure:"url"`
	APIKey      string `mapstructure:"api_key"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// ExtractionConfig holds document extraction settings. Secondary is optional
// and only consulted when the primary endpoint fails.
type ExtractionConfig struct {
	Primary       EndpointConfig `mapstructure:"primary"`
	Secondary     EndpointConfig `mapstructure:"secondary"`
	CacheTTLSecs  int            `mapstructure:"cache_ttl_secs"`
	MaxFileSizeMB int64          `mapstructure:"max_file_size_mb"`
	MaxFiles      int            `mapstructure:"max_files"`
}

// SecondaryConfig returns the secondary endpoint config, or nil if not configured.
func (e *ExtractionConfig) SecondaryConfig() *EndpointConfig {
	if e.Secondary.URL != "" {
		return &e.Secondary
	}
	return nil
}

// DraftConfig holds draft persistence settings.
type DraftConfig struct {
	// Backend is "postgres" or "memory".
	Backend   string `mapstructure:"backend"`
	Namespace string `mapstructure:"namespace"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
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

// S3Config holds settings for the trade document archive. An empty bucket
// disables archiving.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the SHIPDESK_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SHIPDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "150s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "shipdesk")
	v.SetDefault("db.password", "shipdesk_secret")
	v.SetDefault("db.name", "shipdesk_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.key_prefix", "trade-documents")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173")

	// Extraction defaults
	v.SetDefault("extraction.primary.name", "primary")
	v.SetDefault("extraction.primary.url", "http://localhost:8000/extract")
	v.SetDefault("extraction.primary.api_key", "")
	v.SetDefault("extraction.primary.timeout_secs", 120)
	v.SetDefault("extraction.secondary.name", "secondary")
	v.SetDefault("extraction.secondary.url", "")
	v.SetDefault("extraction.secondary.api_key", "")
	v.SetDefault("extraction.secondary.timeout_secs", 120)
	v.SetDefault("extraction.cache_ttl_secs", 900)
	v.SetDefault("extraction.max_file_size_mb", 20)
	v.SetDefault("extraction.max_files", 10)

	// Draft defaults
	v.SetDefault("draft.backend", "postgres")
	v.SetDefault("draft.namespace", "shipment-draft")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                       "SHIPDESK_SERVER_PORT",
		"server.read_timeout":               "SHIPDESK_SERVER_READ_TIMEOUT",
		"server.write_timeout":              "SHIPDESK_SERVER_WRITE_TIMEOUT",
		"server.environment":                "SHIPDESK_SERVER_ENVIRONMENT",
		"db.host":                           "SHIPDESK_DB_HOST",
		"db.port":                           "SHIPDESK_DB_PORT",
		"db.user":                           "SHIPDESK_DB_USER",
		"db.password":                       "SHIPDESK_DB_PASSWORD",
		"db.name":                           "SHIPDESK_DB_NAME",
		"db.sslmode":                        "SHIPDESK_DB_SSLMODE",
		"db.max_open":                       "SHIPDESK_DB_MAX_OPEN",
		"db.max_idle":                       "SHIPDESK_DB_MAX_IDLE",
		"s3.region":                         "SHIPDESK_S3_REGION",
		"s3.bucket":                         "SHIPDESK_S3_BUCKET",
		"s3.endpoint":                       "SHIPDESK_S3_ENDPOINT",
		"s3.access_key":                     "SHIPDESK_S3_ACCESS_KEY",
		"s3.secret_key":                     "SHIPDESK_S3_SECRET_KEY",
		"s3.key_prefix":                     "SHIPDESK_S3_KEY_PREFIX",
		"log.level":                         "SHIPDESK_LOG_LEVEL",
		"log.format":                        "SHIPDESK_LOG_FORMAT",
		"cors.allowed_origins":              "SHIPDESK_CORS_ALLOWED_ORIGINS",
		"extraction.primary.name":           "SHIPDESK_EXTRACTION_PRIMARY_NAME",
		"extraction.primary.url":            "SHIPDESK_EXTRACTION_PRIMARY_URL",
		"extraction.primary.api_key":        "SHIPDESK_EXTRACTION_PRIMARY_API_KEY",
		"extraction.primary.timeout_secs":   "SHIPDESK_EXTRACTION_PRIMARY_TIMEOUT_SECS",
		"extraction.secondary.name":         "SHIPDESK_EXTRACTION_SECONDARY_NAME",
		"extraction.secondary.url":          "SHIPDESK_EXTRACTION_SECONDARY_URL",
		"extraction.secondary.api_key":      "SHIPDESK_EXTRACTION_SECONDARY_API_KEY",
		"extraction.secondary.timeout_secs": "SHIPDESK_EXTRACTION_SECONDARY_TIMEOUT_SECS",
		"extraction.cache_ttl_secs":         "SHIPDESK_EXTRACTION_CACHE_TTL_SECS",
		"extraction.max_file_size_mb":       "SHIPDESK_EXTRACTION_MAX_FILE_SIZE_MB",
		"extraction.max_files":              "SHIPDESK_EXTRACTION_MAX_FILES",
		"draft.backend":                     "SHIPDESK_DRAFT_BACKEND",
		"draft.namespace":                   "SHIPDESK_DRAFT_NAMESPACE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if SHIPDESK_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SHIPDESK_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
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
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
		KeyPrefix: v.GetString("s3.key_prefix"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
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

	cfg.Extraction = ExtractionConfig{
		Primary: EndpointConfig{
			Name:        v.GetString("extraction.primary.name"),
			URL:         v.GetString("extraction.primary.url"),
			APIKey:      v.GetString("extraction.primary.api_key"),
			TimeoutSecs: v.GetInt("extraction.primary.timeout_secs"),
		},
		Secondary: EndpointConfig{
			Name:        v.GetString("extraction.secondary.name"),
			URL:         v.GetString("extraction.secondary.url"),
			APIKey:      v.GetString("extraction.secondary.api_key"),
			TimeoutSecs: v.GetInt("extraction.secondary.timeout_secs"),
		},
		CacheTTLSecs:  v.GetInt("extraction.cache_ttl_secs"),
		MaxFileSizeMB: v.GetInt64("extraction.max_file_size_mb"),
		MaxFiles:      v.GetInt("extraction.max_files"),
	}

	cfg.Draft = DraftConfig{
		Backend:   v.GetString("draft.backend"),
		Namespace: v.GetString("draft.namespace"),
	}

	if cfg.Draft.Backend != "postgres" && cfg.Draft.Backend != "memory" {
		return nil, fmt.Errorf("unknown draft backend: %s", cfg.Draft.Backend)
	}
	if cfg.Extraction.Primary.URL == "" {
		return nil, fmt.Errorf("extraction.primary.url is required")
	}

	return cfg, nil
}
