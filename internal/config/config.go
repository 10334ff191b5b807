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
	Server ServerConfig
	DB     DBConfig
	S3     S3Config
	Parser ParserConfig
	Batch  BatchConfig
	CORS   CORSConfig
	Log    LogConfig
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

// S3Config holds AWS S3 settings for storing source invoice images.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// ParserConfig holds LLM extraction settings.
type ParserConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// BatchConfig holds directory batch-processing settings.
type BatchConfig struct {
	InputDir  string `mapstructure:"input_dir"`
	OutputDir string `mapstructure:"output_dir"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the VERIFACT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VERIFACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "verifact")
	v.SetDefault("db.password", "verifact_secret")
	v.SetDefault("db.name", "verifact_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "verifact-invoices")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)

	// Parser defaults
	v.SetDefault("parser.provider", "gemini")
	v.SetDefault("parser.api_key", "")
	v.SetDefault("parser.default_model", "gemini-2.0-flash")
	v.SetDefault("parser.timeout_secs", 120)

	// Batch defaults
	v.SetDefault("batch.input_dir", "invoices")
	v.SetDefault("batch.output_dir", "results")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":           "VERIFACT_SERVER_PORT",
		"server.read_timeout":   "VERIFACT_SERVER_READ_TIMEOUT",
		"server.write_timeout":  "VERIFACT_SERVER_WRITE_TIMEOUT",
		"server.environment":    "VERIFACT_SERVER_ENVIRONMENT",
		"db.host":               "VERIFACT_DB_HOST",
		"db.port":               "VERIFACT_DB_PORT",
		"db.user":               "VERIFACT_DB_USER",
		"db.password":           "VERIFACT_DB_PASSWORD",
		"db.name":               "VERIFACT_DB_NAME",
		"db.sslmode":            "VERIFACT_DB_SSLMODE",
		"db.max_open":           "VERIFACT_DB_MAX_OPEN",
		"db.max_idle":           "VERIFACT_DB_MAX_IDLE",
		"s3.region":             "VERIFACT_S3_REGION",
		"s3.bucket":             "VERIFACT_S3_BUCKET",
		"s3.endpoint":           "VERIFACT_S3_ENDPOINT",
		"s3.access_key":         "VERIFACT_S3_ACCESS_KEY",
		"s3.secret_key":         "VERIFACT_S3_SECRET_KEY",
		"s3.max_file_size_mb":   "VERIFACT_S3_MAX_FILE_SIZE_MB",
		"parser.provider":       "VERIFACT_PARSER_PROVIDER",
		"parser.api_key":        "VERIFACT_PARSER_API_KEY",
		"parser.default_model":  "VERIFACT_PARSER_DEFAULT_MODEL",
		"parser.timeout_secs":   "VERIFACT_PARSER_TIMEOUT_SECS",
		"batch.input_dir":       "VERIFACT_BATCH_INPUT_DIR",
		"batch.output_dir":      "VERIFACT_BATCH_OUTPUT_DIR",
		"cors.allowed_origins":  "VERIFACT_CORS_ALLOWED_ORIGINS",
		"log.level":             "VERIFACT_LOG_LEVEL",
		"log.format":            "VERIFACT_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if VERIFACT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("VERIFACT_SERVER_PORT") == "" {
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
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
	}
	cfg.Parser = ParserConfig{
		Provider:     v.GetString("parser.provider"),
		APIKey:       v.GetString("parser.api_key"),
		DefaultModel: v.GetString("parser.default_model"),
		TimeoutSecs:  v.GetInt("parser.timeout_secs"),
	}
	cfg.Batch = BatchConfig{
		InputDir:  v.GetString("batch.input_dir"),
		OutputDir: v.GetString("batch.output_dir"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	return cfg, nil
}
