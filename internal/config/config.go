package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendAuto     = "auto"
	BackendPostgres = "postgres"
	BackendLocal    = "local"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" toml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" toml:"mode" env:"SERVER_MODE"`
	} `yaml:"server" toml:"server"`

	Database struct {
		Host            string `yaml:"host" toml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" toml:"port" env:"DB_PORT"`
		User            string `yaml:"user" toml:"user" env:"DB_USER"`
		Password        string `yaml:"password" toml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" toml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" toml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" toml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" toml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" toml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		ConnectTimeout  string `yaml:"connect_timeout" toml:"connect_timeout" env:"DB_CONNECT_TIMEOUT"`
	} `yaml:"database" toml:"database"`

	Storage struct {
		// Backend is auto, postgres or local. auto falls back to the local
		// record store when PostgreSQL cannot be reached at startup.
		Backend string `yaml:"backend" toml:"backend" env:"STORAGE_BACKEND"`
		DataDir string `yaml:"data_dir" toml:"data_dir" env:"STORAGE_DATA_DIR"`
	} `yaml:"storage" toml:"storage"`

	JWT struct {
		Secret                string `yaml:"secret" toml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" toml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		ResetTokenExpiration  string `yaml:"reset_token_expiration" toml:"reset_token_expiration" env:"JWT_RESET_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" toml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt" toml:"jwt"`

	Logging struct {
		Level      string `yaml:"level" toml:"level" env:"LOG_LEVEL"`
		Format     string `yaml:"format" toml:"format" env:"LOG_FORMAT"`
		File       string `yaml:"file" toml:"file" env:"LOG_FILE"`
		MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb" env:"LOG_MAX_SIZE_MB"`
		MaxBackups int    `yaml:"max_backups" toml:"max_backups" env:"LOG_MAX_BACKUPS"`
		MaxAgeDays int    `yaml:"max_age_days" toml:"max_age_days" env:"LOG_MAX_AGE_DAYS"`
		Compress   bool   `yaml:"compress" toml:"compress" env:"LOG_COMPRESS"`
	} `yaml:"logging" toml:"logging"`

	Admin struct {
		Username string `yaml:"username" toml:"username" env:"ADMIN_USERNAME"`
		Password string `yaml:"password" toml:"password" env:"ADMIN_PASSWORD"`
		Name     string `yaml:"name" toml:"name" env:"ADMIN_NAME"`
	} `yaml:"admin" toml:"admin"`
}

// LoadConfig loads configuration from a file and environment variables.
// Files ending in .toml are decoded as TOML, anything else as YAML. A
// missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := decodeFile(configPath, file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func decodeFile(path string, data []byte, config *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, config)
	default:
		return yaml.Unmarshal(data, config)
	}
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "studyhub"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.ConnectTimeout = "5s"

	config.Storage.Backend = BackendAuto
	config.Storage.DataDir = "data"

	config.JWT.AccessTokenExpiration = "24h"
	config.JWT.ResetTokenExpiration = "10m"
	config.JWT.Issuer = "studyhub"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.MaxSizeMB = 50
	config.Logging.MaxBackups = 5
	config.Logging.MaxAgeDays = 30
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Storage.Backend {
	case BackendAuto, BackendPostgres, BackendLocal:
	default:
		return fmt.Errorf("storage backend must be one of auto, postgres, local; got %q", config.Storage.Backend)
	}

	if config.Storage.Backend != BackendPostgres && config.Storage.DataDir == "" {
		return fmt.Errorf("storage data_dir is required for the %s backend", config.Storage.Backend)
	}

	if config.Storage.Backend != BackendLocal {
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid database connection max lifetime: %w", err)
		}
		if _, err := time.ParseDuration(config.Database.ConnectTimeout); err != nil {
			return fmt.Errorf("invalid database connect timeout: %w", err)
		}
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.JWT.ResetTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT reset token expiration format: %w", err)
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
