package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is not set.
const DefaultPath = "config.yaml"

// Config holds every runtime setting of the API server.
type Config struct {
	Env      string `yaml:"env"`
	Port     string `yaml:"port"`
	GinMode  string `yaml:"ginMode"`
	LogLevel string `yaml:"logLevel"`
	LogFile  string `yaml:"logFile"`

	Database DatabaseConfig `yaml:"database"`

	JWTSecret  string        `yaml:"jwtSecret"`
	TokenTTL   time.Duration `yaml:"tokenTTL"`
	CORSOrigin string        `yaml:"corsOrigin"`

	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	Storage StorageConfig `yaml:"storage"`

	AuthRateLimitRPS   float64 `yaml:"authRateLimitRps"`
	AuthRateLimitBurst int     `yaml:"authRateLimitBurst"`

	Timezone string `yaml:"timezone"`
}

// DatabaseConfig describes the database connection. The sqlite driver takes
// its file path from URL and is meant for local development.
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	Driver       string `yaml:"driver"` // pgx, postgres (lib/pq) or sqlite
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Name         string `yaml:"name"`
	SSLMode      string `yaml:"sslMode"`
	MaxOpenConns int    `yaml:"maxOpenConns"`
	MaxIdleConns int    `yaml:"maxIdleConns"`
}

// StorageConfig selects where uploaded documents are kept.
type StorageConfig struct {
	Backend        string `yaml:"backend"` // local or minio
	LocalPath      string `yaml:"localPath"`
	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`
	MaxUploadBytes int64  `yaml:"maxUploadBytes"`
}

// Load reads .env, then the optional YAML file at path, then environment
// overrides. Missing .env and YAML files are not errors.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	if path == "" {
		path = getEnv("CONFIG_PATH", DefaultPath)
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv copies environment overrides into cfg. Values that do not parse
// are reported together rather than replaced by defaults.
func applyEnv(cfg *Config) error {
	var errs []error
	setString(&cfg.Env, "ENV")
	setString(&cfg.Port, "PORT")
	setString(&cfg.GinMode, "GIN_MODE")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFile, "LOG_FILE")

	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.Host, "DB_HOST")
	errs = append(errs, setInt(&cfg.Database.Port, "DB_PORT"))
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")
	errs = append(errs,
		setInt(&cfg.Database.MaxOpenConns, "DB_MAX_OPEN_CONNS"),
		setInt(&cfg.Database.MaxIdleConns, "DB_MAX_IDLE_CONNS"),
	)

	setString(&cfg.JWTSecret, "JWT_SECRET")
	errs = append(errs, setParsed(&cfg.TokenTTL, "TOKEN_TTL", time.ParseDuration))
	setString(&cfg.CORSOrigin, "CORS_ORIGIN")

	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")

	setString(&cfg.Storage.Backend, "STORAGE_BACKEND")
	setString(&cfg.Storage.LocalPath, "STORAGE_PATH")
	setString(&cfg.Storage.MinioEndpoint, "MINIO_ENDPOINT")
	setString(&cfg.Storage.MinioAccessKey, "MINIO_ACCESS_KEY")
	setString(&cfg.Storage.MinioSecretKey, "MINIO_SECRET_KEY")
	setString(&cfg.Storage.MinioBucket, "MINIO_BUCKET")
	errs = append(errs,
		setParsed(&cfg.Storage.MinioUseSSL, "MINIO_USE_SSL", strconv.ParseBool),
		setParsed(&cfg.Storage.MaxUploadBytes, "MAX_UPLOAD_BYTES", func(s string) (int64, error) {
			return strconv.ParseInt(s, 10, 64)
		}),
		setParsed(&cfg.AuthRateLimitRPS, "AUTH_RATE_LIMIT_RPS", func(s string) (float64, error) {
			return strconv.ParseFloat(s, 64)
		}),
		setInt(&cfg.AuthRateLimitBurst, "AUTH_RATE_LIMIT_BURST"),
	)
	setString(&cfg.Timezone, "TIMEZONE")
	return errors.Join(errs...)
}

func applyDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = "local"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "INFO"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "pgx"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "http://localhost:3000"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "local"
	}
	if cfg.Storage.LocalPath == "" {
		cfg.Storage.LocalPath = "uploads"
	}
	if cfg.Storage.MinioBucket == "" {
		cfg.Storage.MinioBucket = "legal-documents"
	}
	if cfg.Storage.MaxUploadBytes <= 0 {
		cfg.Storage.MaxUploadBytes = 25 << 20
	}
	if cfg.AuthRateLimitRPS <= 0 {
		cfg.AuthRateLimitRPS = 5
	}
	if cfg.AuthRateLimitBurst <= 0 {
		cfg.AuthRateLimitBurst = 10
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if c.JWTSecret == "" && c.Env != "test" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Database.Driver {
	case "pgx", "postgres":
	case "sqlite":
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL must name the sqlite file")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Storage.Backend {
	case "local":
	case "minio":
		if c.Storage.MinioEndpoint == "" {
			return errors.New("MINIO_ENDPOINT is required for the minio storage backend")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.Storage.Backend)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

// Location returns the time zone used for calendar-day filters.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	return setParsed(dst, key, strconv.Atoi)
}

// setParsed overwrites dst with the parsed value of key when it is set.
func setParsed[T any](dst *T, key string, parse func(string) (T, error)) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	parsed, err := parse(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = parsed
	return nil
}
