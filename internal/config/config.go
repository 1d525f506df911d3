package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jengzang/greenguardian-backend-go/internal/airquality"
	"github.com/jengzang/greenguardian-backend-go/internal/blob"
	"github.com/jengzang/greenguardian-backend-go/internal/kv"
	"gopkg.in/yaml.v3"
)

// Storage and auth backends
const (
	KVBackendSQLite = "sqlite"
	KVBackendRedis  = "redis"
	KVBackendMemory = "memory"

	BlobBackendLocal = "local"
	BlobBackendMinio = "minio"

	AuthJWT      = "jwt"
	AuthFirebase = "firebase"
	AuthNone     = "none"
)

// MinJWTSecretLen is the shortest accepted HS256 signing secret
const MinJWTSecretLen = 16

// legacyJWTSecret was once shipped as the default and is public
const legacyJWTSecret = "your-secret-key-change-in-production"

// FirebaseConfig holds the admin SDK settings for ID-token verification
type FirebaseConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Config is the application configuration
type Config struct {
	Port     string `yaml:"port"`
	DataDir  string `yaml:"data_dir"`
	DBPath   string `yaml:"db_path"`
	LogLevel string `yaml:"log_level"`

	KVBackend   string `yaml:"kv_backend"`
	BlobBackend string `yaml:"blob_backend"`
	Auth        string `yaml:"auth"`
	JWTSecret   string `yaml:"jwt_secret"`

	AirQualityURL     string        `yaml:"air_quality_url"`
	AirQualityTimeout time.Duration `yaml:"air_quality_timeout"`

	RateLimit      int   `yaml:"rate_limit"` // requests per minute per caller, 0 disables
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	Redis    kv.RedisConfig   `yaml:"redis"`
	Minio    blob.MinioConfig `yaml:"minio"`
	Firebase FirebaseConfig   `yaml:"firebase"`
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		Port:              ":8080",
		DataDir:           "./data",
		LogLevel:          "info",
		KVBackend:         KVBackendSQLite,
		BlobBackend:       BlobBackendLocal,
		Auth:              AuthJWT,
		AirQualityURL:     airquality.DefaultBaseURL,
		AirQualityTimeout: 10 * time.Second,
		RateLimit:         120,
		MaxUploadBytes:    20 << 20,
		Redis:             kv.RedisConfig{Addr: "localhost:6379", Prefix: "greenguardian:"},
		Minio:             blob.MinioConfig{Bucket: "greenguardian"},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "greenguardian.db")
	}
	if !strings.Contains(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.DataDir, "DATA_DIR")
	setString(&c.DBPath, "DB_PATH")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.KVBackend, "KV_BACKEND")
	setString(&c.BlobBackend, "BLOB_BACKEND")
	setString(&c.Auth, "AUTH_PROVIDER")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.AirQualityURL, "AIR_QUALITY_URL")

	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Redis.Prefix, "REDIS_PREFIX")

	setString(&c.Minio.Endpoint, "MINIO_ENDPOINT")
	setString(&c.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
	setString(&c.Minio.Bucket, "MINIO_BUCKET")
	setString(&c.Minio.Location, "MINIO_LOCATION")

	setString(&c.Firebase.ProjectID, "FIREBASE_PROJECT_ID")
	setString(&c.Firebase.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")

	if v := os.Getenv("AIR_QUALITY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid AIR_QUALITY_TIMEOUT: %w", err)
		}
		c.AirQualityTimeout = d
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT: %w", err)
		}
		c.RateLimit = n
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_UPLOAD_BYTES: %w", err)
		}
		c.MaxUploadBytes = n
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		c.Redis.DB = n
	}
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid MINIO_USE_SSL: %w", err)
		}
		c.Minio.Secure = b
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks backend names and the settings each backend requires
func (c *Config) Validate() error {
	switch c.KVBackend {
	case KVBackendSQLite, KVBackendMemory:
	case KVBackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis backend requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown kv backend %q", c.KVBackend)
	}

	switch c.BlobBackend {
	case BlobBackendLocal:
	case BlobBackendMinio:
		if c.Minio.Endpoint == "" || c.Minio.Bucket == "" {
			return fmt.Errorf("minio backend requires MINIO_ENDPOINT and MINIO_BUCKET")
		}
	default:
		return fmt.Errorf("unknown blob backend %q", c.BlobBackend)
	}

	switch c.Auth {
	case AuthJWT:
		if len(c.JWTSecret) < MinJWTSecretLen || c.JWTSecret == legacyJWTSecret {
			return fmt.Errorf("jwt auth requires JWT_SECRET of at least %d characters", MinJWTSecretLen)
		}
	case AuthFirebase, AuthNone:
	default:
		return fmt.Errorf("unknown auth provider %q", c.Auth)
	}

	if c.AirQualityTimeout <= 0 {
		return fmt.Errorf("air quality timeout must be positive")
	}
	return nil
}
