// internal/pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingRequiredConfig = errors.New("missing required configuration")
	ErrInvalidConfig         = errors.New("invalid configuration")
)

// Config holds all application configuration
type Config struct {
	// Application
	App AppConfig

	// Remote REST API
	API APIConfig

	// Dashboard behaviour
	Dashboard DashboardConfig

	// Redis list cache
	Redis RedisConfig

	// Export storage
	Storage StorageConfig

	// Secrets
	Secrets SecretsConfig

	// Metrics
	Metrics MetricsConfig
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Version     string
	LogLevel    string
	LogFormat   string // json, text
	LogSampling float64
	Debug       bool
}

// APIConfig describes the backend the dashboard talks to
type APIConfig struct {
	BaseURL       string `required:"true"`
	InventoryPath string `required:"true"`
	SuppliersPath string `required:"true"`
	LoginPath     string
	CSRFPath      string
	CSRFHeader    string
	Username      string
	Password      string
	Timeout       time.Duration
	RateLimit     float64 // requests per second
	RateBurst     int
	RetryMax      int // retries for idempotent list calls
}

// DashboardConfig holds view and bulk action settings
type DashboardConfig struct {
	PageSize        int
	BulkPolicy      string // per_item, all_or_nothing
	BulkConcurrency int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         string
	Password     string
	DB           int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	TTL          time.Duration
}

// StorageConfig selects where exports are uploaded
type StorageConfig struct {
	Provider        string // local, s3
	LocalDir        string
	Region          string
	Bucket          string
	Endpoint        string // For MinIO in development
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	PresignExpiry   time.Duration
}

// SecretsConfig selects where API credentials are resolved from
type SecretsConfig struct {
	Provider   string // env, aws
	SecretName string
	Region     string
	CacheTTL   time.Duration
}

// MetricsConfig configures the Prometheus endpoint used by long-running commands
type MetricsConfig struct {
	Enabled   bool
	Addr      string
	Namespace string
}

// Load loads configuration from the environment, an optional config file and bound flags
func Load(logger *slog.Logger) (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Load .env file in development
	if env == "development" || env == "local" {
		if err := godotenv.Load(); err != nil {
			logger.Debug("no .env file found, using environment variables",
				slog.String("error", err.Error()))
		} else {
			logger.Info(".env file loaded successfully")
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	setDefaults()

	if file := viper.GetString("CONFIG_FILE"); file != "" {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
		logger.Info("config file loaded", slog.String("file", file))
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "resell-dashboard"),
			Environment: env,
			Version:     getEnv("APP_VERSION", "dev"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "text"),
			LogSampling: getFloatEnv("LOG_SAMPLE_RATE", 0),
			Debug:       getBoolEnv("APP_DEBUG", env == "development"),
		},
		API: APIConfig{
			BaseURL:       getEnv("API_BASE_URL", "http://localhost:3000/api"),
			InventoryPath: getEnv("API_INVENTORY_PATH", "inventory"),
			SuppliersPath: getEnv("API_SUPPLIERS_PATH", "suppliers"),
			LoginPath:     getEnv("API_LOGIN_PATH", "auth/login"),
			CSRFPath:      getEnv("API_CSRF_PATH", "csrf-token"),
			CSRFHeader:    getEnv("API_CSRF_HEADER", "X-CSRF-Token"),
			Username:      getEnv("API_USERNAME", ""),
			Password:      getEnv("API_PASSWORD", ""),
			Timeout:       getDurationEnv("API_TIMEOUT", 15*time.Second),
			RateLimit:     getFloatEnv("API_RATE_LIMIT", 10),
			RateBurst:     getIntEnv("API_RATE_BURST", 5),
			RetryMax:      getIntEnv("API_RETRY_MAX", 2),
		},
		Dashboard: DashboardConfig{
			PageSize:        getIntEnv("DASHBOARD_PAGE_SIZE", 5),
			BulkPolicy:      getEnv("BULK_DELETE_POLICY", "per_item"),
			BulkConcurrency: getIntEnv("BULK_DELETE_CONCURRENCY", 4),
		},
		Redis: RedisConfig{
			Enabled:      getBoolEnv("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			MaxRetries:   getIntEnv("REDIS_MAX_RETRIES", 3),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			TTL:          getDurationEnv("CACHE_TTL", time.Minute),
		},
		Storage: StorageConfig{
			Provider:        getEnv("STORAGE_PROVIDER", "local"),
			LocalDir:        getEnv("STORAGE_LOCAL_DIR", "exports"),
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "resell-exports"),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			UsePathStyle:    getBoolEnv("AWS_S3_PATH_STYLE", env == "development"),
			PresignExpiry:   getDurationEnv("AWS_S3_PRESIGN_EXPIRY", 15*time.Minute),
		},
		Secrets: SecretsConfig{
			Provider:   getEnv("SECRETS_PROVIDER", "env"),
			SecretName: getEnv("AWS_SECRET_NAME", ""),
			Region:     getEnv("AWS_REGION", "us-east-1"),
			CacheTTL:   getDurationEnv("SECRETS_CACHE_TTL", 5*time.Minute),
		},
		Metrics: MetricsConfig{
			Enabled:   getBoolEnv("METRICS_ENABLED", true),
			Addr:      getEnv("METRICS_ADDR", ":9090"),
			Namespace: getEnv("METRICS_NAMESPACE", "dashboard"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate runs the basic validator, plus the production validator in production
func (c *Config) Validate() error {
	if err := (&BasicValidator{}).Validate(c); err != nil {
		return err
	}
	if c.IsProduction() {
		return (&ProductionValidator{}).Validate(c)
	}
	return nil
}

// ResourceURL joins the API base URL and a resource path.
func (c *Config) ResourceURL(path string) (*url.URL, error) {
	base, err := url.Parse(strings.TrimRight(c.API.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("%w: api base url: %v", ErrInvalidConfig, err)
	}
	return base.JoinPath(strings.Trim(path, "/")), nil
}

// GetRedisAddress returns the formatted Redis address
func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "local"
}

// Helper functions

func setDefaults() {
	viper.SetDefault("APP_NAME", "resell-dashboard")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("DASHBOARD_PAGE_SIZE", 5)
	viper.SetDefault("BULK_DELETE_POLICY", "per_item")
}

func getEnv(key, defaultValue string) string {
	if value := viper.GetString(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := viper.GetString(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := viper.GetString(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := viper.GetString(key); value != "" {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := viper.GetString(key); value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
