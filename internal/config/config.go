package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServiceName string          `mapstructure:"service_name"`
	Gateway     GatewayConfig   `mapstructure:"gateway"`
	Mongo       MongoConfig     `mapstructure:"mongo"`
	MinIO       MinIOConfig     `mapstructure:"minio"`
	Storage     StorageConfig   `mapstructure:"storage"`
	Redis       RedisConfig     `mapstructure:"redis"`
	NATS        NATSConfig      `mapstructure:"nats"`
	Auth        AuthConfig      `mapstructure:"auth"`
	Listing     ListingConfig   `mapstructure:"listing"`
	Sweeper     SweeperConfig   `mapstructure:"sweeper"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

// GatewayConfig selects the data gateway: "mongodb" or "memory".
type GatewayConfig struct {
	Driver string `mapstructure:"driver"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// StorageConfig shapes object paths: <root>/<image_prefix>/<owner>/<container>/<file>.
type StorageConfig struct {
	Root          string        `mapstructure:"root"`
	ImagePrefix   string        `mapstructure:"image_prefix"`
	MaxImageBytes int64         `mapstructure:"max_image_bytes"`
	AllowedTypes  []string      `mapstructure:"allowed_types"`
	SignedURLTTL  time.Duration `mapstructure:"signed_url_ttl"`
	// StepRetries is how many times a failed put, copy or delete is retried.
	StepRetries   int           `mapstructure:"step_retries"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type ListingConfig struct {
	DefaultNoticePeriod int `mapstructure:"default_notice_period"`
	DefaultPageSize     int `mapstructure:"default_page_size"`
	UploadWorkers       int `mapstructure:"upload_workers"`
	// CacheTTL bounds how long a single listing is served from Redis. Zero disables the cache.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type SweeperConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	TempTTL  time.Duration `mapstructure:"temp_ttl"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	MetricsPort  string `mapstructure:"metrics_port"`
}

// Load reads configuration from an optional .env file, an optional config file
// and RENTAL_* environment variables (RENTAL_MINIO_BUCKET, RENTAL_AUTH_JWT_SECRET, ...).
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("RENTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "rental-listing")

	v.SetDefault("gateway.driver", "mongodb")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "rental")
	v.SetDefault("mongo.connect_timeout", "10s")

	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.access_key", "minioadmin")
	v.SetDefault("minio.secret_key", "minioadmin")
	v.SetDefault("minio.bucket", "listing-images")
	v.SetDefault("minio.use_ssl", false)

	v.SetDefault("storage.root", "public")
	v.SetDefault("storage.image_prefix", "listing-images")
	v.SetDefault("storage.max_image_bytes", 5*1024*1024)
	v.SetDefault("storage.allowed_types", []string{"image/jpeg", "image/png", "image/webp", "image/gif"})
	v.SetDefault("storage.signed_url_ttl", "1h")
	v.SetDefault("storage.step_retries", 2)
	v.SetDefault("storage.retry_interval", "200ms")

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.connect_timeout", "5s")

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("listing.default_notice_period", 30)
	v.SetDefault("listing.default_page_size", 20)
	v.SetDefault("listing.upload_workers", 4)
	v.SetDefault("listing.cache_ttl", "0s")

	v.SetDefault("sweeper.interval", "15m")
	v.SetDefault("sweeper.temp_ttl", "24h")

	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.metrics_port", "9094")
}

func (c *Config) Validate() error {
	switch c.Gateway.Driver {
	case "mongodb":
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return fmt.Errorf("config: mongo uri and database are required")
		}
	case "memory":
	default:
		return fmt.Errorf("config: unknown gateway driver %q", c.Gateway.Driver)
	}
	if c.MinIO.Bucket == "" {
		return fmt.Errorf("config: minio bucket is required")
	}
	if c.Storage.MaxImageBytes <= 0 {
		return fmt.Errorf("config: storage.max_image_bytes must be positive")
	}
	if c.Storage.StepRetries < 0 {
		return fmt.Errorf("config: storage.step_retries must not be negative")
	}
	if c.Listing.UploadWorkers <= 0 {
		c.Listing.UploadWorkers = 1
	}
	if c.Auth.JWTSecret == "" {
		log.Println("Warning: auth.jwt_secret is empty; bearer tokens cannot be verified")
	}
	return nil
}
