package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP  HTTPConfig  `yaml:"http"`
	FAQ   FAQConfig   `yaml:"faq"`
	Media MediaConfig `yaml:"media"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string        `yaml:"address"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
}

// FAQConfig controls the knowledge-base service and its storage backends.
type FAQConfig struct {
	CacheTTL time.Duration  `yaml:"cacheTtl"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Mongo    MongoConfig    `yaml:"mongo"`
}

// RedisConfig contains connection information for cache storage.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// MongoConfig selects the document store backend when URI is set.
type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// MediaConfig controls answer image uploads.
type MediaConfig struct {
	MaxBytes      int64    `yaml:"maxBytes"`
	PublicBaseURL string   `yaml:"publicBaseUrl"`
	S3            S3Config `yaml:"s3"`
}

// S3Config points at an S3-compatible bucket. Empty endpoint keeps images in memory.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Address = ":" + strings.TrimPrefix(v, ":")
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("FAQ_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.FAQ.CacheTTL = parsed
		}
	}
	if v := os.Getenv("FAQ_REDIS_ENABLED"); v != "" {
		cfg.FAQ.Redis.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("FAQ_REDIS_ADDR"); v != "" {
		cfg.FAQ.Redis.Addr = v
	}
	if v := os.Getenv("FAQ_POSTGRES_DSN"); v != "" {
		cfg.FAQ.Postgres.DSN = v
	}
	if v := os.Getenv("FAQ_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.FAQ.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("FAQ_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.FAQ.Postgres.MinConns = int32(parsed)
		}
	}
	// MONGO_URL is accepted as a connection-string alias only. The database
	// comes from faq.mongo.database, and records need string _id values.
	if v := os.Getenv("MONGO_URL"); v != "" {
		cfg.FAQ.Mongo.URI = v
	}
	if v := os.Getenv("FAQ_MONGO_URI"); v != "" {
		cfg.FAQ.Mongo.URI = v
	}
	if v := os.Getenv("FAQ_MONGO_DATABASE"); v != "" {
		cfg.FAQ.Mongo.Database = v
	}
	if v := os.Getenv("FAQ_MONGO_COLLECTION"); v != "" {
		cfg.FAQ.Mongo.Collection = v
	}
	if v := os.Getenv("MEDIA_MAX_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Media.MaxBytes = parsed
		}
	}
	if v := os.Getenv("MEDIA_PUBLIC_BASE_URL"); v != "" {
		cfg.Media.PublicBaseURL = v
	}
	if v := os.Getenv("MEDIA_S3_ENDPOINT"); v != "" {
		cfg.Media.S3.Endpoint = v
	}
	if v := os.Getenv("MEDIA_S3_ACCESS_KEY"); v != "" {
		cfg.Media.S3.AccessKey = v
	}
	if v := os.Getenv("MEDIA_S3_SECRET_KEY"); v != "" {
		cfg.Media.S3.SecretKey = v
	}
	if v := os.Getenv("MEDIA_S3_BUCKET"); v != "" {
		cfg.Media.S3.Bucket = v
	}
	if v := os.Getenv("MEDIA_S3_REGION"); v != "" {
		cfg.Media.S3.Region = v
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":5000",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		FAQ: FAQConfig{
			CacheTTL: 5 * time.Minute,
			Redis: RedisConfig{
				Enabled: false,
				Prefix:  "faq",
			},
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
			Mongo: MongoConfig{
				Database:   "faq",
				Collection: "questions",
			},
		},
		Media: MediaConfig{
			MaxBytes:      5 << 20,
			PublicBaseURL: "/api/queries/images",
			S3: S3Config{
				Bucket: "faq-media",
				Region: "auto",
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.FAQ.CacheTTL < 0 {
		return errors.New("faq.cacheTtl cannot be negative")
	}
	if c.FAQ.Redis.Enabled && strings.TrimSpace(c.FAQ.Redis.Addr) == "" {
		return errors.New("faq.redis.addr cannot be empty when redis cache is enabled")
	}
	if c.FAQ.Postgres.MinConns < 0 || c.FAQ.Postgres.MaxConns < 0 {
		return errors.New("faq.postgres connection limits cannot be negative")
	}
	if strings.TrimSpace(c.FAQ.Mongo.URI) != "" {
		if strings.TrimSpace(c.FAQ.Mongo.Database) == "" {
			return errors.New("faq.mongo.database cannot be empty when mongo is configured")
		}
		if strings.TrimSpace(c.FAQ.Mongo.Collection) == "" {
			return errors.New("faq.mongo.collection cannot be empty when mongo is configured")
		}
	}
	if c.Media.MaxBytes <= 0 {
		return errors.New("media.maxBytes must be positive")
	}
	if strings.TrimSpace(c.Media.S3.Endpoint) != "" && strings.TrimSpace(c.Media.S3.Bucket) == "" {
		return errors.New("media.s3.bucket cannot be empty when s3 storage is configured")
	}
	return nil
}
