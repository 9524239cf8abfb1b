// Package config loads service settings from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	awspkg "github.com/ixtiyorSaitov/e-commerce-admin/pkg/aws"
)

const (
	StoreMongo    = "mongo"
	StoreDynamoDB = "dynamodb"

	QueueRedis = "redis"
	QueueSQS   = "sqs"
)

// Config holds all environment variables for the admin service.
type Config struct {
	Port   string
	AppEnv string

	MongoURL string
	MongoDB  string

	StoreBackend       string
	DDBTableProducts   string
	DDBTableCategories string

	RedisURL        string
	RepairQueue     string
	RepairQueueName string

	SNSCatalogTopicArn      string
	SNSNotificationTopicArn string

	JWTSecret      string
	AllowedOrigins []string

	CacheTTL       time.Duration
	RequestTimeout time.Duration

	CloudWatchEnabled bool
	UseSecrets        bool
	AWS               awspkg.Options
}

// SecretGetter reads a named secret. *aws.SecretsClient satisfies it.
type SecretGetter interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Load reads .env (when present) and the process environment. Secrets
// Manager overrides are applied separately by ApplySecrets.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		AppEnv:                  getEnv("APP_ENV", "development"),
		MongoURL:                getEnv("MONGO_URL", "mongodb://localhost:27017"),
		MongoDB:                 getEnv("MONGO_DB", "ecommerce_admin"),
		StoreBackend:            strings.ToLower(getEnv("STORE_BACKEND", StoreMongo)),
		DDBTableProducts:        getEnv("DDB_TABLE_PRODUCTS", "Products"),
		DDBTableCategories:      getEnv("DDB_TABLE_CATEGORIES", "Categories"),
		RedisURL:                getEnv("REDIS_URL", "redis://localhost:6379"),
		RepairQueue:             strings.ToLower(getEnv("REPAIR_QUEUE", QueueRedis)),
		RepairQueueName:         getEnv("REPAIR_QUEUE_NAME", "catalog-backref-repair"),
		SNSCatalogTopicArn:      os.Getenv("SNS_CATALOG_TOPIC_ARN"),
		SNSNotificationTopicArn: os.Getenv("SNS_NOTIFICATION_TOPIC_ARN"),
		JWTSecret:               os.Getenv("JWT_SECRET"),
		AllowedOrigins:          splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		CloudWatchEnabled:       getEnv("CLOUDWATCH_ENABLED", "false") == "true",
		UseSecrets:              getEnv("AWS_USE_SECRETS", "false") == "true",
		AWS: awspkg.Options{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Endpoint:        os.Getenv("AWS_ENDPOINT"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
	}

	var err error
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplySecrets overrides JWT_SECRET and MONGO_URL from Secrets Manager.
// Secrets that cannot be read keep their environment values.
func (c *Config) ApplySecrets(ctx context.Context, sm SecretGetter) {
	if v, err := sm.GetSecret(ctx, "admin/JWT_SECRET"); err == nil && v != "" {
		c.JWTSecret = v
	}
	if v, err := sm.GetSecret(ctx, "admin/MONGO_URL"); err == nil && v != "" {
		c.MongoURL = v
	}
}

// Validate checks required fields and enumerations.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.StoreBackend {
	case StoreMongo, StoreDynamoDB:
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreMongo, StoreDynamoDB, c.StoreBackend))
	}
	switch c.RepairQueue {
	case QueueRedis, QueueSQS:
	default:
		errs = append(errs, fmt.Errorf("REPAIR_QUEUE must be %q or %q, got %q", QueueRedis, QueueSQS, c.RepairQueue))
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("PORT must be numeric, got %q", c.Port))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
