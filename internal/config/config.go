package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	Push Push

	PhrasesBucket    string // empty disables the S3 phrase pool
	PhrasesKey       string
	AlertTopicARN    string // empty disables SNS alerts
	MetricsNamespace string // empty disables CloudWatch metrics
	TriggerKeyHash   string // bcrypt hash guarding POST /v1/scheduler/run
	DeepLinkScheme   string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	Devices       string
	Notifications string
	Reminders     string
	Testimonies   string
}

// Push configures the push transport.
type Push struct {
	EndpointURL     string
	AccessToken     string
	BatchSize       int
	ChunksPerSecond float64
	Timeout         time.Duration
	MaxRetries      int
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Devices:       getEnv("DYNAMO_TABLE_DEVICES", "devices"),
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			Reminders:     getEnv("DYNAMO_TABLE_REMINDERS", "reminders"),
			Testimonies:   getEnv("DYNAMO_TABLE_TESTIMONIES", "testimonies"),
		},
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),
		Push: Push{
			EndpointURL:     getEnv("PUSH_ENDPOINT_URL", "https://exp.host/--/api/v2/push/send"),
			AccessToken:     getEnv("PUSH_ACCESS_TOKEN", ""),
			BatchSize:       getEnvInt("PUSH_BATCH_SIZE", 100),
			ChunksPerSecond: getEnvFloat("PUSH_CHUNKS_PER_SECOND", 5),
			Timeout:         getEnvDuration("PUSH_TIMEOUT", 15*time.Second),
			MaxRetries:      getEnvInt("PUSH_MAX_RETRIES", 2),
		},
		PhrasesBucket:    getEnv("PHRASES_S3_BUCKET", ""),
		PhrasesKey:       getEnv("PHRASES_S3_KEY", "reminders/phrases.json"),
		AlertTopicARN:    getEnv("ALERT_TOPIC_ARN", ""),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", ""),
		TriggerKeyHash:   getEnv("TRIGGER_KEY_HASH", ""),
		DeepLinkScheme:   getEnv("DEEP_LINK_SCHEME", "app"),
		AllowedOrigins:   strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("15s", "168h").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
