package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Config holds settings for the AWS SDK backed object storage driver.
type S3Config struct {
	Region       string
	Bucket       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// StorageConfig selects the object storage driver ("minio" or "s3").
type StorageConfig struct {
	Driver        string
	PresignExpiry time.Duration
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	Audience  string
}

// KMSConfig selects how the optional broker API key is encrypted at rest.
// Provider is one of "gcp", "local" or "none".
type KMSConfig struct {
	Provider        string
	ProjectID       string
	LocationID      string
	KeyRingID       string
	KeyID           string
	CredentialsFile string
	LocalKey        string
}

// IntakeConfig bounds what the submission endpoint accepts.
type IntakeConfig struct {
	MaxAttachmentBytes int64
	MaxFieldBytes      int64
	BodyLimitBytes     int
}

// RateLimitConfig bounds how many submissions a user may make per window.
type RateLimitConfig struct {
	MaxSubmissions int
	Window         time.Duration
}

// AMQPConfig holds RabbitMQ settings for submission events. An empty URL disables publishing.
type AMQPConfig struct {
	URL        string
	Exchange   string
	Queue      string
	RoutingKey string
}

// GeminiConfig holds settings for the optional trader analysis. An empty key disables it.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	Timezone  string
	Database  DatabaseConfig
	MinIO     MinIOConfig
	S3        S3Config
	Storage   StorageConfig
	Auth      AuthConfig
	KMS       KMSConfig
	Intake    IntakeConfig
	RateLimit RateLimitConfig
	AMQP      AMQPConfig
	Gemini    GeminiConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"), // default only for non-sensitive value
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		S3: S3Config{
			Region:       getEnv("S3_REGION", "us-east-1"),
			Bucket:       getEnv("S3_BUCKET", ""),
			BaseEndpoint: getEnv("S3_BASE_ENDPOINT", ""),
			AccessKey:    getEnv("S3_ACCESS_KEY", ""),
			SecretKey:    getEnv("S3_SECRET_KEY", ""),
			UsePathStyle: getEnvBool("S3_USE_PATH_STYLE", true),
		},
		Storage: StorageConfig{
			Driver:        getEnv("STORAGE_DRIVER", "minio"),
			PresignExpiry: getEnvDuration("STORAGE_PRESIGN_EXPIRY", 15*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			Issuer:    getEnv("JWT_ISSUER", ""),
			Audience:  getEnv("JWT_AUDIENCE", ""),
		},
		KMS: KMSConfig{
			Provider:        getEnv("KMS_PROVIDER", "gcp"),
			ProjectID:       getEnv("KMS_PROJECT_ID", "findtrader-india"),
			LocationID:      getEnv("KMS_LOCATION_ID", "global"),
			KeyRingID:       getEnv("KMS_KEY_RING_ID", "trader-keys"),
			KeyID:           getEnv("KMS_KEY_ID", "broker-api-key"),
			CredentialsFile: getEnv("KMS_CREDENTIALS_FILE", ""),
			LocalKey:        getEnv("KMS_LOCAL_KEY", ""),
		},
		Intake: IntakeConfig{
			MaxAttachmentBytes: getEnvInt64("INTAKE_MAX_ATTACHMENT_BYTES", 10<<20),
			MaxFieldBytes:      getEnvInt64("INTAKE_MAX_FIELD_BYTES", 64<<10),
			BodyLimitBytes:     getEnvInt("INTAKE_BODY_LIMIT_BYTES", 12<<20),
		},
		RateLimit: RateLimitConfig{
			MaxSubmissions: getEnvInt("SUBMISSION_DAILY_LIMIT", 3),
			Window:         getEnvDuration("SUBMISSION_WINDOW", 24*time.Hour),
		},
		AMQP: AMQPConfig{
			URL:        getEnv("AMQP_URL", ""),
			Exchange:   getEnv("AMQP_EXCHANGE", "findtrader"),
			Queue:      getEnv("AMQP_QUEUE", "admin-notifications"),
			RoutingKey: getEnv("AMQP_ROUTING_KEY", "submission.created"),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
