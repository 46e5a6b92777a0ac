package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr                   string
	CORSAllowedOrigins         []string
	JWTSecret                  string
	DBDriver                   string
	DBHost                     string
	DBPort                     string
	DBUser                     string
	DBPass                     string
	DBName                     string
	SQLitePath                 string
	RedisHost                  string
	RedisPort                  string
	RedisPassword              string
	RedisDB                    int
	StorageDriver              string
	MinioHost                  string
	MinioPort                  string
	MinioUsername              string
	MinioPassword              string
	MinioUseSSL                bool
	BucketName                 string
	CDNBaseURL                 string
	RabbitMQURL                string
	RabbitMQHost               string
	RabbitMQPort               string
	RabbitMQUser               string
	RabbitMQPass               string
	RabbitMQVhost              string
	RabbitMQPrefetch           int
	ReconcileWorkerConcurrency int
	ReconcileRate              float64
	ReconcileBurst             int
	ReconcileRetryMax          int
	ReconcileRetryDelays       []time.Duration
	ReconcileStaleAfter        time.Duration
	LogLevel                   string
	LogFile                    string
	LogJSON                    bool
}

var AppConfig Config

// getEnv returns the environment value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if value == "" {
		return defaultValue
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvList splits a comma separated value, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvDurationList(key string, defaultValue []time.Duration) []time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	out := make([]time.Duration, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		parsed, err := time.ParseDuration(part)
		if err != nil {
			return defaultValue
		}
		out = append(out, parsed)
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// InitConfig loads configuration and initializes sub-configs.
func InitConfig() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	rabbitHost := getEnv("RABBITMQ_HOST", "localhost")
	rabbitPort := getEnv("RABBITMQ_PORT", "5672")
	rabbitUser := getEnv("RABBITMQ_USER", "guest")
	rabbitPass := getEnv("RABBITMQ_PASSWORD", "guest")
	rabbitVhost := getEnv("RABBITMQ_VHOST", "/")
	rabbitURL := getEnv("RABBITMQ_URL", "")
	if rabbitURL == "" {
		rabbitURL = fmt.Sprintf(
			"amqp://%s:%s@%s:%s/%s",
			url.PathEscape(rabbitUser),
			url.PathEscape(rabbitPass),
			rabbitHost,
			rabbitPort,
			url.PathEscape(rabbitVhost),
		)
	}
	minioHost := getEnv("MINIO_HOST", "localhost")
	minioPort := getEnv("MINIO_PORT", "9000")
	minioSSL := getEnvBool("MINIO_USE_SSL", false)
	bucket := getEnv("BUCKET_NAME", "site-media")
	cdnBase := getEnv("CDN_BASE_URL", "")
	if cdnBase == "" {
		scheme := "http"
		if minioSSL {
			scheme = "https"
		}
		cdnBase = fmt.Sprintf("%s://%s:%s/%s", scheme, minioHost, minioPort, bucket)
	}
	retryDelays := getEnvDurationList(
		"RECONCILE_RETRY_DELAYS",
		[]time.Duration{10 * time.Second, 30 * time.Second, 2 * time.Minute, 10 * time.Minute, 30 * time.Minute},
	)
	AppConfig = Config{
		HTTPAddr:                   getEnv("HTTP_ADDR", ":8000"),
		CORSAllowedOrigins:         getEnvList("CORS_ALLOWED_ORIGINS"),
		JWTSecret:                  getEnv("JWT_SECRET", "change-me"),
		DBDriver:                   strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DBHost:                     getEnv("DB_HOST", "localhost"),
		DBPort:                     getEnv("DB_PORT", "3306"),
		DBUser:                     getEnv("DB_USER", "root"),
		DBPass:                     getEnv("DB_PASS", "root"),
		DBName:                     getEnv("DB_NAME", "Go_Site"),
		SQLitePath:                 getEnv("SQLITE_PATH", "site.db"),
		RedisHost:                  getEnv("REDIS_HOST", ""),
		RedisPort:                  getEnv("REDIS_PORT", "6379"),
		RedisPassword:              getEnv("REDIS_PASSWORD", ""),
		RedisDB:                    getEnvInt("REDIS_DB", 0),
		StorageDriver:              strings.ToLower(getEnv("STORAGE_DRIVER", "minio")),
		MinioHost:                  minioHost,
		MinioPort:                  minioPort,
		MinioUsername:              getEnv("MINIO_USERNAME", "minioadmin"),
		MinioPassword:              getEnv("MINIO_PASSWORD", "minioadmin"),
		MinioUseSSL:                minioSSL,
		BucketName:                 bucket,
		CDNBaseURL:                 strings.TrimRight(cdnBase, "/"),
		RabbitMQURL:                rabbitURL,
		RabbitMQHost:               rabbitHost,
		RabbitMQPort:               rabbitPort,
		RabbitMQUser:               rabbitUser,
		RabbitMQPass:               rabbitPass,
		RabbitMQVhost:              rabbitVhost,
		RabbitMQPrefetch:           getEnvInt("RABBITMQ_PREFETCH", 8),
		ReconcileWorkerConcurrency: getEnvInt("RECONCILE_WORKER_CONCURRENCY", 2),
		ReconcileRate:              getEnvFloat("RECONCILE_RATE", 2),
		ReconcileBurst:             getEnvInt("RECONCILE_BURST", 4),
		ReconcileRetryMax:          getEnvInt("RECONCILE_RETRY_MAX", 5),
		ReconcileRetryDelays:       retryDelays,
		ReconcileStaleAfter:        getEnvDuration("RECONCILE_STALE_AFTER", 10*time.Minute),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		LogFile:                    getEnv("LOG_FILE", ""),
		LogJSON:                    getEnvBool("LOG_JSON", false),
	}

	InitMediaConfig()
}

// RedisEnabled reports whether a Redis host has been configured.
func (c Config) RedisEnabled() bool {
	return strings.TrimSpace(c.RedisHost) != ""
}
