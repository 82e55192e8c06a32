package config

import (
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string

	KnowledgeBaseID  string
	DataSourceID     string
	GuardrailID      string
	GuardrailVersion string
	ModelARN         string

	DownloadTimeout   time.Duration
	FetchConcurrency  int
	MaxPDFsPerBatch   int
	DefaultMaxResults int

	Port     string
	LogFile  string
	LogLevel slog.Level
}

// LoadConfig loads the environment variables and returns the config.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-1"),
		BucketName:   getEnv("S3_KNOWLEDGE_BASE_BUCKET", ""),

		KnowledgeBaseID:  getEnv("BEDROCK_KNOWLEDGE_BASE_ID", ""),
		DataSourceID:     getEnv("BEDROCK_DATA_SOURCE_ID", ""),
		GuardrailID:      getEnv("BEDROCK_GUARDRAIL_ID", ""),
		GuardrailVersion: getEnv("BEDROCK_GUARDRAIL_VERSION", "1"),
		ModelARN:         getEnv("BEDROCK_PRIMARY_MODEL", "amazon.nova-pro-v1:0"),

		DownloadTimeout:   getEnvDuration("PDF_DOWNLOAD_TIMEOUT", 60*time.Second),
		FetchConcurrency:  getEnvInt("FETCH_CONCURRENCY", 3),
		MaxPDFsPerBatch:   getEnvInt("MAX_PDFS_PER_BATCH", 50),
		DefaultMaxResults: getEnvInt("DEFAULT_MAX_RESULTS", 5),

		Port:     getEnv("PORT", "8080"),
		LogFile:  getEnv("LOG_FILE", ""),
		LogLevel: parseLogLevel(getEnv("LOG_LEVEL", "INFO")),
	}

	if cfg.BucketName == "" {
		log.Fatal("S3_KNOWLEDGE_BASE_BUCKET not set")
	}
	if cfg.KnowledgeBaseID == "" {
		log.Fatal("BEDROCK_KNOWLEDGE_BASE_ID not set")
	}
	if cfg.DataSourceID == "" {
		log.Fatal("BEDROCK_DATA_SOURCE_ID not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	// Accept either a Go duration ("90s") or a bare number of seconds.
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	log.Printf("WARN: %s=%q not a duration, using default %s", key, v, def)
	return def
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
