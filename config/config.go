package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port    string
	LogMode string

	DBDriver   string // postgres, mysql, sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	JWTKey      string
	JWTTTLHours int
	SaltRound   int

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CacheTTLSeconds int

	StorageProvider string // local, cloudinary, oss, gcs
	MediaRoot       string
	MediaURL        string
	MaxUploadMB     int

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	OSSEndpoint        string
	OSSAccessKeyID     string
	OSSAccessKeySecret string
	OSSBucket          string

	GCSBucket          string
	GCSCredentialsFile string

	EmailProvider  string // smtp, sendgrid, console
	EmailSender    string
	Password       string // SMTP Password
	SMTPHost       string
	SMTPPort       string
	SendgridAPIKey string

	TaskWorkers      int
	ChatHistoryLimit int
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:    getEnv("PORT", "3000"),
		LogMode: getEnv("LOG_MODE", "development"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "elearn"),
		DBPort:     getEnv("DB_PORT", "5432"),

		JWTKey:      getEnv("JWT_SECRET_KEY", "defaultSecret"),
		JWTTTLHours: getEnvInt("JWT_TTL_HOURS", 24),
		SaltRound:   getEnvInt("SALT_ROUND", 10),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		CacheTTLSeconds: getEnvInt("CACHE_TTL_SECONDS", 3600),

		StorageProvider: getEnv("STORAGE_PROVIDER", "local"),
		MediaRoot:       getEnv("MEDIA_ROOT", "./uploads"),
		MediaURL:        getEnv("MEDIA_URL", "/uploads"),
		MaxUploadMB:     getEnvInt("MAX_UPLOAD_MB", 100),

		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		OSSEndpoint:        getEnv("OSS_ENDPOINT", ""),
		OSSAccessKeyID:     getEnv("OSS_ACCESS_KEY_ID", ""),
		OSSAccessKeySecret: getEnv("OSS_ACCESS_KEY_SECRET", ""),
		OSSBucket:          getEnv("OSS_BUCKET", ""),

		GCSBucket:          getEnv("GCS_BUCKET", ""),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),

		EmailProvider:  getEnv("EMAIL_PROVIDER", "console"),
		EmailSender:    getEnv("EMAIL_SENDER", "noreply@elearn.local"),
		Password:       getEnv("EMAIL_PASSWORD", ""),
		SMTPHost:       getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SendgridAPIKey: getEnv("SENDGRID_API_KEY", ""),

		TaskWorkers:      getEnvInt("TASK_WORKERS", 4),
		ChatHistoryLimit: getEnvInt("CHAT_HISTORY_LIMIT", 20),
	}

	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
}

// Default returns a configuration suitable for local runs and tests, without touching the environment.
func Default() *Config {
	return &Config{
		Port:             "3000",
		LogMode:          "development",
		DBDriver:         "sqlite",
		DBName:           "file::memory:?cache=shared",
		JWTKey:           "defaultSecret",
		JWTTTLHours:      24,
		SaltRound:        4,
		CacheTTLSeconds:  3600,
		StorageProvider:  "local",
		MediaRoot:        os.TempDir(),
		MediaURL:         "/uploads",
		MaxUploadMB:      100,
		EmailProvider:    "console",
		EmailSender:      "noreply@elearn.local",
		TaskWorkers:      1,
		ChatHistoryLimit: 20,
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
