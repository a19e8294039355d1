package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type DB struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type MinIO struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the externally-resolvable base for stored objects,
	// e.g. "http://localhost:9000". Image URLs are built from it.
	PublicURL string
}

type Redis struct {
	Enabled bool
	Addr    string
	TTL     time.Duration
}

type Config struct {
	ServerPort    int
	DB            DB
	MinIO         MinIO
	Redis         Redis
	JWTSecretKey  string
	TokenDuration time.Duration
	MaxUploadSize int64
	DevLogging    bool
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

func LoadDB() DB {
	return DB{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "password"),
		Name:     getEnv("DB_NAME", "tradepost"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func LoadMinIO() MinIO {
	return MinIO{
		Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		Bucket:    getEnv("MINIO_BUCKET_NAME", "images"),
		UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		PublicURL: getEnv("MINIO_PUBLIC_URL", "http://localhost:9000"),
	}
}

func LoadRedis() Redis {
	return Redis{
		Enabled: getEnvBool("REDIS_ENABLED", false),
		Addr:    getEnv("REDIS_ADDR", "localhost:6379"),
		TTL:     getEnvAsDuration("REDIS_TTL", time.Hour),
	}
}

// LoadConfig assembles the whole process configuration once, at startup.
// Components receive it (or a section of it) through their constructors.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		ServerPort:    getEnvAsInt("SERVER_PORT", 8080),
		DB:            LoadDB(),
		MinIO:         LoadMinIO(),
		Redis:         LoadRedis(),
		JWTSecretKey:  getEnv("JWT_SECRET_KEY", ""),
		TokenDuration: getEnvAsDuration("TOKEN_DURATION", 2*time.Hour),
		MaxUploadSize: getEnvAsInt64("MAX_UPLOAD_SIZE", 10*1024*1024),
		DevLogging:    getEnvBool("DEV_LOGGING", false),
	}
}
