package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL   string
	RedisURL      string
	BaseURL       string // Public base URL the scan endpoint is served from
	ContentAPIURL string // Content service endpoint for resolving content refs

	StorageBackend string // "fs" or "s3"
	AssetDir       string // Filesystem backend: directory QR assets are written to
	AssetBaseURL   string // Filesystem backend: public base URL for AssetDir

	S3Bucket    string
	S3Region    string
	S3Endpoint  string // Optional custom endpoint (R2, MinIO)
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string // Public base URL for objects in S3Bucket

	AdminEmail        string
	AdminPasswordHash string // bcrypt hash of the admin password
	JWTSecret         string
	JWTTTL            int // JWT token expiration time in hours

	QRSize    int    // Default QR pixel size
	QRShape   string // Default shape variant ("standard", "rounded")
	QRFgColor string // Hex foreground color
	QRBgColor string // Hex background color

	RateLimitRPS         float64 // General admin API rate limit (requests per second)
	RateLimitBurst       int
	RateLimitAuthRPS     float64 // Stricter limit for login attempts
	RateLimitAuthBurst   int
	RateLimitCreateRPS   float64 // Stricter limit for link creation
	RateLimitCreateBurst int

	Env string // "development" or "production"
}

func Load() *Config {
	// Try to load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return &Config{
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisURL:      getEnv("REDIS_URL", ""),
		BaseURL:       getEnv("BASE_URL", "http://localhost:8080"),
		ContentAPIURL: getEnv("CONTENT_API_URL", ""),

		StorageBackend: getEnv("STORAGE_BACKEND", "fs"),
		AssetDir:       getEnv("ASSET_DIR", "assets/qr"),
		AssetBaseURL:   getEnv("ASSET_BASE_URL", "http://localhost:8080/assets/qr"),

		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3Region:    getEnv("S3_REGION", "auto"),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3PublicURL: getEnv("S3_PUBLIC_URL", ""),

		AdminEmail:        getEnv("ADMIN_EMAIL", ""),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTTTL:            getEnvInt("JWT_TTL_HOURS", 24),

		QRSize:    getEnvInt("QR_SIZE", 256),
		QRShape:   getEnv("QR_SHAPE", "standard"),
		QRFgColor: getEnv("QR_FG_COLOR", "#000000"),
		QRBgColor: getEnv("QR_BG_COLOR", "#ffffff"),

		RateLimitRPS:         getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:       getEnvInt("RATE_LIMIT_BURST", 20),
		RateLimitAuthRPS:     getEnvFloat("RATE_LIMIT_AUTH_RPS", 5),
		RateLimitAuthBurst:   getEnvInt("RATE_LIMIT_AUTH_BURST", 10),
		RateLimitCreateRPS:   getEnvFloat("RATE_LIMIT_CREATE_RPS", 2),
		RateLimitCreateBurst: getEnvInt("RATE_LIMIT_CREATE_BURST", 5),

		Env: getEnv("APP_ENV", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
