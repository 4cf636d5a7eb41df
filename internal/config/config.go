package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	MongoURI       string
	JWTSecret      string
	JWTExpiry      string
	AllowedOrigins []string
	AppURL         string
	Redis          RedisConfig
	SMTP           SMTPConfig
}

type RedisConfig struct {
	URL          string
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	RetryDelay   time.Duration
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
}

type SMTPConfig struct {
	Host      string
	Port      string
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

func Load() *Config {
	// load .env variables, a missing file is fine in containers
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("MONGO_URI environment variable is not set")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173"
	}

	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:5173"
	}

	return &Config{
		Port:           port,
		MongoURI:       mongoURI,
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTExpiry:      os.Getenv("JWT_EXPIRY"),
		AllowedOrigins: strings.Split(allowedOrigins, ","),
		AppURL:         appURL,
		Redis:          loadRedisConfig(),
		SMTP: SMTPConfig{
			Host:      os.Getenv("SMTP_HOST"),
			Port:      getEnv("SMTP_PORT", "587"),
			Username:  os.Getenv("SMTP_USERNAME"),
			Password:  os.Getenv("SMTP_PASSWORD"),
			FromEmail: getEnv("SMTP_FROM_EMAIL", "noreply@rentwheels.local"),
			FromName:  getEnv("SMTP_FROM_NAME", "RentWheels"),
		},
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		URL:          os.Getenv("REDIS_URL"),
		Host:         getEnv("REDIS_HOST", "localhost"),
		Port:         getEnv("REDIS_PORT", "6379"),
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           getEnvInt("REDIS_DB", 0),
		PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
		MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
		MaxRetries:   getEnvInt("REDIS_MAX_RETRIES", 3),
		RetryDelay:   getEnvDuration("REDIS_RETRY_DELAY", 100*time.Millisecond),
		DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		PoolTimeout:  getEnvDuration("REDIS_POOL_TIMEOUT", 4*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
