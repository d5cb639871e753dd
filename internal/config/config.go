package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Agents   AgentsConfig
	Credits  CreditsConfig
	Payment  PaymentConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

// AgentsConfig points at the AI agents service (safety, scoring, generation).
type AgentsConfig struct {
	BaseURL        string
	AnalyzeTimeout time.Duration
	ImageTimeout   time.Duration
	VideoTimeout   time.Duration
	SafetyTimeout  time.Duration
}

type CreditsConfig struct {
	ImageCost     int
	VideoCost     int
	SignupCredits int
	MaxCASRetries int
}

type PaymentConfig struct {
	MidtransServerKey    string
	MidtransIsProduction bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "FunWriting"),
		},
		Agents: AgentsConfig{
			BaseURL:        getEnv("AGENTS_BASE_URL", "http://localhost:8080"),
			AnalyzeTimeout: getEnvAsDuration("AGENTS_ANALYZE_TIMEOUT", 90*time.Second),
			ImageTimeout:   getEnvAsDuration("AGENTS_IMAGE_TIMEOUT", 2*time.Minute),
			VideoTimeout:   getEnvAsDuration("AGENTS_VIDEO_TIMEOUT", 10*time.Minute),
			SafetyTimeout:  getEnvAsDuration("AGENTS_SAFETY_TIMEOUT", 30*time.Second),
		},
		Credits: CreditsConfig{
			ImageCost:     getEnvAsInt("CREDITS_IMAGE_COST", 100),
			VideoCost:     getEnvAsInt("CREDITS_VIDEO_COST", 500),
			SignupCredits: getEnvAsInt("CREDITS_SIGNUP_GRANT", 300),
			MaxCASRetries: getEnvAsInt("CREDITS_MAX_CAS_RETRIES", 5),
		},
		Payment: PaymentConfig{
			MidtransServerKey:    getEnv("MIDTRANS_SERVER_KEY", ""),
			MidtransIsProduction: getEnv("MIDTRANS_IS_PRODUCTION", "false") == "true",
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
