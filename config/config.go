package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server ServerConfig
	Mongo  MongoConfig
	Auth   AuthConfig
	Stripe StripeConfig
	Mail   MailConfig
	CORS   CORSConfig
}

type ServerConfig struct {
	Port string
	Env  string // development or production
}

type MongoConfig struct {
	URI      string
	Database string
}

type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
}

type StripeConfig struct {
	SecretKey string
}

type MailConfig struct {
	Provider      string // dev, smtp or mailersend
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	From          string
	FromName      string
	MailerSendKey string
}

type CORSConfig struct {
	Origins []string
}

func Load() *Config {
	env := getEnv("APP_ENV", "development")

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "9000"),
			Env:  env,
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_NAME", "tableTalkDb"),
		},
		Auth: AuthConfig{
			Secret:   getEnv("ACCESS_TOKEN_SECRET", ""),
			TokenTTL: getDuration("ACCESS_TOKEN_TTL", 365*24*time.Hour),
		},
		Stripe: StripeConfig{
			SecretKey: getEnv("PAYMENT_GATEWAY_SECRET", ""),
		},
		Mail: MailConfig{
			Provider:      getEnv("MAIL_PROVIDER", "smtp"),
			SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:      getInt("SMTP_PORT", 587),
			SMTPUser:      getEnv("SMTP_USER", ""),
			SMTPPass:      getEnv("SMTP_PASS", ""),
			From:          getEnv("MAIL_FROM", getEnv("SMTP_USER", "")),
			FromName:      getEnv("MAIL_FROM_NAME", "TableTalk"),
			MailerSendKey: getEnv("MAILERSEND_API_KEY", ""),
		},
		CORS: CORSConfig{
			Origins: getList("CORS_ORIGINS", []string{
				"http://localhost:5173",
				"https://tabletalk-restaurant-edf5e.web.app",
				"https://restaurant-management-65c50.web.app",
			}),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return fallback
}
