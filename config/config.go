package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr        string
	DatabaseURL     string
	MailTokenSecret string
	ResendAPIKey    string
	MailFrom        string
	AppBaseURL      string
	AllowedOrigins  []string
	CookieDomain    string
	SecureCookies   bool

	SessionTTL      time.Duration
	RefreshTokenTTL time.Duration
	MailTokenTTL    time.Duration
}

func Load(log *logrus.Logger) Config {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug("no .env file loaded")
	}

	cfg := Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":5000"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		MailTokenSecret: os.Getenv("JWT_SECRET"),
		ResendAPIKey:    os.Getenv("RESEND_API_KEY"),
		MailFrom:        os.Getenv("MAIL_FROM"),
		AppBaseURL:      os.Getenv("APP_BASE_URL"),
		CookieDomain:    os.Getenv("COOKIE_DOMAIN"),
		SecureCookies:   os.Getenv("COOKIE_SECURE") != "false",
		SessionTTL:      time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		MailTokenTTL:    time.Hour,
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}
	return cfg
}

func getEnv(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
