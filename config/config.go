package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 string
	Env                  string
	GoogleClientID       string
	GoogleClientSecret   string
	GoogleDeveloperToken string
	FacebookClientID     string
	FacebookClientSecret string
	OAuthRedirectBase    string
}

var AppConfig *Config

func Load() {
	_ = godotenv.Load()

	AppConfig = &Config{
		Port:                 GetEnv("PORT", "3000"),
		Env:                  GetEnv("ENV", "development"),
		GoogleClientID:       GetEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   GetEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleDeveloperToken: GetEnv("GOOGLE_DEV_TOKEN", ""),
		FacebookClientID:     GetEnv("FACEBOOK_CLIENT_ID", ""),
		FacebookClientSecret: GetEnv("FACEBOOK_CLIENT_SECRET", ""),
		OAuthRedirectBase:    GetEnv("OAUTH_REDIRECT_BASE", "http://localhost:3000"),
	}

	if AppConfig.GoogleClientID == "" {
		log.Fatal("GOOGLE_CLIENT_ID is required")
	}
	if AppConfig.GoogleClientSecret == "" {
		log.Fatal("GOOGLE_CLIENT_SECRET is required")
	}
	if AppConfig.FacebookClientID == "" {
		log.Fatal("FACEBOOK_CLIENT_ID is required")
	}
	if AppConfig.FacebookClientSecret == "" {
		log.Fatal("FACEBOOK_CLIENT_SECRET is required")
	}
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
