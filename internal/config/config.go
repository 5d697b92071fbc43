package config

import (
	"os"
	"strconv"
)

type Config struct {
	ServerAddress   string
	PublicBaseURL   string
	MongoURI        string
	MongoDB         string
	DataDir         string
	UploadDir       string
	MaxUploadSizeMB int64
	JWTSecret       string

	// Optional TTF fonts for card rendering. When unset the renderer falls
	// back to its built-in face.
	CardFontPath     string
	CardFontBoldPath string

	SendGridAPIKey   string
	SupportFromEmail string
	SupportToEmail   string
	RecaptchaSecret  string
}

func Load() *Config {
	return &Config{
		ServerAddress:   getEnv("SERVER_ADDRESS", ":8080"),
		PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "https://tagcard.app"),
		MongoURI:        getEnv("MONGODB_URI", ""),
		MongoDB:         getEnv("MONGODB_DB", "tagcard"),
		DataDir:         getEnv("DATA_DIR", "./data"),
		UploadDir:       getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadSizeMB: getEnvInt64("MAX_UPLOAD_SIZE_MB", 10),
		JWTSecret:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),

		CardFontPath:     getEnv("CARD_FONT_PATH", ""),
		CardFontBoldPath: getEnv("CARD_FONT_BOLD_PATH", ""),

		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		SupportFromEmail: getEnv("SUPPORT_FROM_EMAIL", ""),
		SupportToEmail:   getEnv("SUPPORT_TO_EMAIL", ""),
		RecaptchaSecret:  getEnv("RECAPTCHA_SECRET", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
