// Package config loads application configuration from environment variables,
// with .env auto-loading for local development.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the binaries need. Missing integration credentials
// disable the corresponding feature (AI fallback, email, SMS) rather than
// failing startup; the import pipeline degrades to keyword matching and the
// sentinel category.
type Config struct {
	Port   string
	DBPath string

	// Optional category catalog override (YAML). Empty uses the embedded
	// default catalog.
	CatalogPath string

	GeminiAPIKey string
	GeminiModel  string

	ResendAPIKey string
	EmailFrom    string

	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioSMSFrom      string
	TwilioWhatsAppFrom string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; a custom path can be given.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, err
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		DBPath:      getEnvOrDefault("SMARTSPEND_DB", "smartspend.db"),
		CatalogPath: os.Getenv("SMARTSPEND_CATALOG"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailFrom:    getEnvOrDefault("EMAIL_FROM", "SmartSpend <alerts@smartspend.app>"),

		TwilioAccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioSMSFrom:      os.Getenv("TWILIO_SMS_FROM"),
		TwilioWhatsAppFrom: os.Getenv("TWILIO_WHATSAPP_FROM"),
	}

	return cfg, nil
}

// EmailEnabled reports whether the Resend sink can be constructed.
func (c *Config) EmailEnabled() bool {
	return c.ResendAPIKey != ""
}

// TwilioEnabled reports whether the SMS/WhatsApp sinks can be constructed.
func (c *Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != ""
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
