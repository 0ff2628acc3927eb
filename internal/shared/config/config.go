package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string

	// LLM
	OpenAIKey         string
	LLMModel          string
	LLMTimeoutSeconds int

	// Messaging providers
	MetaAPIVersion         string
	LAMAPIURL              string
	LAMAPIKey              string
	DeliveryTimeoutSeconds int

	// Retention
	DedupRetentionHours       int
	ConversationRetentionDays int
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		Port:        os.Getenv("PORT"),
		Env:         os.Getenv("ENV"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		LLMModel:          os.Getenv("LLM_MODEL"),
		LLMTimeoutSeconds: envInt("LLM_TIMEOUT_SECONDS", 25),

		MetaAPIVersion:         os.Getenv("META_API_VERSION"),
		LAMAPIURL:              os.Getenv("LAM_API_URL"),
		LAMAPIKey:              os.Getenv("LAM_API_KEY"),
		DeliveryTimeoutSeconds: envInt("DELIVERY_TIMEOUT_SECONDS", 10),

		DedupRetentionHours:       envInt("DEDUP_RETENTION_HOURS", 72),
		ConversationRetentionDays: envInt("CONVERSATION_RETENTION_DAYS", 90),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = "gpt-4o-mini"
	}
	if cfg.MetaAPIVersion == "" {
		cfg.MetaAPIVersion = "v18.0"
	}
	// Pruning earlier than the provider retry window (assume up to 24h
	// of retries) would re-admit retried messages, so 48h is the floor.
	if cfg.DedupRetentionHours < 48 {
		cfg.DedupRetentionHours = 48
	}

	return cfg
}

func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("⚠️ Invalid %s=%q, using default %d", key, raw, def)
		return def
	}
	return n
}
