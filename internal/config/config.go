package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	// Supabase
	SupabaseURL            string `env:"SUPABASE_URL"`
	SupabasePublishableKey string `env:"SUPABASE_PUBLISHABLE_KEY"`
	SupabaseJWTSecret      string `env:"SUPABASE_JWT_SECRET"`
	SupabaseStorageBucket  string `env:"SUPABASE_STORAGE_BUCKET" envDefault:"flumers-uploads"`

	// Support chatbot backend
	SupportBotURL string `env:"SUPPORT_BOT_URL"`
	SupportBotKey string `env:"SUPPORT_BOT_KEY"`

	// Database
	DatabaseURL string `env:"DATABASE_URL"`

	// Redis (optional; enables cross-instance event fan-out)
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Server
	Port        string  `env:"PORT" envDefault:"8080"`
	Environment string  `env:"ENVIRONMENT" envDefault:"development"`
	BaseURL     string  `env:"BASE_URL" envDefault:"http://localhost:8080"`
	RateLimit   float64 `env:"RATE_LIMIT_RPS" envDefault:"25"`
	RateBurst   int     `env:"RATE_LIMIT_BURST" envDefault:"50"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config parse: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	return nil
}
