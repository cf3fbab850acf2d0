package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port              string
	MenuWebhookURL    string
	ChatWebhookURL    string
	ContactWebhookURL string
	AllowedOrigins    []string
	MenuCacheTTL      time.Duration
	CartTTL           time.Duration
	CartSweepInterval time.Duration
	UpstreamTimeout   time.Duration
}

func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "8081"),
		MenuWebhookURL:    getEnv("MENU_WEBHOOK_URL", "http://localhost:5678/webhook/menu"),
		ChatWebhookURL:    getEnv("CHAT_WEBHOOK_URL", "http://localhost:5678/webhook/chat"),
		ContactWebhookURL: getEnv("CONTACT_WEBHOOK_URL", "http://localhost:5678/webhook/contact"),
		AllowedOrigins:    splitEnv("ALLOWED_ORIGINS", "http://localhost:5173"),
		MenuCacheTTL:      getDurationEnv("MENU_CACHE_TTL", 5*time.Minute),
		CartTTL:           getDurationEnv("CART_TTL", 2*time.Hour),
		CartSweepInterval: getDurationEnv("CART_SWEEP_INTERVAL", 10*time.Minute),
		UpstreamTimeout:   getDurationEnv("UPSTREAM_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitEnv(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
