package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort            string
	APIBaseURL          string
	RedisAddr           string
	RedisPassword       string
	KafkaBrokers        string
	PaymentPollInterval time.Duration
	PaymentPollAttempts int
	RequestTimeout      time.Duration
	SessionTTL          time.Duration
	ShutdownTimeout     time.Duration
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("[config] invalid %s=%q, using %d", k, v, def)
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("[config] invalid %s=%q, using %s", k, v, def)
	}
	return def
}

func Load() Config {
	_ = godotenv.Load() // load .env if it exists
	cfg := Config{
		HTTPPort:            getenv("HTTP_PORT", "8080"),
		APIBaseURL:          getenv("API_BASE_URL", "http://localhost:8000/api"),
		RedisAddr:           getenv("REDIS_ADDR", ""),
		RedisPassword:       getenv("REDIS_PASSWORD", ""),
		KafkaBrokers:        getenv("KAFKA_BROKERS", ""),
		PaymentPollInterval: getenvDuration("PAYMENT_POLL_INTERVAL", 3*time.Second),
		PaymentPollAttempts: getenvInt("PAYMENT_POLL_MAX_ATTEMPTS", 20),
		RequestTimeout:      getenvDuration("REQUEST_TIMEOUT", 30*time.Second),
		SessionTTL:          getenvDuration("SESSION_TTL", 30*time.Minute),
		ShutdownTimeout:     getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	log.Printf("[config] HTTP_PORT=%s", cfg.HTTPPort)
	log.Printf("[config] API_BASE_URL=%s", cfg.APIBaseURL)
	log.Printf("[config] REDIS_ADDR=%s", cfg.RedisAddr)
	log.Printf("[config] KAFKA_BROKERS=%s", cfg.KafkaBrokers)
	return cfg
}
