package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DataRoot  string
	CachePath string
	StaticDir string

	ListenAddr string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int

	StoreID   string
	StoreSlug string

	Debug bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		DataRoot:  getEnv("DATA_ROOT", "./data"),
		CachePath: getEnv("CACHE_PATH", "./cache/snapshots.msgpack"),
		StaticDir: getEnv("STATIC_DIR", "./frontend/public"),

		ListenAddr: getEnv("LISTEN_ADDR", ":8000"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 8),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 500),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		StoreID:   getEnv("STORE_ID", "01143"),
		StoreSlug: getEnv("STORE_SLUG", "ica-kvantum-vallentuna-id_01143"),

		Debug: getEnvBool("DEBUG", false),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
