package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment
// variables.
type Config struct {
	StartURL          string
	MaxLoadMoreClicks int

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int

	OutputDir        string
	SchedulerLogPath string

	SchedulerRetries       int
	SchedulerRetryDelaySec int

	ChromeBin string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		StartURL:          getEnv("START_URL", "https://www.anwb.nl/auto/private-lease/anwb-private-lease/aanbod/aanbod=new"),
		MaxLoadMoreClicks: getEnvInt("MAX_LOAD_MORE_CLICKS", 20),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 1500),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		OutputDir:        getEnv("OUTPUT_DIR", "./output"),
		SchedulerLogPath: getEnv("SCHEDULER_LOG_PATH", "scraper_scheduler.log"),

		SchedulerRetries:       getEnvInt("SCHEDULER_RETRIES", 3),
		SchedulerRetryDelaySec: getEnvInt("SCHEDULER_RETRY_DELAY_SEC", 300),

		ChromeBin: getEnv("CHROME_BIN", ""),
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
