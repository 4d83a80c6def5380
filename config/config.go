package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	ListenAddr        string
	MaxUploadMB       int
	MaxConcurrentJobs int

	ColumnsFile string

	ChromeBin        string
	ScreenshotWaitMs int
	MaxRetries       int

	ChartWidth  int
	ChartHeight int

	LogLevel string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		ListenAddr:        getEnv("LISTEN_ADDR", ":8501"),
		MaxUploadMB:       getEnvInt("MAX_UPLOAD_MB", 32),
		MaxConcurrentJobs: getEnvInt("MAX_CONCURRENT_JOBS", 2),

		ColumnsFile: getEnv("COLUMNS_FILE", ""),

		ChromeBin:        getEnv("CHROME_BIN", ""),
		ScreenshotWaitMs: getEnvInt("SCREENSHOT_WAIT_MS", 3000),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),

		ChartWidth:  getEnvInt("CHART_WIDTH", 1200),
		ChartHeight: getEnvInt("CHART_HEIGHT", 700),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// MaxUploadBytes returns the upload limit for a whole multipart request.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
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
