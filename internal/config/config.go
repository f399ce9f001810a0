package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	Port       string
	DBPath     string
	JWTSecret  string
	MaxWorkers int // 并发生成时间线的最大用户数

	Timeline TimelineConfig
}

// Load 加载配置
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		Port:       getEnv("PORT", ":8080"),
		DBPath:     getEnv("DB_PATH", "./data/timeline/timeline.db"),
		JWTSecret:  getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		MaxWorkers: getEnvInt("TIMELINE_MAX_WORKERS", 4),
		Timeline:   DefaultTimelineConfig(),
	}

	if path := os.Getenv("TIMELINE_CONFIG_FILE"); path != "" {
		tc, err := LoadTimelineFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Timeline = tc
		log.Printf("Loaded timeline thresholds from %s", path)
	}

	cfg.Timeline.ApplyEnv()

	if err := cfg.Timeline.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timeline configuration: %w", err)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Warning: ignoring non-integer %s=%q", key, value)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Warning: ignoring non-numeric %s=%q", key, value)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("Warning: ignoring non-boolean %s=%q", key, value)
	}
	return defaultValue
}
