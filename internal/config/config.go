package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database (empty disables the shot journal)
	DatabaseURL    string
	MigrateOnStart bool

	// Redis (empty disables event fan-out and snapshot caching)
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Practice sessions
	SessionTimeoutMin int
	MaxSessions       int
	TickRate          int
	SnapshotEvery     int

	// Table defaults for new sessions
	TableLength   float64
	CanvasWidth   float64
	CanvasHeight  float64
	DefaultLayout int

	// Empirical physics and layout constants
	TuningFile string
	Tuning     Tuning

	// Security
	JWTSecret string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Practice sessions
		SessionTimeoutMin: getEnvInt("SESSION_TIMEOUT_MINUTES", 30),
		MaxSessions:       getEnvInt("MAX_SESSIONS", 64),
		TickRate:          getEnvInt("TICK_RATE", 60),
		SnapshotEvery:     getEnvInt("SNAPSHOT_EVERY", 2),

		// Table
		TableLength:   getEnvFloat("TABLE_LENGTH", 900),
		CanvasWidth:   getEnvFloat("CANVAS_WIDTH", 0),
		CanvasHeight:  getEnvFloat("CANVAS_HEIGHT", 0),
		DefaultLayout: getEnvInt("DEFAULT_LAYOUT", 1),

		TuningFile: getEnv("TUNING_FILE", ""),

		// Security
		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),
	}

	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	if cfg.SnapshotEvery <= 0 {
		cfg.SnapshotEvery = 1
	}

	cfg.Tuning = DefaultTuning()
	if cfg.TuningFile != "" {
		t, err := LoadTuning(cfg.TuningFile)
		if err != nil {
			log.Printf("[CONFIG] Failed to load tuning file %s, using defaults: %v", cfg.TuningFile, err)
		} else {
			cfg.Tuning = t
		}
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
