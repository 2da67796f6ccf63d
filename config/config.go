package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all pipeline configuration loaded from environment variables.
type Config struct {
	APIKeys      []string
	VisionModels []string
	RPMPerKey    int

	MaxToProcess   int // 0 means process every unprocessed row
	MaxRetries     int
	CallTimeoutSec int

	InputCSV  string
	OutputCSV string
	ImageDir  string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		APIKeys:      getEnvList("API_KEYS", nil),
		VisionModels: getEnvList("VISION_MODELS", []string{"gemma-3-27b-it"}),
		RPMPerKey:    getEnvInt("RPM_PER_KEY", 15),

		MaxToProcess:   getEnvInt("MAX_TO_PROCESS", 0),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		CallTimeoutSec: getEnvInt("CALL_TIMEOUT_SECONDS", 120),

		InputCSV:  getEnv("INPUT_CSV", "./data/listings.csv"),
		OutputCSV: getEnv("OUTPUT_CSV", "./output/model_results.csv"),
		ImageDir:  getEnv("IMAGE_DIR", "./data/images"),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "triage"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "triage123"),
		PostgresDB:       getEnv("POSTGRES_DB", "triage_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// Validate checks invariants that must hold before any row is processed.
// An empty credential or model pool is a fatal configuration error.
func (c *Config) Validate() error {
	if len(c.APIKeys) == 0 {
		return errors.New("config: API_KEYS is empty — at least one key is required")
	}
	if len(c.VisionModels) == 0 {
		return errors.New("config: VISION_MODELS is empty — at least one model is required")
	}
	if c.RPMPerKey <= 0 {
		return errors.New("config: RPM_PER_KEY must be positive")
	}
	return nil
}

// Delay returns the fixed inter-row pacing interval: the per-key
// requests-per-minute budget spread across the whole key pool.
func (c *Config) Delay() time.Duration {
	perMinute := c.RPMPerKey * len(c.APIKeys)
	return time.Duration(float64(time.Minute) / float64(perMinute))
}

// CallTimeout returns the hard per-attempt deadline for a model call.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSec) * time.Second
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
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

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
