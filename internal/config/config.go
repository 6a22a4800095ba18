package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	ServiceName string
	Version     string
	Environment string

	// Level progression curve
	XPBase       int
	XPMultiplier float64

	// Unlock level assignment
	MaxUnlockLevel     int
	MinBuildMinutes    float64
	MaxBuildMinutes    float64
	FallbackBuildMinutes float64

	// Region unlock
	RegionBuildingThreshold int

	// Construction scheduler
	TickInterval       time.Duration
	DiscountMultiplier float64
	DiscountActive     bool

	// Persistence
	StoreBackend string // "memory" or "postgres"
	DBUser       string
	DBPassword   string
	DBHost       string
	DBPort       string
	DBName       string

	// Game data files
	AreaCatalogPath string
	QuestPoolPath   string

	// Event system
	EventMaxRetries     int
	EventRetryDelay     time.Duration
	EventDeadLetterPath string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		ServiceName: getEnv("SERVICE_NAME", "cityforge"),
		Version:     getEnv("VERSION", "dev"),
		Environment: getEnv("ENVIRONMENT", "dev"),

		StoreBackend: getEnv("STORE_BACKEND", "memory"),
		DBUser:       getEnv("DB_USER", "postgres"),
		DBPassword:   getEnv("DB_PASSWORD", "postgres"),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBName:       getEnv("DB_NAME", "cityforge"),

		AreaCatalogPath: getEnv("AREA_CATALOG_PATH", "configs/areas.yaml"),
		QuestPoolPath:   getEnv("QUEST_POOL_PATH", "configs/quests.yaml"),

		EventDeadLetterPath: getEnv("EVENT_DEADLETTER_PATH", "logs/deadletter.jsonl"),
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.XPBase, err = getEnvInt("XP_BASE", DefaultXPBase); err != nil {
		return nil, err
	}
	if cfg.XPMultiplier, err = getEnvFloat("XP_MULTIPLIER", DefaultXPMultiplier); err != nil {
		return nil, err
	}
	if cfg.MaxUnlockLevel, err = getEnvInt("MAX_UNLOCK_LEVEL", DefaultMaxUnlockLevel); err != nil {
		return nil, err
	}
	if cfg.MinBuildMinutes, err = getEnvFloat("MIN_BUILD_MINUTES", DefaultMinBuildMinutes); err != nil {
		return nil, err
	}
	if cfg.MaxBuildMinutes, err = getEnvFloat("MAX_BUILD_MINUTES", DefaultMaxBuildMinutes); err != nil {
		return nil, err
	}
	if cfg.FallbackBuildMinutes, err = getEnvFloat("FALLBACK_BUILD_MINUTES", DefaultFallbackBuildMinutes); err != nil {
		return nil, err
	}
	if cfg.RegionBuildingThreshold, err = getEnvInt("REGION_BUILDING_THRESHOLD", DefaultRegionBuildingThreshold); err != nil {
		return nil, err
	}
	if cfg.DiscountMultiplier, err = getEnvFloat("DISCOUNT_MULTIPLIER", 1.0); err != nil {
		return nil, err
	}
	cfg.DiscountActive = getEnv("DISCOUNT_ACTIVE", "false") == "true"

	tickSeconds, err := getEnvInt("TICK_INTERVAL_SECONDS", DefaultTickIntervalSeconds)
	if err != nil {
		return nil, err
	}
	cfg.TickInterval = time.Duration(tickSeconds) * time.Second

	if cfg.EventMaxRetries, err = getEnvInt("EVENT_MAX_RETRIES", DefaultEventMaxRetries); err != nil {
		return nil, err
	}
	retryMillis, err := getEnvInt("EVENT_RETRY_DELAY_MS", DefaultEventRetryDelayMS)
	if err != nil {
		return nil, err
	}
	cfg.EventRetryDelay = time.Duration(retryMillis) * time.Millisecond

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the core cannot run with.
func (c *Config) Validate() error {
	if c.XPMultiplier <= 1.0 {
		return fmt.Errorf("XP_MULTIPLIER must be > 1.0 so level costs strictly increase, got %v", c.XPMultiplier)
	}
	if c.MaxUnlockLevel < 1 {
		return fmt.Errorf("MAX_UNLOCK_LEVEL must be >= 1, got %d", c.MaxUnlockLevel)
	}
	if c.MinBuildMinutes <= 0 || c.MaxBuildMinutes < c.MinBuildMinutes {
		return fmt.Errorf("build minutes range invalid: min=%v max=%v", c.MinBuildMinutes, c.MaxBuildMinutes)
	}
	if c.DiscountMultiplier <= 0 || c.DiscountMultiplier > 1.0 {
		return fmt.Errorf("DISCOUNT_MULTIPLIER must be in (0, 1], got %v", c.DiscountMultiplier)
	}
	if c.StoreBackend != StoreBackendMemory && c.StoreBackend != StoreBackendPostgres {
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return f, nil
}
