package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	RapidAPIKey string
	SerpAPIKey  string
	Zoho        ZohoConfig
	Scheduler   SchedulerConfig

	CacheDir       string
	DBPath         string
	SnapshotTTL    time.Duration
	GeocodeEnabled bool
	LogLevel       string
}

type ZohoConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Configured reports whether CRM credentials are present at all.
func (z ZohoConfig) Configured() bool {
	return z.ClientID != "" && z.ClientSecret != "" && z.RefreshToken != ""
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		RapidAPIKey: os.Getenv("RAPIDAPI_KEY"),
		SerpAPIKey:  os.Getenv("SERPAPI_KEY"),
		Zoho: ZohoConfig{
			ClientID:     os.Getenv("ZOHO_CLIENT_ID"),
			ClientSecret: os.Getenv("ZOHO_CLIENT_SECRET"),
			RefreshToken: os.Getenv("ZOHO_REFRESH_TOKEN"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("SYNC_CRON"),
		},
		CacheDir:       getEnv("CACHE_DIR", "data/cache"),
		DBPath:         getEnv("DB_PATH", "prewalk.db"),
		SnapshotTTL:    time.Duration(getEnvInt("SNAPSHOT_TTL_HOURS", 168)) * time.Hour,
		GeocodeEnabled: getEnv("GEOCODE_ENABLED", "true") == "true",
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	if interval := os.Getenv("SYNC_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
