package config

import "os"

type Config struct {
	Addr        string
	BaseURL     string
	DataDir     string
	Driver      string // "sqlite" or "postgres"
	DatabaseURL string // pgx DSN, used when Driver is "postgres"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load builds the configuration from flags with environment fallbacks.
func Load(flagAddr, flagDataDir string) Config {
	return Config{
		Addr:        flagAddr,
		BaseURL:     getEnv("SITE_BASE_URL", "http://localhost"+flagAddr),
		DataDir:     flagDataDir,
		Driver:      getEnv("SITE_DB_DRIVER", "sqlite"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
	}
}
