package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables read after .env files are applied.
const (
	EnvData     = "RENTSTAT_DATA"
	EnvDB       = "RENTSTAT_DB"
	EnvLogLevel = "RENTSTAT_LOG_LEVEL"
)

// Env holds values taken from the environment. Empty means unset.
type Env struct {
	Data     string
	DB       string
	LogLevel string
}

// LoadEnv applies the first .env file found and reads the RENTSTAT_*
// variables. Variables already set in the process take precedence over
// the file.
func LoadEnv() Env {
	for _, path := range envPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}
	return Env{
		Data:     getEnvString(EnvData, ""),
		DB:       getEnvString(EnvDB, ""),
		LogLevel: getEnvString(EnvLogLevel, ""),
	}
}

// envPaths returns the .env candidates in lookup order.
func envPaths() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}
	paths = append(paths, DefaultEnvPath())
	return paths
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
