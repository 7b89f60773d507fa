package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Corpus   CorpusConfig
	Database DatabaseConfig
	Workers  WorkersConfig
	Triggers TriggersConfig
}

type CorpusConfig struct {
	// Root is the directory holding the scraped owner/repo trees.
	Root string
	// OutputDir overrides where the result files are written.
	// Empty means write them into the repository's corpus directory.
	OutputDir string
}

type DatabaseConfig struct {
	Path          string
	MigrationsDir string
}

type WorkersConfig struct {
	Categorize int
}

type TriggersConfig struct {
	// Path to the YAML file listing merge-bot command prefixes.
	Path string
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Corpus: CorpusConfig{
			Root:      getEnv("CORPUS_ROOT", "."),
			OutputDir: getEnv("OUTPUT_DIR", ""),
		},
		Database: DatabaseConfig{
			Path:          getEnv("DB_PATH", "./heartbeat.db"),
			MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
		},
		Workers: WorkersConfig{
			Categorize: getEnvAsInt("CATEGORIZE_WORKERS", 4),
		},
		Triggers: TriggersConfig{
			Path: getEnv("TRIGGERS_FILE", "triggers.yaml"),
		},
	}

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
