// Package config provides CLI configuration through environment variables.
package config

import (
	"os"
	"path/filepath"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds the cipherkit CLI configuration.
type Config struct {
	// DefaultAlgorithm is the cipher used when --algorithm is not given.
	DefaultAlgorithm string
	// DefaultMode is the mode used when --mode is not given.
	DefaultMode string
	// MaxWorkers bounds how many files are processed concurrently; each
	// worker holds its own cipher session.
	MaxWorkers int
	// SecureMemory opens sessions with the secure-memory flag.
	SecureMemory bool
}

// Load loads configuration from environment variables and a .env file.
func Load() *Config {
	loadDotEnv()

	return &Config{
		DefaultAlgorithm: env.GetString("CIPHERKIT_DEFAULT_ALGORITHM", "AES256"),
		DefaultMode:      env.GetString("CIPHERKIT_DEFAULT_MODE", "GCM"),
		MaxWorkers:       env.GetInt("CIPHERKIT_MAX_WORKERS", 4),
		SecureMemory:     env.GetBool("CIPHERKIT_SECURE_MEMORY", false),
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
