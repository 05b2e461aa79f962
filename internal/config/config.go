// Package config prepares the process environment before the per-package
// NewXConfigFromEnv constructors read it.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded when Load is called without explicit files
const DefaultEnvFile = ".env"

// ErrConfigFile is returned when CONFIG_FILE cannot be read or decoded
var ErrConfigFile = errors.New("invalid config file")

// File is the layout of the TOML file named by CONFIG_FILE.
//
//	[env]
//	PORT = 8080
//	SESSION_STORE = "sqlite"
type File struct {
	Env map[string]interface{} `toml:"env"`
}

// Load applies .env files and then CONFIG_FILE to the environment. Variables
// that are already set are never overridden, so the real environment wins over
// .env, which wins over the TOML file. Missing .env files are skipped. It
// returns the sources that were applied.
func Load(envFiles ...string) ([]string, error) {
	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}

	var sources []string
	for _, path := range envFiles {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return sources, fmt.Errorf("failed to load %s: %w", path, err)
		}
		sources = append(sources, path)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(path); err != nil {
			return sources, err
		}
		sources = append(sources, path)
	}

	return sources, nil
}

func applyFile(path string) error {
	var file File
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConfigFile, path, err)
	}

	for key, value := range file.Env {
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, fmt.Sprint(value)); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}
