package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read for secrets.
const (
	EnvMasterKey     = "MIKROCHART_MASTER_KEY"
	EnvRedisPassword = "MIKROCHART_REDIS_PASSWORD"
)

// LoadEnv reads KEY=VALUE pairs from the .env file at path into the process
// environment. Variables that are already set keep their value. A missing
// file is not an error.
func LoadEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}
