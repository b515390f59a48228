// Package config loads environment-based configuration structs using
// `env:` field tags, reading a .env file first when one exists.
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParsingConfig is returned when environment variables cannot be
// parsed into the config struct.
var ErrParsingConfig = errors.New("failed to parse environment variables into config")

var dotenvOnce sync.Once

// Load parses environment variables into the provided configuration
// struct. The default .env file is loaded once per process; a missing
// file is not an error.
func Load[T any](v *T) error {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics on failure. Use for configuration
// the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
