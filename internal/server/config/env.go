package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// envFile is loaded into the process environment when it exists.
var envFile = ".env"

// parseEnv overlays Config with environment variables named by the `env`
// struct tags. Variables that are unset leave the current value untouched.
// A .env file, if present, is loaded first; variables already present in
// the environment win over the file.
func parseEnv(cfg *Config) {
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			panic(err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if err := env.Parse(cfg); err != nil {
		panic(err)
	}
}
