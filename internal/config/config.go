// Package config loads process configuration from the environment.
//
// A .env file in the working directory is loaded first (development
// convenience); variables already set in the environment win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the runtime configuration shared by every command.
type Config struct {
	Port     string `env:"PORT" envDefault:"5175"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	NodeEnv  string `env:"NODE_ENV" envDefault:"development"`

	DBPath string `env:"DB_PATH" envDefault:"./data/hangman.db"`

	JWTSecret      string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"hangman_token"`
	ClientOrigin   string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	DailySalt      string `env:"DAILY_SALT" envDefault:"local_dev_salt"`

	WordsFile    string `env:"WORDS_FILE" envDefault:"wordlist.txt"`
	WordsURL     string `env:"WORDS_URL"`
	MaxIncorrect int    `env:"MAX_INCORRECT" envDefault:"6"`

	// GameRetention is how long a finished game stays readable in memory.
	GameRetention time.Duration `env:"GAME_RETENTION" envDefault:"1h"`

	OTelEnabled bool `env:"OTEL_ENABLED" envDefault:"false"`
}

// Production reports whether cookies should be Secure/SameSite=None.
func (c Config) Production() bool { return c.NodeEnv == "production" }

// Load reads .env (if present) and parses the environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse parses the current environment without touching .env.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxIncorrect <= 0 {
		return Config{}, fmt.Errorf("parse env: MAX_INCORRECT must be positive, got %d", cfg.MaxIncorrect)
	}
	return cfg, nil
}
