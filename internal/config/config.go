// internal/config/config.go
//
// Runtime configuration for both modes (serve / play).
//
// Load order (later wins):
//   1. Built-in defaults.
//   2. Optional TOML file named by CONFIG_FILE.
//   3. Environment variables (a .env file in the working directory is loaded first).
//
// Environment variables:
//   SOLUTION, SOLUTION_FILE, PORT, LOG_LEVEL, LOG_FILE, LOG_PRETTY,
//   JWT_SECRET, JWT_EXPIRES_HOURS, DB_PATH, CLIENT_ORIGIN,
//   ADMIN_PASSWORD_HASH, SHARE_HEADER

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/robalobadob/lemonle/internal/game"
	"github.com/robalobadob/lemonle/internal/words"
)

const devSecret = "dev_secret_change_me"

// Config holds every tunable. Field tags name the TOML keys.
type Config struct {
	Solution     string   `toml:"solution"`
	SolutionFile string   `toml:"solution_file"`
	Port         string   `toml:"port"`
	LogLevel     string   `toml:"log_level"`
	LogFile      string   `toml:"log_file"`
	LogPretty    bool     `toml:"log_pretty"`
	JWTSecret    string   `toml:"jwt_secret"`
	TokenHours   int      `toml:"jwt_expires_hours"`
	DBPath       string   `toml:"db_path"`
	ClientOrigin string   `toml:"client_origin"`
	AdminHash    string   `toml:"admin_password_hash"`
	ShareHeader  string   `toml:"share_header"`
	Taunts       []string `toml:"taunts"`

	// Word is the validated solution, filled by Load.
	Word game.Word `toml:"-"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:         "5175",
		LogLevel:     "info",
		JWTSecret:    devSecret,
		TokenHours:   24,
		DBPath:       "./data/lemonle.db",
		ClientOrigin: "http://localhost:5173",
		ShareHeader:  "lemonle",
		Taunts:       append([]string(nil), words.DefaultTaunts...),
	}
}

// Load builds the configuration and validates the solution.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	var err error
	if cfg.SolutionFile != "" && cfg.Solution == "" {
		cfg.Word, err = words.ReadSolutionFile(cfg.SolutionFile)
	} else {
		cfg.Word, err = words.Resolve(cfg.Solution)
	}
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// TokenTTL is the lifetime of session tokens.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenHours) * time.Hour
}

// InsecureSecret reports whether the built-in development secret is in use.
func (c Config) InsecureSecret() bool { return c.JWTSecret == devSecret }

func (c *Config) applyEnv() error {
	setStr(&c.Solution, "SOLUTION")
	setStr(&c.SolutionFile, "SOLUTION_FILE")
	setStr(&c.Port, "PORT")
	setStr(&c.LogLevel, "LOG_LEVEL")
	setStr(&c.LogFile, "LOG_FILE")
	setStr(&c.JWTSecret, "JWT_SECRET")
	setStr(&c.ClientOrigin, "CLIENT_ORIGIN")
	setStr(&c.AdminHash, "ADMIN_PASSWORD_HASH")
	setStr(&c.ShareHeader, "SHARE_HEADER")
	// DB_PATH may be set to empty on purpose to disable the journal.
	if v, ok := os.LookupEnv("DB_PATH"); ok {
		c.DBPath = v
	}
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: LOG_PRETTY: %w", err)
		}
		c.LogPretty = b
	}
	if v := os.Getenv("JWT_EXPIRES_HOURS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("config: JWT_EXPIRES_HOURS: invalid value %q", v)
		}
		c.TokenHours = n
	}
	return nil
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
