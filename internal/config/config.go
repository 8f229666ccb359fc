package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the server configuration, read from flat env vars.
type Config struct {
	ServerPort      int           `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	RateLimitRPS    float64       `env:"RATE_LIMIT_RPS" envDefault:"100"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST" envDefault:"20"`
	APIKey          string        `env:"API_KEY"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	MaxAgents       int           `env:"MAX_AGENTS" envDefault:"1000"`
	MaxSessions     int           `env:"MAX_SESSIONS" envDefault:"100"`
	MaxStepsPerCall int           `env:"MAX_STEPS_PER_CALL" envDefault:"1000"`
	MaxHistory      int           `env:"MAX_HISTORY" envDefault:"10000"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	ExpirerInterval time.Duration `env:"EXPIRER_INTERVAL" envDefault:"1m"`
}

// Load reads the .env file specified by ECHOSIM_ENV (or .env by default),
// then loads the corresponding .secret file if it exists, and parses the
// environment into a Config.
func Load() (*Config, error) {
	envFile := os.Getenv("ECHOSIM_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Missing files are fine; real env vars still apply.
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	return Parse()
}

// Parse reads the current environment without touching .env files.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 20
	}
	return &cfg, nil
}

func (c *Config) ServerAddr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
