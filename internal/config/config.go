package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment    string        `envconfig:"APP_ENV" default:"development"`
	Port           string        `envconfig:"PORT" default:"5000"`
	AllowedOrigins []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:5174"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	JWTSecret      string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL       time.Duration `envconfig:"TOKEN_TTL" default:"8h"`

	// MaxMessageLength bounds message content after trimming.
	MaxMessageLength int `envconfig:"MAX_MESSAGE_LENGTH" default:"4000"`
	// OutboundQueueSize is the per-connection buffer of pending server events.
	OutboundQueueSize int `envconfig:"WS_OUTBOUND_QUEUE" default:"64"`

	SuperAdminUsername string `envconfig:"SUPERADMIN_USERNAME"`
	SuperAdminPassword string `envconfig:"SUPERADMIN_PASSWORD"`

	DB    DBConfig    `envconfig:"DB"`
	Redis RedisConfig `envconfig:"REDIS"`
}

// Nested fields carry no envconfig tag so the keys resolve only to their
// prefixed form (DB_HOST, REDIS_ADDR, ...) and never fall back to USER or PORT.
type DBConfig struct {
	Host     string `default:"localhost"`
	Port     string `default:"5432"`
	User     string `default:"postgres"`
	Password string
	Name     string `default:"euroshub"`
	SSLMode  string `default:"disable"`
}

type RedisConfig struct {
	Addr     string `default:"localhost:6379"`
	Password string
	DB       int `default:"0"`
	// Disabled skips the presence cache entirely.
	Disabled bool `default:"false"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("config: TOKEN_TTL must be positive")
	}
	if c.MaxMessageLength < 1 {
		return errors.New("config: MAX_MESSAGE_LENGTH must be at least 1")
	}
	if c.OutboundQueueSize < 1 {
		return errors.New("config: WS_OUTBOUND_QUEUE must be at least 1")
	}
	if (c.SuperAdminUsername == "") != (c.SuperAdminPassword == "") {
		return errors.New("config: SUPERADMIN_USERNAME and SUPERADMIN_PASSWORD must be set together")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}
