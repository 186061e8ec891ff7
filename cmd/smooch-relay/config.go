package main

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-smooch"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	KeyID        string        `env:"SMOOCH_KEY_ID"`
	Secret       string        `env:"SMOOCH_SECRET"`
	UserIDKey    string        `env:"SMOOCH_USER_ID_KEY"`
	Endpoint     string        `env:"SMOOCH_ENDPOINT"`
	Timeout      time.Duration `env:"SMOOCH_TIMEOUT"       envDefault:"10s"`
	APIKeyHash   string        `env:"RELAY_API_KEY_HASH"`
	Addr         string        `env:"RELAY_ADDR"           envDefault:":8080"`
	DatabaseDSN  string        `env:"RELAY_DATABASE_DSN"   envDefault:"file:smooch.db?cache=shared"`
	PingTimeout  time.Duration `env:"RELAY_DATABASE_PING_TIMEOUT" envDefault:"5s"`
	DebugLogging bool          `env:"RELAY_DEBUG"`
}

// Persistence settings for the user directory client.

func (c Config) GetDebug() bool                { return c.DebugLogging }
func (c Config) GetDriver() string             { return sqliteshim.ShimName }
func (c Config) GetServer() string             { return c.DatabaseDSN }
func (c Config) GetDSN() string                { return c.DatabaseDSN }
func (c Config) GetPingTimeout() time.Duration { return c.PingTimeout }
func (c Config) GetOtelIdentifier() string     { return "" }

// LoadConfig loads envFile when it exists and parses the environment.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Update returns the Smooch settings present in cfg. Empty values are left
// out so they do not clear earlier configuration.
func (c Config) Update() smooch.ConfigUpdate {
	return smooch.ConfigUpdate{
		KeyID:     optional(c.KeyID),
		Secret:    optional(c.Secret),
		UserIDKey: optional(c.UserIDKey),
		Endpoint:  optional(c.Endpoint),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return smooch.String(s)
}
