// Package config loads process configuration from the environment,
// with an optional .env file and command-line flag overrides for the
// listener surface.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Settings is the gateway's own configuration. Backend credentials and
// endpoints live in BackendSettings.
type Settings struct {
	Host       string `envconfig:"HOST" default:"localhost"`
	Port       int    `envconfig:"PORT" default:"8090"`
	Verbose    bool   `envconfig:"VERBOSE" default:"false"`
	ModelsFile string `envconfig:"MODELS_FILE" default:"models.json"`

	// Optional per-client request limiting; off unless enabled.
	RateLimitEnabled bool          `envconfig:"RATE_LIMIT_ENABLED" default:"false"`
	RateLimitWindow  time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitMaxHits int           `envconfig:"RATE_LIMIT_MAX_HITS" default:"60"`
}

// Load reads Settings from LMBRIDGE_* environment variables, loading a
// .env file first when one is present.
func Load() (*Settings, error) {
	_ = godotenv.Load()

	var s Settings
	if err := envconfig.Process("lmbridge", &s); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &s, nil
}

// BindFlags registers CLI overrides for the listener surface on fs. The
// flag defaults are the already-loaded environment values, so flags win
// when given and the environment wins otherwise.
func (s *Settings) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&s.Host, "host", s.Host, "host to listen on")
	fs.IntVar(&s.Port, "port", s.Port, "port to listen on")
	fs.BoolVar(&s.Verbose, "verbose", s.Verbose, "log request and response bodies")
}

// Addr returns the host:port listen address.
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
