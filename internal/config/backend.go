package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// BackendSettings configures the wrapped chat service's client. Either
// a static AccessToken or an AuthKey plus AuthURL pair must be set; the
// backend client enforces that at construction.
type BackendSettings struct {
	BaseURL            string        `envconfig:"BASE_URL"`
	AccessToken        string        `envconfig:"ACCESS_TOKEN"`
	AuthKey            string        `envconfig:"AUTH_KEY"`
	AuthURL            string        `envconfig:"AUTH_URL"`
	Scope              string        `envconfig:"SCOPE"`
	Timeout            time.Duration `envconfig:"TIMEOUT" default:"90s"`
	InsecureSkipVerify bool          `envconfig:"INSECURE_SKIP_VERIFY" default:"false"`
}

// LoadBackend reads BackendSettings from BACKEND_* environment
// variables.
func LoadBackend() (*BackendSettings, error) {
	var s BackendSettings
	if err := envconfig.Process("backend", &s); err != nil {
		return nil, fmt.Errorf("failed to load backend configuration: %w", err)
	}
	return &s, nil
}
