package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Timeouts holds the attempt, probe, and progress tuning knobs.
// These values can be customized via environment variables.
type Timeouts struct {
	CreateAttempts       int           `env:"OPSTRACE_CREATE_ATTEMPTS" envDefault:"3"`
	CreateAttemptTimeout time.Duration `env:"OPSTRACE_CREATE_ATTEMPT_TIMEOUT" envDefault:"40m"`
	CreateRetryDelay     time.Duration `env:"OPSTRACE_CREATE_RETRY_DELAY" envDefault:"10s"`

	ProbeInterval       time.Duration `env:"OPSTRACE_PROBE_INTERVAL" envDefault:"5s"`
	ProbeConnectTimeout time.Duration `env:"OPSTRACE_PROBE_CONNECT_TIMEOUT" envDefault:"3s"`
	ProbeRequestTimeout time.Duration `env:"OPSTRACE_PROBE_REQUEST_TIMEOUT" envDefault:"10s"`

	ProgressInterval time.Duration `env:"OPSTRACE_PROGRESS_INTERVAL" envDefault:"10s"`
}

// DefaultTimeouts returns the built-in values, ignoring the environment.
func DefaultTimeouts() *Timeouts {
	return &Timeouts{
		CreateAttempts:       3,
		CreateAttemptTimeout: 40 * time.Minute,
		CreateRetryDelay:     10 * time.Second,
		ProbeInterval:        5 * time.Second,
		ProbeConnectTimeout:  3 * time.Second,
		ProbeRequestTimeout:  10 * time.Second,
		ProgressInterval:     10 * time.Second,
	}
}

// LoadTimeouts loads timeout configuration from environment variables.
//
// Environment Variables:
//   - OPSTRACE_CREATE_ATTEMPTS (default: 3)
//   - OPSTRACE_CREATE_ATTEMPT_TIMEOUT (default: 40m)
//   - OPSTRACE_CREATE_RETRY_DELAY (default: 10s)
//   - OPSTRACE_PROBE_INTERVAL (default: 5s)
//   - OPSTRACE_PROBE_CONNECT_TIMEOUT (default: 3s)
//   - OPSTRACE_PROBE_REQUEST_TIMEOUT (default: 10s)
//   - OPSTRACE_PROGRESS_INTERVAL (default: 10s)
func LoadTimeouts() (*Timeouts, error) {
	var t Timeouts
	if err := env.Parse(&t); err != nil {
		return nil, fmt.Errorf("unable to parse timeouts from environment: %w", err)
	}
	if t.CreateAttempts < 1 {
		return nil, fmt.Errorf("OPSTRACE_CREATE_ATTEMPTS must be at least 1, got %d", t.CreateAttempts)
	}
	return &t, nil
}
