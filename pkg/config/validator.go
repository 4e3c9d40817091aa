package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidConfig indicates invalid configuration was provided.
// Wrapping errors provide specific details about what is invalid.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validator performs semantic validation of a Config.
type Validator struct{}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the configuration for semantic errors. It assumes defaults
// have already been applied via EnsureDefaults.
func (*Validator) Validate(cfg Config) error {
	if cfg.SpecDir == "" {
		return fmt.Errorf("%w: spec directory must be set", ErrInvalidConfig)
	}

	if err := validateURL("API base URL", cfg.API.BaseURL); err != nil {
		return err
	}

	if cfg.Auth.APIKeySecret != "" {
		if err := validateURL("token URL", cfg.Auth.TokenURL); err != nil {
			return err
		}
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, cfg.Server.Port)
	}

	if !strings.HasPrefix(cfg.Server.EndpointPath, "/") {
		return fmt.Errorf("%w: endpoint path %q must start with /", ErrInvalidConfig, cfg.Server.EndpointPath)
	}

	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %s %q must be http or https", ErrInvalidConfig, field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %s %q has no host", ErrInvalidConfig, field, raw)
	}
	return nil
}
