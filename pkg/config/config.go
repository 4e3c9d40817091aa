// Package config provides the configuration model for the unified API MCP
// gateway.
//
// The configuration is assembled exactly once from the environment, validated,
// and passed by value into each component's constructor. No component reads
// the environment on its own.
package config

import (
	"github.com/spf13/viper"
)

// Environment variable names recognized by FromEnv.
const (
	// EnvSpecDir points at the directory of OpenAPI documents to expose.
	EnvSpecDir = "QUORTEX_API_SPEC_DIR"

	// EnvAPIBaseURL is the base URL of the wrapped API for outbound calls.
	EnvAPIBaseURL = "QUORTEX_API_BASE_URL"

	// EnvAPIKeySecret is the long-lived secret used to fetch short-lived
	// bearer credentials from the token issuer. When set, it enables the
	// auto-refresh authentication mode and takes precedence over EnvAPIToken.
	EnvAPIKeySecret = "QUORTEX_API_KEY_SECRET"

	// EnvAPIToken is a pre-issued static bearer token for outbound calls.
	// Used only when EnvAPIKeySecret is not set.
	EnvAPIToken = "QUORTEX_API_TOKEN"

	// EnvTokenURL overrides the credential issuance endpoint.
	EnvTokenURL = "QUORTEX_TOKEN_URL"

	// EnvDefaultOrg is the organization identifier injected into every tool
	// invocation whose schema declares an "org" parameter.
	EnvDefaultOrg = "QUORTEX_ORG"

	// EnvServerToken enables static-token verification on the gateway's own
	// MCP endpoint. Absent means unauthenticated management access.
	EnvServerToken = "MCP_SERVER_TOKEN"

	// EnvHost and EnvPort control the gateway's listen address.
	EnvHost = "MCP_HOST"
	EnvPort = "MCP_PORT"
)

// Config is the explicit configuration for the gateway. It is assembled once
// by FromEnv (or by hand in tests), completed by EnsureDefaults, and checked
// by Validator before any component is constructed.
type Config struct {
	// Name is the server name exposed in the MCP protocol.
	Name string

	// SpecDir is the directory containing the OpenAPI documents to merge.
	SpecDir string

	// DefaultOrg is the value injected for redacted "org" parameters.
	// Empty disables the redaction transform.
	DefaultOrg string

	// API configures the outbound side of the gateway.
	API APIConfig

	// Auth configures outbound credential acquisition.
	Auth AuthConfig

	// Server configures the gateway's own listener.
	Server ServerConfig
}

// APIConfig configures outbound calls to the wrapped API.
type APIConfig struct {
	// BaseURL is prepended to every path from the merged document.
	BaseURL string
}

// AuthConfig configures the outbound authentication mode. The two modes are
// mutually exclusive and selected once at startup: APIKeySecret takes
// precedence over StaticToken when both are present.
type AuthConfig struct {
	// APIKeySecret enables the auto-refresh mode against TokenURL.
	APIKeySecret string

	// StaticToken is a fixed pre-issued bearer token.
	StaticToken string

	// TokenURL is the credential issuance endpoint for the refresh mode.
	TokenURL string
}

// ServerConfig configures the gateway's inbound listener.
type ServerConfig struct {
	// Host is the bind address.
	Host string

	// Port is the bind port.
	Port int

	// EndpointPath is the MCP endpoint path.
	EndpointPath string

	// AuthToken, when set, requires inbound requests to the MCP endpoint to
	// carry it as a bearer token.
	AuthToken string
}

// FromEnv assembles a Config from the process environment and fills defaults
// for anything unset. The result still needs to pass Validator.Validate.
func FromEnv() Config {
	v := viper.New()
	for _, key := range []string{
		EnvSpecDir, EnvAPIBaseURL, EnvAPIKeySecret, EnvAPIToken,
		EnvTokenURL, EnvDefaultOrg, EnvServerToken, EnvHost, EnvPort,
	} {
		// BindEnv with a single argument binds the key to itself.
		_ = v.BindEnv(key)
	}

	cfg := Config{
		SpecDir:    v.GetString(EnvSpecDir),
		DefaultOrg: v.GetString(EnvDefaultOrg),
		API: APIConfig{
			BaseURL: v.GetString(EnvAPIBaseURL),
		},
		Auth: AuthConfig{
			APIKeySecret: v.GetString(EnvAPIKeySecret),
			StaticToken:  v.GetString(EnvAPIToken),
			TokenURL:     v.GetString(EnvTokenURL),
		},
		Server: ServerConfig{
			Host:      v.GetString(EnvHost),
			Port:      v.GetInt(EnvPort),
			AuthToken: v.GetString(EnvServerToken),
		},
	}

	cfg.EnsureDefaults()
	return cfg
}
