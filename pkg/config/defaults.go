package config

import (
	"dario.cat/mergo"
)

// Default values applied by EnsureDefaults.
const (
	// defaultName is the server name exposed over MCP.
	defaultName = "Quortex MCP"

	// defaultSpecDir is the spec directory relative to the working directory.
	defaultSpecDir = "api"

	// defaultAPIBaseURL targets the production Quortex API.
	defaultAPIBaseURL = "https://api.quortex.io"

	// defaultTokenURL is the fixed credential issuance endpoint.
	defaultTokenURL = "https://api.quortex.io/oauth/token"

	// defaultHost binds to loopback only.
	defaultHost = "127.0.0.1"

	// defaultPort matches the historical server default.
	defaultPort = 8000

	// defaultEndpointPath is the MCP endpoint path.
	defaultEndpointPath = "/mcp"
)

// DefaultConfig returns a fully populated Config with default values.
// This is the single source of truth for all configuration defaults.
func DefaultConfig() Config {
	return Config{
		Name:    defaultName,
		SpecDir: defaultSpecDir,
		API: APIConfig{
			BaseURL: defaultAPIBaseURL,
		},
		Auth: AuthConfig{
			TokenURL: defaultTokenURL,
		},
		Server: ServerConfig{
			Host:         defaultHost,
			Port:         defaultPort,
			EndpointPath: defaultEndpointPath,
		},
	}
}

// EnsureDefaults fills any zero-value fields with defaults while preserving
// values already set.
func (c *Config) EnsureDefaults() {
	if c == nil {
		return
	}

	defaults := DefaultConfig()

	// Merge defaults into target, only filling zero/nil values.
	// User-provided values are preserved.
	_ = mergo.Merge(c, defaults)
}
