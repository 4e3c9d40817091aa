package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) { //nolint:paralleltest // mutates env
	t.Setenv(EnvSpecDir, "/etc/quortex/specs")
	t.Setenv(EnvAPIKeySecret, "super-secret")
	t.Setenv(EnvAPIToken, "static-token")
	t.Setenv(EnvDefaultOrg, "org-uuid")
	t.Setenv(EnvServerToken, "server-token")
	t.Setenv(EnvPort, "9000")

	cfg := FromEnv()

	assert.Equal(t, "/etc/quortex/specs", cfg.SpecDir)
	assert.Equal(t, "super-secret", cfg.Auth.APIKeySecret)
	assert.Equal(t, "static-token", cfg.Auth.StaticToken)
	assert.Equal(t, "org-uuid", cfg.DefaultOrg)
	assert.Equal(t, "server-token", cfg.Server.AuthToken)
	assert.Equal(t, 9000, cfg.Server.Port)

	// Unset values come from defaults.
	assert.Equal(t, defaultAPIBaseURL, cfg.API.BaseURL)
	assert.Equal(t, defaultHost, cfg.Server.Host)
	assert.Equal(t, defaultEndpointPath, cfg.Server.EndpointPath)
}

func TestEnsureDefaultsPreservesValues(t *testing.T) {
	t.Parallel()

	cfg := Config{
		SpecDir: "custom",
		Server:  ServerConfig{Port: 1234},
	}
	cfg.EnsureDefaults()

	assert.Equal(t, "custom", cfg.SpecDir)
	assert.Equal(t, 1234, cfg.Server.Port)
	assert.Equal(t, defaultName, cfg.Name)
	assert.Equal(t, defaultTokenURL, cfg.Auth.TokenURL)
}

func TestValidator(t *testing.T) {
	t.Parallel()

	valid := DefaultConfig()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing spec dir",
			mutate:  func(c *Config) { c.SpecDir = "" },
			wantErr: true,
		},
		{
			name:    "bad base URL scheme",
			mutate:  func(c *Config) { c.API.BaseURL = "ftp://example.com" },
			wantErr: true,
		},
		{
			name: "bad token URL only matters with secret",
			mutate: func(c *Config) {
				c.Auth.TokenURL = "not a url"
			},
		},
		{
			name: "bad token URL with secret",
			mutate: func(c *Config) {
				c.Auth.APIKeySecret = "secret"
				c.Auth.TokenURL = "not a url"
			},
			wantErr: true,
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "endpoint path without slash",
			mutate:  func(c *Config) { c.Server.EndpointPath = "mcp" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tt.mutate(&cfg)

			err := NewValidator().Validate(cfg)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
