package auth

import (
	"context"
	"net/http"

	"github.com/quortexio/unimcp/pkg/config"
	"github.com/quortexio/unimcp/pkg/logger"
)

// RefreshingTokenStrategy authenticates requests with a lazily refreshed
// bearer credential obtained from the token Manager. A refresh failure fails
// the request; it is never sent with a stale or missing credential.
type RefreshingTokenStrategy struct {
	manager *Manager
}

// NewRefreshingTokenStrategy wraps a token Manager as a Strategy.
func NewRefreshingTokenStrategy(manager *Manager) *RefreshingTokenStrategy {
	return &RefreshingTokenStrategy{manager: manager}
}

// Name returns the strategy identifier.
func (*RefreshingTokenStrategy) Name() string {
	return "refreshing_token"
}

// Authenticate attaches a valid bearer credential, refreshing first if the
// cached one is absent or near expiry.
func (s *RefreshingTokenStrategy) Authenticate(ctx context.Context, req *http.Request) error {
	token, err := s.manager.EnsureValidCredential(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// StaticTokenStrategy injects a fixed pre-issued bearer token into every
// request, with no refresh logic.
type StaticTokenStrategy struct {
	token string
}

// NewStaticTokenStrategy creates a strategy carrying the given token.
func NewStaticTokenStrategy(token string) *StaticTokenStrategy {
	return &StaticTokenStrategy{token: token}
}

// Name returns the strategy identifier.
func (*StaticTokenStrategy) Name() string {
	return "static_token"
}

// Authenticate sets the fixed bearer token.
func (s *StaticTokenStrategy) Authenticate(_ context.Context, req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+s.token)
	return nil
}

// UnauthenticatedStrategy performs no authentication. Selected only when
// neither auth configuration value is present; outbound calls proceed
// unauthenticated and will likely fail at the remote API.
type UnauthenticatedStrategy struct{}

// NewUnauthenticatedStrategy creates a no-op strategy.
func NewUnauthenticatedStrategy() *UnauthenticatedStrategy {
	return &UnauthenticatedStrategy{}
}

// Name returns the strategy identifier.
func (*UnauthenticatedStrategy) Name() string {
	return "unauthenticated"
}

// Authenticate does nothing and always succeeds.
func (*UnauthenticatedStrategy) Authenticate(_ context.Context, _ *http.Request) error {
	return nil
}

// NewStrategy selects the outgoing authentication mode from configuration,
// once, at startup. The refresh secret takes precedence over a static token
// when both are present.
func NewStrategy(cfg config.Config, client *http.Client) Strategy {
	switch {
	case cfg.Auth.APIKeySecret != "":
		logger.Info("Configuring API client with auto-refreshing credentials")
		return NewRefreshingTokenStrategy(NewManager(cfg.Auth.TokenURL, cfg.Auth.APIKeySecret, client))
	case cfg.Auth.StaticToken != "":
		logger.Info("Configuring API client with static API token")
		return NewStaticTokenStrategy(cfg.Auth.StaticToken)
	default:
		logger.Warn("No API credentials configured. API calls may fail if authentication is required.")
		return NewUnauthenticatedStrategy()
	}
}
