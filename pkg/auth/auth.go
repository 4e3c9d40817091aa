// Package auth provides authentication for the gateway's two boundaries:
//
//  1. Outgoing - attaching a bearer credential to every call the gateway
//     makes against the wrapped API, either lazily refreshed from a token
//     issuer or taken verbatim from configuration.
//  2. Incoming - optional static-token verification of requests to the
//     gateway's own MCP endpoint.
//
// The two outgoing modes are mutually exclusive and selected once at startup
// by NewStrategy; the refresh secret takes precedence over a static token.
package auth

import (
	"context"
	"errors"
	"net/http"
)

// Domain errors, checked with errors.Is.
var (
	// ErrCredentialFetch indicates the token issuer could not supply a
	// usable credential. The triggering outbound call fails; the cached
	// credential, if any, is left unchanged.
	ErrCredentialFetch = errors.New("credential fetch failed")
)

// Strategy adds authentication to an outgoing request to the wrapped API.
// Implementations must be safe for concurrent use.
type Strategy interface {
	// Name returns the strategy identifier for logging.
	Name() string

	// Authenticate mutates req so it carries valid credentials. An error
	// means the request must not be sent.
	Authenticate(ctx context.Context, req *http.Request) error
}
