package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/quortexio/unimcp/pkg/logger"
)

const (
	// refreshMargin is the safety window before expiry within which the
	// cached credential is treated as stale and refreshed.
	refreshMargin = 60 * time.Second

	// defaultCredentialTTL applies when the issuer omits expires_at.
	defaultCredentialTTL = 24 * time.Hour
)

// credential is a bearer token with its absolute expiry. It is replaced
// atomically on refresh and never persisted outside process memory.
type credential struct {
	token  string
	expiry time.Time
}

// Manager lazily fetches and caches a bearer credential from a remote issuer.
//
// The cached credential is process-wide state shared by every in-flight
// request. EnsureValidCredential refreshes synchronously when the cache is
// empty or within refreshMargin of expiry; concurrent callers that observe a
// stale credential share a single refresh via singleflight. A failed refresh
// propagates to the caller and leaves the cache exactly as it was.
type Manager struct {
	issuerURL string
	secret    string
	client    *http.Client

	mu   sync.RWMutex
	cred *credential

	group singleflight.Group

	// now is replaceable in tests.
	now func() time.Time
}

// NewManager creates a credential manager against the given issuer endpoint.
// A nil client falls back to http.DefaultClient; no independent timeout is
// imposed beyond what the client enforces.
func NewManager(issuerURL, secret string, client *http.Client) *Manager {
	if client == nil {
		client = http.DefaultClient
	}
	return &Manager{
		issuerURL: issuerURL,
		secret:    secret,
		client:    client,
		now:       time.Now,
	}
}

// EnsureValidCredential returns a bearer token that is valid for at least
// refreshMargin from now, fetching or refreshing it first if needed. The
// refresh blocks the triggering call; there is no retry.
func (m *Manager) EnsureValidCredential(ctx context.Context) (string, error) {
	if token, ok := m.cached(); ok {
		return token, nil
	}

	v, err, _ := m.group.Do("refresh", func() (any, error) {
		// A caller that queued behind a completed refresh can use its result.
		if token, ok := m.cached(); ok {
			return token, nil
		}

		cred, err := m.fetch(ctx)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.cred = &cred
		m.mu.Unlock()

		logger.Debugw("credential refreshed", "expiry", cred.expiry)
		return cred.token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Token returns whatever credential is currently cached, without triggering
// a refresh. It reports false when nothing is cached.
func (m *Manager) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cred == nil {
		return "", false
	}
	return m.cred.token, true
}

func (m *Manager) cached() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cred == nil {
		return "", false
	}
	if !m.now().Before(m.cred.expiry.Add(-refreshMargin)) {
		return "", false
	}
	return m.cred.token, true
}

// tokenResponse is the issuer's JSON body. access_token is required;
// expires_at is an optional ISO-8601 timestamp.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}

func (m *Manager) fetch(ctx context.Context) (credential, error) {
	payload, err := json.Marshal(map[string]string{"api_key_secret": m.secret})
	if err != nil {
		return credential{}, fmt.Errorf("%w: encoding request: %v", ErrCredentialFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.issuerURL, bytes.NewReader(payload))
	if err != nil {
		return credential{}, fmt.Errorf("%w: %v", ErrCredentialFetch, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return credential{}, fmt.Errorf("%w: %v", ErrCredentialFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return credential{}, fmt.Errorf("%w: issuer returned %s", ErrCredentialFetch, resp.Status)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return credential{}, fmt.Errorf("%w: decoding response: %v", ErrCredentialFetch, err)
	}
	if body.AccessToken == "" {
		return credential{}, fmt.Errorf("%w: response missing access_token", ErrCredentialFetch)
	}

	expiry, err := parseExpiry(body.ExpiresAt, m.now())
	if err != nil {
		return credential{}, err
	}

	return credential{token: body.AccessToken, expiry: expiry}, nil
}

// parseExpiry interprets the issuer's expires_at. A trailing Z is normalized
// to an explicit UTC offset before parsing. Absent means now + 24h.
func parseExpiry(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return now.Add(defaultCredentialTTL), nil
	}
	if strings.HasSuffix(raw, "Z") {
		raw = strings.TrimSuffix(raw, "Z") + "+00:00"
	}
	expiry, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid expires_at %q: %v", ErrCredentialFetch, raw, err)
	}
	return expiry, nil
}
