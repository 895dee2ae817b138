package weverse

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// How long a "which credential pair to use" decision stays memoized.
const decisionTTL = 3 * 24 * time.Hour

// loginDecision is the memoized outcome of the token workflow: the
// cookie-equivalent values to apply, or an empty map for an
// unauthenticated run.
type loginDecision struct {
	cookies    map[string]string
	computedAt time.Time
}

func (d *loginDecision) expired() bool {
	return time.Since(d.computedAt) >= decisionTTL
}

// login applies a usable token pair to the client, or leaves it
// unauthenticated when no path yields one. It never fails the run by
// itself; downstream calls that require authentication fail fast.
func (m *Module) login(ctx context.Context, a *api) error {
	if id := m.storedCredential(ctx, deviceIDCookie); id != "" {
		a.deviceID = id
	} else {
		a.deviceID = uuid.NewString()
	}

	// Fast path: a complete stored pair is used as-is.
	access := m.storedCredential(ctx, accessTokenCookie)
	refresh := m.storedCredential(ctx, refreshTokenCookie)
	if access != "" && refresh != "" {
		a.setTokens(access, refresh)
		return nil
	}

	cookies := m.decideCredentials(ctx, a)
	a.setTokens(cookies[accessTokenCookie], cookies[refreshTokenCookie])
	return nil
}

// decideCredentials runs the validate/refresh workflow at most once per
// cache window and writes any resulting pair back to the store.
func (m *Module) decideCredentials(ctx context.Context, a *api) map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.decision != nil && !m.decision.expired() {
		return m.decision.cookies
	}

	cookies := m.resolveCredentials(ctx, a)
	for name, value := range cookies {
		if err := m.creds.Set(ctx, cookieDomain, name, value); err != nil {
			m.log.Warn("Failed to persist credential", "name", name, "error", err)
		}
	}

	m.decision = &loginDecision{cookies: cookies, computedAt: time.Now()}
	return cookies
}

// resolveCredentials tries stored tokens first, then the statically
// configured pair. Whichever path first yields a usable pair wins; if
// neither does, the run proceeds unauthenticated.
func (m *Module) resolveCredentials(ctx context.Context, a *api) map[string]string {
	access := m.storedCredential(ctx, accessTokenCookie)
	refresh := m.storedCredential(ctx, refreshTokenCookie)
	if cookies := m.refreshedCredentials(ctx, a, "store", access, refresh); len(cookies) > 0 {
		return cookies
	}

	if cookies := m.refreshedCredentials(ctx, a, "config",
		m.cfg.Weverse.AccessToken, m.cfg.Weverse.RefreshToken); len(cookies) > 0 {
		return cookies
	}

	m.log.Warn("Unable to obtain a usable access token, proceeding without authentication")
	return map[string]string{}
}

// refreshedCredentials validates one token pair and refreshes it when
// expired. Returns an empty result when the pair is unusable.
func (m *Module) refreshedCredentials(ctx context.Context, a *api, source, access, refresh string) map[string]string {
	if access == "" {
		return nil
	}

	m.log.Info("Validating access token", "source", source)
	if m.accessTokenValid(ctx, a, access) {
		return map[string]string{accessTokenCookie: access}
	}

	if refresh == "" {
		return nil
	}

	m.log.Info("Refreshing access token", "source", source)
	pair, err := a.refreshAccessToken(ctx, access, refresh)
	if err != nil {
		m.log.Warn("Token refresh failed", "source", source, "error", err)
		return nil
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return nil
	}
	return map[string]string{
		accessTokenCookie:  pair.AccessToken,
		refreshTokenCookie: pair.RefreshToken,
	}
}

// accessTokenValid treats any introspection failure, transport included,
// as an expired token.
func (m *Module) accessTokenValid(ctx context.Context, a *api, access string) bool {
	status, err := a.validateToken(ctx, access)
	if err != nil {
		return false
	}
	return status.valid()
}

func (m *Module) storedCredential(ctx context.Context, name string) string {
	value, err := m.creds.Get(ctx, cookieDomain, name)
	if err != nil {
		return ""
	}
	return value
}
