// Package session owns the authentication lifecycle: login, logout,
// credential hand-off to the gateway, and restoration from durable
// storage at process start.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yourorg/staffdesk/internal/domain"
	"github.com/yourorg/staffdesk/internal/gateway"
	"github.com/yourorg/staffdesk/internal/observability/metrics"
	"github.com/yourorg/staffdesk/internal/storage"
)

// LoginAPI is the slice of the gateway the manager needs.
type LoginAPI interface {
	Login(ctx context.Context, username, password string) (*gateway.LoginResult, error)
}

// Manager holds the single active session. It is explicitly
// constructed and passed to consumers; there is no package-level
// session state.
type Manager struct {
	mu      sync.Mutex
	api     LoginAPI
	store   storage.Store
	logger  *slog.Logger
	current *domain.Session
	message string
}

// NewManager creates an unauthenticated manager over the given
// store. Call SetAPI once the gateway exists (the gateway in turn
// takes this manager's Token method as its credential provider),
// then Restore to pick up a persisted session.
func NewManager(store storage.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, logger: logger}
}

// SetAPI completes the two-phase wiring between manager and gateway.
func (m *Manager) SetAPI(api LoginAPI) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.api = api
}

// Restore loads a persisted session without touching the network.
// A stored token that parses as a JWT with a past expiry is refused
// and the stale keys are purged, forcing a fresh login. Any other
// token shape is trusted until the first rejected call.
func (m *Manager) Restore(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sess domain.Session
	if !storage.GetJSON(ctx, m.store, storage.KeyUser, &sess, m.logger) {
		return false
	}
	if sess.Token == "" {
		sess.Token = storage.GetString(ctx, m.store, storage.KeyToken, "")
	}
	if sess.Token == "" {
		return false
	}

	if tokenExpired(sess.Token) {
		m.logger.Info("persisted session expired, forcing re-login",
			slog.String("username", sess.Username),
		)
		m.store.Remove(ctx, storage.KeyUser)
		m.store.Remove(ctx, storage.KeyToken)
		return false
	}

	m.current = &sess
	m.logger.Info("session restored", slog.String("username", sess.Username))
	return true
}

// Login authenticates and, on success, persists the session and
// makes its credential available to the gateway. Returns false on
// failure so callers can stay on the login view; the reason is then
// available from Message.
func (m *Manager) Login(ctx context.Context, username, password string) bool {
	m.mu.Lock()
	api := m.api
	m.mu.Unlock()
	if api == nil {
		m.setMessage("An unexpected error occurred.")
		return false
	}

	result, err := api.Login(ctx, username, password)
	if err != nil {
		var rejected *gateway.RequestRejectedError
		switch {
		case errors.As(err, &rejected):
			m.setMessage(rejected.Message)
		case errors.Is(err, gateway.ErrTransportUnavailable):
			m.setMessage("An unexpected error occurred.")
		default:
			m.setMessage("Login failed.")
		}
		metrics.ObserveLogin("failure")
		m.logger.Warn("login failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return false
	}

	sess := domain.Session{
		Username:    username,
		Token:       result.Token,
		IsAdmin:     result.Admin != nil,
		DisplayName: username,
	}
	if result.Admin != nil && result.Admin.Name != "" {
		sess.DisplayName = result.Admin.Name
	}

	m.mu.Lock()
	m.current = &sess
	m.message = ""
	m.mu.Unlock()

	storage.SetJSON(ctx, m.store, storage.KeyUser, sess, m.logger)
	m.store.Set(ctx, storage.KeyToken, sess.Token)

	metrics.ObserveLogin("success")
	m.logger.Info("user logged in", slog.String("username", username))
	return true
}

// Logout unconditionally drops the session and removes the persisted
// keys. Safe to call when already unauthenticated.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	wasAuthenticated := m.current != nil
	m.current = nil
	m.mu.Unlock()

	m.store.Remove(ctx, storage.KeyUser)
	m.store.Remove(ctx, storage.KeyToken)

	if wasAuthenticated {
		m.logger.Info("user logged out")
	}
}

// Authenticated reports whether a session is active.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

// Current returns a copy of the active session, or nil.
func (m *Manager) Current() *domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	sess := *m.current
	return &sess
}

// Token returns the active credential, or an empty string. This is
// the gateway's credential provider.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

// Message returns the last recorded login failure message, cleared
// by the next successful login.
func (m *Manager) Message() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.message
}

func (m *Manager) setMessage(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.message = msg
}

// tokenExpired reports whether the token is a parseable JWT whose
// expiry has passed. Opaque tokens report false: the server stays
// the authority on their validity.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
