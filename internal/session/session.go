// Package session holds the operator's login as an explicit value built once
// from the bearer token. The counter never verifies the signature; the
// backend does that on every request.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNoSession      = errors.New("no active session")
	ErrSessionExpired = errors.New("session expired")
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Session struct {
	Token     string    `json:"-"`
	Subject   string    `json:"subject"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the token is past exp. Tokens without exp never expire.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Establish reads the token claims and rejects tokens already expired.
func Establish(token string, now time.Time) (Session, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Session{}, errors.Wrap(err, "parse token")
	}

	s := Session{Token: token, Subject: claims.Subject, Role: claims.Role}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	if s.Expired(now) {
		return Session{}, ErrSessionExpired
	}
	return s, nil
}

type Manager struct {
	mu      sync.RWMutex
	current *Session
	now     func() time.Time
	logger  log.FieldLogger
}

func NewManager(logger log.FieldLogger) *Manager {
	return &Manager{now: time.Now, logger: logger}
}

func (m *Manager) Login(token string) (Session, error) {
	s, err := Establish(token, m.now())
	if err != nil {
		return Session{}, err
	}

	m.mu.Lock()
	m.current = &s
	m.mu.Unlock()

	m.logger.WithFields(log.Fields{"subject": s.Subject, "role": s.Role}).Info("session established")
	return s, nil
}

// Logout ends the session. It reports whether one was active.
func (m *Manager) Logout() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return false
	}
	m.logger.WithField("subject", m.current.Subject).Info("session ended")
	m.current = nil
	return true
}

func (m *Manager) Current() (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, ErrNoSession
	}
	if m.current.Expired(m.now()) {
		return Session{}, ErrSessionExpired
	}
	return *m.current, nil
}

// Token is the bearer token for outgoing requests, empty without a live session.
func (m *Manager) Token() string {
	s, err := m.Current()
	if err != nil {
		return ""
	}
	return s.Token
}

// Watch ends an expired session on every tick and calls onExpired once per
// expiry. It returns when ctx is done.
func (m *Manager) Watch(ctx context.Context, interval time.Duration, onExpired func()) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if m.expire() && onExpired != nil {
				onExpired()
			}
		}
	}
}

func (m *Manager) expire() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || !m.current.Expired(m.now()) {
		return false
	}
	m.logger.WithField("subject", m.current.Subject).Warn("session expired")
	m.current = nil
	return true
}
