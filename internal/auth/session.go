package auth

import (
	"context"

	"github.com/google/uuid"
)

// Session is the authenticated caller resolved for a request.
type Session struct {
	UserID uuid.UUID
}

// Gate resolves the current caller. Every order operation asks the gate first and
// stops with not_authenticated when it reports false. It does not check row ownership.
type Gate interface {
	RequireAuth(ctx context.Context) (Session, bool)
}

type sessionKey struct{}

// WithSession stores the session in ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session stored by WithSession.
func SessionFromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	s, ok := ctx.Value(sessionKey{}).(Session)
	if !ok || s.UserID == uuid.Nil {
		return Session{}, false
	}
	return s, true
}

// ContextGate reads the session placed on the context by the HTTP middleware.
type ContextGate struct{}

// RequireAuth implements Gate.
func (ContextGate) RequireAuth(ctx context.Context) (Session, bool) {
	return SessionFromContext(ctx)
}
