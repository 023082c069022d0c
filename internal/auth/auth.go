// Package auth gates dashboard widgets on an authenticated session.
//
// Sessions are opaque tokens mapped to users through configuration; the
// middleware only attaches the user to the request context, and each
// protected widget decides for itself through Gate.ProtectedPage.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"homeboard/internal/log"
	"homeboard/internal/ports"
)

const SessionCookie = "hb_session"

var ErrUnauthenticated = errors.New("unauthenticated")

type User struct {
	ID   string
	Name string
}

type ctxKey struct{}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func UserFrom(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok && u.ID != ""
}

// Gate implements ports.Authorizer.
type Gate struct{}

var _ ports.Authorizer = Gate{}

func (Gate) ProtectedPage(ctx context.Context, route string) error {
	if _, ok := UserFrom(ctx); !ok {
		log.FromContext(ctx).WithComponent(log.ComponentAuth).DebugContext(ctx, "Protected route without session",
			log.FieldRoute, route)
		return fmt.Errorf("route %s: %w", route, ErrUnauthenticated)
	}
	return nil
}

// Sessions maps session tokens to users.
type Sessions struct {
	tokens   map[string]User
	fallback *User
}

// ParseSessions reads "token=id[:Display Name],..." pairs.
func ParseSessions(spec string) (*Sessions, error) {
	s := &Sessions{tokens: map[string]User{}}
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, rest, ok := strings.Cut(pair, "=")
		token = strings.TrimSpace(token)
		if !ok || token == "" || strings.TrimSpace(rest) == "" {
			return nil, fmt.Errorf("invalid session entry %q: want token=user", pair)
		}
		id, name, _ := strings.Cut(rest, ":")
		id = strings.TrimSpace(id)
		name = strings.TrimSpace(name)
		if name == "" {
			name = id
		}
		s.tokens[token] = User{ID: id, Name: name}
	}
	return s, nil
}

// WithFallback makes requests without a valid token act as u. Meant for
// single-user local setups.
func (s *Sessions) WithFallback(u User) *Sessions {
	s.fallback = &u
	return s
}

func (s *Sessions) Lookup(token string) (User, bool) {
	u, ok := s.tokens[token]
	return u, ok
}

func (s *Sessions) Len() int {
	return len(s.tokens)
}

// Middleware attaches the session user, if any, to the request context.
// It never rejects a request.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := s.fromRequest(r); ok {
			r = r.WithContext(WithUser(r.Context(), u))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Sessions) fromRequest(r *http.Request) (User, bool) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if u, ok := s.Lookup(c.Value); ok {
			return u, true
		}
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if u, ok := s.Lookup(strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))); ok {
			return u, true
		}
	}
	if s.fallback != nil {
		return *s.fallback, true
	}
	return User{}, false
}
