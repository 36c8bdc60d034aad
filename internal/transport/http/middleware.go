package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Principal is the authenticated caller as the engine sees it: an id
// and a role. Token issuance lives elsewhere; this middleware only
// verifies and unpacks.
type Principal struct {
	ID   string
	Role string
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return strings.EqualFold(p.Role, "admin")
}

type principalKey struct{}

type authClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth resolves bearer tokens into principals.
type Auth struct {
	secret []byte
}

func NewAuth(secret string) *Auth {
	return &Auth{secret: []byte(secret)}
}

// principalFrom parses the Authorization header. Returns a zero
// principal and ok=true for anonymous requests (no header); a present
// but invalid credential returns ok=false.
func (a *Auth) principalFrom(r *http.Request) (Principal, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		// some websocket clients cannot set headers
		if token := r.URL.Query().Get("token"); token != "" {
			return a.parse(token)
		}
		return Principal{}, true
	}
	// RFC 7235 makes the auth scheme case-insensitive
	const scheme = "Bearer "
	if len(header) <= len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return Principal{}, false
	}
	return a.parse(header[len(scheme):])
}

func (a *Auth) parse(raw string) (Principal, bool) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return Principal{}, false
	}
	return Principal{ID: claims.Subject, Role: claims.Role}, true
}

// Optional admits anonymous callers but rejects bad credentials with
// 401 before the handler runs.
func (a *Auth) Optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := a.principalFrom(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid credentials"})
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, principal)))
	}
}

// Required rejects anonymous callers.
func (a *Auth) Required(next http.HandlerFunc) http.HandlerFunc {
	return a.Optional(func(w http.ResponseWriter, r *http.Request) {
		if principalOf(r).ID == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"})
			return
		}
		next(w, r)
	})
}

// Admin rejects everyone without the admin role.
func (a *Auth) Admin(next http.HandlerFunc) http.HandlerFunc {
	return a.Required(func(w http.ResponseWriter, r *http.Request) {
		if !principalOf(r).IsAdmin() {
			writeJSON(w, http.StatusForbidden, errorBody{Error: "admin only"})
			return
		}
		next(w, r)
	})
}

func principalOf(r *http.Request) Principal {
	principal, _ := r.Context().Value(principalKey{}).(Principal)
	return principal
}
