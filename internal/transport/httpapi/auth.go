package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Roles allowed to act on the review queue and admin endpoints.
const (
	roleAdmin = "admin"
	roleSPSA  = "spsa"
)

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type claimsContextKey struct{}

func claimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*Claims)
	return claims, ok
}

type authenticator struct {
	secret      []byte
	adminEmails map[string]struct{}
}

func newAuthenticator(secret string, adminEmails []string) *authenticator {
	allow := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		if trimmed := strings.ToLower(strings.TrimSpace(email)); trimmed != "" {
			allow[trimmed] = struct{}{}
		}
	}
	return &authenticator{secret: []byte(secret), adminEmails: allow}
}

// middleware authenticates the bearer token (or the auth_token cookie set by
// the web UI) and authorizes by role or admin allowlist. Missing or bad
// credentials are a 401; a valid identity without review rights is a 403.
func (a *authenticator) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			respondJSON(w, http.StatusUnauthorized, map[string]any{
				"success": false,
				"error":   "authentication required",
			})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", token.Header["alg"])
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			respondJSON(w, http.StatusUnauthorized, map[string]any{
				"success": false,
				"error":   "invalid token",
			})
			return
		}

		if !a.authorized(claims) {
			respondJSON(w, http.StatusForbidden, map[string]any{
				"success": false,
				"error":   "insufficient privileges",
			})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsContextKey{}, claims)))
	})
}

func (a *authenticator) authorized(claims *Claims) bool {
	switch strings.ToLower(strings.TrimSpace(claims.Role)) {
	case roleAdmin, roleSPSA:
		return true
	}
	_, allowed := a.adminEmails[strings.ToLower(strings.TrimSpace(claims.Email))]
	return allowed
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}
