package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/reviewuplift/backend/internal/domain/entities"
)

// Principal is the authenticated caller extracted from the bearer token. The
// identity provider mints the token; this service only verifies it and reads
// the claims.
type Principal struct {
	UID   string
	Email string
	Role  entities.UserRole
}

type principalContextKey struct{}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*Principal)
	return p, ok
}

// WithPrincipal attaches a principal to the context, bypassing token
// verification. Used by tests and internal callers.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// AuthMiddleware verifies the Authorization bearer token and attaches the
// principal to the request context. Requests without a valid token are
// rejected; public endpoints are simply not mounted behind it.
func AuthMiddleware(tokenSecret string) func(http.Handler) http.Handler {
	key := []byte(tokenSecret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found || raw == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			token, err := jwt.ParseString(raw,
				jwt.WithKey(jwa.HS256, key),
				jwt.WithValidate(true),
			)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			principal := &Principal{UID: token.Subject()}
			if v, ok := token.Get("email"); ok {
				if s, ok := v.(string); ok {
					principal.Email = s
				}
			}
			if v, ok := token.Get("role"); ok {
				if s, ok := v.(string); ok {
					principal.Role = entities.UserRole(s)
				}
			}
			if principal.UID == "" {
				unauthorized(w, "token has no subject")
				return
			}
			if principal.Role == "" {
				principal.Role = entities.RoleBusiness
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireAdmin rejects callers whose token does not carry the ADMIN role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			unauthorized(w, "missing bearer token")
			return
		}
		if principal.Role != entities.RoleAdmin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"admin access required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
