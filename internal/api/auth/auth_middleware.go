package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FACorreiaa/owt-boats/app/observability/metrics"
	"github.com/FACorreiaa/owt-boats/internal/api"
	"github.com/FACorreiaa/owt-boats/internal/types"
)

type contextKey string

const PrincipalKey contextKey = "principal"

// RoleUser is the role every boat operation requires.
const RoleUser = "USER"

const basicRealm = `Basic realm="owt-boats"`

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p types.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// GetPrincipalFromContext returns the principal set by BasicAuth or Authenticate.
func GetPrincipalFromContext(ctx context.Context) (types.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(types.Principal)
	return p, ok
}

func unauthenticated(w http.ResponseWriter, r *http.Request, message string) {
	metrics.RecordAuthFailure(r.Context(), "unauthenticated")
	api.ErrorResponse(w, r, http.StatusUnauthorized, message)
}

// BasicAuth verifies HTTP basic credentials against store and puts the
// resulting principal in the request context.
func BasicAuth(logger *slog.Logger, store PrincipalStore) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "BasicAuth"))

			name, password, ok := r.BasicAuth()
			if !ok {
				l.WarnContext(ctx, "Missing basic credentials")
				w.Header().Set("WWW-Authenticate", basicRealm)
				unauthenticated(w, r, "Authentication required")
				return
			}

			p, err := store.Authenticate(ctx, name, password)
			if err != nil {
				l.WarnContext(ctx, "Basic authentication failed", slog.String("user", name), slog.Any("error", err))
				w.Header().Set("WWW-Authenticate", basicRealm)
				unauthenticated(w, r, "Invalid credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, p)))
		})
	}
}

// Authenticate validates the bearer token and puts the principal it names,
// with the roles from its scope claim, in the request context.
func Authenticate(logger *slog.Logger, issuer *TokenIssuer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				l.WarnContext(ctx, "Missing Authorization header")
				unauthenticated(w, r, "Authorization header required")
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				l.WarnContext(ctx, "Invalid Authorization header format")
				unauthenticated(w, r, "Authorization header format must be Bearer {token}")
				return
			}

			claims, err := issuer.Parse(headerParts[1])
			if err != nil {
				l.WarnContext(ctx, "Token parsing/validation failed", slog.Any("error", err))
				errMsg := "Invalid or expired token"
				switch {
				case errors.Is(err, jwt.ErrTokenExpired):
					errMsg = "Token has expired"
				case errors.Is(err, jwt.ErrTokenMalformed):
					errMsg = "Malformed token"
				case errors.Is(err, jwt.ErrTokenSignatureInvalid):
					errMsg = "Invalid token signature"
				case errors.Is(err, jwt.ErrTokenInvalidIssuer):
					errMsg = "Invalid token issuer"
				}
				unauthenticated(w, r, errMsg)
				return
			}

			p := types.Principal{Name: claims.Subject, Roles: claims.Roles()}
			l.DebugContext(ctx, "Authentication successful", slog.String("subject", p.Name))
			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, p)))
		})
	}
}

// RequireRole rejects principals lacking role with 403. It runs after
// Authenticate; a request without a principal is treated as unauthenticated.
func RequireRole(logger *slog.Logger, role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			p, ok := GetPrincipalFromContext(ctx)
			if !ok {
				logger.ErrorContext(ctx, "Principal missing from context", slog.String("path", r.URL.Path))
				unauthenticated(w, r, "Authentication required")
				return
			}
			if err := p.Require(role); err != nil {
				logger.WarnContext(ctx, "Role check failed",
					slog.Any("error", err),
					slog.Any("roles", p.Roles),
				)
				metrics.RecordAuthFailure(ctx, "forbidden")
				api.ErrorResponse(w, r, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
