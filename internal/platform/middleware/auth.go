package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// JWTValidator validates bearer tokens presented on verification calls.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims carries the identity the token asserts. TenantID scopes every
// store and provider lookup downstream.
type JWTClaims struct {
	UserID   string
	TenantID string
}

type contextKeyUserID struct{}
type contextKeyTenantID struct{}

// GetUserID retrieves the authenticated user id from the context.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(contextKeyUserID{}).(string)
	return userID
}

// GetTenantID retrieves the tenant scope from the context.
func GetTenantID(ctx context.Context) string {
	tenantID, _ := ctx.Value(contextKeyTenantID{}).(string)
	return tenantID
}

// WithIdentity stamps user and tenant onto a context. Exposed for tests.
func WithIdentity(ctx context.Context, userID, tenantID string) context.Context {
	ctx = context.WithValue(ctx, contextKeyUserID{}, userID)
	return context.WithValue(ctx, contextKeyTenantID{}, tenantID)
}

// RequireAuth validates the Authorization header and stamps user and tenant
// onto the request context. Requests without a valid token get 401.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			claims, err := validator.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				logger.WarnContext(r.Context(), "token validation failed",
					"request_id", GetRequestID(r.Context()),
					"error", err.Error(),
				)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			ctx := WithIdentity(r.Context(), claims.UserID, claims.TenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
