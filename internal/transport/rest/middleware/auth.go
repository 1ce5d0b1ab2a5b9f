package middleware

import (
	"context"
	"net/http"
	"strings"

	"hornethelper/internal/model"
	"hornethelper/internal/service"
)

type contextKey string

const (
	UserClaimsKey contextKey = "userClaims"
	RequestIDKey  contextKey = "requestId"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireUser validates the user JWT from the Authorization header
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := WithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithClaims stores the authenticated user on ctx
func WithClaims(ctx context.Context, claims *model.UserClaims) context.Context {
	return context.WithValue(ctx, UserClaimsKey, claims)
}

// GetClaims extracts the authenticated user from context
func GetClaims(ctx context.Context) *model.UserClaims {
	if v, ok := ctx.Value(UserClaimsKey).(*model.UserClaims); ok {
		return v
	}
	return nil
}

// GetUserID extracts the authenticated user ID from context
func GetUserID(ctx context.Context) string {
	if c := GetClaims(ctx); c != nil {
		return c.UID
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
