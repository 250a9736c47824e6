package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/St1cky1/taskboard/internal/entity"
)

// TokenValidator - то, что умеет проверять access token (auth.JWTManager)
type TokenValidator interface {
	ValidateAccessToken(token string) (*entity.JWTClaims, error)
}

type claimsKey struct{}

// Auth пропускает только запросы с валидным Bearer токеном
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "authorization header required", http.StatusUnauthorized)
				return
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || strings.TrimSpace(tokenString) == "" {
				http.Error(w, "bearer token required", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateAccessToken(strings.TrimSpace(tokenString))
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithClaims(ctx context.Context, claims *entity.JWTClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext возвращает пользователя, которого положил Auth
func ClaimsFromContext(ctx context.Context) (*entity.JWTClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*entity.JWTClaims)
	return claims, ok && claims != nil
}
