package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/annotune/annotune-api/internal/api/shared"
	"github.com/annotune/annotune-api/internal/service/auth"
	"github.com/annotune/annotune-api/internal/store"
)

// AuthMiddleware resolves bearer tokens into users for protected routes.
type AuthMiddleware struct {
	tokenService auth.TokenService
	userStore    store.UserStore
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(tokenService auth.TokenService, userStore store.UserStore) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		userStore:    userStore,
	}
}

// Authenticate validates the token from the Authorization header, loads the
// matching user and adds it to the request context. Failures surface as
// business errors in the response envelope: a bad or expired token, a
// payload without a usable ID, or a user row that no longer exists.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithBusinessError(w, r, "authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			shared.RespondWithBusinessError(w, r, "invalid authorization format")
			return
		}

		claims, err := m.tokenService.ValidateToken(r.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithBusinessError(w, r, "token expired")
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid):
				shared.RespondWithBusinessError(w, r, "invalid token")
			default:
				shared.RespondWithSystemError(w, r, err)
			}
			return
		}

		user, err := m.userStore.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if store.IsNotFound(err) {
				shared.RespondWithBusinessError(w, r, "user not found")
				return
			}
			shared.RespondWithSystemError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithCurrentUser(r.Context(), user)))
	})
}
