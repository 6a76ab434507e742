package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/model"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/usecase"
	"github.com/vasapolrittideah/elearning-api/shared/apperror"
	"github.com/vasapolrittideah/elearning-api/shared/response"
)

// AccessTokenCookie is the name of the cookie carrying the access token.
const AccessTokenCookie = "accessToken"

type userContextKey struct{}

// UserFromContext returns the session user attached by RequireAuth.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*model.User)
	return user, ok && user != nil
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

type AuthMiddleware struct {
	authUsecase usecase.AuthUsecase
	logger      *zerolog.Logger
}

func NewAuthMiddleware(authUsecase usecase.AuthUsecase, logger *zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{authUsecase: authUsecase, logger: logger}
}

// RequireAuth verifies the access token cookie and the session behind it,
// then attaches the session user to the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
			token = cookie.Value
		}

		user, err := m.authUsecase.Authorize(r.Context(), token)
		if err != nil {
			if apperror.KindOf(err) == apperror.Internal {
				m.logger.Error().Err(err).Msg("failed to authorize request")
			}
			response.FromError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireRoles rejects requests whose session user has none of roles.
// It must run after RequireAuth.
func RequireRoles(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				response.FromError(w, usecase.ErrLoginRequired)
				return
			}

			if !user.HasRole(roles...) {
				response.Error(w, http.StatusForbidden,
					fmt.Sprintf("Role: %s is not allowed to access this resource", user.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
