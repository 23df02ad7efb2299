package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mominaamjad/pixel-notes/internal/core"
)

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*TokenClaims, error)
}

// UserResolver maps a verified token subject to a live user record.
type UserResolver interface {
	ResolveUser(ctx context.Context, userID string) (*AuthUser, error)
}

// Authenticator gates every protected route. The request is rejected
// with 401 when the bearer token is missing, malformed, expired, names
// a user that no longer exists, or was issued before the user's last
// password change. On success the resolved user's ID is attached to
// the request context and the downstream handler runs exactly once.
func Authenticator(
	verifier TokenVerifier,
	resolver UserResolver,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			user, err := resolver.ResolveUser(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, core.ErrNotFound) {
					core.JSONError(
						w,
						core.UnauthorizedError("user no longer exists"),
					)
					return
				}
				core.InternalServerError(w, err)
				return
			}

			if user.PasswordChangedAt != nil &&
				user.PasswordChangedAt.After(claims.IssuedAt) {
				core.JSONError(w, core.NewAppError(
					core.ErrTokenInvalid,
					"password changed after token was issued, please log in again",
					http.StatusUnauthorized,
					core.KindAuthorization,
				))
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}
