package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"aimawatch/pkg/domain"
	"aimawatch/pkg/serrors"
)

// userIDKey is the context key the authenticated user ID travels under.
type userIDKey struct{}

// authedUserID returns the user ID the JWT middleware attached to the context.
func authedUserID(ctx context.Context) (domain.UserID, bool) {
	id, ok := ctx.Value(userIDKey{}).(domain.UserID)

	return id, ok
}

// withJWT returns a middleware enforcing a bearer token signed with the HS256
// secret. The token subject carries the numeric user ID.
func withJWT(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := authenticate(r, secret)
			if err != nil {
				writeError(w, err)

				return
			}

			ctx := context.WithValue(r.Context(), userIDKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, secret []byte) (domain.UserID, error) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if raw == "" || raw == r.Header.Get("Authorization") {
		return 0, serrors.With(serrors.ErrUnauthorized, "missing bearer token")
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, serrors.With(serrors.ErrUnauthorized, "token subject is not a user ID")
	}

	return domain.UserID(userID), nil
}
