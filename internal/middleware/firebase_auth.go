package middleware

import (
	"context"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
)

// FirebaseTokenContextKey is where the verified Firebase token is stored.
const FirebaseTokenContextKey = "firebaseToken"

// IDTokenVerifier is satisfied by *auth.Client.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthMiddleware verifies a Firebase ID token passed as a bearer
// token and stores it under FirebaseTokenContextKey.
func FirebaseAuthMiddleware(verifier IDTokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if verifier == nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Firebase login is not configured")
			}
			idToken, err := bearerToken(c)
			if err != nil {
				return err
			}

			token, err := verifier.VerifyIDToken(c.Request().Context(), idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
			}

			c.Set(FirebaseTokenContextKey, token)
			return next(c)
		}
	}
}
