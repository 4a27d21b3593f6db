package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/reachout/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// UserContextKey is where the authenticated claims are stored.
const UserContextKey = "user"

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}
	return parts[1], nil
}

// JWTAuthMiddleware checks for a valid HS256 JWT signed with secret and
// stores its claims under UserContextKey.
func JWTAuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if err != nil {
				return err
			}

			claims := &models.JwtCustomClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unexpected signing method")
				}
				return []byte(secret), nil
			})
			if err != nil {
				if errors.Is(err, jwt.ErrSignatureInvalid) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token signature")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			if !token.Valid || claims.UserID == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(UserContextKey, claims)
			return next(c)
		}
	}
}
