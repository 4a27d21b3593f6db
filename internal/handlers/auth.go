package handlers

import (
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/reachout/backend/internal/middleware"
	"github.com/anonto42/reachout/backend/internal/models"
	"github.com/anonto42/reachout/backend/internal/services"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	accounts  *services.AccountService
	verifier  middleware.IDTokenVerifier
	jwtSecret string
	jwtExpiry time.Duration
}

// NewAuthHandler creates a new AuthHandler. verifier may be nil when Firebase
// is not configured.
func NewAuthHandler(accounts *services.AccountService, verifier middleware.IDTokenVerifier, jwtSecret string, jwtExpiry time.Duration) *AuthHandler {
	return &AuthHandler{
		accounts:  accounts,
		verifier:  verifier,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin, middleware.FirebaseAuthMiddleware(h.verifier))
}

// Register creates a local account and returns a JWT for it
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.accounts.Register(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return h.respondWithToken(c, http.StatusCreated, user)
}

// SignIn handles local user authentication with username and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.accounts.SignIn(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return h.respondWithToken(c, http.StatusOK, user)
}

// FirebaseLogin exchanges a verified Firebase ID token for a local JWT
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	token, ok := c.Get(middleware.FirebaseTokenContextKey).(*auth.Token)
	if !ok || token == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing Firebase token")
	}

	identity := services.FirebaseIdentity{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		identity.Name = name
	}

	user, err := h.accounts.FirebaseLogin(c.Request().Context(), identity)
	if err != nil {
		return toHTTPError(err)
	}
	return h.respondWithToken(c, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(c echo.Context, status int, user *models.User) error {
	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	return c.JSON(status, echo.Map{"token": token, "user": user.ToCompact()})
}

// generateJWT generates a JWT token for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(h.jwtExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.jwtSecret))
}
