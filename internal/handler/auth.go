package handler

import (
    "crypto/subtle"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-seat-inventory/internal/utils"
)

// AuthHandler exchanges the configured admin API key for a short-lived
// signed access token.  There is no user registry: administration is
// gated by a single shared key, and the JWT it buys is what the admin
// routes verify.
type AuthHandler struct {
    JWTSecret   string
    AdminAPIKey string
    AccessTTL   int // minutes
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(jwtSecret, adminAPIKey string, accessTTLMin int) *AuthHandler {
    return &AuthHandler{JWTSecret: jwtSecret, AdminAPIKey: adminAPIKey, AccessTTL: accessTTLMin}
}

// Token handles POST /v1/auth/token.  The body carries the admin API
// key; a constant-time comparison decides whether to mint a token with
// the ADMIN role.
func (h *AuthHandler) Token(c echo.Context) error {
    var body struct {
        APIKey string `json:"apiKey"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.APIKey == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "apiKey is required"})
    }
    if subtle.ConstantTimeCompare([]byte(body.APIKey), []byte(h.AdminAPIKey)) != 1 {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid api key"})
    }
    tok, err := utils.NewAccessToken(h.JWTSecret, "admin", "ADMIN", h.AccessTTL)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to sign token"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "accessToken": tok.Token,
        "expiresAt":   tok.Exp.Format(time.RFC3339),
    })
}
