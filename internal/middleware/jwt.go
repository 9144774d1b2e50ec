package middleware // middleware provides reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/job-application-tracker/internal/utils"
)

// Context keys under which the verified identity is stored.  Handlers read
// these via c.Get().
const (
    UserIDKey = "user_id"
    EmailKey  = "email"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject and email claims into the request
// context.  The provided secret must match the one used when issuing
// tokens.  A missing or malformed Authorization header and an invalid or
// expired token both yield 401 before any handler logic runs.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Missing token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
            }

            c.Set(UserIDKey, claims.UserID)
            c.Set(EmailKey, claims.Email)
            return next(c)
        }
    }
}
