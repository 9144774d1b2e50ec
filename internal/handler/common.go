package handler // handler defines http handlers

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/job-application-tracker/internal/middleware"
)

// currentUserID extracts the authenticated user's id injected by the JWT
// middleware.  An empty result means the request carries no valid identity
// and must be rejected with 401 before any other processing.
func currentUserID(c echo.Context) string {
    if v, ok := c.Get(middleware.UserIDKey).(string); ok {
        return v
    }
    return ""
}
