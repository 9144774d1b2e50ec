package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/job-application-tracker/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/job-application-tracker/internal/middleware" // import middleware for JWT authentication
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/api/health", handler.Health)
}

// RegisterAuth registers all authentication-related routes.  Registration
// and login live under /api/auth and require no session; the 2FA endpoints
// require a valid bearer token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	twofa := g.Group("/2fa")
	twofa.Use(middleware.JWTAuth(jwtSecret))
	twofa.POST("/setup", a.SetupTwoFactor)
	twofa.POST("/verify", a.VerifyTwoFactor)
}

// RegisterJobs registers the job CRUD endpoints under /api/jobs.  Every
// route runs the JWTAuth middleware first, so an invalid bearer is rejected
// before any handler logic.
func RegisterJobs(e *echo.Echo, j *handler.JobHandler, jwtSecret string) {
	g := e.Group("/api/jobs")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.GET("", j.List)
	g.POST("", j.Create)
	g.PUT("/:id", j.Update)
	g.PATCH("/:id/status", j.UpdateStatus)
	g.DELETE("/:id", j.Delete)
}
