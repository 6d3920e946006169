package router // package router wires handlers and middleware onto the Echo instance

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-reservations/internal/handler"
	"github.com/iliyamo/travel-reservations/internal/middleware"
	"github.com/iliyamo/travel-reservations/internal/model"
)

// RegisterRoutes registers the unauthenticated probes.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth registers token issuance under /v1/auth and the
// principal endpoints under /v1.  limit is the /v1 rate limiter.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	me := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleClient, model.RoleAdmin),
		limit,
	)
	me.GET("/me", a.Me)
	me.POST("/logout", a.LogoutAll)
}
