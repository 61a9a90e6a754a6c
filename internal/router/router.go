// Package router registers the HTTP routes and their middleware chains.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-escape-reservation/internal/handler"
	"github.com/iliyamo/room-escape-reservation/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication and no
// domain handler.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers signup, login and refresh under /v1/auth plus the
// authenticated /v1/me.  Logout accepts a refresh token in the body or
// falls back to the caller's access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout, middleware.OptionalJWT(jwtSecret))

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers the guest browse endpoints.  Catalog listings
// go through cache; availability and reservation listings change with
// every booking and are always served fresh.
func RegisterPublic(e *echo.Echo, catalog *handler.CatalogHandler, reservations *handler.ReservationHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/themes", catalog.ListThemes, cache)
	e.GET("/v1/themes/popular", catalog.PopularThemes, cache)
	e.GET("/v1/themes/:id", catalog.GetTheme, cache)
	e.GET("/v1/times", catalog.ListTimes, cache)
	e.GET("/v1/times/available", catalog.AvailableTimes)
	e.GET("/v1/reservations", reservations.List)
}
