package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-escape-reservation/internal/handler"
	"github.com/iliyamo/room-escape-reservation/internal/middleware"
	"github.com/iliyamo/room-escape-reservation/internal/model"
)

// AdminHandlers groups the handlers mounted under /v1/admin.
type AdminHandlers struct {
	Reservations *handler.ReservationHandler
	Catalog      *handler.CatalogHandler
	Auth         *handler.AuthHandler
}

// RegisterAdmin registers administrator endpoints.  Catalog writes purge
// the public listing cache once they succeed.
func RegisterAdmin(e *echo.Echo, h AdminHandlers, jwtSecret string, purge echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.POST("/reservations", h.Reservations.CreateByAdmin)
	g.DELETE("/reservations/:id", h.Reservations.Delete)
	g.GET("/waitings", h.Reservations.Waitings)

	g.POST("/themes", h.Catalog.CreateTheme, purge)
	g.DELETE("/themes/:id", h.Catalog.DeleteTheme, purge)
	g.POST("/times", h.Catalog.CreateTime, purge)
	g.DELETE("/times/:id", h.Catalog.DeleteTime, purge)

	g.GET("/members", h.Auth.ListMembers)
}
