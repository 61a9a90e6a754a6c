package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-escape-reservation/internal/handler"
	"github.com/iliyamo/room-escape-reservation/internal/middleware"
	"github.com/iliyamo/room-escape-reservation/internal/model"
)

// RegisterMember registers the booking endpoints of signed-in members.
// Administrators may use them too.  Booking is rate limited per member.
func RegisterMember(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	auth := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleMember, model.RoleAdmin),
	}
	e.POST("/v1/reservations", h.Create, append(auth, limiter)...)
	e.GET("/v1/reservations/mine", h.Mine, auth...)
	e.DELETE("/v1/reservations/:id", h.Delete, auth...)
}
