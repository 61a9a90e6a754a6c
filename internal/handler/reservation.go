package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/room-escape-reservation/internal/service"
)

// ReservationHandler serves member and admin reservation endpoints.
type ReservationHandler struct {
	reservations   ReservationAPI
	bookingTimeout time.Duration
	log            *zap.Logger
}

// BookingTimeout is the deadline of a paid booking: the full payment
// exchange plus the usual request budget for storing the reservation.
func BookingTimeout(connect, read time.Duration) time.Duration {
	return connect + read + requestTimeout
}

// NewReservationHandler builds the handler.  bookingTimeout bounds member
// bookings, which wait on the payment provider; a non-positive value falls
// back to the default request timeout.
func NewReservationHandler(reservations ReservationAPI, bookingTimeout time.Duration, log *zap.Logger) *ReservationHandler {
	if bookingTimeout <= 0 {
		bookingTimeout = requestTimeout
	}
	return &ReservationHandler{reservations: reservations, bookingTimeout: bookingTimeout, log: log}
}

// Create books for the authenticated member after payment authorization.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req service.ReservationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.bookingTimeout)
	defer cancel()

	view, err := h.reservations.CreateForMember(ctx, uid, req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, view)
}

// CreateByAdmin books on behalf of member_id without payment.
func (h *ReservationHandler) CreateByAdmin(c echo.Context) error {
	var req service.AdminReservationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.MemberID == 0 {
		return badRequest(c, "member_id required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	view, err := h.reservations.CreateByAdmin(ctx, req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, view)
}

// List returns every reservation, or the RESERVED ones matching the
// theme_id, member_id, date_from and date_to query filters.
func (h *ReservationHandler) List(c echo.Context) error {
	themeID, ok := queryID(c, "theme_id")
	if !ok {
		return badRequest(c, "invalid theme_id")
	}
	memberID, ok := queryID(c, "member_id")
	if !ok {
		return badRequest(c, "invalid member_id")
	}
	p := service.ReservationFilterParams{
		ThemeID:  themeID,
		MemberID: memberID,
		DateFrom: strings.TrimSpace(c.QueryParam("date_from")),
		DateTo:   strings.TrimSpace(c.QueryParam("date_to")),
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var (
		views []service.ReservationView
		err   error
	)
	if p == (service.ReservationFilterParams{}) {
		views, err = h.reservations.FindAll(ctx)
	} else {
		views, err = h.reservations.FindBy(ctx, p)
	}
	if err != nil {
		return writeError(c, h.log, err)
	}
	if views == nil {
		views = []service.ReservationView{}
	}
	return c.JSON(http.StatusOK, views)
}

// Mine lists the caller's reservations with their waiting rank.
func (h *ReservationHandler) Mine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	mine, err := h.reservations.FindMine(ctx, uid)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if mine == nil {
		mine = []service.MyReservation{}
	}
	return c.JSON(http.StatusOK, mine)
}

// Waitings lists every PENDING reservation for administrators.
func (h *ReservationHandler) Waitings(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	views, err := h.reservations.FindWaitings(ctx)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if views == nil {
		views = []service.ReservationView{}
	}
	return c.JSON(http.StatusOK, views)
}

// Delete cancels a reservation.  Members may only cancel their own;
// administrators may cancel any.
func (h *ReservationHandler) Delete(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.reservations.Delete(ctx, actor, id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
